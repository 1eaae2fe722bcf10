package actions

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/relloyd/biopipe/config"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms"
	"github.com/relloyd/biopipe/rdbms/shared"
)

// DbOpener opens a database connection and writes the liveness probe result to probeOut.
type DbOpener func(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, probeOut io.Writer) (shared.Connector, error)

// openDbConnection is swapped in tests.
var (
	defaultOpener    DbOpener = rdbms.OpenDbConnection
	openDbConnection          = defaultOpener
)

// newLogger returns the logger used by all actions.
func newLogger(level string, stackDumpOnPanic bool) logger.Logger {
	return logger.NewLogger(constants.ServiceName, level, stackDumpOnPanic)
}

// interruptContext returns a context that is cancelled on SIGINT or SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// outputOrStdout returns w or os.Stdout when w is nil.
func outputOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// roleConfigFile returns the config file for the given connection role.
func roleConfigFile(role string, sourceFile string, targetFile string) (string, error) {
	switch role {
	case constants.ConnectionRoleSource:
		return sourceFile, nil
	case constants.ConnectionRoleTarget:
		return targetFile, nil
	}
	return "", fmt.Errorf("unknown connection %q: use %v or %v", role, constants.ConnectionRoleSource, constants.ConnectionRoleTarget)
}

// openRole loads the database config for role and connects to it.
func openRole(ctx context.Context, log logger.Logger, role string, fileName string, probeOut io.Writer) (shared.Connector, *config.DatabaseConfig, error) {
	c, err := config.LoadDatabaseConfig(fileName, role)
	if err != nil {
		return nil, nil, err
	}
	log.Debug(role, " database config: ", c)
	db, err := openDbConnection(ctx, log, c.ConnectionDetails(role), probeOut)
	if err != nil {
		return nil, nil, err
	}
	return db, c, nil
}
