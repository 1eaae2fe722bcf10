package actions

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/relloyd/biopipe/helper"
	"github.com/relloyd/biopipe/rdbms"
)

type QueryConfig struct {
	Connection       string `errorTxt:"<source|target>" mandatory:"yes"`
	SourceConfigFile string `errorTxt:"source-config" mandatory:"yes"`
	TargetConfigFile string `errorTxt:"target-config" mandatory:"yes"`
	Query            string `errorTxt:"<SQL>" mandatory:"yes"`
	PrintHeader      bool
	DryRun           bool
	LogLevel         string `errorTxt:"log-level" mandatory:"yes"`
	StackDumpOnPanic bool
	Out              io.Writer // query results; defaults to stdout.
}

type sqlHandler struct {
	printHeader bool
	w           *csv.Writer
}

func (s *sqlHandler) HandleHeader(i []interface{}) error {
	if s.printHeader {
		if err := s.w.Write(helper.InterfaceToString(i)); err != nil {
			return fmt.Errorf("error outputting SQL header: %v", err)
		}
		s.w.Flush()
	}
	return nil
}

func (s *sqlHandler) HandleRow(i []interface{}) error {
	if err := s.w.Write(helper.InterfaceToString(i)); err != nil {
		return fmt.Errorf("error outputting SQL row: %v", err)
	}
	s.w.Flush()
	return s.w.Error()
}

// RunQuery executes cfg.Query against the source or target database and prints the results as CSV.
func RunQuery(cfg *QueryConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	out := outputOrStdout(cfg.Out)
	if cfg.DryRun {
		fmt.Fprintln(out, cfg.Query)
		return nil
	}
	fileName, err := roleConfigFile(cfg.Connection, cfg.SourceConfigFile, cfg.TargetConfigFile)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	ctx, cancel := interruptContext()
	defer cancel()
	db, _, err := openRole(ctx, log, cfg.Connection, fileName, io.Discard)
	if err != nil {
		return err
	}
	defer db.Close()
	h := sqlHandler{printHeader: cfg.PrintHeader, w: csv.NewWriter(out)}
	chanSql := make(chan error, 1)
	// Start the SQL.
	go func() {
		chanSql <- rdbms.SqlQuery(ctx, log, db, cfg.Query, &h)
	}()
	// Wait for SQL or interrupt.
	select {
	case <-ctx.Done(): // if we were interrupted...
		fmt.Fprintln(out, "\nUser abort. Stopping SQL execution...")
		select {
		case <-time.After(5 * time.Second):
			fmt.Fprintln(out, "Timeout waiting for SQL to end - aborted")
		case <-chanSql:
		}
		return nil
	case err = <-chanSql:
	}
	return err
}
