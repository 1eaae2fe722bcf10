package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms/shared"
)

// sqlDriverNames maps connection types to the database/sql driver registered for them.
var sqlDriverNames = map[string]string{
	constants.ConnectionTypeSqlServer: "sqlserver",
	constants.ConnectionTypePostgres:  "pgx",
}

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
// Once connected it runs the liveness probe and writes each result row to probeOut.
func OpenDbConnection(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, probeOut io.Writer) (shared.Connector, error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	driverName, ok := sqlDriverNames[c.Type]
	if !ok {
		return nil, UnsupportedDriverError{Driver: c.Type}
	}
	d := shared.GetDsnConnectionDetails(&c)
	u, err := d.Parse()
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %v connection", c.LogicalName)
	}
	log.Info("Opening database connection: ", d)
	conn := &shared.HpConnection{DbType: c.Type}
	conn.DbSql, err = sql.Open(driverName, u.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %v connection", c.LogicalName)
	}
	// Test the connection.
	if err = conn.DbSql.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "error connecting to %v database", c.LogicalName)
	}
	if err = Probe(ctx, log, conn, probeOut); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("Successful connection to: ", d)
	return conn, nil
}

// Probe runs a trivial round-trip query and writes the result column of each row to w.
func Probe(ctx context.Context, log logger.Logger, db shared.Connector, w io.Writer) error {
	h := &probeHandler{w: w}
	if err := SqlQuery(ctx, log, db, constants.ConnectionProbeSql, h); err != nil {
		return errors.Wrap(err, "connection probe failed")
	}
	if h.rows == 0 {
		return errors.New("connection probe returned no rows")
	}
	return nil
}

type probeHandler struct {
	w    io.Writer
	rows int
}

func (p *probeHandler) HandleHeader(i []interface{}) error {
	return nil
}

func (p *probeHandler) HandleRow(i []interface{}) error {
	p.rows++
	if len(i) == 0 {
		return nil
	}
	v := i[0]
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	_, err := fmt.Fprintln(p.w, v)
	return err
}
