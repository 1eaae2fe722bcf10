package rdbms

import (
	"context"
	"fmt"

	om "github.com/cevaris/ordered_map"
	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms/shared"
)

// BulkLoader appends rows to an existing table.
// Each row holds one value per column in cols, in the same order.
type BulkLoader interface {
	Load(ctx context.Context, tbl SchemaTable, cols []string, rows [][]interface{}) (int64, error)
}

// NewBulkLoader returns the BulkLoader for the connection type and mode.
// Mode copy uses the native bulk protocol of the database.
// Mode batch uses multi-row INSERT statements of batchSize rows.
func NewBulkLoader(log logger.Logger, db shared.Connector, mode string, batchSize int) (BulkLoader, error) {
	switch mode {
	case constants.BulkModeBatch:
		if batchSize < 1 {
			return nil, fmt.Errorf("invalid batch size %v: must be greater than zero", batchSize)
		}
		return &batchInsertLoader{log: log, db: db, batchSize: batchSize}, nil
	case constants.BulkModeCopy, "":
		switch db.GetType() {
		case constants.ConnectionTypeSqlServer:
			return &mssqlCopyLoader{log: log, db: db}, nil
		case constants.ConnectionTypePostgres:
			return &pgCopyLoader{log: log, db: db}, nil
		default:
			return nil, UnsupportedDriverError{Driver: db.GetType()}
		}
	default:
		return nil, fmt.Errorf("unsupported bulk mode %q: use %v or %v", mode, constants.BulkModeCopy, constants.BulkModeBatch)
	}
}

// mssqlCopyLoader uses the SQL Server bulk copy protocol inside a transaction.
type mssqlCopyLoader struct {
	log logger.Logger
	db  shared.Connector
}

func (l *mssqlCopyLoader) Load(ctx context.Context, tbl SchemaTable, cols []string, rows [][]interface{}) (rowCount int64, err error) {
	tx, err := l.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "error starting bulk copy transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(tbl.String(), mssql.BulkOptions{}, cols...))
	if err != nil {
		return 0, errors.Wrapf(err, "error preparing bulk copy into %v", tbl.String())
	}
	for idx, r := range rows {
		if _, err = stmt.ExecContext(ctx, r...); err != nil {
			_ = stmt.Close()
			return 0, errors.Wrapf(err, "error adding row %v to bulk copy", idx+1)
		}
	}
	res, err := stmt.ExecContext(ctx) // flush the buffered rows.
	if err != nil {
		_ = stmt.Close()
		return 0, errors.Wrapf(err, "error flushing bulk copy into %v", tbl.String())
	}
	if err = stmt.Close(); err != nil {
		return 0, errors.Wrap(err, "error closing bulk copy")
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "error committing bulk copy")
	}
	rowCount, _ = res.RowsAffected()
	l.log.Debug("bulk copied ", rowCount, " rows into ", tbl.String())
	return rowCount, nil
}

// pgCopyLoader uses the PostgreSQL COPY protocol via the pgx connection behind database/sql.
type pgCopyLoader struct {
	log logger.Logger
	db  shared.Connector
}

func (l *pgCopyLoader) Load(ctx context.Context, tbl SchemaTable, cols []string, rows [][]interface{}) (int64, error) {
	var rowCount int64
	err := l.db.Raw(ctx, func(driverConn interface{}) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T: COPY requires pgx", driverConn)
		}
		var err error
		rowCount, err = c.Conn().CopyFrom(ctx, pgx.Identifier(tbl.FoldedParts()), cols, pgx.CopyFromRows(rows))
		return err
	})
	if err != nil {
		return 0, errors.Wrapf(err, "error copying rows into %v", tbl.String())
	}
	l.log.Debug("copied ", rowCount, " rows into ", tbl.String())
	return rowCount, nil
}

// batchInsertLoader executes multi-row INSERT statements inside a single transaction.
type batchInsertLoader struct {
	log       logger.Logger
	db        shared.Connector
	batchSize int
}

func (l *batchInsertLoader) Load(ctx context.Context, tbl SchemaTable, cols []string, rows [][]interface{}) (rowCount int64, err error) {
	targetCols := om.NewOrderedMap()
	for _, c := range cols {
		targetCols.Set(c, c)
	}
	gen, err := shared.NewInsertTxtBatch(&shared.SqlStatementGeneratorConfig{
		Log:               l.log,
		Dialect:           l.db.GetDialect(),
		OutputSchemaTable: tbl.String(),
		TargetCols:        targetCols,
	})
	if err != nil {
		return 0, err
	}
	tx, err := l.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "error starting batch insert transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	flush := func() error {
		res, err := tx.ExecContext(ctx, gen.GetStatement(), gen.GetValues()...)
		if err != nil {
			return errors.Wrapf(err, "error executing batch insert into %v", tbl.String())
		}
		n, _ := res.RowsAffected()
		rowCount += n
		return nil
	}
	gen.InitBatch(l.batchSize)
	for _, r := range rows {
		batchIsFull, err := gen.AddValuesToBatch(r)
		if err != nil {
			return 0, err
		}
		if batchIsFull {
			if err = flush(); err != nil {
				return 0, err
			}
			gen.InitBatch(l.batchSize)
		}
	}
	if gen.GetRowCount() > 0 { // if there is a partial batch...
		if err = flush(); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "error committing batch insert")
	}
	l.log.Debug("batch inserted ", rowCount, " rows into ", tbl.String())
	return rowCount, nil
}
