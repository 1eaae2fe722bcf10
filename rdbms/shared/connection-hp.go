package shared

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
)

// HpConnection is a wrapper around the Go native sql.DB.
// It adds the database type so that callers can pick the matching SQL Dialect.
type HpConnection struct {
	DbSql  *sql.DB
	DbType string
}

// Connector:

func (c *HpConnection) Begin() (Transacter, error) {
	if c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: DbSql is missing")
	}
	tx, err := c.DbSql.Begin()
	return &HpTx{txSql: tx}, err
}

func (c *HpConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *HpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error) {
	r, err := c.DbSql.QueryContext(ctx, query, args...)
	return &HpRows{rowsSql: r}, err
}

func (c *HpConnection) Raw(ctx context.Context, fn func(driverConn interface{}) error) error {
	conn, err := c.DbSql.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()
	return conn.Raw(func(driverConn interface{}) error {
		return fn(driverConn)
	})
}

func (c *HpConnection) Close() {
	if c.DbSql != nil {
		_ = c.DbSql.Close()
	}
}

func (c *HpConnection) GetType() string {
	return c.DbType
}

func (c *HpConnection) GetDialect() *Dialect {
	return MustGetDialect(c.DbType)
}

// Transacter:

type HpTx struct {
	txSql *sql.Tx
}

func (t *HpTx) PrepareContext(ctx context.Context, query string) (Statement, error) {
	s, err := t.txSql.PrepareContext(ctx, query)
	return &HpStmt{stmtSql: s}, err
}

func (t *HpTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.txSql.ExecContext(ctx, query, args...)
}

func (t *HpTx) Commit() error {
	return t.txSql.Commit()
}

func (t *HpTx) Rollback() error {
	return t.txSql.Rollback()
}

// Statement:

type HpStmt struct {
	stmtSql *sql.Stmt
}

func (s *HpStmt) Close() error {
	return s.stmtSql.Close()
}

func (s *HpStmt) ExecContext(ctx context.Context, args ...interface{}) (Result, error) {
	return s.stmtSql.ExecContext(ctx, args...)
}

// Rows:

type HpRows struct {
	rowsSql *sql.Rows
}

func (r *HpRows) Close() error {
	return r.rowsSql.Close()
}

func (r *HpRows) ColumnTypes() ([]*HpColumnType, error) {
	c, err := r.rowsSql.ColumnTypes()    // get the specific column types.
	x := make([]*HpColumnType, len(c)) // make a generic slice of *HpColumnType.
	for i, v := range c {
		x[i] = &HpColumnType{colTypeSql: v}
	}
	return x, err
}

func (r *HpRows) Err() error {
	return r.rowsSql.Err()
}

func (r *HpRows) Next() bool {
	return r.rowsSql.Next()
}

func (r *HpRows) Scan(dest ...interface{}) error {
	return r.rowsSql.Scan(dest...)
}

// ColumnType:

type HpColumnType struct {
	colTypeSql *sql.ColumnType
}

func (c *HpColumnType) Name() string {
	return c.colTypeSql.Name()
}

func (c *HpColumnType) ScanType() reflect.Type {
	return c.colTypeSql.ScanType()
}
