package shared

import (
	"context"
	"errors"
	"sync"
)

// MockConnection implements Connector and records every statement executed through it or its
// transactions so tests can assert on generated SQL.
type MockConnection struct {
	DbType       string
	RowsAffected int64 // returned by every Exec.
	ExecErr      error // returned by every Exec when set.
	mu           sync.Mutex
	Statements   []MockStatement
	Commits      int
	Rollbacks    int
}

// MockStatement is a single recorded execution.
type MockStatement struct {
	Sql  string
	Args []interface{}
}

func NewMockConnection(dbType string) *MockConnection {
	return &MockConnection{DbType: dbType}
}

func (c *MockConnection) record(query string, args []interface{}) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statements = append(c.Statements, MockStatement{Sql: query, Args: args})
	if c.ExecErr != nil {
		return nil, c.ExecErr
	}
	return mockResult{rows: c.RowsAffected}, nil
}

// GetStatements returns the SQL text of all recorded statements in execution order.
func (c *MockConnection) GetStatements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := make([]string, len(c.Statements))
	for i, v := range c.Statements {
		s[i] = v.Sql
	}
	return s
}

func (c *MockConnection) Begin() (Transacter, error) {
	return &MockTx{conn: c}, nil
}

func (c *MockConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return c.record(query, args)
}

func (c *MockConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*HpRows, error) {
	return nil, errors.New("query is not supported by MockConnection")
}

func (c *MockConnection) Raw(ctx context.Context, fn func(driverConn interface{}) error) error {
	return fn(c)
}

func (c *MockConnection) Close() {}

func (c *MockConnection) GetType() string {
	return c.DbType
}

func (c *MockConnection) GetDialect() *Dialect {
	return MustGetDialect(c.DbType)
}

// MockTx records statements against its parent MockConnection.
type MockTx struct {
	conn *MockConnection
}

func (t *MockTx) PrepareContext(ctx context.Context, query string) (Statement, error) {
	return &MockStmt{conn: t.conn, query: query}, nil
}

func (t *MockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return t.conn.record(query, args)
}

func (t *MockTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.Commits++
	return nil
}

func (t *MockTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.Rollbacks++
	return nil
}

// MockStmt records one execution per ExecContext call using the prepared SQL.
type MockStmt struct {
	conn  *MockConnection
	query string
}

func (s *MockStmt) ExecContext(ctx context.Context, args ...interface{}) (Result, error) {
	return s.conn.record(s.query, args)
}

func (s *MockStmt) Close() error {
	return nil
}

type mockResult struct {
	rows int64
}

func (r mockResult) LastInsertId() (int64, error) {
	return 0, errors.New("LastInsertId is not supported")
}

func (r mockResult) RowsAffected() (int64, error) {
	return r.rows, nil
}
