package shared

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/relloyd/biopipe/constants"
)

// Dialect holds the SQL snippets that differ between supported database types.
type Dialect struct {
	Type          string
	BigIntType    string
	TimestampType string
	VarcharType   string // format string expecting the max length.
	bindVarFmt    string // format string expecting the 1-based position of the bind.
	dateFmt       string // format string expecting an expression.
	dateTimeFmt   string // format string expecting an expression.
	quoteFn       func(string) string
	dropFn        func(schemaTable string) string
}

var dialects = map[string]*Dialect{
	constants.ConnectionTypeSqlServer: {
		Type:          constants.ConnectionTypeSqlServer,
		BigIntType:    "bigint",
		TimestampType: "datetime2",
		VarcharType:   "nvarchar(%d)",
		bindVarFmt:    "@p%d",
		dateFmt:       "CONVERT(date, %s)",
		dateTimeFmt:   "CONVERT(datetime, %s)",
		quoteFn:       quoteSqlServerIdentifier,
		dropFn: func(schemaTable string) string {
			return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s",
				strings.ReplaceAll(schemaTable, "'", "''"), schemaTable)
		},
	},
	constants.ConnectionTypePostgres: {
		Type:          constants.ConnectionTypePostgres,
		BigIntType:    "bigint",
		TimestampType: "timestamp",
		VarcharType:   "varchar(%d)",
		bindVarFmt:    "$%d",
		dateFmt:       "CAST(%s AS date)",
		dateTimeFmt:   "CAST(%s AS timestamp)",
		quoteFn:       pq.QuoteIdentifier,
		dropFn: func(schemaTable string) string {
			return fmt.Sprintf("DROP TABLE IF EXISTS %s", schemaTable)
		},
	},
}

// GetDialect returns the Dialect for the database type t.
func GetDialect(t string) (*Dialect, error) {
	d, ok := dialects[t]
	if !ok {
		return nil, fmt.Errorf("unsupported database type %q: no SQL dialect available", t)
	}
	return d, nil
}

// MustGetDialect is GetDialect that panics on an unsupported database type.
func MustGetDialect(t string) *Dialect {
	d, err := GetDialect(t)
	if err != nil {
		panic(err)
	}
	return d
}

// BindVar returns the bind variable placeholder for 1-based position n.
func (d *Dialect) BindVar(n int) string {
	return fmt.Sprintf(d.bindVarFmt, n)
}

// DateSql wraps expr so that it is converted to a date.
func (d *Dialect) DateSql(expr string) string {
	return fmt.Sprintf(d.dateFmt, expr)
}

// DateTimeSql wraps expr so that it is converted to a date-time.
func (d *Dialect) DateTimeSql(expr string) string {
	return fmt.Sprintf(d.dateTimeFmt, expr)
}

// Varchar returns the variable length character type of size n.
func (d *Dialect) Varchar(n int) string {
	return fmt.Sprintf(d.VarcharType, n)
}

// QuoteIdentifier quotes a single column or table name.
func (d *Dialect) QuoteIdentifier(name string) string {
	return d.quoteFn(name)
}

// DropTableIfExistsSql returns a statement that drops schemaTable without failing when it is missing.
func (d *Dialect) DropTableIfExistsSql(schemaTable string) string {
	return d.dropFn(schemaTable)
}

func quoteSqlServerIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
