package rdbms

import (
	"context"
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms/shared"
)

// CreateTableSql returns CREATE TABLE for tbl where cols is an ordered map of
// key = column name; value = SQL data type.
func CreateTableSql(d *shared.Dialect, tbl SchemaTable, cols *om.OrderedMap) string {
	defs := make([]string, 0, cols.Len())
	iter := cols.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		defs = append(defs, fmt.Sprintf("%v %v", d.QuoteIdentifier(fmt.Sprint(kv.Key)), kv.Value))
	}
	return fmt.Sprintf("CREATE TABLE %v (%v)", tbl.String(), strings.Join(defs, ", "))
}

// ReplaceTableSql returns the statements that drop tbl when it exists and create it afresh.
func ReplaceTableSql(d *shared.Dialect, tbl SchemaTable, cols *om.OrderedMap) []string {
	return []string{
		d.DropTableIfExistsSql(tbl.String()),
		CreateTableSql(d, tbl, cols),
	}
}

// ReplaceTable drops and recreates tbl so that it is empty with the supplied columns.
func ReplaceTable(ctx context.Context, log logger.Logger, db shared.Connector, tbl SchemaTable, cols *om.OrderedMap) error {
	for _, stmt := range ReplaceTableSql(db.GetDialect(), tbl, cols) {
		log.Debug("executing DDL: ", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "error replacing table %v", tbl.String())
		}
	}
	return nil
}
