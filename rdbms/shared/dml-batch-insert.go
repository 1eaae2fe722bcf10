package shared

import (
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/logger"
)

// SqlStatementGeneratorConfig describes the target of generated DML.
type SqlStatementGeneratorConfig struct {
	Log               logger.Logger
	Dialect           *Dialect
	OutputSchemaTable string         // [<schema>.]<table>
	TargetCols        *om.OrderedMap // ordered map of: key = record field name; value = target table column name
}

// SqlInsertTxtBatch implements interface SqlStmtTxtBatcher.
// It is able to generate multi-row INSERT statements using the bind variable style of the configured Dialect.
type SqlInsertTxtBatch struct {
	SqlStatementGeneratorConfig
	ColList         []string      // list of target columns extracted from TargetCols.
	FieldList       []string      // list of record fields extracted from TargetCols.
	sqlStmtTemplate string        // INSERT with <VALUES> still to be generated.
	sqlStmt         string        // cached statement for sqlStmtRows rows.
	sqlStmtRows     int           // number of rows the cached statement was generated for.
	sqlValues       []interface{} // slice to hold data values for all rows in batch
	batchSize       int
	rowsInBatch     int
}

// NewInsertTxtBatch creates a new SqlInsertTxtBatch.
func NewInsertTxtBatch(cfg *SqlStatementGeneratorConfig) (*SqlInsertTxtBatch, error) {
	if cfg.OutputSchemaTable == "" {
		return nil, errors.New("missing output table name")
	}
	if cfg.Dialect == nil {
		return nil, errors.New("missing SQL dialect")
	}
	if cfg.TargetCols == nil || cfg.TargetCols.Len() == 0 {
		return nil, errors.New("missing target columns")
	}
	o := &SqlInsertTxtBatch{SqlStatementGeneratorConfig: *cfg}
	iter := o.TargetCols.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		o.FieldList = append(o.FieldList, fmt.Sprint(kv.Key))
		o.ColList = append(o.ColList, o.Dialect.QuoteIdentifier(fmt.Sprint(kv.Value)))
	}
	o.sqlStmtTemplate = fmt.Sprintf("insert into %v (%v) values <VALUES>", o.OutputSchemaTable, strings.Join(o.ColList, ","))
	o.Log.Debug("setup INSERT generator with SQL (VALUES pending): ", o.sqlStmtTemplate)
	return o, nil
}

func (o *SqlInsertTxtBatch) InitBatch(batchSize int) {
	o.batchSize = batchSize
	o.rowsInBatch = 0
	o.sqlValues = make([]interface{}, 0, o.batchSize*len(o.ColList)) // many values per row in a batch.
}

func (o *SqlInsertTxtBatch) AddValuesToBatch(values []interface{}) (batchIsFull bool, err error) {
	if o.rowsInBatch >= o.batchSize {
		return true, errors.New("no more rows allowed in INSERT batch")
	}
	if len(values) != len(o.ColList) {
		return false, errors.New("the number of values supplied does not match the number of table columns")
	}
	o.sqlValues = append(o.sqlValues, values...)
	o.rowsInBatch++
	return o.rowsInBatch >= o.batchSize, nil
}

func (o *SqlInsertTxtBatch) GetValues() []interface{} {
	return o.sqlValues
}

func (o *SqlInsertTxtBatch) GetRowCount() int {
	return o.rowsInBatch
}

// GetStatement returns the INSERT for the number of rows currently in the batch.
// The statement is cached so full batches of the same size reuse it.
func (o *SqlInsertTxtBatch) GetStatement() string {
	if o.sqlStmt != "" && o.sqlStmtRows == o.rowsInBatch {
		return o.sqlStmt
	}
	allRows := make([]string, 0, o.rowsInBatch)
	valIdx := 1
	for rowIdx := 0; rowIdx < o.rowsInBatch; rowIdx++ {
		row := make([]string, len(o.ColList))
		for idy := range o.ColList {
			row[idy] = o.Dialect.BindVar(valIdx)
			valIdx++
		}
		allRows = append(allRows, fmt.Sprintf("(%v)", strings.Join(row, ",")))
	}
	o.sqlStmt = strings.Replace(o.sqlStmtTemplate, "<VALUES>", strings.Join(allRows, ","), 1)
	o.sqlStmtRows = o.rowsInBatch
	o.Log.Trace("SQL batch INSERT generated statement: ", o.sqlStmt)
	return o.sqlStmt
}
