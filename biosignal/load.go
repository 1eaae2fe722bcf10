package biosignal

import (
	"context"
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms"
	"github.com/relloyd/biopipe/rdbms/shared"
)

// StagingColumns are the columns of the staging table in load order.
var StagingColumns = []string{"patient_id", "starttime", "endtime", "wavetype", "filepath", "concept_id"}

// observationColumns are written by the observation insert, paired with the select expression for each.
// An empty expression marks the generated key. The markers date and datetime convert m.starttime
// using the dialect.
var observationColumns = [][2]string{
	{"observation_id", ""}, // generated.
	{"person_id", "m.patient_id"},
	{"observation_concept_id", "m.concept_id"},
	{"observation_date", "date"},
	{"observation_datetime", "datetime"},
	{"observation_type_concept_id", fmt.Sprint(constants.ObservationTypeConceptId)},
	{"value_as_number", "0"},
	{"value_as_string", "'0'"},
	{"value_as_concept_id", "0"},
	{"qualifier_concept_id", "NULL"},
	{"unit_concept_id", "NULL"},
	{"provider_id", "NULL"},
	{"visit_occurrence_id", "NULL"},
	{"visit_detail_id", "NULL"},
	{"observation_source_value", "m.wavetype"},
	{"observation_source_concept_id", "NULL"},
	{"unit_source_value", "NULL"},
	{"qualifier_source_value", "NULL"},
}

// StagingTableColumns returns the ordered column definitions of the staging table for dialect d.
func StagingTableColumns(d *shared.Dialect) *om.OrderedMap {
	cols := om.NewOrderedMap()
	cols.Set("patient_id", d.BigIntType)
	cols.Set("starttime", d.TimestampType)
	cols.Set("endtime", d.TimestampType)
	cols.Set("wavetype", d.Varchar(64))
	cols.Set("filepath", d.Varchar(1024))
	cols.Set("concept_id", d.BigIntType)
	return cols
}

// StagingRows converts records to rows of driver values in StagingColumns order.
// Null values are plain nils.
func StagingRows(records []TransformedRecord) [][]interface{} {
	rows := make([][]interface{}, len(records))
	for idx, r := range records {
		row := make([]interface{}, len(StagingColumns))
		if r.PersonID.Valid {
			row[0] = r.PersonID.Int64
		}
		if r.StartTime.Valid {
			row[1] = r.StartTime.Time
		}
		if r.EndTime.Valid {
			row[2] = r.EndTime.Time
		}
		row[3] = r.WaveType
		row[4] = r.FilePath
		row[5] = r.ConceptID
		rows[idx] = row
	}
	return rows
}

// InsertObservationsSql returns the statement that appends staged rows with a known person to the
// observation table. observation_id continues from the current maximum, ordered by person.
func InsertObservationsSql(d *shared.Dialect, staging rdbms.SchemaTable, observation rdbms.SchemaTable) string {
	cols := make([]string, len(observationColumns))
	exprs := make([]string, len(observationColumns))
	for idx, c := range observationColumns {
		cols[idx] = c[0]
		var e string
		switch c[1] {
		case "":
			e = fmt.Sprintf("(SELECT COALESCE(MAX(observation_id), 0) FROM %v) + ROW_NUMBER() OVER (ORDER BY m.patient_id)", observation.String())
		case "date":
			e = d.DateSql("m.starttime")
		case "datetime":
			e = d.DateTimeSql("m.starttime")
		default:
			e = c[1]
		}
		exprs[idx] = fmt.Sprintf("%v AS %v", e, c[0])
	}
	return fmt.Sprintf("INSERT INTO %v (%v) SELECT %v FROM %v m WHERE m.patient_id IS NOT NULL",
		observation.String(),
		strings.Join(cols, ", "),
		strings.Join(exprs, ", "),
		staging.String())
}

// Loader writes transformed records to the CDM database.
type Loader struct {
	Log         logger.Logger
	DB          shared.Connector
	Staging     rdbms.SchemaTable
	Observation rdbms.SchemaTable
	BulkMode    string
	BatchSize   int
}

// StageSql returns the DDL that replaces the staging table.
func (l *Loader) StageSql() []string {
	return rdbms.ReplaceTableSql(l.DB.GetDialect(), l.Staging, StagingTableColumns(l.DB.GetDialect()))
}

// Stage replaces the staging table with records and returns the number of rows loaded.
func (l *Loader) Stage(ctx context.Context, records []TransformedRecord) (int64, error) {
	d := l.DB.GetDialect()
	if err := rdbms.ReplaceTable(ctx, l.Log, l.DB, l.Staging, StagingTableColumns(d)); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		l.Log.Warn("no records to stage into ", l.Staging.String())
		return 0, nil
	}
	bl, err := rdbms.NewBulkLoader(l.Log, l.DB, l.BulkMode, l.BatchSize)
	if err != nil {
		return 0, err
	}
	n, err := bl.Load(ctx, l.Staging, StagingColumns, StagingRows(records))
	if err != nil {
		return 0, errors.Wrap(err, "error loading staging table")
	}
	l.Log.Info("Staged ", n, " rows into ", l.Staging.String())
	return n, nil
}

// InsertObservations runs the observation insert and returns the number of rows inserted.
func (l *Loader) InsertObservations(ctx context.Context) (int64, error) {
	stmt := InsertObservationsSql(l.DB.GetDialect(), l.Staging, l.Observation)
	l.Log.Debug("executing observation insert: ", stmt)
	res, err := l.DB.ExecContext(ctx, stmt)
	if err != nil {
		return 0, errors.Wrapf(err, "error inserting into %v", l.Observation.String())
	}
	n, err := res.RowsAffected()
	if err != nil {
		l.Log.Warn("unable to fetch rows affected: ", err)
		return 0, nil
	}
	l.Log.Info("Inserted ", n, " rows into ", l.Observation.String())
	return n, nil
}
