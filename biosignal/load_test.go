package biosignal

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms"
	"github.com/relloyd/biopipe/rdbms/shared"
)

func testRecords() []TransformedRecord {
	ts := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)
	return []TransformedRecord{
		{
			PersonID:  sql.NullInt64{Int64: 100, Valid: true},
			StartTime: sql.NullTime{Time: ts, Valid: true},
			EndTime:   sql.NullTime{Time: ts.Add(time.Hour), Valid: true},
			WaveType:  "ECGII",
			FilePath:  "f1",
			ConceptID: 4168140,
		},
		{
			WaveType:  "CVP",
			FilePath:  "f2",
			ConceptID: 4313586,
		},
	}
}

func TestStagingRows(t *testing.T) {
	rows := StagingRows(testRecords())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows; got %v", len(rows))
	}
	if rows[0][0] != int64(100) || rows[0][3] != "ECGII" || rows[0][5] != int64(4168140) {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1][0] != nil || rows[1][1] != nil || rows[1][2] != nil {
		t.Fatalf("expected nulls in second row; got %v", rows[1])
	}
	if len(rows[1]) != len(StagingColumns) {
		t.Fatalf("expected %v values; got %v", len(StagingColumns), len(rows[1]))
	}
}

func TestInsertObservationsSql(t *testing.T) {
	staging := rdbms.NewSchemaTable("cdm.dbo", "biosignal_meta")
	observation := rdbms.NewSchemaTable("cdm.dbo", "observation")
	got := InsertObservationsSql(shared.MustGetDialect(constants.ConnectionTypeSqlServer), staging, observation)
	checks := []string{
		"INSERT INTO cdm.dbo.observation (observation_id, person_id, observation_concept_id, observation_date, " +
			"observation_datetime, observation_type_concept_id, value_as_number, value_as_string, value_as_concept_id, " +
			"qualifier_concept_id, unit_concept_id, provider_id, visit_occurrence_id, visit_detail_id, " +
			"observation_source_value, observation_source_concept_id, unit_source_value, qualifier_source_value)",
		"(SELECT COALESCE(MAX(observation_id), 0) FROM cdm.dbo.observation) + ROW_NUMBER() OVER (ORDER BY m.patient_id) AS observation_id",
		"m.patient_id AS person_id",
		"m.concept_id AS observation_concept_id",
		"CONVERT(date, m.starttime) AS observation_date",
		"CONVERT(datetime, m.starttime) AS observation_datetime",
		"5001 AS observation_type_concept_id",
		"'0' AS value_as_string",
		"m.wavetype AS observation_source_value",
		"NULL AS qualifier_source_value",
		"FROM cdm.dbo.biosignal_meta m WHERE m.patient_id IS NOT NULL",
	}
	for _, c := range checks {
		if !strings.Contains(got, c) {
			t.Fatalf("expected SQL to contain %q; got %q", c, got)
		}
	}
	got = InsertObservationsSql(shared.MustGetDialect(constants.ConnectionTypePostgres),
		rdbms.NewSchemaTable("cdm", "biosignal_meta"), rdbms.NewSchemaTable("cdm", "observation"))
	if !strings.Contains(got, "CAST(m.starttime AS date) AS observation_date") {
		t.Fatalf("expected postgres date conversion; got %q", got)
	}
}

func TestLoader(t *testing.T) {
	log := logger.NewLogger("biopipe", "error", false)
	db := shared.NewMockConnection(constants.ConnectionTypePostgres)
	db.RowsAffected = 1
	l := &Loader{
		Log:         log,
		DB:          db,
		Staging:     rdbms.NewSchemaTable("cdm", "biosignal_meta"),
		Observation: rdbms.NewSchemaTable("cdm", "observation"),
		BulkMode:    constants.BulkModeBatch,
		BatchSize:   500,
	}
	n, err := l.Stage(context.Background(), testRecords())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 { // one batch statement from the mock.
		t.Fatalf("expected 1; got %v", n)
	}
	stmts := db.GetStatements()
	if len(stmts) != 3 {
		t.Fatalf("expected drop, create and insert; got %v", stmts)
	}
	if stmts[0] != "DROP TABLE IF EXISTS cdm.biosignal_meta" {
		t.Fatalf("unexpected drop %q", stmts[0])
	}
	if !strings.HasPrefix(stmts[1], `CREATE TABLE cdm.biosignal_meta ("patient_id" bigint, "starttime" timestamp`) {
		t.Fatalf("unexpected create %q", stmts[1])
	}
	if len(db.Statements[2].Args) != 2*len(StagingColumns) {
		t.Fatalf("expected %v args; got %v", 2*len(StagingColumns), len(db.Statements[2].Args))
	}
	db.RowsAffected = 1
	n, err = l.InsertObservations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row inserted; got %v", n)
	}
	if !strings.HasPrefix(db.GetStatements()[3], "INSERT INTO cdm.observation") {
		t.Fatalf("unexpected insert %q", db.GetStatements()[3])
	}
	if len(l.StageSql()) != 2 {
		t.Fatal("expected drop and create DDL")
	}
}

func TestLoaderStageNoRecords(t *testing.T) {
	log := logger.NewLogger("biopipe", "error", false)
	db := shared.NewMockConnection(constants.ConnectionTypeSqlServer)
	l := &Loader{Log: log, DB: db, Staging: rdbms.NewSchemaTable("dbo", "biosignal_meta"), BulkMode: constants.BulkModeCopy}
	n, err := l.Stage(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(db.GetStatements()) != 2 {
		t.Fatalf("expected only DDL; got %v rows and %v", n, db.GetStatements())
	}
}
