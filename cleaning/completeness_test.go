package cleaning

import (
	"testing"
	"time"

	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/stats"
	"github.com/relloyd/biopipe/stream"
)

func TestWindow(t *testing.T) {
	now := time.Date(2022, 2, 10, 12, 0, 0, 0, time.FixedZone("x", 3600))
	start, end := Window(now)
	if !end.Equal(time.Date(2022, 2, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected the wall clock of now, got %v", end)
	}
	if !start.Equal(time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window start %v", start)
	}
}

func measurementRows(now time.Time) []stream.Record {
	f := func(t time.Time) string { return t.Format("2006-01-02 15:04:05") }
	return []stream.Record{
		newRecord(map[string]interface{}{"PERSON_ID": "1", "measurement_concept_id": "3025315", "measurement_datetime": f(now.AddDate(0, 0, -1)), "value_as_number": "70.5"}),
		newRecord(map[string]interface{}{"PERSON_ID": nil, "measurement_concept_id": "3025315", "measurement_datetime": f(now.AddDate(0, 0, -1)), "value_as_number": "70.5"}),
		newRecord(map[string]interface{}{"PERSON_ID": "3", "measurement_concept_id": "3025315", "measurement_datetime": f(now.AddDate(0, 0, -50)), "value_as_number": "70.5"}),
		newRecord(map[string]interface{}{"PERSON_ID": "4", "measurement_concept_id": "0", "measurement_datetime": f(now.AddDate(0, 0, -2)), "value_as_number": "70.5"}),
		newRecord(map[string]interface{}{"PERSON_ID": "5", "measurement_concept_id": "3025315", "measurement_datetime": "garbage", "value_as_number": "70.5"}),
		newRecord(map[string]interface{}{"PERSON_ID": "6", "measurement_concept_id": "3025315", "measurement_datetime": f(now.AddDate(0, 0, -3)), "value_as_number": "-1"}),
	}
}

func TestAutoProcessingTrailingWindow(t *testing.T) {
	log := logger.NewLogger("test", "error", false)
	s, err := ParseSchema([]byte(testSchemaYaml))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2022, 2, 10, 12, 0, 0, 0, time.UTC)
	step := stats.NewManager(log).AddStep("clean")
	out, report, err := AutoProcessing(log, measurementRows(now), s, "measurement", false, now, step)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].GetData("person_id") != int64(1) {
		t.Fatalf("expected only person 1 to survive, got %v rows", len(out))
	}
	st := step.Render()
	expected := map[string]int64{
		constants.RejectReasonMissingRequiredField: 1,
		constants.RejectReasonOutsideTimeWindow:    2,
		constants.RejectReasonUnclassifiedConcept:  1,
		constants.RejectReasonRule:                 1,
	}
	for reason, n := range expected {
		if got := st.DroppedRows(reason); got != n {
			t.Fatalf("expected %v rows dropped for %v, got %v", n, reason, got)
		}
	}
	if report.FailedValues[TypeDatetime] != 1 {
		t.Fatalf("expected one datetime failure, got %v", report.FailedValues)
	}
}

func TestAutoProcessingFullTime(t *testing.T) {
	log := logger.NewLogger("test", "error", false)
	s, err := ParseSchema([]byte(testSchemaYaml))
	if err != nil {
		t.Fatal(err)
	}
	delete(s.Rules, "measurement")
	now := time.Date(2022, 2, 10, 12, 0, 0, 0, time.UTC)
	out, _, err := AutoProcessing(log, measurementRows(now), s, "measurement", true, now, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Persons 1, 3 and 6 survive: 2 lacks a person, 4 has concept 0 and 5 has no usable time.
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %v", len(out))
	}
}

func TestAutoProcessingKeepsMissingConcept(t *testing.T) {
	log := logger.NewLogger("test", "error", false)
	s, err := ParseSchema([]byte("columnTypes: {d: datetime, c: int}\nrequiredColumns: {m: [d, absent]}\ndomainColumns: {m: {datetime: d, conceptId: c}}"))
	if err != nil {
		t.Fatal(err)
	}
	rows := []stream.Record{newRecord(map[string]interface{}{"d": "2020-01-01", "c": nil})}
	out, _, err := AutoProcessing(log, rows, s, "m", true, time.Now(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected the row with a missing concept to be kept")
	}
}

func TestAutoProcessingMissingDomainColumn(t *testing.T) {
	log := logger.NewLogger("test", "error", false)
	s, err := ParseSchema([]byte("requiredColumns: {m: []}\ndomainColumns: {m: {datetime: d, conceptId: c}}"))
	if err != nil {
		t.Fatal(err)
	}
	rows := []stream.Record{newRecord(map[string]interface{}{"c": "1"})}
	if _, _, err := AutoProcessing(log, rows, s, "m", true, time.Now(), nil); err == nil {
		t.Fatal("expected an error when the datetime column is absent")
	}
	if _, _, err := AutoProcessing(log, rows, s, "unknown", true, time.Now(), nil); err == nil {
		t.Fatal("expected an error for an unknown domain")
	}
}

func TestAutoProcessingZonedTimeKeepsWallClock(t *testing.T) {
	log := logger.NewLogger("test", "error", false)
	s, err := ParseSchema([]byte("columnTypes: {d: datetime, c: int}\nrequiredColumns: {m: [d]}\ndomainColumns: {m: {datetime: d, conceptId: c}}"))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2022, 2, 10, 10, 30, 0, 0, time.UTC)
	rows := []stream.Record{
		newRecord(map[string]interface{}{"d": "2022-02-10T11:00:00+09:00", "c": "1"}), // after now on the wall clock.
		newRecord(map[string]interface{}{"d": "2022-02-10T10:00:00+09:00", "c": "2"}),
	}
	out, _, err := AutoProcessing(log, rows, s, "m", false, now, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].GetData("c") != int64(2) {
		t.Fatalf("expected only the 10:00 row to be inside the window, got %v rows", len(out))
	}
	if got, ok := out[0].GetData("d").(time.Time); !ok || !got.Equal(time.Date(2022, 2, 10, 10, 0, 0, 0, time.UTC)) || got.Location() != time.UTC {
		t.Fatalf("expected the wall clock to be kept, got %v", got)
	}
}

func TestAutoProcessingStrConceptZero(t *testing.T) {
	log := logger.NewLogger("test", "error", false)
	s, err := ParseSchema([]byte("columnTypes: {d: datetime, c: str}\nrequiredColumns: {m: [d]}\ndomainColumns: {m: {datetime: d, conceptId: c}}"))
	if err != nil {
		t.Fatal(err)
	}
	rows := []stream.Record{newRecord(map[string]interface{}{"d": "2020-01-01", "c": "0"})}
	out, _, err := AutoProcessing(log, rows, s, "m", true, time.Now(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatal("expected text \"0\" in a str concept column to be kept")
	}
	s.ColumnTypes["c"] = TypeInt
	rows = []stream.Record{newRecord(map[string]interface{}{"d": "2020-01-01", "c": "0"})}
	if out, _, _ = AutoProcessing(log, rows, s, "m", true, time.Now(), nil); len(out) != 0 {
		t.Fatal("expected concept 0 in an int concept column to be dropped")
	}
}

func TestAutoProcessingLeavesInputSlice(t *testing.T) {
	log := logger.NewLogger("test", "error", false)
	s, err := ParseSchema([]byte(testSchemaYaml))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2022, 2, 10, 12, 0, 0, 0, time.UTC)
	rows := measurementRows(now)
	if _, _, err := AutoProcessing(log, rows, s, "measurement", false, now, nil); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 || rows[1].GetData("person_id") != nil || rows[2].GetData("person_id") != int64(3) {
		t.Fatal("expected the input slice to keep its records in order")
	}
}
