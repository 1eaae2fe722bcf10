package cleaning

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

const testSchemaYaml = `
columnTypes:
  Person_ID: int
  measurement_datetime: datetime
  measurement_concept_id: int
  value_as_number: float
  weight: float
  unit: str
requiredColumns:
  measurement: [PERSON_ID, measurement_concept_id, measurement_datetime]
domainColumns:
  measurement:
    datetime: measurement_datetime
    conceptId: measurement_concept_id
rules:
  measurement: {">": [{"var": "value_as_number"}, 0]}
`

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema([]byte(testSchemaYaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ColumnTypes["person_id"] != TypeInt {
		t.Fatalf("expected column types to be lower cased, got %v", s.ColumnTypes)
	}
	if got := s.RequiredColumns["measurement"][0]; got != "person_id" {
		t.Fatalf("expected required columns to be lower cased, got %v", got)
	}
	if got := s.DomainColumns["measurement"].ConceptID; got != "measurement_concept_id" {
		t.Fatalf("unexpected concept column %v", got)
	}
	if err := s.Validate("measurement"); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad type", "columnTypes: {a: blob}\nrequiredColumns: {m: []}\ndomainColumns: {m: {datetime: d, conceptId: c}}"},
		{"missing required", "columnTypes: {a: int}\ndomainColumns: {m: {datetime: d, conceptId: c}}"},
		{"missing domain columns", "columnTypes: {a: int}\nrequiredColumns: {m: []}"},
		{"empty concept column", "requiredColumns: {m: []}\ndomainColumns: {m: {datetime: d}}"},
		{"bad rule", "requiredColumns: {m: []}\ndomainColumns: {m: {datetime: d, conceptId: c}}\nrules: {m: {\"no_such_operator\": [1]}}"},
	}
	for _, c := range cases {
		s, err := ParseSchema([]byte(c.yaml))
		if err != nil {
			t.Fatalf("%v: unexpected parse error: %v", c.name, err)
		}
		if err := s.Validate("m"); err == nil {
			t.Fatalf("%v: expected a validation error", c.name)
		}
	}
}

func TestLoadSchema(t *testing.T) {
	dir, err := ioutil.TempDir("", "cleaning")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	fn := filepath.Join(dir, "schema.yaml")
	if err := ioutil.WriteFile(fn, []byte(testSchemaYaml), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSchema(fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := LoadSchema(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing schema file")
	}
}
