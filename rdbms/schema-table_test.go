package rdbms

import (
	"reflect"
	"testing"
)

func TestSchemaTableFoldedParts(t *testing.T) {
	cases := []struct {
		input string
		parts []string
	}{
		{"table", []string{"table"}},
		{"schema.table", []string{"schema", "table"}},
		{`schema."table"`, []string{"schema", "table"}},
		{`"random.table"`, []string{"random.table"}},
		{`"schema"."table"`, []string{"schema", "table"}},
		{"cdm.dbo.observation", []string{"cdm", "dbo", "observation"}},
		{"CDM.Biosignal_Meta", []string{"cdm", "biosignal_meta"}},
		{`cdm."Biosignal_Meta"`, []string{"cdm", "Biosignal_Meta"}},
	}
	for _, c := range cases {
		st := SchemaTable{SchemaTable: c.input}
		if got := st.FoldedParts(); !reflect.DeepEqual(got, c.parts) {
			t.Fatalf("%v: expected parts = %v; got %v", c.input, c.parts, got)
		}
		if got := st.String(); got != c.input {
			t.Fatalf("expected %q; got %q", c.input, got)
		}
	}
}

func TestNewSchemaTable(t *testing.T) {
	st := NewSchemaTable("cdm.dbo", "biosignal_meta")
	if st.String() != "cdm.dbo.biosignal_meta" {
		t.Fatalf("unexpected schema table %q", st.String())
	}
	st = NewSchemaTable("", "biosignal_meta")
	if st.String() != "biosignal_meta" {
		t.Fatalf("unexpected schema table %q", st.String())
	}
}
