package rdbms

import (
	"errors"
	"testing"

	"github.com/relloyd/biopipe/constants"
)

func TestNormalizeDriver(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"mssql", constants.ConnectionTypeSqlServer},
		{"MSSQL", constants.ConnectionTypeSqlServer},
		{"Sql Server", constants.ConnectionTypeSqlServer},
		{" sqlserver ", constants.ConnectionTypeSqlServer},
		{"postgresql", constants.ConnectionTypePostgres},
		{"PostgreSQL", constants.ConnectionTypePostgres},
		{"postgres", constants.ConnectionTypePostgres},
	}
	for _, c := range cases {
		got, err := NormalizeDriver(c.in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", c.in, err)
		}
		if got != c.expected {
			t.Fatalf("driver %q: expected %q; got %q", c.in, c.expected, got)
		}
	}
	// Unsupported drivers fail explicitly.
	for _, in := range []string{"oracle", "", "mysql"} {
		_, err := NormalizeDriver(in)
		var e UnsupportedDriverError
		if !errors.As(err, &e) {
			t.Fatalf("expected UnsupportedDriverError for %q; got %v", in, err)
		}
		if e.Driver != in {
			t.Fatalf("expected driver %q in error; got %q", in, e.Driver)
		}
	}
}
