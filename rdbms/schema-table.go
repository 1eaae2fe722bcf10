package rdbms

import (
	"regexp"
	"strings"
)

var (
	reQuotedDottedTable = regexp.MustCompile(`^".+\..+"$`) // "random.table"
	reQuotedParts       = regexp.MustCompile(`".+"\.".+"`) // "schema"."table"
)

// SchemaTable holds a table name optionally qualified by a schema, which may itself be
// qualified by a database, e.g. cdm.dbo.observation.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[[<database>.]<schema>.]<table>" mandatory:"yes"`
}

// NewSchemaTable joins the qualifier and table with a dot, omitting an empty qualifier.
func NewSchemaTable(qualifier string, table string) SchemaTable {
	if qualifier == "" {
		return SchemaTable{table}
	}
	return SchemaTable{qualifier + "." + table}
}

func (st *SchemaTable) isQuotedTable() bool {
	// A quoted "random.table" is a table name containing a dot, not a regular "schema"."table".
	return reQuotedDottedTable.MatchString(st.SchemaTable) && !reQuotedParts.MatchString(st.SchemaTable)
}

// FoldedParts returns the dot separated name parts as PostgreSQL resolves them when the name is
// used unchanged in SQL text: quoted parts lose their quotes and keep their case, unquoted
// parts are folded to lower case.
func (st *SchemaTable) FoldedParts() []string {
	if st.isQuotedTable() {
		return []string{strings.Trim(st.SchemaTable, `"`)}
	}
	p := strings.Split(st.SchemaTable, ".")
	for i := range p {
		if len(p[i]) > 1 && strings.HasPrefix(p[i], `"`) && strings.HasSuffix(p[i], `"`) {
			p[i] = p[i][1 : len(p[i])-1]
		} else {
			p[i] = strings.ToLower(p[i])
		}
	}
	return p
}

func (st *SchemaTable) String() string {
	return st.SchemaTable
}
