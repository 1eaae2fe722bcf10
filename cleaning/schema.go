package cleaning

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// Column types understood by ColumnTransformer.
const (
	TypeDatetime = "datetime"
	TypeFloat    = "float"
	TypeInt      = "int"
	TypeStr      = "str"
)

var columnTypeNames = map[string]struct{}{
	TypeDatetime: {},
	TypeFloat:    {},
	TypeInt:      {},
	TypeStr:      {},
}

// DomainColumns names the columns of a domain used by the completeness filter.
type DomainColumns struct {
	Datetime  string `json:"datetime"`
	ConceptID string `json:"conceptId"`
}

// Schema describes how rows of each CDM domain are cleaned.
// All column names are held in lower case.
type Schema struct {
	ColumnTypes     map[string]string          `json:"columnTypes"`
	RequiredColumns map[string][]string        `json:"requiredColumns"`
	DomainColumns   map[string]DomainColumns   `json:"domainColumns"`
	Rules           map[string]json.RawMessage `json:"rules,omitempty"` // optional JSON Logic per domain; rows are kept when it is true.
}

// LoadSchema reads a YAML (or JSON) schema file.
func LoadSchema(fileName string) (*Schema, error) {
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read cleaning schema %q", fileName)
	}
	s, err := ParseSchema(b)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid cleaning schema %q", fileName)
	}
	return s, nil
}

// ParseSchema converts YAML to a Schema and lower cases all column names.
func ParseSchema(b []byte) (*Schema, error) {
	s := &Schema{}
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, err
	}
	colTypes := make(map[string]string, len(s.ColumnTypes))
	for k, v := range s.ColumnTypes {
		colTypes[strings.ToLower(k)] = strings.ToLower(v)
	}
	s.ColumnTypes = colTypes
	for d, cols := range s.RequiredColumns {
		lc := make([]string, len(cols))
		for i, c := range cols {
			lc[i] = strings.ToLower(c)
		}
		s.RequiredColumns[d] = lc
	}
	for d, dc := range s.DomainColumns {
		s.DomainColumns[d] = DomainColumns{Datetime: strings.ToLower(dc.Datetime), ConceptID: strings.ToLower(dc.ConceptID)}
	}
	return s, nil
}

// Validate checks that domain is fully described and that all column types and rules are valid.
func (s *Schema) Validate(domain string) error {
	for col, t := range s.ColumnTypes {
		if _, ok := columnTypeNames[t]; !ok {
			return fmt.Errorf("column %q has unsupported type %q: use datetime, float, int or str", col, t)
		}
	}
	if _, ok := s.RequiredColumns[domain]; !ok {
		return fmt.Errorf("domain %q is missing from requiredColumns", domain)
	}
	dc, ok := s.DomainColumns[domain]
	if !ok {
		return fmt.Errorf("domain %q is missing from domainColumns", domain)
	}
	if dc.Datetime == "" || dc.ConceptID == "" {
		return fmt.Errorf("domain %q must name both datetime and conceptId columns", domain)
	}
	if rule, ok := s.Rules[domain]; ok {
		if !jsonlogic.IsValid(strings.NewReader(string(rule))) {
			return fmt.Errorf("invalid JSON Logic rule for domain %q: %s", domain, rule)
		}
	}
	return nil
}
