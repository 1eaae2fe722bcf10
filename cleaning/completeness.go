package cleaning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/stats"
	"github.com/relloyd/biopipe/stream"
)

// Window returns the exclusive bounds used when full time is not requested:
// the trailing CleaningTrailingWindowDays up to now, expressed as zone-less wall clock time.
func Window(now time.Time) (start time.Time, end time.Time) {
	end = wallClock(now)
	start = end.AddDate(0, 0, -constants.CleaningTrailingWindowDays)
	return
}

// AutoProcessing cleans rows of the given CDM domain using schema.
// Rows missing a required column are dropped, all columns are coerced to their declared types, then rows
// outside the time window, rows whose concept id is zero and rows failing the domain's rule are dropped.
// Drop counts are recorded on step, which may be nil.
// The returned slice is newly allocated; records in rows are lower-cased and coerced in place.
func AutoProcessing(log logger.Logger, rows []stream.Record, schema *Schema, domain string, fullTime bool, now time.Time, step *stats.Step) ([]stream.Record, CoercionReport, error) {
	if step == nil {
		step = stats.NewManager(log).AddStep("clean")
	}
	if err := schema.Validate(domain); err != nil {
		return nil, CoercionReport{}, err
	}
	step.AddRowsIn(int64(len(rows)))
	LowerCaseColumns(rows)
	cols := make(map[string]struct{})
	for _, c := range columnNames(rows) {
		cols[c] = struct{}{}
	}
	// Required columns.
	required := make([]string, 0)
	for _, c := range schema.RequiredColumns[domain] {
		if _, ok := cols[c]; ok {
			required = append(required, c)
		} else {
			log.Warn("required column ", c, " is not present in the data for domain ", domain)
		}
	}
	rows = keep(rows, step, constants.RejectReasonMissingRequiredField, func(r stream.Record) (bool, error) {
		for _, c := range required {
			if r.IsMissing(c) {
				return false, nil
			}
		}
		return true, nil
	})
	report := ColumnTransformer(log, rows, schema.ColumnTypes)
	// Time window and concept.
	dc := schema.DomainColumns[domain]
	if _, ok := cols[dc.Datetime]; !ok {
		return nil, report, fmt.Errorf("datetime column %q for domain %q is not present in the data", dc.Datetime, domain)
	}
	if _, ok := cols[dc.ConceptID]; !ok {
		return nil, report, fmt.Errorf("concept column %q for domain %q is not present in the data", dc.ConceptID, domain)
	}
	start, end := Window(now)
	conceptIsStr := schema.ColumnTypes[dc.ConceptID] == TypeStr // text "0" is a value, not the zero concept.
	rows = keep(rows, step, constants.RejectReasonOutsideTimeWindow, func(r stream.Record) (bool, error) {
		t, ok := ParseDatetime(r.GetData(dc.Datetime))
		if !ok {
			return false, nil
		}
		if fullTime {
			return true, nil
		}
		return t.After(start) && t.Before(end), nil
	})
	rows = keep(rows, step, constants.RejectReasonUnclassifiedConcept, func(r stream.Record) (bool, error) {
		if r.IsMissing(dc.ConceptID) {
			return true, nil
		}
		v := r.GetData(dc.ConceptID)
		if conceptIsStr {
			if _, ok := v.(string); ok {
				return true, nil
			}
		}
		f, ok := toFloat(v)
		return !ok || f != 0, nil
	})
	// Optional rule.
	if rule, ok := schema.Rules[domain]; ok {
		var err error
		var result bytes.Buffer
		rows, err = keepErr(rows, step, constants.RejectReasonRule, func(r stream.Record) (bool, error) {
			result.Reset()
			if err := applyJsonLogic(r, string(rule), &result); err != nil {
				return false, err
			}
			return strings.TrimSpace(result.String()) == "true", nil
		})
		if err != nil {
			return nil, report, err
		}
	}
	step.AddRowsOut(int64(len(rows)))
	step.Done()
	return rows, report, nil
}

func keep(rows []stream.Record, step *stats.Step, reason string, fn func(r stream.Record) (bool, error)) []stream.Record {
	out, _ := keepErr(rows, step, reason, fn)
	return out
}

// keepErr returns the rows for which fn is true and counts the others against reason.
func keepErr(rows []stream.Record, step *stats.Step, reason string, fn func(r stream.Record) (bool, error)) ([]stream.Record, error) {
	out := make([]stream.Record, 0, len(rows))
	var dropped int64
	for _, r := range rows {
		ok, err := fn(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		step.Drop(reason, dropped)
	}
	return out, nil
}

// applyJsonLogic will apply json logic supplied in rule to data.
// It assumes the caller has validated the logic already.
func applyJsonLogic(data stream.Record, rule string, result *bytes.Buffer) error {
	m := make(map[string]interface{}, data.GetDataLen())
	for k, v := range data.GetDataMap() {
		if t, ok := v.(time.Time); ok {
			m[k] = t.Format(time.RFC3339Nano)
		} else {
			m[k] = v
		}
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshalling data before applying JSON logic: %v", err)
	}
	err = jsonlogic.Apply(strings.NewReader(rule), bytes.NewReader(jsonData), result)
	if err != nil {
		return fmt.Errorf("error applying JSON logic: %v", err)
	}
	return nil
}
