package cleaning

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	h "github.com/relloyd/biopipe/helper"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/stream"
)

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"20060102",
}

// CoercionReport describes the work done by ColumnTransformer.
type CoercionReport struct {
	ColumnsCoerced map[string]int // number of columns coerced per type.
	FailedValues   map[string]int // number of non-missing values that could not be coerced, per type.
	Unrecognized   []string       // columns with no declared type, left untouched.
}

func (r CoercionReport) String() string {
	parts := make([]string, 0, len(columnTypeNames))
	for _, t := range []string{TypeDatetime, TypeFloat, TypeInt, TypeStr} {
		parts = append(parts, fmt.Sprintf("%v(columns=%v failed=%v)", t, r.ColumnsCoerced[t], r.FailedValues[t]))
	}
	return fmt.Sprintf("%v unrecognized=%v", strings.Join(parts, " "), r.Unrecognized)
}

// LowerCaseColumns renames every field of every row to lower case.
func LowerCaseColumns(rows []stream.Record) {
	for _, r := range rows {
		for _, k := range r.GetSortedDataMapKeys() {
			r.RenameField(k, strings.ToLower(k))
		}
	}
}

// ColumnTransformer coerces each column of rows to the type declared in columnTypes.
// Column names are lower cased first. Values that cannot be coerced become missing.
func ColumnTransformer(log logger.Logger, rows []stream.Record, columnTypes map[string]string) CoercionReport {
	report := CoercionReport{
		ColumnsCoerced: make(map[string]int),
		FailedValues:   make(map[string]int),
		Unrecognized:   make([]string, 0),
	}
	LowerCaseColumns(rows)
	for _, col := range columnNames(rows) {
		dtype, ok := columnTypes[col]
		if !ok {
			log.Warn("column type not defined for ", col, ": left unchanged")
			report.Unrecognized = append(report.Unrecognized, col)
			continue
		}
		report.ColumnsCoerced[dtype]++
		for _, r := range rows {
			if !r.HasField(col) || r.IsMissing(col) {
				continue
			}
			v, ok := CoerceValue(r.GetData(col), dtype)
			if !ok {
				report.FailedValues[dtype]++
				log.Debug("unable to coerce ", col, " value ", r.GetData(col), " to ", dtype)
			}
			r.SetData(col, v)
		}
	}
	log.Info("column coercion: ", report)
	return report
}

// columnNames returns the sorted union of field names across rows.
func columnNames(rows []stream.Record) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r.GetDataMap() {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// CoerceValue converts v to dtype. On failure it returns nil, false.
// Datetimes are returned as zone-less wall clock times. Non-integral numbers coerced to int are truncated.
func CoerceValue(v interface{}, dtype string) (interface{}, bool) {
	if v == nil {
		return nil, true
	}
	switch dtype {
	case TypeDatetime:
		if t, ok := ParseDatetime(v); ok {
			return t, true
		}
	case TypeFloat:
		if f, ok := toFloat(v); ok {
			return f, true
		}
	case TypeInt:
		if i, ok := toInt(v); ok {
			return i, true
		}
		if f, ok := toFloat(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), true
		}
	case TypeStr:
		return h.GetStringFromInterfacePreserveTimeZone(v), true
	default:
		return v, true
	}
	return nil, false
}

// toInt returns integers and integer text exactly, without a round trip through float64.
func toInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case string, []byte:
		i, err := strconv.ParseInt(strings.TrimSpace(h.GetStringFromInterfacePreserveTimeZone(x)), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case string, []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(h.GetStringFromInterfacePreserveTimeZone(x)), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ParseDatetime converts v to a zone-less time in UTC. Zoned values drop their zone and keep
// their wall clock, so 11:00+09:00 becomes 11:00.
func ParseDatetime(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return wallClock(x), true
	case string, []byte:
		s := strings.TrimSpace(h.GetStringFromInterfacePreserveTimeZone(x))
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return wallClock(t), true
			}
		}
	}
	return time.Time{}, false
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
