package biosignal

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
)

// TransformStats counts what happened to the records during Transform.
type TransformStats struct {
	Input                int
	UnmappedPatients     int
	MalformedPatientIds  int
	UnparsableStartTimes int
	UnparsableEndTimes   int
	UnmappedConcepts     int
	Output               int
}

// TransformResult holds the records that survived Transform, plus those that will not reach the
// observation table. Records whose patient could not be remapped are both output and rejected since
// they are staged but excluded by the observation insert.
type TransformResult struct {
	Records []TransformedRecord
	Rejects []Reject
	Stats   TransformStats
}

// timestampLayouts are tried in order when a time arrives as text.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Transform remaps patient identifiers, parses times and maps wave types to concept IDs.
// Records with an unmapped wave type are dropped. Unmapped patients and unparsable times become null.
func Transform(log logger.Logger, records []WaveformRecord, idMap *IdentifierMap, concepts ConceptMapping) TransformResult {
	res := TransformResult{
		Records: make([]TransformedRecord, 0, len(records)),
		Rejects: make([]Reject, 0),
	}
	res.Stats.Input = len(records)
	for _, r := range records {
		conceptID, ok := concepts.Lookup(r.WaveType)
		if !ok {
			res.Stats.UnmappedConcepts++
			res.Rejects = append(res.Rejects, Reject{Record: r, Reason: constants.RejectReasonUnmappedConcept})
			continue
		}
		t := TransformedRecord{WaveType: r.WaveType, FilePath: r.FilePath, ConceptID: conceptID}
		// Remap the patient.
		if target, ok := idMap.Lookup(r.PatientID); !ok {
			res.Stats.UnmappedPatients++
			res.Rejects = append(res.Rejects, Reject{Record: r, Reason: constants.RejectReasonUnmappedPatient})
		} else if id, ok := CoercePersonID(target); !ok {
			res.Stats.MalformedPatientIds++
			res.Rejects = append(res.Rejects, Reject{Record: r, Reason: constants.RejectReasonMalformedPatient})
		} else {
			t.PersonID = sql.NullInt64{Int64: id, Valid: true}
		}
		// Parse times.
		if ts, ok := ParseTimestamp(r.StartTime); ok {
			t.StartTime = sql.NullTime{Time: ts, Valid: true}
		} else {
			res.Stats.UnparsableStartTimes++
		}
		if ts, ok := ParseTimestamp(r.EndTime); ok {
			t.EndTime = sql.NullTime{Time: ts, Valid: true}
		} else {
			res.Stats.UnparsableEndTimes++
		}
		res.Records = append(res.Records, t)
	}
	res.Stats.Output = len(res.Records)
	log.Info("Transformed ", res.Stats.Input, " records: output=", res.Stats.Output,
		"; unmappedConcepts=", res.Stats.UnmappedConcepts,
		"; unmappedPatients=", res.Stats.UnmappedPatients,
		"; malformedPatientIds=", res.Stats.MalformedPatientIds,
		"; unparsableStartTimes=", res.Stats.UnparsableStartTimes,
		"; unparsableEndTimes=", res.Stats.UnparsableEndTimes)
	return res
}

// CoercePersonID converts a CDM person identifier to an integer.
// Float text is accepted when it has no fractional part, e.g. 100.0.
func CoercePersonID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// ParseTimestamp converts a driver value to a time.
func ParseTimestamp(v interface{}) (time.Time, bool) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
