package biosignal

import (
	"database/sql"
)

// WaveformRecord is one row of waveform metadata read from the biosignal database.
// PatientID is the source identifier formatted as a string; the times hold whatever the driver returned.
type WaveformRecord struct {
	PatientID string
	StartTime interface{}
	EndTime   interface{}
	WaveType  string
	FilePath  string
}

// TransformedRecord is a WaveformRecord after identifier remapping and concept mapping.
// PersonID is invalid when the patient could not be remapped to a CDM person.
type TransformedRecord struct {
	PersonID  sql.NullInt64
	StartTime sql.NullTime
	EndTime   sql.NullTime
	WaveType  string
	FilePath  string
	ConceptID int64
}

// Reject is a source record that will not reach the observation table.
type Reject struct {
	Record WaveformRecord
	Reason string
}
