package stream

import (
	"fmt"
	"sort"

	h "github.com/relloyd/biopipe/helper"
)

// Record is a single row of named values.
// Missing values are held as nil interfaces.
type Record struct {
	data map[string]interface{}
}

// NewRecord creates a new Record and returns it by value; the underlying map is shared by copies.
func NewRecord() Record {
	return Record{
		data: make(map[string]interface{}),
	}
}

// NewRecordFromStrings builds a Record using header for the field names.
// Empty strings are treated as missing values.
func NewRecordFromStrings(header []string, values []string) (Record, error) {
	if len(header) != len(values) {
		return Record{}, fmt.Errorf("record has %v values but the header has %v fields", len(values), len(header))
	}
	r := NewRecord()
	for idx, k := range header {
		if values[idx] == "" {
			r.data[k] = nil
		} else {
			r.data[k] = values[idx]
		}
	}
	return r, nil
}

func (sr Record) RecordIsNil() bool {
	return sr.data == nil
}

func (sr Record) SetData(name string, value interface{}) {
	sr.data[name] = value
}

// GetData returns the value of field name, which is nil if the field is missing or holds a missing value.
func (sr Record) GetData(name string) interface{} {
	return sr.data[name]
}

// HasField returns true if the field exists in the Record, whether or not its value is missing.
func (sr Record) HasField(name string) bool {
	_, ok := sr.data[name]
	return ok
}

// IsMissing returns true if the field does not exist or holds a missing value.
func (sr Record) IsMissing(name string) bool {
	return sr.data[name] == nil
}

// RenameField moves the value of field from to field to.
func (sr Record) RenameField(from string, to string) {
	if from == to {
		return
	}
	v, ok := sr.data[from]
	if !ok {
		return
	}
	delete(sr.data, from)
	sr.data[to] = v
}

func (sr Record) GetDataMap() map[string]interface{} {
	return sr.data
}

func (sr Record) GetDataLen() int {
	return len(sr.data)
}

// GetDataAsStringPreserveTimeZone will convert the value of field name to a string.
// Missing values are returned as an empty string. Times will be in local time.
func (sr Record) GetDataAsStringPreserveTimeZone(name string) string {
	v := sr.data[name]
	if v == nil {
		return ""
	}
	return h.GetStringFromInterfacePreserveTimeZone(v)
}

// GetDataKeysAsSlice builds a slice of strings containing the values found in sr.data for each of the supplied
// keys in slice keys, formatted for CSV output.
func (sr Record) GetDataKeysAsSlice(keys []string) []string {
	values := make([]interface{}, len(keys))
	for idx, k := range keys {
		values[idx] = sr.data[k]
	}
	return h.InterfaceToString(values)
}

// GetSortedDataMapKeys will return a slice of the keys found in map sr.data.
func (sr Record) GetSortedDataMapKeys() []string {
	retval := make([]string, 0, len(sr.data))
	for k := range sr.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

// Copy returns a new Record holding the same values.
func (sr Record) Copy() Record {
	t := NewRecord()
	for k, v := range sr.data {
		t.data[k] = v
	}
	return t
}
