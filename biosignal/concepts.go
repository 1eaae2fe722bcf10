package biosignal

// ConceptMapping maps waveform type codes to CDM concept IDs.
type ConceptMapping map[string]int64

var waveConcepts = ConceptMapping{
	"SPO2IRAC": 4155650,
	"RESPIMP":  4081054,
	"ECGII":    4168140,
	"CVP":      4313586,
	"ART1":     4301474,
	"ICP1":     4082375,
}

// DefaultConceptMapping returns a copy of the standard waveform concept mapping.
func DefaultConceptMapping() ConceptMapping {
	m := make(ConceptMapping, len(waveConcepts))
	for k, v := range waveConcepts {
		m[k] = v
	}
	return m
}

// Lookup returns the concept ID for waveType. Matching is exact.
func (c ConceptMapping) Lookup(waveType string) (int64, bool) {
	id, ok := c[waveType]
	return id, ok
}
