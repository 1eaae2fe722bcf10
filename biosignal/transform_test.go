package biosignal

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
)

var _ = Describe("Transform", func() {
	var (
		log logger.Logger
		t0  time.Time
		t1  time.Time
	)

	BeforeEach(func() {
		log = logger.NewLogger("biopipe", "error", false)
		t0 = time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)
		t1 = time.Date(2021, 5, 1, 11, 30, 0, 0, time.UTC)
	})

	It("keeps mapped concepts and drops unknown wave types", func() {
		records := []WaveformRecord{
			{PatientID: "P1", StartTime: t0, EndTime: t1, WaveType: "ECGII", FilePath: "f1"},
			{PatientID: "P2", StartTime: t0, EndTime: t1, WaveType: "UNKNOWN", FilePath: "f2"},
		}
		idMap := NewIdentifierMap(map[string]string{"P1": "100"})
		res := Transform(log, records, idMap, DefaultConceptMapping())
		Expect(res.Records).To(HaveLen(1))
		r := res.Records[0]
		Expect(r.PersonID.Valid).To(BeTrue())
		Expect(r.PersonID.Int64).To(Equal(int64(100)))
		Expect(r.StartTime.Time).To(Equal(t0))
		Expect(r.EndTime.Time).To(Equal(t1))
		Expect(r.WaveType).To(Equal("ECGII"))
		Expect(r.FilePath).To(Equal("f1"))
		Expect(r.ConceptID).To(Equal(int64(4168140)))
		Expect(res.Stats.UnmappedConcepts).To(Equal(1))
		Expect(res.Rejects).To(HaveLen(1))
		Expect(res.Rejects[0].Reason).To(Equal(constants.RejectReasonUnmappedConcept))
		Expect(res.Rejects[0].Record.PatientID).To(Equal("P2"))
	})

	It("keeps records with unmapped patients but leaves the person null", func() {
		records := []WaveformRecord{
			{PatientID: "P9", StartTime: t0, EndTime: t1, WaveType: "CVP", FilePath: "f9"},
		}
		res := Transform(log, records, NewIdentifierMap(map[string]string{}), DefaultConceptMapping())
		Expect(res.Records).To(HaveLen(1))
		Expect(res.Records[0].PersonID.Valid).To(BeFalse())
		Expect(res.Stats.UnmappedPatients).To(Equal(1))
		Expect(res.Rejects[0].Reason).To(Equal(constants.RejectReasonUnmappedPatient))
	})

	It("nulls a malformed CDM patient identifier instead of failing", func() {
		records := []WaveformRecord{
			{PatientID: "P1", StartTime: t0, EndTime: t1, WaveType: "ART1", FilePath: "f1"},
		}
		res := Transform(log, records, NewIdentifierMap(map[string]string{"P1": "10x"}), DefaultConceptMapping())
		Expect(res.Records).To(HaveLen(1))
		Expect(res.Records[0].PersonID.Valid).To(BeFalse())
		Expect(res.Stats.MalformedPatientIds).To(Equal(1))
		Expect(res.Rejects[0].Reason).To(Equal(constants.RejectReasonMalformedPatient))
	})

	It("parses text times and nulls unparsable ones", func() {
		records := []WaveformRecord{
			{PatientID: "1", StartTime: "2021-05-01 10:00:00", EndTime: "not a time", WaveType: "ICP1"},
			{PatientID: "1", StartTime: []byte("2021-05-01T10:00:00Z"), EndTime: nil, WaveType: "RESPIMP"},
		}
		res := Transform(log, records, NewIdentifierMap(map[string]string{"1": "7"}), DefaultConceptMapping())
		Expect(res.Records).To(HaveLen(2))
		Expect(res.Records[0].StartTime.Valid).To(BeTrue())
		Expect(res.Records[0].StartTime.Time).To(BeTemporally("==", t0))
		Expect(res.Records[0].EndTime.Valid).To(BeFalse())
		Expect(res.Records[1].StartTime.Time).To(BeTemporally("==", t0))
		Expect(res.Records[1].EndTime.Valid).To(BeFalse())
		Expect(res.Stats.UnparsableEndTimes).To(Equal(2))
		Expect(res.Stats.UnparsableStartTimes).To(Equal(0))
		Expect(res.Stats.Output).To(Equal(2))
	})

	It("is case sensitive when mapping wave types", func() {
		records := []WaveformRecord{{PatientID: "1", WaveType: "ecgii"}}
		res := Transform(log, records, NewIdentifierMap(nil), DefaultConceptMapping())
		Expect(res.Records).To(BeEmpty())
	})
})

var _ = Describe("CoercePersonID", func() {
	It("accepts integers and whole floats", func() {
		for in, expected := range map[string]int64{"100": 100, " 42 ": 42, "100.0": 100, "-3": -3} {
			id, ok := CoercePersonID(in)
			Expect(ok).To(BeTrue(), in)
			Expect(id).To(Equal(expected))
		}
	})

	It("rejects everything else", func() {
		for _, in := range []string{"", "1.5", "abc", "NaN", "1e30"} {
			_, ok := CoercePersonID(in)
			Expect(ok).To(BeFalse(), in)
		}
	})
})

var _ = Describe("DefaultConceptMapping", func() {
	It("holds the six waveform concepts", func() {
		m := DefaultConceptMapping()
		Expect(m).To(HaveLen(6))
		Expect(m).To(HaveKeyWithValue("SPO2IRAC", int64(4155650)))
		Expect(m).To(HaveKeyWithValue("RESPIMP", int64(4081054)))
		Expect(m).To(HaveKeyWithValue("ECGII", int64(4168140)))
		Expect(m).To(HaveKeyWithValue("CVP", int64(4313586)))
		Expect(m).To(HaveKeyWithValue("ART1", int64(4301474)))
		Expect(m).To(HaveKeyWithValue("ICP1", int64(4082375)))
	})

	It("returns an independent copy", func() {
		m := DefaultConceptMapping()
		m["ECGII"] = 1
		Expect(DefaultConceptMapping()["ECGII"]).To(Equal(int64(4168140)))
	})
})
