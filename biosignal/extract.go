package biosignal

import (
	"context"
	"fmt"
	"strings"

	h "github.com/relloyd/biopipe/helper"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms"
	"github.com/relloyd/biopipe/rdbms/shared"
)

var extractColumns = []string{"patient_id", "starttime", "endtime", "wavetype", "filepath"}

// ExtractSql returns the query that joins the patient mapping to the waveform metadata.
// qualifier is prefixed to both table names, e.g. biosignal.dbo.
func ExtractSql(qualifier string) string {
	patients := rdbms.NewSchemaTable(qualifier, "patientid_mapping")
	waveforms := rdbms.NewSchemaTable(qualifier, "waveform_info")
	return fmt.Sprintf("select A.patient_id, B.starttime, B.endtime, B.wavetype, B.filepath "+
		"from %v A, %v B "+
		"where A.anonymous_id = B.patient_id", patients.String(), waveforms.String())
}

// Extract runs the extraction query against db and returns all waveform records.
func Extract(ctx context.Context, log logger.Logger, db shared.Connector, qualifier string) ([]WaveformRecord, error) {
	handler := NewWaveformHandler()
	if err := rdbms.SqlQuery(ctx, log, db, ExtractSql(qualifier), handler); err != nil {
		return nil, err
	}
	log.Info("Extracted ", len(handler.Records), " waveform records")
	return handler.Records, nil
}

// WaveformHandler implements shared.SqlResultHandler and collects WaveformRecords.
// Columns are located by name, ignoring case.
type WaveformHandler struct {
	colIdx  map[string]int
	Records []WaveformRecord
}

func NewWaveformHandler() *WaveformHandler {
	return &WaveformHandler{colIdx: make(map[string]int), Records: make([]WaveformRecord, 0)}
}

func (w *WaveformHandler) HandleHeader(i []interface{}) error {
	for idx, v := range i {
		w.colIdx[strings.ToLower(h.GetStringFromInterfacePreserveTimeZone(v))] = idx
	}
	missing := make([]string, 0)
	for _, c := range extractColumns {
		if _, ok := w.colIdx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("extraction query result is missing columns: %v", strings.Join(missing, ", "))
	}
	return nil
}

func (w *WaveformHandler) HandleRow(i []interface{}) error {
	w.Records = append(w.Records, WaveformRecord{
		PatientID: h.GetStringFromInterfacePreserveTimeZone(i[w.colIdx["patient_id"]]),
		StartTime: i[w.colIdx["starttime"]],
		EndTime:   i[w.colIdx["endtime"]],
		WaveType:  h.GetStringFromInterfacePreserveTimeZone(i[w.colIdx["wavetype"]]),
		FilePath:  h.GetStringFromInterfacePreserveTimeZone(i[w.colIdx["filepath"]]),
	})
	return nil
}
