package biosignal

import (
	"github.com/relloyd/biopipe/file"
	h "github.com/relloyd/biopipe/helper"
	"github.com/relloyd/biopipe/logger"
)

var rejectsHeader = []string{"patient_id", "starttime", "endtime", "wavetype", "filepath", "reason"}

// WriteRejects saves rejects to the CSV file fileName.
func WriteRejects(log logger.Logger, fileName string, rejects []Reject) error {
	out, err := file.NewCSVFileOutput(log, fileName, rejectsHeader)
	if err != nil {
		return err
	}
	for _, r := range rejects {
		row := h.InterfaceToString([]interface{}{r.Record.PatientID, r.Record.StartTime, r.Record.EndTime})
		row = append(row, r.Record.WaveType, r.Record.FilePath, r.Reason)
		if err = out.Write(row); err != nil {
			_ = out.Close()
			return err
		}
	}
	if err = out.Close(); err != nil {
		return err
	}
	log.Info("Wrote ", len(rejects), " rejected records to ", fileName)
	return nil
}
