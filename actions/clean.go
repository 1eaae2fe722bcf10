package actions

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/cleaning"
	"github.com/relloyd/biopipe/file"
	"github.com/relloyd/biopipe/helper"
	"github.com/relloyd/biopipe/stats"
	"github.com/relloyd/biopipe/stream"
)

// CleanConfig holds the settings used to clean one CSV file of CDM domain rows.
type CleanConfig struct {
	SchemaFile       string `errorTxt:"schema" mandatory:"yes"`
	Domain           string `errorTxt:"domain" mandatory:"yes"`
	InputFile        string `errorTxt:"input" mandatory:"yes"`
	OutputFile       string `errorTxt:"output" mandatory:"yes"`
	FullTime         bool
	LogLevel         string `errorTxt:"log-level" mandatory:"yes"`
	StackDumpOnPanic bool
	Now              func() time.Time // defaults to time.Now.
}

// RunClean applies the cleaning schema to the rows of cfg.InputFile and writes the survivors to cfg.OutputFile.
func RunClean(cfg *CleanConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	schema, err := cleaning.LoadSchema(cfg.SchemaFile)
	if err != nil {
		return err
	}
	if err = schema.Validate(cfg.Domain); err != nil {
		return err
	}
	// Read the input.
	in := &recordCSVHandler{}
	header, err := file.ReadCSVFile(cfg.InputFile, in)
	if err != nil {
		return errors.Wrapf(err, "error reading %v", cfg.InputFile)
	}
	rows := in.rows
	log.Info("Read ", len(rows), " rows from ", cfg.InputFile)
	// Clean.
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	mgr := stats.NewManager(log)
	rows, _, err = cleaning.AutoProcessing(log, rows, schema, cfg.Domain, cfg.FullTime, now(), mgr.AddStep("clean"))
	if err != nil {
		return err
	}
	// Write the output.
	out, err := file.NewCSVFileOutput(log, cfg.OutputFile, header)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err = out.Write(r.GetDataKeysAsSlice(header)); err != nil {
			_ = out.Close()
			return err
		}
	}
	if err = out.Close(); err != nil {
		return err
	}
	log.Info("Wrote ", out.RowCount(), " rows to ", out.Name())
	mgr.LogStats()
	return nil
}

// recordCSVHandler collects CSV rows as Records keyed by the header.
type recordCSVHandler struct {
	header []string
	rows   []stream.Record
}

func (h *recordCSVHandler) HandleHeader(header []string) error {
	h.header = header
	return nil
}

func (h *recordCSVHandler) HandleRow(line int, row []string) error {
	r, err := stream.NewRecordFromStrings(h.header, row)
	if err != nil {
		return fmt.Errorf("line %v: %w", line, err)
	}
	h.rows = append(h.rows, r)
	return nil
}
