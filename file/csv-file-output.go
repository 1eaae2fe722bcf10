package file

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/logger"
)

// CSVFileOutput writes CSV records to a single OS file.
// Files whose name ends with .gz are gzip compressed.
type CSVFileOutput struct {
	csvWriter     *csv.Writer
	log           logger.Logger
	name          string
	headerRecord  []string
	file          *os.File
	gzWriter      *gzip.Writer
	fWriter       *bufio.Writer
	useGzip       bool
	totalRowCount int
	needHeaderRow bool
}

// NewCSVFileOutput creates the file fileName, truncating any existing file, and returns a writer for it.
// The header is written before the first record.
func NewCSVFileOutput(log logger.Logger, fileName string, header []string) (*CSVFileOutput, error) {
	f := &CSVFileOutput{
		log:           log,
		name:          fileName,
		headerRecord:  header,
		useGzip:       strings.HasSuffix(strings.ToLower(fileName), ".gz"),
		needHeaderRow: header != nil,
	}
	var err error
	f.file, err = os.Create(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create CSV file %q", fileName)
	}
	var w io.Writer = f.file
	if f.useGzip { // if should use gzip...
		f.gzWriter = gzip.NewWriter(f.file)
		f.fWriter = bufio.NewWriter(f.gzWriter)
		w = f.fWriter
	}
	f.csvWriter = csv.NewWriter(w)
	log.Debug("CSVFileOutput created file=", fileName, "; useGzip=", f.useGzip)
	return f, nil
}

// Write writes record to the CSV file.
func (f *CSVFileOutput) Write(record []string) error {
	if f.needHeaderRow {
		f.log.Trace("Writing file header: ", f.headerRecord)
		if err := f.csvWriter.Write(f.headerRecord); err != nil {
			return errors.Wrapf(err, "unable to write header to CSV file %q", f.name)
		}
		f.needHeaderRow = false
	}
	f.log.Trace("Writing record...", record)
	if err := f.csvWriter.Write(record); err != nil {
		return errors.Wrapf(err, "unable to write to CSV file %q", f.name)
	}
	f.totalRowCount++
	return nil
}

// RowCount returns the number of records written excluding the header.
func (f *CSVFileOutput) RowCount() int {
	return f.totalRowCount
}

// Name returns the file name.
func (f *CSVFileOutput) Name() string {
	return f.name
}

// Close flushes the CSV writer and closes the OS file.
// A file with no records still receives its header.
func (f *CSVFileOutput) Close() error {
	if f.needHeaderRow {
		if err := f.csvWriter.Write(f.headerRecord); err != nil {
			return errors.Wrapf(err, "unable to write header to CSV file %q", f.name)
		}
		f.needHeaderRow = false
	}
	f.csvWriter.Flush()
	if err := f.csvWriter.Error(); err != nil {
		return errors.Wrapf(err, "unable to flush CSV file %q", f.name)
	}
	if f.useGzip { // if we should close the gzip first...
		if err := f.fWriter.Flush(); err != nil {
			return err
		}
		if err := f.gzWriter.Close(); err != nil {
			return err
		}
	}
	if err := f.file.Close(); err != nil {
		return errors.Wrapf(err, "unable to close OS file %q", f.name)
	}
	f.log.Debug("CSVFileOutput closed file=", f.name, "; rows=", f.totalRowCount)
	return nil
}
