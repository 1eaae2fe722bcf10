package file

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	h "github.com/relloyd/biopipe/helper"
)

// CSVHandler receives the header of a CSV file followed by each data row with its 1-based line number.
type CSVHandler interface {
	HandleHeader(header []string) error
	HandleRow(line int, row []string) error
}

// CSVRowFunc adapts a function to CSVHandler for callers that do not need the header.
type CSVRowFunc func(line int, row []string) error

func (f CSVRowFunc) HandleHeader(header []string) error {
	return nil
}

func (f CSVRowFunc) HandleRow(line int, row []string) error {
	return f(line, row)
}

// ReadCSV reads CSV from r. The first record is the header, which is lower cased and trimmed
// before it is passed to the handler and returned.
func ReadCSV(r io.Reader, handler CSVHandler) (header []string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0 // all records must have as many fields as the header.
	rec, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("CSV input is empty: a header row is required")
	}
	if err != nil {
		return nil, errors.Wrap(err, "error reading CSV header")
	}
	header = h.ToLowerTrimmed(rec)
	if err = handler.HandleHeader(header); err != nil {
		return header, err
	}
	line := 1
	for {
		rec, err = cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return header, errors.Wrapf(err, "error reading CSV line %v", line)
		}
		if err = handler.HandleRow(line, rec); err != nil {
			return header, err
		}
	}
	return header, nil
}

// ReadCSVFile opens fileName and calls ReadCSV.
func ReadCSVFile(fileName string, handler CSVHandler) ([]string, error) {
	rc, err := OpenFile(fileName)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return ReadCSV(rc, handler)
}

// OpenFile opens fileName for reading. Files whose name ends with .gz are decompressed.
func OpenFile(fileName string) (io.ReadCloser, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %q", fileName)
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "unable to read gzip file %q", fileName)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if ferr := g.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// IndexOf returns the position of name in header, or -1.
func IndexOf(header []string, name string) int {
	for idx, v := range header {
		if v == name {
			return idx
		}
	}
	return -1
}
