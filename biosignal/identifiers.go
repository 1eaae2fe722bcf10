package biosignal

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/biopipe/aws/s3"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/file"
	"github.com/relloyd/biopipe/logger"
)

// IdentifierMap maps source patient identifiers to CDM person identifiers.
// It is read-only once loaded.
type IdentifierMap struct {
	m          map[string]string
	duplicates int
}

// NewIdentifierMap builds an IdentifierMap from pairs of source and target identifiers.
func NewIdentifierMap(pairs map[string]string) *IdentifierMap {
	m := &IdentifierMap{m: make(map[string]string, len(pairs))}
	for k, v := range pairs {
		m.m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return m
}

// Lookup returns the target identifier for the source identifier src.
func (i *IdentifierMap) Lookup(src string) (string, bool) {
	v, ok := i.m[strings.TrimSpace(src)]
	return v, ok
}

func (i *IdentifierMap) Len() int {
	return len(i.m)
}

// Duplicates returns the number of source identifiers that appeared more than once while loading.
func (i *IdentifierMap) Duplicates() int {
	return i.duplicates
}

// LoadIdentifierMap reads the identifier CSV from a local path or an s3://bucket/key URL.
func LoadIdentifierMap(log logger.Logger, location string, s3Region string) (*IdentifierMap, error) {
	if s3.IsS3URL(location) {
		o, err := s3.ParseURL(location, s3Region)
		if err != nil {
			return nil, err
		}
		g, err := s3.NewGetter(o.Bucket, o.Region)
		if err != nil {
			return nil, errors.Wrap(err, "error creating S3 session")
		}
		return LoadIdentifierMapFromS3(log, g, o)
	}
	log.Info("Loading identifier map from file: ", location)
	rc, err := file.OpenFile(location)
	if err != nil {
		return nil, errors.Wrap(err, "error loading identifier map")
	}
	defer func() {
		_ = rc.Close()
	}()
	return LoadIdentifierMapFromReader(log, rc)
}

// LoadIdentifierMapFromS3 fetches the identifier CSV using g.
func LoadIdentifierMapFromS3(log logger.Logger, g s3.Getter, o s3.AwsS3Object) (*IdentifierMap, error) {
	log.Info("Loading identifier map from S3: ", o)
	data, err := g.Get(o.Key)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching identifier map %v", o)
	}
	return LoadIdentifierMapFromReader(log, bytes.NewReader(data))
}

// LoadIdentifierMapFromReader parses CSV with header columns patno and cdm_patno in any position.
// When a source identifier repeats, the last row wins.
func LoadIdentifierMapFromReader(log logger.Logger, r io.Reader) (*IdentifierMap, error) {
	h := &identifierCSVHandler{log: log, idMap: &IdentifierMap{m: make(map[string]string)}}
	if _, err := file.ReadCSV(r, h); err != nil {
		return nil, errors.Wrap(err, "error reading identifier map")
	}
	if h.idMap.duplicates > 0 {
		log.Warn("identifier map contains ", h.idMap.duplicates, " duplicate source identifiers: the last value was kept")
	}
	log.Info("Loaded ", h.idMap.Len(), " patient identifiers")
	return h.idMap, nil
}

type identifierCSVHandler struct {
	log    logger.Logger
	idMap  *IdentifierMap
	srcIdx int
	tgtIdx int
}

func (h *identifierCSVHandler) HandleHeader(header []string) error {
	h.srcIdx = file.IndexOf(header, constants.IdentifierMapSourceColumn)
	h.tgtIdx = file.IndexOf(header, constants.IdentifierMapTargetColumn)
	if h.srcIdx < 0 || h.tgtIdx < 0 {
		return fmt.Errorf("header %v must contain columns %q and %q", header,
			constants.IdentifierMapSourceColumn, constants.IdentifierMapTargetColumn)
	}
	return nil
}

func (h *identifierCSVHandler) HandleRow(line int, row []string) error {
	src := strings.TrimSpace(row[h.srcIdx])
	if _, ok := h.idMap.m[src]; ok {
		h.idMap.duplicates++
		h.log.Debug("duplicate source identifier ", src, " on line ", line)
	}
	h.idMap.m[src] = strings.TrimSpace(row[h.tgtIdx])
	return nil
}
