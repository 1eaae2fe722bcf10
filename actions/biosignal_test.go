package actions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relloyd/biopipe/config"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/logger"
	"github.com/relloyd/biopipe/rdbms/shared"
)

func newTestBiosignalConfig(dir string, out io.Writer) *BiosignalConfig {
	return &BiosignalConfig{
		SourceConfigFile: filepath.Join(dir, "biosignal_config.yaml"),
		TargetConfigFile: filepath.Join(dir, "cdm_config.yaml"),
		IdentifierMap:    filepath.Join(dir, "cdm_patno.csv"),
		StagingTable:     constants.DefaultStagingTable,
		ObservationTable: constants.DefaultObservationTable,
		BulkMode:         constants.BulkModeCopy,
		BatchSize:        constants.BulkBatchSizeDefault,
		LogLevel:         "error",
		Out:              out,
	}
}

func TestRunBiosignalValidation(t *testing.T) {
	err := RunBiosignal(&BiosignalConfig{})
	if err == nil || !strings.Contains(err.Error(), "source-config") {
		t.Fatalf("expected a mandatory field error, got %v", err)
	}
	cfg := newTestBiosignalConfig("x", nil)
	cfg.BulkMode = "bcp"
	if err = RunBiosignal(cfg); err == nil || !strings.Contains(err.Error(), "bulk mode") {
		t.Fatalf("expected a bulk mode error, got %v", err)
	}
}

func TestRunBiosignalMissingConfigFile(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{"cdm_config.yaml": testTargetConfig})
	err := RunBiosignal(newTestBiosignalConfig(dir, &bytes.Buffer{}))
	if !errors.As(err, &config.FileNotFoundError{}) {
		t.Fatalf("expected FileNotFoundError, got %v", err)
	}
}

func TestRunBiosignalDryRun(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{
		"biosignal_config.yaml": testSourceConfig,
		"cdm_config.yaml":       testTargetConfig,
	})
	openDbConnection = func(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, probeOut io.Writer) (shared.Connector, error) {
		t.Fatal("dry-run must not connect")
		return nil, nil
	}
	defer func() { openDbConnection = defaultOpener }()
	out := &bytes.Buffer{}
	if err := RunBiosignal(func() *BiosignalConfig { c := newTestBiosignalConfig(dir, out); c.DryRun = true; return c }()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, expected := range []string{
		"from biosignal.dbo.patientid_mapping A, biosignal.dbo.waveform_info B",
		"DROP TABLE IF EXISTS cdm.biosignal_meta",
		"CREATE TABLE cdm.biosignal_meta",
		"INSERT INTO cdm.observation",
		"CAST(m.starttime AS date)",
	} {
		if !strings.Contains(out.String(), expected) {
			t.Fatalf("expected dry-run output to contain %q, got:\n%v", expected, out.String())
		}
	}
	if strings.Contains(out.String(), "Extract biosignal data") {
		t.Fatal("dry-run must not print status lines")
	}
}

func TestRunBiosignalConnectionError(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{
		"biosignal_config.yaml": testSourceConfig,
		"cdm_config.yaml":       testTargetConfig,
		"cdm_patno.csv":         testIdentifierMap,
	})
	opened := make([]string, 0)
	openDbConnection = func(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, probeOut io.Writer) (shared.Connector, error) {
		opened = append(opened, c.LogicalName)
		if c.LogicalName == constants.ConnectionRoleTarget {
			return nil, errors.New("login failed")
		}
		return shared.NewMockConnection(c.Type), nil
	}
	defer func() { openDbConnection = defaultOpener }()
	err := RunBiosignal(newTestBiosignalConfig(dir, &bytes.Buffer{}))
	if err == nil || err.Error() != "login failed" {
		t.Fatalf("expected the connection error, got %v", err)
	}
	if len(opened) != 2 || opened[0] != constants.ConnectionRoleSource {
		t.Fatalf("expected source then target to be opened, got %v", opened)
	}
}

func TestRunBiosignalExtractError(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{
		"biosignal_config.yaml": testSourceConfig,
		"cdm_config.yaml":       testTargetConfig,
		"cdm_patno.csv":         testIdentifierMap,
	})
	openDbConnection = func(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, probeOut io.Writer) (shared.Connector, error) {
		return shared.NewMockConnection(c.Type), nil
	}
	defer func() { openDbConnection = defaultOpener }()
	out := &bytes.Buffer{}
	if err := RunBiosignal(newTestBiosignalConfig(dir, out)); err == nil {
		t.Fatal("expected the mock connection to fail the extract query")
	}
	if !strings.HasPrefix(out.String(), "Extract biosignal data...") {
		t.Fatalf("expected the extract status line, got %q", out.String())
	}
	if strings.Contains(out.String(), "Done!") {
		t.Fatal("expected the run to stop before completion")
	}
}

func TestRunBiosignalMissingIdentifierMap(t *testing.T) {
	dir := writeTestFiles(t, map[string]string{
		"biosignal_config.yaml": testSourceConfig,
		"cdm_config.yaml":       testTargetConfig,
	})
	openDbConnection = func(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, probeOut io.Writer) (shared.Connector, error) {
		t.Fatal("must not connect without an identifier map")
		return nil, nil
	}
	defer func() { openDbConnection = defaultOpener }()
	if err := RunBiosignal(newTestBiosignalConfig(dir, &bytes.Buffer{})); err == nil {
		t.Fatal("expected an error for a missing identifier map")
	}
}
