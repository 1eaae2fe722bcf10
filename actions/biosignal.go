package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/relloyd/biopipe/biosignal"
	"github.com/relloyd/biopipe/config"
	"github.com/relloyd/biopipe/constants"
	"github.com/relloyd/biopipe/helper"
	"github.com/relloyd/biopipe/rdbms"
	"github.com/relloyd/biopipe/rdbms/shared"
	"github.com/relloyd/biopipe/stats"
)

// BiosignalConfig holds the settings of one biosignal metadata load.
type BiosignalConfig struct {
	SourceConfigFile string `errorTxt:"source-config" mandatory:"yes"`
	TargetConfigFile string `errorTxt:"target-config" mandatory:"yes"`
	IdentifierMap    string `errorTxt:"id-map" mandatory:"yes"`
	S3Region         string
	StagingTable     string `errorTxt:"staging-table" mandatory:"yes"`
	ObservationTable string `errorTxt:"observation-table" mandatory:"yes"`
	BulkMode         string `errorTxt:"bulk-mode" mandatory:"yes"`
	BatchSize        int
	RejectsFile      string
	DryRun           bool
	LogLevel         string `errorTxt:"log-level" mandatory:"yes"`
	StackDumpOnPanic bool
	Out              io.Writer // status lines; defaults to stdout.
}

// RunBiosignal extracts waveform metadata from the source database, remaps it to CDM identifiers and concepts,
// stages it in the target database and appends it to the observation table.
func RunBiosignal(cfg *BiosignalConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.BulkMode != constants.BulkModeCopy && cfg.BulkMode != constants.BulkModeBatch {
		return fmt.Errorf("unsupported bulk mode %q: use %v or %v", cfg.BulkMode, constants.BulkModeCopy, constants.BulkModeBatch)
	}
	out := outputOrStdout(cfg.Out)
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	mgr := stats.NewManager(log)
	// Load configs before connecting so bad files fail fast.
	srcCfg, err := config.LoadDatabaseConfig(cfg.SourceConfigFile, constants.ConnectionRoleSource)
	if err != nil {
		return err
	}
	tgtCfg, err := config.LoadDatabaseConfig(cfg.TargetConfigFile, constants.ConnectionRoleTarget)
	if err != nil {
		return err
	}
	staging := rdbms.NewSchemaTable(tgtCfg.SchemaQualifier(), cfg.StagingTable)
	observation := rdbms.NewSchemaTable(tgtCfg.SchemaQualifier(), cfg.ObservationTable)
	if cfg.DryRun {
		d, err := shared.GetDialect(tgtCfg.ConnectionType())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, biosignal.ExtractSql(srcCfg.SchemaQualifier()))
		fmt.Fprintln(out, strings.Join(rdbms.ReplaceTableSql(d, staging, biosignal.StagingTableColumns(d)), "\n"))
		fmt.Fprintln(out, biosignal.InsertObservationsSql(d, staging, observation))
		return nil
	}
	idMap, err := biosignal.LoadIdentifierMap(log, cfg.IdentifierMap, cfg.S3Region)
	if err != nil {
		return err
	}
	ctx, cancel := interruptContext()
	defer cancel()
	src, err := openDbConnection(ctx, log, srcCfg.ConnectionDetails(constants.ConnectionRoleSource), out)
	if err != nil {
		return err
	}
	defer src.Close()
	tgt, err := openDbConnection(ctx, log, tgtCfg.ConnectionDetails(constants.ConnectionRoleTarget), out)
	if err != nil {
		return err
	}
	defer tgt.Close()
	// Extract.
	fmt.Fprintln(out, "Extract biosignal data...")
	stepExtract := mgr.AddStep("extract")
	records, err := biosignal.Extract(ctx, log, src, srcCfg.SchemaQualifier())
	if err != nil {
		return err
	}
	stepExtract.AddRowsOut(int64(len(records)))
	stepExtract.Done()
	// Transform.
	stepTransform := mgr.AddStep("transform")
	res := biosignal.Transform(log, records, idMap, biosignal.DefaultConceptMapping())
	stepTransform.AddRowsIn(int64(res.Stats.Input))
	stepTransform.AddRowsOut(int64(res.Stats.Output))
	stepTransform.Drop(constants.RejectReasonUnmappedConcept, int64(res.Stats.UnmappedConcepts))
	stepTransform.Drop(constants.RejectReasonUnmappedPatient, int64(res.Stats.UnmappedPatients))
	stepTransform.Drop(constants.RejectReasonMalformedPatient, int64(res.Stats.MalformedPatientIds))
	stepTransform.Done()
	if cfg.RejectsFile != "" {
		if err = biosignal.WriteRejects(log, cfg.RejectsFile, res.Rejects); err != nil {
			return err
		}
	}
	// Load.
	loader := &biosignal.Loader{
		Log:         log,
		DB:          tgt,
		Staging:     staging,
		Observation: observation,
		BulkMode:    cfg.BulkMode,
		BatchSize:   cfg.BatchSize,
	}
	fmt.Fprintln(out, "Insert meta table...")
	stepStage := mgr.AddStep("stage")
	stepStage.AddRowsIn(int64(len(res.Records)))
	n, err := loader.Stage(ctx, res.Records)
	if err != nil {
		return err
	}
	stepStage.AddRowsOut(n)
	stepStage.Done()
	fmt.Fprintln(out, "Insert biosignal information to CDM observation table...")
	stepInsert := mgr.AddStep("observation")
	stepInsert.AddRowsIn(n)
	n, err = loader.InsertObservations(ctx)
	if err != nil {
		return err
	}
	stepInsert.AddRowsOut(n)
	stepInsert.Done()
	fmt.Fprintln(out, "Done!")
	mgr.LogStats()
	return nil
}
