package constants

// Pipeline

const (
	TimeFormatYearSecondsTZ = "20060102T150405-0700"
	EnvVarPrefix            = "BP" // prefix for environment variables that override flags and config
	ServiceName             = "biopipe"
	ConnectionTypeSqlServer = "sqlserver"
	ConnectionTypePostgres  = "postgres"
	ConnectionRoleSource    = "source"
	ConnectionRoleTarget    = "target"
	ConnectionProbeSql      = "SELECT 'Connected' AS result"
)

// Defaults

const (
	DefaultSourceConfigFile    = "biosignal_config.yaml"
	DefaultTargetConfigFile    = "cdm_config.yaml"
	DefaultIdentifierMapFile   = "cdm_patno.csv"
	DefaultStagingTable        = "biosignal_meta"
	DefaultObservationTable    = "observation"
	IdentifierMapSourceColumn  = "patno"
	IdentifierMapTargetColumn  = "cdm_patno"
	ObservationTypeConceptId   = 5001
	BulkModeCopy               = "copy"
	BulkModeBatch              = "batch"
	BulkBatchSizeDefault       = 500
	CleaningTrailingWindowDays = 40
)

// Reasons recorded against dropped rows.

const (
	RejectReasonUnmappedConcept      = "unmapped_concept"
	RejectReasonUnmappedPatient      = "unmapped_patient"
	RejectReasonMalformedPatient     = "malformed_patient_id"
	RejectReasonMissingRequiredField = "missing_required_column"
	RejectReasonOutsideTimeWindow    = "outside_time_window"
	RejectReasonUnclassifiedConcept  = "concept_id_zero"
	RejectReasonRule                 = "rule"
)
