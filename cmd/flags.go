package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/biopipe/config"
	"github.com/relloyd/biopipe/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug | trace\" where step stats are \n" +
			"output using \"info\""},
	"source-config": cliFlag{name: "source-config", shortHand: "s",
		desc: "YAML file holding the biosignal source database connection \n" +
			"(driver, server, port, database, schema, username, password)"},
	"target-config": cliFlag{name: "target-config", shortHand: "t",
		desc: "YAML file holding the CDM target database connection"},
	"id-map": cliFlag{name: "id-map", shortHand: "i",
		desc: "CSV file with columns patno and cdm_patno used to remap patient identifiers. \n" +
			"Use s3://<bucket>/<key> to read it from AWS S3"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS S3 bucket region for an s3:// id-map (or set AWS_REGION)"},
	"staging-table": cliFlag{name: "staging-table", shortHand: "S",
		desc: "Staging table created in the target schema. It is dropped and recreated on every run"},
	"observation-table": cliFlag{name: "observation-table", shortHand: "O",
		desc: "CDM observation table in the target schema"},
	"bulk-mode": cliFlag{name: "bulk-mode", shortHand: "b",
		desc: "How to load the staging table: \"copy\" uses the driver's bulk copy; \n" +
			"\"batch\" uses multi-row INSERT statements"},
	"batch-size": cliFlag{name: "batch-size", shortHand: "B",
		desc: "Number of rows in each INSERT statement when bulk-mode is \"batch\""},
	"rejects-file": cliFlag{name: "rejects-file", shortHand: "r",
		desc: "Optional CSV file to save records that will not reach the observation table, \n" +
			"with a reason column (use a .gz suffix to compress)"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Print the SQL without connecting to any database"},
	"print-header": cliFlag{name: "print-header", shortHand: "x",
		desc: "Print a header for SQL query results"},
	"schema": cliFlag{name: "schema", shortHand: "c",
		desc: "YAML cleaning schema with columnTypes, requiredColumns, domainColumns and optional rules"},
	"domain": cliFlag{name: "domain", shortHand: "D",
		desc: "CDM domain in the cleaning schema, e.g. measurement"},
	"input": cliFlag{name: "input", shortHand: "I",
		desc: "CSV file of rows to clean (use a .gz suffix for compressed input)"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "CSV file to write the cleaned rows to"},
	"full-time": cliFlag{name: "full-time", shortHand: "F",
		desc: "Keep rows of any date, else keep only the last 40 days"},
}

// addFlag adds a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// The default value of the flag is taken from environment variable BP_<NAME>, else the config file, else
// the supplied defaultValue, so that an explicit flag always wins.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from env, config or the supplied defaultValue
	desc := sw.desc + desc2
	switch p := targetVar.(type) {
	case *string:
		c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
		if sw.val != "" { // if there is a value via env, config or default...
			mustSetFlag(c.Flags(), sw.name, sw.val) // signal that the flag was set so required flags are satisfied.
		}
	case *bool:
		defaultBool, _ := strconv.ParseBool(strings.ToLower(sw.val))
		c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
		mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(defaultBool))
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
		if sw.val != "" {
			mustSetFlag(c.Flags(), sw.name, sw.val)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	if required {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the default value of flag name from the environment, else the config file,
// else uses the supplied defaultValue.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := switches[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if err := helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val); err == nil {
		return s
	}
	err := fnGetConfig(s.name, &s.val)
	if err != nil || s.val == "" { // if there was no key found...
		if err != nil && !errors.As(err, &config.KeyNotFoundError{}) {
			fmt.Printf("unable to read default for flag %q: %v\n", name, err)
		}
		s.val = defaultValue
	}
	return s
}

// flagNameToEnvVar returns the environment variable that supplies a default for flag name, e.g. BP_LOG_LEVEL.
func flagNameToEnvVar(name string) string {
	return helper.GetEnvVarName(name)
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// getQueryFromArgsFunc saves arg[0] as the connection and concatenates the remaining args into the query.
// Returns an error if there are too few args.
func getQueryFromArgsFunc(conn *string, query *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 { // if we are missing arguments...
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("please supply a connection and a SQL query")
		}
		*conn = args[0]
		*query = strings.Join(args[1:], " ")
		return nil
	}
}
