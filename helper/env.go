package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/biopipe/constants"
)

// ReadValueFromEnv will read the environment variable name into val.
// If the env var is not set then return an error and leave val alone.
func ReadValueFromEnv(name string, val *string) error {
	v := os.Getenv(name)
	if v == "" {
		return fmt.Errorf("value for environment variable %v not found", name)
	}
	*val = v
	return nil
}

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then the supplied defaultValue is returned.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	if err := ReadValueFromEnv(name, &v); err != nil {
		v = defaultValue
	}
	return
}

// GetEnvVarName builds an upper case variable name from the parts using EnvVarPrefix,
// with dashes converted to underscores, e.g. "source", "server" => BP_SOURCE_SERVER.
func GetEnvVarName(parts ...string) string {
	s := make([]string, 0, len(parts)+1)
	s = append(s, constants.EnvVarPrefix)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		s = append(s, strings.ToUpper(strings.ReplaceAll(p, "-", "_")))
	}
	return strings.Join(s, "_")
}
