package rdbms

import (
	"fmt"
	"strings"

	"github.com/relloyd/biopipe/constants"
)

// UnsupportedDriverError is returned when a configured driver is not one that biopipe can connect with.
type UnsupportedDriverError struct {
	Driver string
}

func (e UnsupportedDriverError) Error() string {
	return fmt.Sprintf("unsupported database driver %q: use one of mssql, sql server, sqlserver, postgresql or postgres", e.Driver)
}

// driverAliases maps the lower-cased driver names accepted in config to connection types.
var driverAliases = map[string]string{
	"mssql":      constants.ConnectionTypeSqlServer,
	"sql server": constants.ConnectionTypeSqlServer,
	"sqlserver":  constants.ConnectionTypeSqlServer,
	"postgresql": constants.ConnectionTypePostgres,
	"postgres":   constants.ConnectionTypePostgres,
}

// NormalizeDriver returns the connection type for the supplied driver name.
// Matching ignores case and surrounding spaces.
func NormalizeDriver(driver string) (string, error) {
	t, ok := driverAliases[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return "", UnsupportedDriverError{Driver: driver}
	}
	return t, nil
}
