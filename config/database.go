package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"

	"github.com/relloyd/biopipe/constants"
	h "github.com/relloyd/biopipe/helper"
	"github.com/relloyd/biopipe/rdbms"
	"github.com/relloyd/biopipe/rdbms/shared"
	"github.com/spf13/viper"
)

// DatabaseConfig holds the connection settings of one database.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver" errorTxt:"driver (mssql, sql server, postgresql)" mandatory:"yes"`
	Server   string `mapstructure:"server" yaml:"server" errorTxt:"server host name" mandatory:"yes"`
	Port     string `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database" errorTxt:"database name" mandatory:"yes"`
	Schema   string `mapstructure:"schema" yaml:"schema"`
	Username string `mapstructure:"username" yaml:"username" errorTxt:"username" mandatory:"yes"`
	Password string `mapstructure:"password" yaml:"password"`
	connType string
}

var databaseConfigKeys = []string{"driver", "server", "port", "database", "schema", "username", "password"}

var defaultPorts = map[string]string{
	constants.ConnectionTypeSqlServer: "1433",
	constants.ConnectionTypePostgres:  "5432",
}

var defaultSchemas = map[string]string{
	constants.ConnectionTypeSqlServer: "dbo",
	constants.ConnectionTypePostgres:  "public",
}

// LoadDatabaseConfig reads the YAML file fileName and applies environment overrides named
// BP_<ROLE>_<KEY>, for example BP_SOURCE_PASSWORD.
// The driver is validated and defaults are applied for the port and schema.
func LoadDatabaseConfig(fileName string, role string) (*DatabaseConfig, error) {
	v := viper.New()
	v.SetConfigFile(fileName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(h.GetEnvVarName(role))
	for _, k := range databaseConfigKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileNotFoundError{fileName}
		}
		return nil, fmt.Errorf("error reading %v database config %v: %w", role, fileName, err)
	}
	c := &DatabaseConfig{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("error decoding %v database config %v: %w", role, fileName, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %v database config %v: %w", role, fileName, err)
	}
	return c, nil
}

// Validate checks mandatory fields and the driver, then applies defaults.
func (c *DatabaseConfig) Validate() error {
	if err := h.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	t, err := rdbms.NormalizeDriver(c.Driver)
	if err != nil {
		return err
	}
	c.connType = t
	if c.Port == "" {
		c.Port = defaultPorts[t]
	}
	if c.Schema == "" {
		c.Schema = defaultSchemas[t]
	}
	return nil
}

// ConnectionType returns the normalised driver, which is only available after Validate.
func (c *DatabaseConfig) ConnectionType() string {
	return c.connType
}

// SchemaQualifier returns the prefix used to qualify table names.
// SQL Server uses <database>.<schema> while PostgreSQL uses <schema> since it cannot cross databases.
func (c *DatabaseConfig) SchemaQualifier() string {
	if c.connType == constants.ConnectionTypePostgres {
		return c.Schema
	}
	return c.Database + "." + c.Schema
}

// Dsn returns the URL used to connect.
func (c *DatabaseConfig) Dsn() string {
	u := &url.URL{
		Scheme: c.connType,
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Server, c.Port),
	}
	if c.connType == constants.ConnectionTypeSqlServer {
		q := url.Values{}
		q.Set("database", c.Database)
		u.RawQuery = q.Encode()
	} else {
		u.Path = "/" + c.Database
	}
	return u.String()
}

// ConnectionDetails returns the details required by rdbms.OpenDbConnection.
func (c *DatabaseConfig) ConnectionDetails(logicalName string) shared.ConnectionDetails {
	return shared.ConnectionDetails{
		Type:        c.connType,
		LogicalName: logicalName,
		Data:        map[string]string{shared.DefaultDsnConnectionKeyNames.Dsn: c.Dsn()},
	}
}

// String redacts the password.
func (c DatabaseConfig) String() string {
	pw := ""
	if c.Password != "" {
		pw = "xxxxx"
	}
	return strings.Join([]string{
		"driver=" + c.Driver,
		"server=" + c.Server,
		"port=" + c.Port,
		"database=" + c.Database,
		"schema=" + c.Schema,
		"username=" + c.Username,
		"password=" + pw,
	}, " ")
}
