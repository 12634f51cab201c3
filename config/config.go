/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/suparena/tablemigrate/datastore/ddb"
	"github.com/suparena/tablemigrate/errors"
	"github.com/suparena/tablemigrate/migrate"
	"github.com/suparena/tablemigrate/progress"
	"github.com/suparena/tablemigrate/retry"
	"github.com/suparena/tablemigrate/storagemodels"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TABLEMIGRATE_"

// Connection holds the credentials and endpoint of one side of the migration.
type Connection struct {
	Region    string `yaml:"region" mapstructure:"region"`
	AccessKey string `yaml:"accessKey" mapstructure:"accessKey"`
	SecretKey string `yaml:"secretKey" mapstructure:"secretKey"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
}

// Container identifies a table and how to reach it.
type Container struct {
	Table      string     `yaml:"table" mapstructure:"table"`
	Connection Connection `yaml:"connection" mapstructure:"connection"`
}

// Config is the complete configuration of a migration run.
type Config struct {
	Source      Container `yaml:"source" mapstructure:"source"`
	Destination Container `yaml:"destination" mapstructure:"destination"`

	// Query is a PartiQL select. Empty selects every record of the source table.
	Query       string `yaml:"query" mapstructure:"query"`
	IDAttribute string `yaml:"idAttribute" mapstructure:"idAttribute"`
	// PartitionKey and PartitionKeyType describe the hash key used when the
	// destination table has to be created. Left empty, they are taken from
	// the source table's key schema.
	PartitionKey     string `yaml:"partitionKey" mapstructure:"partitionKey"`
	PartitionKeyType string `yaml:"partitionKeyType" mapstructure:"partitionKeyType"`
	ConsistentRead   bool   `yaml:"consistentRead" mapstructure:"consistentRead"`

	PageSize    int32   `yaml:"pageSize" mapstructure:"pageSize"`
	MaxRetries  int     `yaml:"maxRetries" mapstructure:"maxRetries"`
	InitialWait string  `yaml:"initialWait" mapstructure:"initialWait"`
	MaxWait     string  `yaml:"maxWait" mapstructure:"maxWait"`
	Jitter      float64 `yaml:"jitter" mapstructure:"jitter"`
	Workers     int     `yaml:"workers" mapstructure:"workers"`

	LogFormat string `yaml:"logFormat" mapstructure:"logFormat"`
	LogLevel  string `yaml:"logLevel" mapstructure:"logLevel"`
	// Report is an optional path the YAML run summary is written to.
	Report string `yaml:"report" mapstructure:"report"`
}

// Configuration keys, as used in the YAML file and for flag bindings.
const (
	KeySourceTable          = "source.table"
	KeySourceRegion         = "source.connection.region"
	KeySourceAccessKey      = "source.connection.accessKey"
	KeySourceSecretKey      = "source.connection.secretKey"
	KeySourceEndpoint       = "source.connection.endpoint"
	KeyDestinationTable     = "destination.table"
	KeyDestinationRegion    = "destination.connection.region"
	KeyDestinationAccessKey = "destination.connection.accessKey"
	KeyDestinationSecretKey = "destination.connection.secretKey"
	KeyDestinationEndpoint  = "destination.connection.endpoint"
	KeyQuery                = "query"
	KeyIDAttribute          = "idAttribute"
	KeyPartitionKey         = "partitionKey"
	KeyPartitionKeyType     = "partitionKeyType"
	KeyConsistentRead       = "consistentRead"
	KeyPageSize             = "pageSize"
	KeyMaxRetries           = "maxRetries"
	KeyInitialWait          = "initialWait"
	KeyMaxWait              = "maxWait"
	KeyJitter               = "jitter"
	KeyWorkers              = "workers"
	KeyLogFormat            = "logFormat"
	KeyLogLevel             = "logLevel"
	KeyReport               = "report"
)

// envBinding maps a configuration key to its variable name without EnvPrefix.
type envBinding struct {
	Key    string
	EnvVar string
}

var envBindings = []envBinding{
	{KeySourceTable, "SOURCE_TABLE"},
	{KeySourceRegion, "SOURCE_REGION"},
	{KeySourceAccessKey, "SOURCE_ACCESS_KEY"},
	{KeySourceSecretKey, "SOURCE_SECRET_KEY"},
	{KeySourceEndpoint, "SOURCE_ENDPOINT"},
	{KeyDestinationTable, "DESTINATION_TABLE"},
	{KeyDestinationRegion, "DESTINATION_REGION"},
	{KeyDestinationAccessKey, "DESTINATION_ACCESS_KEY"},
	{KeyDestinationSecretKey, "DESTINATION_SECRET_KEY"},
	{KeyDestinationEndpoint, "DESTINATION_ENDPOINT"},
	{KeyQuery, "QUERY"},
	{KeyIDAttribute, "ID_ATTRIBUTE"},
	{KeyPartitionKey, "PARTITION_KEY"},
	{KeyPartitionKeyType, "PARTITION_KEY_TYPE"},
	{KeyConsistentRead, "CONSISTENT_READ"},
	{KeyPageSize, "PAGE_SIZE"},
	{KeyMaxRetries, "MAX_RETRIES"},
	{KeyInitialWait, "INITIAL_WAIT"},
	{KeyMaxWait, "MAX_WAIT"},
	{KeyJitter, "JITTER"},
	{KeyWorkers, "WORKERS"},
	{KeyLogFormat, "LOG_FORMAT"},
	{KeyLogLevel, "LOG_LEVEL"},
	{KeyReport, "REPORT"},
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		IDAttribute: storagemodels.DefaultIDAttribute,
		PageSize:    storagemodels.DefaultPageSize,
		MaxRetries:  retry.DefaultMaxRetries,
		InitialWait: retry.DefaultInitialWait.String(),
		MaxWait:     "0s",
		Workers:     1,
		LogFormat:   progress.FormatConsole,
		LogLevel:    zerolog.InfoLevel.String(),
	}
}

// NewViper returns a viper instance carrying the defaults and the
// TABLEMIGRATE_* environment bindings. Callers may bind command line flags
// to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	d := Default()
	v.SetDefault(KeyIDAttribute, d.IDAttribute)
	v.SetDefault(KeyPageSize, d.PageSize)
	v.SetDefault(KeyMaxRetries, d.MaxRetries)
	v.SetDefault(KeyInitialWait, d.InitialWait)
	v.SetDefault(KeyMaxWait, d.MaxWait)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	for _, b := range envBindings {
		// BindEnv only fails without a key.
		_ = v.BindEnv(b.Key, EnvPrefix+b.EnvVar)
	}
	return v
}

// Load builds the configuration from v: defaults, the optional YAML file at
// path, the optional dotenv files, the process environment and any flags
// bound to v, in increasing precedence.
func Load(v *viper.Viper, path string, envFiles ...string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Missing dotenv files are fine, the environment may already be set.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewValidationError("config", err.Error())
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Source.Table == "" {
		return errors.NewValidationError("source.table", "is required")
	}
	if c.Destination.Table == "" {
		return errors.NewValidationError("destination.table", "is required")
	}
	if c.IDAttribute == "" {
		return errors.NewValidationError("idAttribute", "is required")
	}
	if c.PageSize <= 0 {
		return errors.NewValidationError("pageSize", "must be positive")
	}
	if c.MaxRetries <= 0 {
		return errors.NewValidationError("maxRetries", "must be positive")
	}
	if c.Workers <= 0 {
		return errors.NewValidationError("workers", "must be positive")
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		return errors.NewValidationError("jitter", "must be between 0 and 1")
	}
	if _, err := c.partitionKeyType(); err != nil {
		return err
	}
	if _, err := c.RetryPolicy(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("logLevel", err.Error())
	}
	return nil
}

// RetryPolicy converts the retry settings.
func (c *Config) RetryPolicy() (retry.Policy, error) {
	initial, err := parseDuration("initialWait", c.InitialWait)
	if err != nil {
		return retry.Policy{}, err
	}
	maxWait, err := parseDuration("maxWait", c.MaxWait)
	if err != nil {
		return retry.Policy{}, err
	}
	return retry.Policy{
		MaxRetries:  c.MaxRetries,
		InitialWait: initial,
		MaxWait:     maxWait,
		Jitter:      c.Jitter,
	}, nil
}

// QueryParams converts the source query settings.
func (c *Config) QueryParams() storagemodels.QueryParams {
	return storagemodels.QueryParams{
		TableName:      c.Source.Table,
		Statement:      c.Query,
		PageSize:       c.PageSize,
		ConsistentRead: c.ConsistentRead,
		CrossPartition: true,
	}
}

// MigrateConfig converts the configuration for the migrator.
func (c *Config) MigrateConfig() (migrate.Config, error) {
	policy, err := c.RetryPolicy()
	if err != nil {
		return migrate.Config{}, err
	}
	return migrate.Config{
		Query:           c.QueryParams(),
		IDAttribute:     c.IDAttribute,
		Policy:          policy,
		Workers:         c.Workers,
		SourceName:      c.Source.Table,
		DestinationName: c.Destination.Table,
	}, nil
}

// SourceConnection returns the DynamoDB connection of the source side.
func (c *Config) SourceConnection() ddb.ConnectionConfig {
	return connection(c.Source.Connection, 0)
}

// DestinationConnection returns the DynamoDB connection of the destination
// side. The SDK retryer is limited to one attempt so the retry policy alone
// decides how often an upsert runs.
func (c *Config) DestinationConnection() ddb.ConnectionConfig {
	return connection(c.Destination.Connection, 1)
}

// InheritPartitionKey fills an unset partition key name or type from the
// source table's key schema.
func (c *Config) InheritPartitionKey(name string, kind types.ScalarAttributeType) {
	if c.PartitionKey == "" {
		c.PartitionKey = name
	}
	if c.PartitionKeyType == "" {
		c.PartitionKeyType = string(kind)
	}
}

// DestinationOptions returns the store options of the destination side. An
// unset partition key falls back to the id attribute as a string key.
func (c *Config) DestinationOptions() ([]ddb.Option, error) {
	kind, err := c.partitionKeyType()
	if err != nil {
		return nil, err
	}
	name := c.PartitionKey
	if name == "" {
		name = c.IDAttribute
	}
	return []ddb.Option{ddb.WithPartitionKey(name, kind)}, nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c *Config) partitionKeyType() (types.ScalarAttributeType, error) {
	switch strings.ToUpper(c.PartitionKeyType) {
	case "", string(types.ScalarAttributeTypeS):
		return types.ScalarAttributeTypeS, nil
	case string(types.ScalarAttributeTypeN):
		return types.ScalarAttributeTypeN, nil
	case string(types.ScalarAttributeTypeB):
		return types.ScalarAttributeTypeB, nil
	default:
		return "", errors.NewValidationError("partitionKeyType", fmt.Sprintf("unknown type %q", c.PartitionKeyType))
	}
}

func connection(conn Connection, maxAttempts int) ddb.ConnectionConfig {
	return ddb.ConnectionConfig{
		Region:      conn.Region,
		AccessKey:   conn.AccessKey,
		SecretKey:   conn.SecretKey,
		Endpoint:    conn.Endpoint,
		MaxAttempts: maxAttempts,
	}
}

func parseDuration(field, value string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	d, err := strfmt.ParseDuration(value)
	if err != nil {
		return 0, errors.NewValidationError(field, fmt.Sprintf("invalid duration %q", value))
	}
	if d < 0 {
		return 0, errors.NewValidationError(field, "must not be negative")
	}
	return d, nil
}
