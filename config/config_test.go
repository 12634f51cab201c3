/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/tablemigrate/errors"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	cfg.Source.Table = "src"
	cfg.Destination.Table = "dst"
	require.NoError(t, cfg.Validate())

	policy, err := cfg.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, 5, policy.MaxRetries)
	assert.Equal(t, 5*time.Second, policy.InitialWait)
	assert.Zero(t, policy.MaxWait)
	assert.Zero(t, policy.Jitter)

	q := cfg.QueryParams()
	assert.Equal(t, int32(1000), q.PageSize)
	assert.Equal(t, `SELECT * FROM "src"`, q.EffectiveStatement())
	assert.True(t, q.CrossPartition)

	mc, err := cfg.MigrateConfig()
	require.NoError(t, err)
	assert.Equal(t, "id", mc.IDAttribute)
	assert.Equal(t, 1, mc.Workers)
	assert.Equal(t, "dst", mc.DestinationName)

	assert.Equal(t, 0, cfg.SourceConnection().MaxAttempts)
	assert.Equal(t, 1, cfg.DestinationConnection().MaxAttempts)
}

func TestLoadWithoutSources(t *testing.T) {
	cfg, err := Load(NewViper(), "", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "migrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  table: FMIBaseContainer
  connection:
    region: eu-west-1
destination:
  table: FMIBaseContainerCopy
  connection:
    region: eu-central-1
    endpoint: http://localhost:8000
pageSize: 250
maxRetries: 3
initialWait: 2s
maxWait: 1m
jitter: 0.2
workers: 4
partitionKeyType: N
`), 0o600))

	t.Setenv("TABLEMIGRATE_DESTINATION_TABLE", "override")
	t.Setenv("TABLEMIGRATE_WORKERS", "2")

	cfg, err := Load(NewViper(), path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "FMIBaseContainer", cfg.Source.Table)
	assert.Equal(t, "eu-west-1", cfg.Source.Connection.Region)
	assert.Equal(t, "override", cfg.Destination.Table)
	assert.Equal(t, "http://localhost:8000", cfg.DestinationConnection().Endpoint)
	assert.Equal(t, int32(250), cfg.PageSize)
	assert.Equal(t, 2, cfg.Workers)

	policy, err := cfg.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, 3, policy.MaxRetries)
	assert.Equal(t, 2*time.Second, policy.InitialWait)
	assert.Equal(t, time.Minute, policy.MaxWait)
	assert.Equal(t, 0.2, policy.Jitter)

	opts, err := cfg.DestinationOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)
	kind, err := cfg.partitionKeyType()
	require.NoError(t, err)
	assert.Equal(t, types.ScalarAttributeTypeN, kind)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TABLEMIGRATE_SOURCE_TABLE=from-dotenv\n"), 0o600))

	// godotenv never overrides variables that are already set; t.Setenv
	// restores the previous state once the test ends.
	t.Setenv("TABLEMIGRATE_SOURCE_TABLE", "")
	require.NoError(t, os.Unsetenv("TABLEMIGRATE_SOURCE_TABLE"))

	cfg, err := Load(NewViper(), "", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Source.Table)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pageSize: [1"), 0o600))
	_, err = Load(NewViper(), path)
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TABLEMIGRATE_SOURCE_TABLE", "a")
	t.Setenv("TABLEMIGRATE_DESTINATION_TABLE", "b")
	t.Setenv("TABLEMIGRATE_DESTINATION_ENDPOINT", "http://localhost:8000")
	t.Setenv("TABLEMIGRATE_PAGE_SIZE", "10")
	t.Setenv("TABLEMIGRATE_MAX_RETRIES", "7")
	t.Setenv("TABLEMIGRATE_JITTER", "0.5")
	t.Setenv("TABLEMIGRATE_CONSISTENT_READ", "true")
	t.Setenv("TABLEMIGRATE_QUERY", `SELECT * FROM "a" WHERE kind = 'x'`)

	cfg, err := Load(NewViper(), "", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "a", cfg.Source.Table)
	assert.Equal(t, "b", cfg.Destination.Table)
	assert.Equal(t, "http://localhost:8000", cfg.Destination.Connection.Endpoint)
	assert.Equal(t, int32(10), cfg.PageSize)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, 0.5, cfg.Jitter)
	assert.True(t, cfg.ConsistentRead)
	assert.Equal(t, `SELECT * FROM "a" WHERE kind = 'x'`, cfg.QueryParams().EffectiveStatement())
	// untouched keys keep their defaults
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "5s", cfg.InitialWait)
}

func TestLoadEnvTypeErrors(t *testing.T) {
	for _, name := range []string{"PAGE_SIZE", "MAX_RETRIES", "WORKERS", "JITTER", "CONSISTENT_READ"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv("TABLEMIGRATE_"+name, "lots")
			_, err := Load(NewViper(), "", filepath.Join(t.TempDir(), "none.env"))
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestLoadOverrideWins(t *testing.T) {
	t.Setenv("TABLEMIGRATE_WORKERS", "2")
	v := NewViper()
	// flags bound through viper take the same path as Set
	v.Set(KeyWorkers, 8)

	cfg, err := Load(v, "", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
}

func TestPartitionKeyInheritance(t *testing.T) {
	cfg := Default()
	cfg.Source.Table = "src"
	cfg.Destination.Table = "dst"
	assert.Empty(t, cfg.PartitionKey)
	assert.Empty(t, cfg.PartitionKeyType)

	kind, err := cfg.partitionKeyType()
	require.NoError(t, err)
	assert.Equal(t, types.ScalarAttributeTypeS, kind)

	cfg.InheritPartitionKey("pk", types.ScalarAttributeTypeN)
	assert.Equal(t, "pk", cfg.PartitionKey)
	kind, err = cfg.partitionKeyType()
	require.NoError(t, err)
	assert.Equal(t, types.ScalarAttributeTypeN, kind)

	explicit := Default()
	explicit.PartitionKey = "id"
	explicit.PartitionKeyType = "S"
	explicit.InheritPartitionKey("pk", types.ScalarAttributeTypeN)
	assert.Equal(t, "id", explicit.PartitionKey)
	assert.Equal(t, "S", explicit.PartitionKeyType)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Source.Table = "src"
		cfg.Destination.Table = "dst"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing source", func(c *Config) { c.Source.Table = "" }},
		{"missing destination", func(c *Config) { c.Destination.Table = "" }},
		{"missing id attribute", func(c *Config) { c.IDAttribute = "" }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"jitter above one", func(c *Config) { c.Jitter = 1.5 }},
		{"bad key type", func(c *Config) { c.PartitionKeyType = "BOOL" }},
		{"bad initial wait", func(c *Config) { c.InitialWait = "soon" }},
		{"negative max wait", func(c *Config) { c.MaxWait = "-1s" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}
