package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/suparena/tablemigrate/config"
	"github.com/suparena/tablemigrate/migrate"
	"github.com/suparena/tablemigrate/progress"
)

type runFlags struct {
	configPath string
	envFiles   []string
	strict     bool
}

// flagKeys maps run flags to the configuration keys they override.
var flagKeys = map[string]string{
	"source-table":       config.KeySourceTable,
	"destination-table":  config.KeyDestinationTable,
	"query":              config.KeyQuery,
	"id-attribute":       config.KeyIDAttribute,
	"partition-key":      config.KeyPartitionKey,
	"partition-key-type": config.KeyPartitionKeyType,
	"consistent-read":    config.KeyConsistentRead,
	"page-size":          config.KeyPageSize,
	"max-retries":        config.KeyMaxRetries,
	"initial-wait":       config.KeyInitialWait,
	"max-wait":           config.KeyMaxWait,
	"jitter":             config.KeyJitter,
	"workers":            config.KeyWorkers,
	"log-format":         config.KeyLogFormat,
	"log-level":          config.KeyLogLevel,
	"report":             config.KeyReport,
}

func newRunCommand(stores storeFactory) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate all records from the source table to the destination table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.NewViper()
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			cfg, err := config.Load(v, f.configPath, f.envFiles...)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runMigration(cmd, cfg, stores, f.strict)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	flags.StringSliceVar(&f.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	flags.BoolVar(&f.strict, "strict", false, "exit with an error when any record failed")

	flags.String("source-table", "", "source table name")
	flags.String("destination-table", "", "destination table name")
	flags.String("query", "", "PartiQL select over the source (default: all records)")
	flags.String("id-attribute", "", "attribute holding the record identifier (default id)")
	flags.String("partition-key", "", "hash key of a created destination table (default: source key)")
	flags.String("partition-key-type", "", "S, N or B (default: source key type)")
	flags.Bool("consistent-read", false, "strongly consistent source reads")
	flags.Int32("page-size", 0, "maximum records per page")
	flags.Int("max-retries", 0, "upsert attempts per record")
	flags.String("initial-wait", "", "first backoff duration, doubled after every failure")
	flags.String("max-wait", "", "cap for a single backoff duration (0 = none)")
	flags.Float64("jitter", 0, "fraction of each backoff that may be randomly shaved off (0-1)")
	flags.Int("workers", 0, "concurrent upserts per page")
	flags.String("log-format", "", "console or json")
	flags.String("log-level", "", "zerolog level")
	flags.String("report", "", "write the YAML run summary to this file")

	return cmd
}

// bindFlags lets flags set on the command line override the other sources.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}

func runMigration(cmd *cobra.Command, cfg *config.Config, stores storeFactory, strict bool) error {
	ctx := cmd.Context()

	logger, err := progress.NewZerolog(cmd.OutOrStdout(), cfg.LogFormat, cfg.Level())
	if err != nil {
		return err
	}

	source, dest, err := stores(ctx, cfg, logger)
	if err != nil {
		return err
	}

	mc, err := cfg.MigrateConfig()
	if err != nil {
		return err
	}

	m := migrate.New(source, dest, mc,
		migrate.WithReporter(progress.NewLogger(logger)),
		migrate.WithLogger(logger))
	summary, runErr := m.Run(ctx)

	if cfg.Report != "" && summary != nil {
		if err := progress.WriteReportFile(cfg.Report, summary); err != nil {
			logger.Error().Err(err).Str("path", cfg.Report).Msg("could not write run report")
		}
	}

	if runErr != nil {
		return fmt.Errorf("migration aborted: %w", runErr)
	}
	if strict && summary.Failed > 0 {
		return fmt.Errorf("%d records failed to migrate", summary.Failed)
	}
	return nil
}
