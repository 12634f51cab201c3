package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/suparena/tablemigrate"
	"github.com/suparena/tablemigrate/config"
	"github.com/suparena/tablemigrate/datastore"
	"github.com/suparena/tablemigrate/datastore/ddb"
)

// storeFactory opens the source and destination of a run.
type storeFactory func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (datastore.Source, datastore.Destination, error)

func dynamoStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (datastore.Source, datastore.Destination, error) {
	source, err := ddb.NewDynamodbDataStore(ctx, cfg.SourceConnection(), cfg.Source.Table, ddb.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("opening source: %w", err)
	}
	inheritPartitionKey(ctx, cfg, source, logger)

	opts, err := cfg.DestinationOptions()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, ddb.WithLogger(logger))
	dest, err := ddb.NewDynamodbDataStore(ctx, cfg.DestinationConnection(), cfg.Destination.Table, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("opening destination: %w", err)
	}
	return source, dest, nil
}

// keyDescriber reports the hash key of a table.
type keyDescriber interface {
	PartitionKey(ctx context.Context) (string, types.ScalarAttributeType, error)
}

// inheritPartitionKey copies the source hash key into an unset destination
// key so that a created destination accepts the source's items.
func inheritPartitionKey(ctx context.Context, cfg *config.Config, source keyDescriber, logger zerolog.Logger) {
	if cfg.PartitionKey != "" && cfg.PartitionKeyType != "" {
		return
	}
	name, kind, err := source.PartitionKey(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("table", cfg.Source.Table).
			Msg("could not read source key schema, using default partition key")
		return
	}
	cfg.InheritPartitionKey(name, kind)
	logger.Debug().Str("partitionKey", name).Str("type", string(kind)).Msg("using source partition key")
}

func newRootCommand(stores storeFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "tablemigrate",
		Short:         "Copy every record of one DynamoDB table into another",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCommand(stores), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := tablemigrate.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tablemigrate version %s\n", info.Version)
			fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
		},
	}
}
