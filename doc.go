/*
Package tablemigrate copies every record of one DynamoDB table into another.

Records are read through a paginated query and upserted one by one into the
destination, which is created first when it does not exist. Failed upserts
are retried with exponential backoff; records that still fail are listed in
the run summary instead of stopping the run.

Packages:
  - storagemodels: records, pages, outcomes and the run summary
  - datastore: source and destination interfaces, with ddb and mock implementations
  - retry: the bounded exponential backoff executor
  - migrate: the orchestrator driving pages and records
  - progress: console/JSON progress events and the YAML run report
  - config: viper-layered YAML, dotenv, environment and flag configuration
  - errors: fatal, retryable and permanent error types

Basic Usage:

	cfg, _ := config.Load(config.NewViper(), "migrate.yaml")
	source, _ := ddb.NewDynamodbDataStore(ctx, cfg.SourceConnection(), cfg.Source.Table)
	dest, _ := ddb.NewDynamodbDataStore(ctx, cfg.DestinationConnection(), cfg.Destination.Table)
	mc, _ := cfg.MigrateConfig()

	summary, err := migrate.New(source, dest, mc).Run(ctx)

The tablemigrate command wraps the same steps; see cmd/tablemigrate.
*/
package tablemigrate
