/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	tmerrors "github.com/suparena/tablemigrate/errors"
	"github.com/suparena/tablemigrate/storagemodels"
)

// DefaultProvisionTimeout bounds how long EnsureContainer waits for a new table to become active.
const DefaultProvisionTimeout = 5 * time.Minute

// API is the subset of the DynamoDB client used by the data store.
type API interface {
	ExecuteStatement(ctx context.Context, params *sdk.ExecuteStatementInput, optFns ...func(*sdk.Options)) (*sdk.ExecuteStatementOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
}

// ConnectionConfig holds what is needed to reach one DynamoDB endpoint.
type ConnectionConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. http://localhost:8000 for DynamoDB Local.
	Endpoint string
	// MaxAttempts caps the SDK's own retryer. Zero keeps the SDK default.
	MaxAttempts int
}

// DynamodbDataStore implements datastore.Source and datastore.Destination on top of one DynamoDB table.
type DynamodbDataStore struct {
	client           API
	tableName        string
	partitionKey     string
	partitionKeyType types.ScalarAttributeType
	provisionTimeout time.Duration
	logger           zerolog.Logger
}

// Option configures a DynamodbDataStore.
type Option func(*DynamodbDataStore)

// WithPartitionKey sets the hash key used when EnsureContainer has to create the table.
func WithPartitionKey(name string, kind types.ScalarAttributeType) Option {
	return func(d *DynamodbDataStore) {
		d.partitionKey = name
		d.partitionKeyType = kind
	}
}

// WithProvisionTimeout sets how long EnsureContainer waits for the table to become active.
func WithProvisionTimeout(timeout time.Duration) Option {
	return func(d *DynamodbDataStore) {
		d.provisionTimeout = timeout
	}
}

// WithLogger sets the logger used for provisioning and paging diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *DynamodbDataStore) {
		d.logger = logger
	}
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used when an
// access key is given, otherwise the default credential chain applies.
func NewDynamoDBClient(ctx context.Context, conn ConnectionConfig) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(conn.Region),
	}
	if conn.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conn.AccessKey, conn.SecretKey, ""),
		))
	}
	if conn.MaxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(conn.MaxAttempts))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if conn.Endpoint != "" {
			o.BaseEndpoint = aws.String(conn.Endpoint)
		}
	})
	return client, nil
}

// NewDynamodbDataStore constructs a DynamodbDataStore with its own client.
func NewDynamodbDataStore(ctx context.Context, conn ConnectionConfig, tableName string, opts ...Option) (*DynamodbDataStore, error) {
	client, err := NewDynamoDBClient(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	d := NewDynamodbDataStoreWithClient(client, tableName, opts...)
	d.logger.Debug().
		Str("table", tableName).
		Str("region", conn.Region).
		Str("endpoint", conn.Endpoint).
		Msg("DynamoDB client initialized")
	return d, nil
}

// NewDynamodbDataStoreWithClient wraps an existing client.
func NewDynamodbDataStoreWithClient(client API, tableName string, opts ...Option) *DynamodbDataStore {
	d := &DynamodbDataStore{
		client:           client,
		tableName:        tableName,
		partitionKey:     storagemodels.DefaultIDAttribute,
		partitionKeyType: types.ScalarAttributeTypeS,
		provisionTimeout: DefaultProvisionTimeout,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TableName returns the table this store reads from or writes to.
func (d *DynamodbDataStore) TableName() string {
	return d.tableName
}

// Upsert writes the record with PutItem, replacing any item with the same key.
func (d *DynamodbDataStore) Upsert(ctx context.Context, record storagemodels.Record) error {
	_, err := d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      record.Item,
	})
	if err != nil {
		err = fmt.Errorf("PutItem failed: %w", err)
		if isPermanentError(err) {
			return tmerrors.NewPermanentError(err)
		}
		return err
	}
	return nil
}

// EnsureContainer creates the table with an on-demand hash key schema when it does
// not exist, then waits until it is active.
func (d *DynamodbDataStore) EnsureContainer(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: &d.tableName})
	if err == nil {
		d.logger.Debug().Str("table", d.tableName).Msg("destination table exists")
		return nil
	}

	var nfe *types.ResourceNotFoundException
	if !errors.As(err, &nfe) {
		return tmerrors.NewProvisionError(d.tableName, fmt.Errorf("DescribeTable error: %w", err))
	}

	_, err = d.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: &d.tableName,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(d.partitionKey), AttributeType: d.partitionKeyType},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(d.partitionKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		// Somebody else created it in the meantime; wait for it like our own.
		var riu *types.ResourceInUseException
		if !errors.As(err, &riu) {
			return tmerrors.NewProvisionError(d.tableName, fmt.Errorf("CreateTable error: %w", err))
		}
	}

	d.logger.Info().
		Str("table", d.tableName).
		Str("partitionKey", d.partitionKey).
		Msg("created destination table, waiting for it to become active")

	waiter := sdk.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: &d.tableName}, d.provisionTimeout); err != nil {
		return tmerrors.NewProvisionError(d.tableName, fmt.Errorf("waiting for table: %w", err))
	}
	return nil
}

// PartitionKey describes the table and returns the name and scalar type of its
// hash key.
func (d *DynamodbDataStore) PartitionKey(ctx context.Context) (string, types.ScalarAttributeType, error) {
	out, err := d.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: &d.tableName})
	if err != nil {
		var nfe *types.ResourceNotFoundException
		if errors.As(err, &nfe) {
			return "", "", tmerrors.NewNotFoundError(d.tableName, "")
		}
		return "", "", fmt.Errorf("DescribeTable error: %w", err)
	}
	if out.Table == nil {
		return "", "", fmt.Errorf("DescribeTable returned no description for %s", d.tableName)
	}

	var name string
	for _, k := range out.Table.KeySchema {
		if k.KeyType == types.KeyTypeHash && k.AttributeName != nil {
			name = *k.AttributeName
			break
		}
	}
	if name == "" {
		return "", "", fmt.Errorf("table %s has no hash key", d.tableName)
	}
	for _, def := range out.Table.AttributeDefinitions {
		if def.AttributeName != nil && *def.AttributeName == name {
			return name, def.AttributeType, nil
		}
	}
	return "", "", fmt.Errorf("table %s does not define hash key attribute %s", d.tableName, name)
}

// isPermanentError reports whether DynamoDB rejected the request in a way that
// repeating it cannot fix.
func isPermanentError(err error) bool {
	var icse *types.ItemCollectionSizeLimitExceededException
	if errors.As(err, &icse) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ValidationException", "SerializationException", "AccessDeniedException":
			return true
		}
	}
	return false
}
