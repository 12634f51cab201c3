//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/tablemigrate/storagemodels"
)

// Runs against a real endpoint, typically DynamoDB Local:
//
//	docker run -p 8000:8000 amazon/dynamodb-local
//	AWS_ENDPOINT=http://localhost:8000 go test -tags integration ./datastore/ddb/...
func getIntegrationStore(t *testing.T, table string) *DynamodbDataStore {
	t.Helper()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, proceeding with environment variables")
	}

	endpoint := os.Getenv("AWS_ENDPOINT")
	if endpoint == "" && os.Getenv("AWS_ACCESS_KEY") == "" {
		t.Skip("AWS_ENDPOINT or AWS_ACCESS_KEY not set")
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	conn := ConnectionConfig{
		Region:      region,
		AccessKey:   os.Getenv("AWS_ACCESS_KEY"),
		SecretKey:   os.Getenv("AWS_SECRET_KEY"),
		Endpoint:    endpoint,
		MaxAttempts: 1,
	}
	if conn.AccessKey == "" {
		conn.AccessKey, conn.SecretKey = "local", "local"
	}

	store, err := NewDynamodbDataStore(context.Background(), conn, table,
		WithPartitionKey("id", types.ScalarAttributeTypeS),
		WithProvisionTimeout(time.Minute))
	require.NoError(t, err)
	return store
}

func TestIntegrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	table := fmt.Sprintf("tablemigrate-it-%d", time.Now().UnixNano())
	store := getIntegrationStore(t, table)

	require.NoError(t, store.EnsureContainer(ctx))
	// second call finds the table
	require.NoError(t, store.EnsureContainer(ctx))

	for i := 0; i < 5; i++ {
		rec := storagemodels.NewRecord(item(fmt.Sprintf("%d", i)))
		require.NoError(t, store.Upsert(ctx, rec))
		require.NoError(t, store.Upsert(ctx, rec))
	}

	it := store.Pages(&storagemodels.QueryParams{PageSize: 2, ConsistentRead: true})
	seen := map[string]bool{}
	for it.HasMorePages() {
		page, err := it.NextPage(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Records), 2)
		for _, r := range page.Records {
			id, err := r.ID("id")
			require.NoError(t, err)
			assert.False(t, seen[id], "pages must be disjoint")
			seen[id] = true
		}
	}
	assert.Len(t, seen, 5)
}
