package testmodels

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/go-openapi/strfmt"
	"github.com/suparena/tablemigrate/storagemodels"
)

type RatingSystem struct {

	// Timestamp when the rating system was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `dynamodbav:"createdAt"`

	// A description of the rating system.
	// Required: true
	Description *string `dynamodbav:"description"`

	// Unique identifier for the rating system.
	// Required: true
	ID *string `dynamodbav:"id"`

	// Name of the rating system.
	// Required: true
	Name *string `dynamodbav:"name"`

	// site Url
	SiteURL string `dynamodbav:"siteUrl,omitempty"`

	// Timestamp when the rating system was last updated.
	// Required: true
	// Format: date-time
	UpdatedAt *strfmt.DateTime `dynamodbav:"updatedAt"`
}

// NewRatingSystem returns a populated rating system with the given id.
func NewRatingSystem(id string) RatingSystem {
	ct := strfmt.DateTime(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	name := fmt.Sprintf("Rating system %s", id)
	desc := "Fixture rating system"
	return RatingSystem{
		ID:          &id,
		Name:        &name,
		Description: &desc,
		CreatedAt:   &ct,
		UpdatedAt:   &ct,
	}
}

// Record marshals the rating system into a source record.
func (r RatingSystem) Record() (storagemodels.Record, error) {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return storagemodels.Record{}, fmt.Errorf("failed to marshal rating system: %w", err)
	}
	return storagemodels.NewRecord(item), nil
}

// Records returns n fixture records with ids "1" through n.
func Records(n int) ([]storagemodels.Record, error) {
	out := make([]storagemodels.Record, 0, n)
	for i := 1; i <= n; i++ {
		rec, err := NewRatingSystem(fmt.Sprint(i)).Record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// FromRecord unmarshals a migrated record back into a rating system.
func FromRecord(rec storagemodels.Record) (RatingSystem, error) {
	var r RatingSystem
	if err := attributevalue.UnmarshalMap(rec.Item, &r); err != nil {
		return RatingSystem{}, fmt.Errorf("failed to unmarshal rating system: %w", err)
	}
	return r, nil
}
