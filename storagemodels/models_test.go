/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorRecordAttributeValues(t *testing.T) {
	ts := strfmt.DateTime(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	rec := DescriptorRecord{Key: "shop/order", Format: FormatYAML, Body: "packages: []", UpdatedAt: &ts}

	item, err := attributevalue.MarshalMap(rec)
	require.NoError(t, err)

	updated, ok := item["UpdatedAt"].(*types.AttributeValueMemberS)
	require.True(t, ok, "UpdatedAt should be stored as a string")
	assert.Equal(t, ts.String(), updated.Value)

	var back DescriptorRecord
	require.NoError(t, attributevalue.UnmarshalMap(item, &back))
	assert.Equal(t, rec.Key, back.Key)
	assert.Equal(t, rec.Body, back.Body)
	require.NotNil(t, back.UpdatedAt)
	assert.True(t, time.Time(ts).Equal(time.Time(*back.UpdatedAt)))
}

func TestDescriptorRecordWithoutTimestamp(t *testing.T) {
	item, err := attributevalue.MarshalMap(DescriptorRecord{Key: "k", Body: "b"})
	require.NoError(t, err)
	_, present := item["UpdatedAt"]
	assert.False(t, present)

	var back DescriptorRecord
	require.NoError(t, attributevalue.UnmarshalMap(item, &back))
	assert.Nil(t, back.UpdatedAt)
}

func TestDescriptorRecordInvalidTimestamp(t *testing.T) {
	item := map[string]types.AttributeValue{
		"Key":       &types.AttributeValueMemberS{Value: "k"},
		"Body":      &types.AttributeValueMemberS{Value: "b"},
		"UpdatedAt": &types.AttributeValueMemberS{Value: "yesterday"},
	}
	var back DescriptorRecord
	assert.Error(t, attributevalue.UnmarshalMap(item, &back))
}
