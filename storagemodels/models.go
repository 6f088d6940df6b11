/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
)

// Formats a DescriptorRecord body may be written in.
const (
	FormatYAML = "yaml"
)

// DescriptorRecord is a descriptor document kept in a datastore. Body holds
// the document text in Format; the registry reads it under the origin key
// "store:<Key>".
type DescriptorRecord struct {
	Key       string           `json:"Key"`
	Format    string           `json:"Format,omitempty"`
	Body      string           `json:"Body"`
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt,omitempty"`
}

// recordItem is the stored shape of a DescriptorRecord. strfmt.DateTime has
// no attribute value codec, so timestamps travel as RFC 3339 strings.
type recordItem struct {
	Key       string `dynamodbav:"Key"`
	Format    string `dynamodbav:"Format,omitempty"`
	Body      string `dynamodbav:"Body"`
	UpdatedAt string `dynamodbav:"UpdatedAt,omitempty"`
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
func (r DescriptorRecord) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	item := recordItem{Key: r.Key, Format: r.Format, Body: r.Body}
	if r.UpdatedAt != nil {
		item.UpdatedAt = r.UpdatedAt.String()
	}
	return attributevalue.Marshal(item)
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
func (r *DescriptorRecord) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var item recordItem
	if err := attributevalue.Unmarshal(av, &item); err != nil {
		return err
	}
	r.Key, r.Format, r.Body = item.Key, item.Format, item.Body
	r.UpdatedAt = nil
	if item.UpdatedAt != "" {
		ts, err := strfmt.ParseDateTime(item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("record %s: invalid UpdatedAt: %w", item.Key, err)
		}
		r.UpdatedAt = &ts
	}
	return nil
}

// QueryParams defines parameters for a DynamoDB Query operation.
type QueryParams struct {
	// TableName overrides the store's table when set.
	TableName string
	// KeyConditionExpression is the primary condition for the query.
	KeyConditionExpression string
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// IndexName is optional if you wish to query a secondary index.
	IndexName *string
	// Limit defines an optional limit per query page.
	Limit *int32
	// ExclusiveStartKey for pagination
	ExclusiveStartKey map[string]types.AttributeValue
	// ScanIndexForward specifies the order for index traversal.
	ScanIndexForward *bool
}
