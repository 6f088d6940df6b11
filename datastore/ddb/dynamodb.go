/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	storecfg "github.com/suparena/entitymeta/config"
	"github.com/suparena/entitymeta/storagemodels"
)

// KeySchema maps key attribute names to templates. "{Field}" macros are
// replaced with the entity's attribute values on Put and with the lookup key
// on GetOne and Delete. PK and SK are required.
type KeySchema map[string]string

// DescriptorKeys is the key schema of descriptor records.
func DescriptorKeys() KeySchema {
	return KeySchema{
		"PK": "META#{Key}",
		"SK": "DESCRIPTOR",
	}
}

// DynamodbDataStore implements datastore.DataStore[T] by using AWS DynamoDB as the underlying data store.
type DynamodbDataStore[T any] struct {
	client    *sdk.Client
	tableName string
	keys      KeySchema
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

func expandMacros(keys KeySchema, keysInput any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(keys))
	for fieldName, template := range keys {
		res[fieldName] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			val, ok := av[strings.Trim(macro, "{}")]
			if !ok {
				return ""
			}
			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				// binary, sets, NULL and nested values have no key form
				return ""
			}
		})
	}
	return res, nil
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used
// when an access key is configured, the default credential chain otherwise.
func NewDynamoDBClient(ctx context.Context, cfg storecfg.StoreConfig) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewDynamodbDataStore constructs a DynamodbDataStore for type T.
func NewDynamodbDataStore[T any](client *sdk.Client, tableName string, keys KeySchema) (*DynamodbDataStore[T], error) {
	if client == nil {
		return nil, errors.New("nil DynamoDB client")
	}
	if tableName == "" {
		return nil, errors.New("table name is required")
	}
	if keys["PK"] == "" || keys["SK"] == "" {
		return nil, errors.New("key schema must define PK and SK")
	}
	return &DynamodbDataStore[T]{client: client, tableName: tableName, keys: keys}, nil
}

// NewDescriptorStore connects to the descriptor table named by cfg.
func NewDescriptorStore(ctx context.Context, cfg storecfg.StoreConfig) (*DynamodbDataStore[storagemodels.DescriptorRecord], error) {
	client, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewDynamodbDataStore[storagemodels.DescriptorRecord](client, cfg.Table, DescriptorKeys())
}

// GetOne retrieves a single item using a string key.
// It returns nil if no item is found.
func (d *DynamodbDataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	keyMap, err := buildKeyFromExpanded(expandStringKey(d.keys, key))
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Put stores entity with its key attributes expanded from the key schema.
func (d *DynamodbDataStore[T]) Put(ctx context.Context, entity T) error {
	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	expanded, err := expandMacros(d.keys, entity)
	if err != nil {
		return err
	}
	if _, err := buildKeyFromExpanded(expanded); err != nil {
		return fmt.Errorf("failed to build key: %w", err)
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Delete removes an item using a string key.
func (d *DynamodbDataStore[T]) Delete(ctx context.Context, key string) error {
	keyMap, err := buildKeyFromExpanded(expandStringKey(d.keys, key))
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}

	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("delete condition failed: %w", err)
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// buildKeyFromExpanded builds a DynamoDB key from expanded templates.
// Both PK and SK must be non-empty.
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, sk := expanded["PK"], expanded["SK"]
	if pk == "" || sk == "" {
		return nil, errors.New("expanded key schema missing valid PK or SK")
	}
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// expandStringKey replaces every macro in the key templates with key.
func expandStringKey(keys KeySchema, key string) map[string]string {
	expanded := make(map[string]string, len(keys))
	for field, template := range keys {
		expanded[field] = macroPattern.ReplaceAllLiteralString(template, key)
	}
	return expanded
}
