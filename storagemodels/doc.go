/*
Package storagemodels defines the documents and query parameters shared by the
datastore implementations.

DescriptorRecord:
A descriptor document as kept in a datastore:

	rec := storagemodels.DescriptorRecord{
	    Key:    "shop/order",
	    Format: storagemodels.FormatYAML,
	    Body:   string(yamlBytes),
	}

The record marshals itself to DynamoDB attribute values, storing UpdatedAt as
an RFC 3339 string.

QueryParams:
Parameters for querying the datastore:

	params := &QueryParams{
	    KeyConditionExpression: "PK = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "META#shop/order"},
	    },
	    Limit: aws.Int32(100),
	}
*/
package storagemodels
