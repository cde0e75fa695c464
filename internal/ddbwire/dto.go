// Package ddbwire holds the JSON request/response DTOs DynamoRouter decodes
// and encodes for table lifecycle operations (SPEC_FULL.md §5.G′), using
// *string fields the way the teacher's repository layer
// (infrastructure/persistence/dynamodb/event_store.go,
// distributed_lock.go) builds every DynamoDB SDK input: aws.String to box
// an optional field, aws.ToString to read one back without a nil check at
// every call site.
package ddbwire

import (
	"backend2/internal/ddbtable"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// KeySchemaElement mirrors one entry of a CreateTable request's KeySchema
// list: an attribute name paired with "HASH" or "RANGE".
type KeySchemaElement struct {
	AttributeName *string `json:"AttributeName"`
	KeyType       *string `json:"KeyType"`
}

// AttributeDefinition mirrors one entry of a CreateTable request's
// AttributeDefinitions list.
type AttributeDefinition struct {
	AttributeName *string `json:"AttributeName"`
	AttributeType *string `json:"AttributeType"`
}

// CreateTableRequest is the JSON body of a CreateTable call.
type CreateTableRequest struct {
	TableName            *string               `json:"TableName"`
	KeySchema            []KeySchemaElement     `json:"KeySchema"`
	AttributeDefinitions []AttributeDefinition  `json:"AttributeDefinitions"`
}

// TableNameRequest is the JSON body shared by DeleteTable/DescribeTable,
// which both take only a table name.
type TableNameRequest struct {
	TableName *string `json:"TableName"`
}

// ListTablesRequest is the JSON body of a ListTables call.
type ListTablesRequest struct {
	ExclusiveStartTableName *string `json:"ExclusiveStartTableName"`
	Limit                   *int32  `json:"Limit"`
}

// ListTablesResponse is the JSON body returned from ListTables.
type ListTablesResponse struct {
	TableNames             []string `json:"TableNames"`
	LastEvaluatedTableName *string  `json:"LastEvaluatedTableName,omitempty"`
}

// TableDescription is the JSON shape embedded in CreateTable/DeleteTable/
// DescribeTable responses, mirroring DynamoDB's own TableDescription shape
// closely enough to exercise the same client-side parsing a real SDK call
// would.
type TableDescription struct {
	TableName        *string            `json:"TableName"`
	TableStatus      *string            `json:"TableStatus"`
	CreationDateTime *int64             `json:"CreationDateTime"`
	ItemCount        *int64             `json:"ItemCount"`
	TableSizeBytes   *int64             `json:"TableSizeBytes"`
	KeySchema        []KeySchemaElement `json:"KeySchema"`
}

// ToKeySchema extracts the partition (HASH) and sort (RANGE) key attribute
// names from the request's wire-shaped KeySchema list (SPEC_FULL.md §5.G′:
// one HASH, one optional RANGE attribute); sortKey is "" when absent.
func (req CreateTableRequest) ToKeySchema() (partitionKey, sortKey string) {
	for _, k := range req.KeySchema {
		switch aws.ToString(k.KeyType) {
		case "HASH":
			partitionKey = aws.ToString(k.AttributeName)
		case "RANGE":
			sortKey = aws.ToString(k.AttributeName)
		}
	}
	return partitionKey, sortKey
}

// ToAttributeDefinitions converts the request's wire-shaped attribute
// definitions into the registry's form.
func (req CreateTableRequest) ToAttributeDefinitions() []ddbtable.AttributeDefinition {
	out := make([]ddbtable.AttributeDefinition, 0, len(req.AttributeDefinitions))
	for _, a := range req.AttributeDefinitions {
		out = append(out, ddbtable.AttributeDefinition{
			Name: aws.ToString(a.AttributeName),
			Type: aws.ToString(a.AttributeType),
		})
	}
	return out
}

// NewTableDescription renders a table registry descriptor into the wire
// shape, boxing string fields with aws.String and numeric fields by address,
// the way the teacher's
// repository layer builds SDK inputs in reverse.
func NewTableDescription(d *ddbtable.Descriptor) TableDescription {
	schema := []KeySchemaElement{
		{AttributeName: aws.String(d.KeySchema.PartitionKey), KeyType: aws.String("HASH")},
	}
	if d.KeySchema.SortKey != "" {
		schema = append(schema, KeySchemaElement{AttributeName: aws.String(d.KeySchema.SortKey), KeyType: aws.String("RANGE")})
	}
	created := d.CreationDateTime.Unix()
	itemCount := d.ItemCount()
	sizeBytes := d.TableSizeBytes()
	return TableDescription{
		TableName:        aws.String(d.Name),
		TableStatus:      aws.String("ACTIVE"),
		CreationDateTime: &created,
		ItemCount:        &itemCount,
		TableSizeBytes:   &sizeBytes,
		KeySchema:        schema,
	}
}

// limitOrZero reads an *int32 Limit field as an int, treating nil as
// "unbounded" (0), matching ddbtable.Registry.ListTables's convention.
func limitOrZero(limit *int32) int {
	if limit == nil {
		return 0
	}
	return int(*limit)
}

// Resolve extracts (exclusiveStart, limit) from a ListTablesRequest.
func (req ListTablesRequest) Resolve() (exclusiveStart string, limit int) {
	return aws.ToString(req.ExclusiveStartTableName), limitOrZero(req.Limit)
}
