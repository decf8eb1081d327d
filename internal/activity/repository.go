package activity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// GSI names on the log table.
const (
	indexByAction   = "action-createdAt-index"
	indexByUploader = "uploaderEmail-index"
	indexByUser     = "userEmail-index"
)

// DynamoAPI is the slice of *dynamodb.Client the repository needs.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Repository appends to and queries the log table. Rows are never updated.
type Repository interface {
	Append(ctx context.Context, entry *LogEntry) error
	ListByAction(ctx context.Context, action string) ([]*LogEntry, error)
	ListDeletesByUploader(ctx context.Context, uploaderEmail string) ([]*LogEntry, error)
	ListDownloadsByUser(ctx context.Context, userEmail string) ([]*LogEntry, error)
	Delete(ctx context.Context, logID string) error
}

type dynamoRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoRepository(client DynamoAPI, table string) Repository {
	return &dynamoRepository{client: client, table: table}
}

func (r *dynamoRepository) Append(ctx context.Context, entry *LogEntry) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("appending log entry %q: %w", entry.LogID, err)
	}
	return nil
}

func (r *dynamoRepository) ListByAction(ctx context.Context, action string) ([]*LogEntry, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("action").Equal(expression.Value(action))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building action query: %w", err)
	}
	return r.query(ctx, indexByAction, expr)
}

func (r *dynamoRepository) ListDeletesByUploader(ctx context.Context, uploaderEmail string) ([]*LogEntry, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("uploaderEmail").Equal(expression.Value(uploaderEmail))).
		WithFilter(expression.Name("action").Equal(expression.Value(ActionDelete))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building uploader query: %w", err)
	}
	return r.query(ctx, indexByUploader, expr)
}

func (r *dynamoRepository) ListDownloadsByUser(ctx context.Context, userEmail string) ([]*LogEntry, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userEmail").Equal(expression.Value(userEmail))).
		WithFilter(expression.Name("action").Equal(expression.Value(ActionDownload))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}
	return r.query(ctx, indexByUser, expr)
}

func (r *dynamoRepository) Delete(ctx context.Context, logID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"logId": &types.AttributeValueMemberS{Value: logID},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting log entry %q: %w", logID, err)
	}
	return nil
}

func (r *dynamoRepository) query(ctx context.Context, index string, expr expression.Expression) ([]*LogEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("querying log index %q: %w", index, err)
	}

	entries := make([]*LogEntry, 0, len(out.Items))
	for _, item := range out.Items {
		var entry LogEntry
		if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
			return nil, fmt.Errorf("unmarshaling log entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
