package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// GSI names on the metadata table.
const (
	indexByTarget = "targetId-createdAt-index"
	indexByUser   = "userEmail-index"
)

// DynamoAPI is the slice of *dynamodb.Client the repository needs. Faked in
// tests.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Repository persists file metadata.
type Repository interface {
	Create(ctx context.Context, meta *FileMetadata) error
	Get(ctx context.Context, fileKey string) (*FileMetadata, error)
	Delete(ctx context.Context, fileKey string) error
	IncrementDownloadCount(ctx context.Context, fileKey string) (int64, error)
	ListByTarget(ctx context.Context, q TargetQuery) ([]*FileMetadata, map[string]types.AttributeValue, error)
	ListByUser(ctx context.Context, userEmail string) ([]*FileMetadata, error)
	ListAll(ctx context.Context) ([]*FileMetadata, error)
}

type dynamoRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoRepository(client DynamoAPI, table string) Repository {
	return &dynamoRepository{client: client, table: table}
}

func keyAttr(fileKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"fileKey": &types.AttributeValueMemberS{Value: fileKey},
	}
}

func (r *dynamoRepository) Create(ctx context.Context, meta *FileMetadata) error {
	item, err := attributevalue.MarshalMap(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("storing metadata for %q: %w", meta.FileKey, err)
	}
	return nil
}

func (r *dynamoRepository) Get(ctx context.Context, fileKey string) (*FileMetadata, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       keyAttr(fileKey),
	})
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %q: %w", fileKey, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var meta FileMetadata
	if err := attributevalue.UnmarshalMap(out.Item, &meta); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata for %q: %w", fileKey, err)
	}
	return &meta, nil
}

// Delete removes the row only if it still exists, so concurrent deletes of
// the same key resolve to a single winner.
func (r *dynamoRepository) Delete(ctx context.Context, fileKey string) error {
	cond := expression.AttributeExists(expression.Name("fileKey"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("building delete condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.table),
		Key:                       keyAttr(fileKey),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting metadata for %q: %w", fileKey, err)
	}
	return nil
}

// IncrementDownloadCount bumps the counter atomically server-side. The
// existence condition keeps a racing download from resurrecting a row a
// concurrent delete already removed.
func (r *dynamoRepository) IncrementDownloadCount(ctx context.Context, fileKey string) (int64, error) {
	update := expression.Set(
		expression.Name("downloadCount"),
		expression.Plus(
			expression.IfNotExists(expression.Name("downloadCount"), expression.Value(0)),
			expression.Value(1),
		),
	)
	cond := expression.AttributeExists(expression.Name("fileKey"))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return 0, fmt.Errorf("building increment expression: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       keyAttr(fileKey),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("incrementing download count for %q: %w", fileKey, err)
	}

	var updated struct {
		DownloadCount int64 `dynamodbav:"downloadCount"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, fmt.Errorf("unmarshaling updated count for %q: %w", fileKey, err)
	}
	return updated.DownloadCount, nil
}

// ListByTarget queries the target GSI newest-first. The returned key is nil
// on the final page.
func (r *dynamoRepository) ListByTarget(ctx context.Context, q TargetQuery) ([]*FileMetadata, map[string]types.AttributeValue, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("targetId").Equal(expression.Value(q.TargetID)))
	if q.TargetType != "" {
		builder = builder.WithFilter(expression.Name("targetType").Equal(expression.Value(q.TargetType)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building target query: %w", err)
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(indexByTarget),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if q.Limit > 0 {
		in.Limit = aws.Int32(q.Limit)
	}
	if q.LastEvaluatedKey != "" {
		start, err := decodePageKey(q.LastEvaluatedKey)
		if err != nil {
			return nil, nil, err
		}
		in.ExclusiveStartKey = start
	}

	out, err := r.client.Query(ctx, in)
	if err != nil {
		return nil, nil, fmt.Errorf("querying files for target %q: %w", q.TargetID, err)
	}

	items, err := unmarshalItems(out.Items)
	if err != nil {
		return nil, nil, err
	}
	return items, out.LastEvaluatedKey, nil
}

func (r *dynamoRepository) ListByUser(ctx context.Context, userEmail string) ([]*FileMetadata, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userEmail").Equal(expression.Value(userEmail))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(indexByUser),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("querying files for user %q: %w", userEmail, err)
	}
	return unmarshalItems(out.Items)
}

// ListAll walks the whole table, following scan pages to completion.
func (r *dynamoRepository) ListAll(ctx context.Context) ([]*FileMetadata, error) {
	var all []*FileMetadata
	var start map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning metadata table: %w", err)
		}

		items, err := unmarshalItems(out.Items)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if len(out.LastEvaluatedKey) == 0 {
			return all, nil
		}
		start = out.LastEvaluatedKey
	}
}

func unmarshalItems(items []map[string]types.AttributeValue) ([]*FileMetadata, error) {
	out := make([]*FileMetadata, 0, len(items))
	for _, item := range items {
		var meta FileMetadata
		if err := attributevalue.UnmarshalMap(item, &meta); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata item: %w", err)
		}
		out = append(out, &meta)
	}
	return out, nil
}
