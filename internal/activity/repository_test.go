package activity

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamoClient struct {
	putIn    *dynamodb.PutItemInput
	deleteIn *dynamodb.DeleteItemInput
	queryIn  *dynamodb.QueryInput
	queryOut *dynamodb.QueryOutput
	err      error
}

func (f *fakeDynamoClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putIn = in
	return &dynamodb.PutItemOutput{}, f.err
}

func (f *fakeDynamoClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deleteIn = in
	return &dynamodb.DeleteItemOutput{}, f.err
}

func (f *fakeDynamoClient) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryIn = in
	if f.err != nil {
		return nil, f.err
	}
	if f.queryOut == nil {
		return &dynamodb.QueryOutput{}, nil
	}
	return f.queryOut, nil
}

func storedEntry(t *testing.T) map[string]types.AttributeValue {
	t.Helper()
	entry := downloadEntry()
	entry.LogID = "log-1"
	entry.CreatedAt = "2026-08-01T10:00:00.000Z"
	item, err := attributevalue.MarshalMap(entry)
	require.NoError(t, err)
	return item
}

func TestRepositoryAppend(t *testing.T) {
	fake := &fakeDynamoClient{}
	repo := NewDynamoRepository(fake, "activity-logs")

	entry := downloadEntry()
	entry.LogID = "log-1"
	require.NoError(t, repo.Append(context.Background(), entry))

	require.NotNil(t, fake.putIn)
	assert.Equal(t, "activity-logs", *fake.putIn.TableName)

	var stored LogEntry
	require.NoError(t, attributevalue.UnmarshalMap(fake.putIn.Item, &stored))
	assert.Equal(t, "log-1", stored.LogID)
	assert.Equal(t, ActionDownload, stored.Action)
}

func TestRepositoryListByAction(t *testing.T) {
	fake := &fakeDynamoClient{
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{storedEntry(t)},
		},
	}
	repo := NewDynamoRepository(fake, "activity-logs")

	entries, err := repo.ListByAction(context.Background(), ActionDownload)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob@example.com", entries[0].UserEmail)

	assert.Equal(t, indexByAction, *fake.queryIn.IndexName)
	assert.False(t, *fake.queryIn.ScanIndexForward) // newest first
	assert.Nil(t, fake.queryIn.FilterExpression)
}

func TestRepositoryListDeletesByUploaderFiltersAction(t *testing.T) {
	fake := &fakeDynamoClient{}
	repo := NewDynamoRepository(fake, "activity-logs")

	_, err := repo.ListDeletesByUploader(context.Background(), "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, indexByUploader, *fake.queryIn.IndexName)
	require.NotNil(t, fake.queryIn.FilterExpression)
}

func TestRepositoryListDownloadsByUserFiltersAction(t *testing.T) {
	fake := &fakeDynamoClient{}
	repo := NewDynamoRepository(fake, "activity-logs")

	_, err := repo.ListDownloadsByUser(context.Background(), "bob@example.com")
	require.NoError(t, err)

	assert.Equal(t, indexByUser, *fake.queryIn.IndexName)
	require.NotNil(t, fake.queryIn.FilterExpression)
}

func TestRepositoryDelete(t *testing.T) {
	fake := &fakeDynamoClient{}
	repo := NewDynamoRepository(fake, "activity-logs")

	require.NoError(t, repo.Delete(context.Background(), "log-1"))
	require.NotNil(t, fake.deleteIn)

	key := fake.deleteIn.Key["logId"].(*types.AttributeValueMemberS)
	assert.Equal(t, "log-1", key.Value)
}
