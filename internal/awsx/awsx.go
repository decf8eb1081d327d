package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"esquad-go/internal/config"
)

// Clients bundles the AWS service clients the server depends on. They are
// constructed once at process start and passed into repositories by reference
// rather than re-created per request.
type Clients struct {
	DynamoDB *dynamodb.Client
	Presign  *s3.PresignClient

	filesTable string
}

// New builds the AWS clients from server configuration. When AWSEndpoint is
// set the S3 client targets it with path-style addressing, which is what
// MinIO and LocalStack expect.
func New(ctx context.Context, cfg *config.Config) (*Clients, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			o.UsePathStyle = true
		}
	})

	log.Info().
		Str("region", cfg.AWSRegion).
		Bool("custom_endpoint", cfg.AWSEndpoint != "").
		Msg("AWS clients initialized")

	return &Clients{
		DynamoDB:   dynamoClient,
		Presign:    s3.NewPresignClient(s3Client),
		filesTable: cfg.FilesTable,
	}, nil
}

// Health reports reachability of the metadata table.
func (c *Clients) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	out, err := c.DynamoDB.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.filesTable),
	})
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("describe table failed: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["table"] = c.filesTable
	if out.Table != nil {
		stats["table_status"] = string(out.Table.TableStatus)
	}
	return stats
}
