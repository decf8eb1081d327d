package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Action selects which S3 operation a presigned URL authorizes.
type Action string

const (
	ActionGet    Action = "getObject"
	ActionPut    Action = "putObject"
	ActionDelete Action = "deleteObject"
)

var (
	ErrInvalidAction = errors.New("invalid presign action")
	ErrMissingKey    = errors.New("file key is required")
)

// ParseAction maps a wire value onto an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionGet, ActionPut, ActionDelete:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// PresignAPI is the slice of s3.PresignClient the issuer needs. Satisfied by
// *s3.PresignClient; faked in tests.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignDeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Presigner issues time-limited S3 URLs for direct client transfer.
type Presigner struct {
	client PresignAPI
	bucket string
	expiry time.Duration
}

func NewPresigner(client PresignAPI, bucket string, expiry time.Duration) *Presigner {
	return &Presigner{
		client: client,
		bucket: bucket,
		expiry: expiry,
	}
}

// DecodeKey unescapes a file key that arrived percent-encoded. Keys contain a
// path separator, so clients send them encoded as a single URL segment. Plus
// signs are legal name characters and pass through unchanged. A key that
// fails to unescape is treated as already decoded.
func DecodeKey(key string) string {
	decoded, err := url.PathUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}

// Presign returns a signed URL authorizing action on key. The key must
// already be decoded; callers handling route parameters run DecodeKey first.
// contentType is only applied to put URLs. Unknown actions fail before any
// SDK call is made.
func (p *Presigner) Presign(ctx context.Context, action Action, key, contentType string) (string, error) {
	if key == "" {
		return "", ErrMissingKey
	}

	var (
		req *v4.PresignedHTTPRequest
		err error
	)

	switch action {
	case ActionGet:
		req, err = p.client.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(p.expiry))
	case ActionPut:
		in := &s3.PutObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		}
		if contentType != "" {
			in.ContentType = aws.String(contentType)
		}
		req, err = p.client.PresignPutObject(ctx, in, s3.WithPresignExpires(p.expiry))
	case ActionDelete:
		req, err = p.client.PresignDeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(p.expiry))
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if err != nil {
		log.Error().
			Err(err).
			Str("action", string(action)).
			Str("file_key", key).
			Msg("presigning failed")
		return "", fmt.Errorf("presigning %s for %q: %w", action, key, err)
	}

	log.Debug().
		Str("action", string(action)).
		Str("file_key", key).
		Dur("expires_in", p.expiry).
		Msg("presigned URL issued")

	return req.URL, nil
}
