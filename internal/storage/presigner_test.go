package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresignClient struct {
	getCalls    int
	putCalls    int
	deleteCalls int

	lastKey         string
	lastContentType string

	err error
}

func (f *fakePresignClient) url(key string) *v4.PresignedHTTPRequest {
	return &v4.PresignedHTTPRequest{
		URL:    "https://esquad-files.s3.amazonaws.com/" + key + "?X-Amz-Signature=abc",
		Method: "GET",
	}
}

func (f *fakePresignClient) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.getCalls++
	f.lastKey = *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return f.url(*in.Key), nil
}

func (f *fakePresignClient) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.putCalls++
	f.lastKey = *in.Key
	if in.ContentType != nil {
		f.lastContentType = *in.ContentType
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.url(*in.Key), nil
}

func (f *fakePresignClient) PresignDeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.deleteCalls++
	f.lastKey = *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return f.url(*in.Key), nil
}

func newTestPresigner(client PresignAPI) *Presigner {
	return NewPresigner(client, "esquad-files", 5*time.Minute)
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"getObject", "putObject", "deleteObject"} {
		action, err := ParseAction(valid)
		require.NoError(t, err)
		assert.Equal(t, Action(valid), action)
	}

	for _, invalid := range []string{"", "copyObject", "GETOBJECT", "get"} {
		_, err := ParseAction(invalid)
		assert.ErrorIs(t, err, ErrInvalidAction, "input %q", invalid)
	}
}

func TestPresignDispatch(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		verify func(t *testing.T, f *fakePresignClient)
	}{
		{
			name:   "getObject",
			action: ActionGet,
			verify: func(t *testing.T, f *fakePresignClient) {
				assert.Equal(t, 1, f.getCalls)
			},
		},
		{
			name:   "putObject",
			action: ActionPut,
			verify: func(t *testing.T, f *fakePresignClient) {
				assert.Equal(t, 1, f.putCalls)
				assert.Equal(t, "application/pdf", f.lastContentType)
			},
		},
		{
			name:   "deleteObject",
			action: ActionDelete,
			verify: func(t *testing.T, f *fakePresignClient) {
				assert.Equal(t, 1, f.deleteCalls)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakePresignClient{}
			p := newTestPresigner(fake)

			url, err := p.Presign(context.Background(), tt.action, "files/1700000000000-report.pdf", "application/pdf")
			require.NoError(t, err)
			assert.Contains(t, url, "esquad-files")
			assert.Contains(t, url, "files/1700000000000-report.pdf")
			tt.verify(t, fake)
		})
	}
}

func TestPresignInvalidAction(t *testing.T) {
	fake := &fakePresignClient{}
	p := newTestPresigner(fake)

	_, err := p.Presign(context.Background(), Action("copyObject"), "files/1-a.txt", "")
	assert.ErrorIs(t, err, ErrInvalidAction)

	// No SDK call may have been attempted.
	assert.Zero(t, fake.getCalls)
	assert.Zero(t, fake.putCalls)
	assert.Zero(t, fake.deleteCalls)
}

func TestPresignMissingKey(t *testing.T) {
	fake := &fakePresignClient{}
	p := newTestPresigner(fake)

	_, err := p.Presign(context.Background(), ActionGet, "", "")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Zero(t, fake.getCalls)
}

func TestPresignClientError(t *testing.T) {
	fake := &fakePresignClient{err: errors.New("signing failure")}
	p := newTestPresigner(fake)

	_, err := p.Presign(context.Background(), ActionGet, "files/1-a.txt", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "signing failure")
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"files%2F1700000000000-report.pdf", "files/1700000000000-report.pdf"},
		{"files/1700000000000-report.pdf", "files/1700000000000-report.pdf"},
		// Plus is a legal name character, not an encoded space.
		{"files/1700000000000-a+b.pdf", "files/1700000000000-a+b.pdf"},
		{"files%2F1700000000000-a%20b+c.pdf", "files/1700000000000-a b+c.pdf"},
		// Invalid escapes come back untouched.
		{"files/100%zz", "files/100%zz"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeKey(tt.in), "input %q", tt.in)
	}
}
