package files

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Pagination keys cross the API boundary as an opaque token: the
// LastEvaluatedKey attribute map JSON-encoded and base64-wrapped. Every key
// attribute on the metadata table and its indexes is a string.

func encodePageKey(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	plain := make(map[string]string, len(key))
	for name, attr := range key {
		s, ok := attr.(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("unexpected attribute type for key %q", name)
		}
		plain[name] = s.Value
	}

	raw, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("encoding page key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func decodePageKey(token string) (map[string]types.AttributeValue, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPageKey, err)
	}

	var plain map[string]string
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPageKey, err)
	}
	if len(plain) == 0 {
		return nil, ErrBadPageKey
	}

	key := make(map[string]types.AttributeValue, len(plain))
	for name, value := range plain {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key, nil
}
