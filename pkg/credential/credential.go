// Package credential supplies the access_token query field the platform
// requires on every call.
package credential

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Provider yields the auth fields merged into every outbound request query.
type Provider interface {
	QueryAuthFields(ctx context.Context) (map[string]string, error)
}

// Cache is the storage the access token provider persists tokens in.
type Cache interface {
	Get(key string) (string, bool, error)
	Put(key, value string, ttl time.Duration) error
	Delete(key string) error
}

const queryTokenKey = "access_token"

// ErrEmptyToken is returned when a provider has no token to hand out.
var ErrEmptyToken = errors.New("access token is empty")

// Static serves a fixed, externally managed access token.
type Static struct {
	Token string
}

// QueryAuthFields implements Provider.
func (s Static) QueryAuthFields(context.Context) (map[string]string, error) {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	return map[string]string{queryTokenKey: token}, nil
}
