package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// TokenPath is the client_credential token endpoint.
	TokenPath = "cgi-bin/token"

	// safetyMargin is subtracted from expires_in before caching.
	safetyMargin = 500 * time.Second
	minTokenTTL  = time.Minute
)

// AccessToken fetches and caches the app's access token.
type AccessToken struct {
	appID  string
	secret string
	client *resty.Client
	cache  Cache
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// TokenError is returned when the token endpoint rejects the app credentials.
type TokenError struct {
	Code int
	Msg  string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("fetch access token failed, errcode %d, errmsg %s", e.Code, e.Msg)
}

// NewAccessToken builds a provider fetching tokens with client. client must have
// its base URL set to the platform host. cache may be nil.
func NewAccessToken(appID, secret string, client *resty.Client, cache Cache) *AccessToken {
	return &AccessToken{
		appID:  strings.TrimSpace(appID),
		secret: strings.TrimSpace(secret),
		client: client,
		cache:  cache,
		now:    time.Now,
	}
}

// CacheKey is the cache entry the token is stored under.
func (a *AccessToken) CacheKey() string {
	return "access_token." + a.appID
}

// QueryAuthFields implements Provider.
func (a *AccessToken) QueryAuthFields(ctx context.Context) (map[string]string, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{queryTokenKey: token}, nil
}

// Token returns a valid token, from memory, the cache, or the platform in that order.
func (a *AccessToken) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expiry) {
		return a.token, nil
	}

	if a.cache != nil {
		cached, found, err := a.cache.Get(a.CacheKey())
		if err != nil {
			return "", fmt.Errorf("read token cache: %w", err)
		}
		if found && cached != "" {
			a.token = cached
			// The cache owns the real expiry; re-check it at least once a minute.
			a.expiry = a.now().Add(minTokenTTL)
			return cached, nil
		}
	}

	return a.refreshLocked(ctx)
}

// Invalidate drops the token held in memory and in the cache, so the next
// call fetches a new one. The transport calls it when the platform rejects
// the token.
func (a *AccessToken) Invalidate(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.token = ""
	a.expiry = time.Time{}
	if a.cache == nil {
		return nil
	}
	if err := a.cache.Delete(a.CacheKey()); err != nil {
		return fmt.Errorf("drop cached token: %w", err)
	}
	return nil
}

func (a *AccessToken) refreshLocked(ctx context.Context) (string, error) {
	if a.appID == "" || a.secret == "" {
		return "", fmt.Errorf("app id and secret are required to fetch an access token")
	}

	var result tokenResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"grant_type": "client_credential",
			"appid":      a.appID,
			"secret":     a.secret,
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Get(TokenPath)
	if err != nil {
		return "", fmt.Errorf("request access token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("access token endpoint returned status %d", resp.StatusCode())
	}
	if result.ErrCode != 0 {
		return "", &TokenError{Code: result.ErrCode, Msg: result.ErrMsg}
	}
	if result.AccessToken == "" {
		return "", ErrEmptyToken
	}

	ttl := time.Duration(result.ExpiresIn)*time.Second - safetyMargin
	if ttl < minTokenTTL {
		ttl = minTokenTTL
	}

	a.token = result.AccessToken
	a.expiry = a.now().Add(ttl)
	if a.cache != nil {
		if err := a.cache.Put(a.CacheKey(), result.AccessToken, ttl); err != nil {
			return "", fmt.Errorf("write token cache: %w", err)
		}
	}
	return result.AccessToken, nil
}
