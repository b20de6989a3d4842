package credential

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mapCache) Put(key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mapCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	delete(m.ttls, key)
	return nil
}

func tokenServer(t *testing.T, calls *atomic.Int32, body string) *resty.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/cgi-bin/token", r.URL.Path)
		assert.Equal(t, "client_credential", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "wx-app", r.URL.Query().Get("appid"))
		assert.Equal(t, "s3cret", r.URL.Query().Get("secret"))
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return resty.New().SetBaseURL(srv.URL)
}

func TestStaticQueryAuthFields(t *testing.T) {
	fields, err := Static{Token: "foo"}.QueryAuthFields(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"access_token": "foo"}, fields)

	_, err = Static{}.QueryAuthFields(context.Background())
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestAccessTokenFetchesOnceAndCaches(t *testing.T) {
	var calls atomic.Int32
	client := tokenServer(t, &calls, `{"access_token":"tok-1","expires_in":7200}`)
	cache := newMapCache()

	provider := NewAccessToken("wx-app", "s3cret", client, cache)

	for i := 0; i < 3; i++ {
		fields, err := provider.QueryAuthFields(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", fields["access_token"])
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "tok-1", cache.entries["access_token.wx-app"])
	assert.Equal(t, 7200*time.Second-safetyMargin, cache.ttls["access_token.wx-app"])
}

func TestAccessTokenRefetchesAfterExpiry(t *testing.T) {
	var calls atomic.Int32
	client := tokenServer(t, &calls, `{"access_token":"tok","expires_in":7200}`)

	now := time.Now()
	provider := NewAccessToken("wx-app", "s3cret", client, nil)
	provider.now = func() time.Time { return now }

	_, err := provider.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAccessTokenServesFromSharedCache(t *testing.T) {
	var calls atomic.Int32
	client := tokenServer(t, &calls, `{"access_token":"fresh","expires_in":7200}`)
	cache := newMapCache()
	cache.entries["access_token.wx-app"] = "cached"

	provider := NewAccessToken("wx-app", "s3cret", client, cache)
	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", token)
	assert.Zero(t, calls.Load())
}

func TestAccessTokenSurfacesPlatformError(t *testing.T) {
	var calls atomic.Int32
	client := tokenServer(t, &calls, `{"errcode":40013,"errmsg":"invalid appid"}`)

	_, err := NewAccessToken("wx-app", "s3cret", client, nil).Token(context.Background())
	var tokenErr *TokenError
	require.True(t, errors.As(err, &tokenErr))
	assert.Equal(t, 40013, tokenErr.Code)
}

func TestAccessTokenRequiresCredentials(t *testing.T) {
	_, err := NewAccessToken("", "", resty.New(), nil).Token(context.Background())
	assert.Error(t, err)
}

func TestAccessTokenInvalidateDropsCachedToken(t *testing.T) {
	var calls atomic.Int32
	client := tokenServer(t, &calls, `{"access_token":"fresh","expires_in":7200}`)
	cache := newMapCache()
	require.NoError(t, cache.Put("access_token.wx-app", "stale", time.Hour))

	provider := NewAccessToken("wx-app", "s3cret", client, cache)

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stale", token)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, provider.Invalidate(context.Background()))
	_, found, _ := cache.Get("access_token.wx-app")
	assert.False(t, found)

	token, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "fresh", cache.entries["access_token.wx-app"])
}
