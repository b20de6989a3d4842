package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-wxoa/internal/config"
	"github.com/samvad-hq/samvad-wxoa/internal/storage"
	"github.com/samvad-hq/samvad-wxoa/pkg/publishers"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		AppName:                "wxoa-test",
		AccessToken:            "static-token",
		BaseURL:                baseURL,
		HTTPTimeout:            2 * time.Second,
		StorageType:            "memory",
		StorageCleanupInterval: time.Minute,
	}
}

func TestRuntimeUsesStaticToken(t *testing.T) {
	var gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("access_token")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"voice_count":1,"video_count":2,"image_count":3,"news_count":4}`))
	}))
	defer srv.Close()

	rt, err := New(context.Background(), testConfig(srv.URL+"/"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	stats, err := rt.Material.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if gotToken != "static-token" {
		t.Fatalf("access_token = %q", gotToken)
	}
	if gotPath != "/cgi-bin/material/get_materialcount" {
		t.Fatalf("path = %q", gotPath)
	}
	if stats.NewsCount != 4 {
		t.Fatalf("unexpected stats %#v", stats)
	}
}

func TestRuntimeFetchesTokenWithAppSecret(t *testing.T) {
	var mu sync.Mutex
	tokenCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/cgi-bin/token" {
			mu.Lock()
			tokenCalls++
			mu.Unlock()
			_, _ = w.Write([]byte(`{"access_token":"fetched","expires_in":7200}`))
			return
		}
		if r.URL.Query().Get("access_token") != "fetched" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"tags":[]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/")
	cfg.AccessToken = ""
	cfg.AppID = "wx123"
	cfg.AppSecret = "secret"

	rt, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	for i := 0; i < 2; i++ {
		if _, err := rt.Tags.List(context.Background()); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Fatalf("token fetched %d times, want 1", tokenCalls)
	}
}

func TestRuntimeNotifyDeliversToSinks(t *testing.T) {
	received := make(chan publishers.Event, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		_ = json.NewDecoder(r.Body).Decode(&evt)
		received <- evt
	}))
	defer hook.Close()

	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: " + hook.URL + "\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := testConfig("http://127.0.0.1:1/")
	cfg.PublishersFile = path
	rt, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	rt.Notify(context.Background(), publishers.NewEvent(publishers.ActionDelete, "image", "m1"))

	select {
	case evt := <-received:
		if evt.Action != publishers.ActionDelete || evt.MediaID != "m1" {
			t.Fatalf("unexpected event %#v", evt)
		}
	default:
		t.Fatalf("sink did not receive the event")
	}
}

func TestRuntimeNotifySwallowsFailures(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer hook.Close()

	path := filepath.Join(t.TempDir(), "publishers.json")
	raw := `{"publishers":[{"id":"hook","type":"http","http":{"url":"` + hook.URL + `"}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := testConfig("http://127.0.0.1:1/")
	cfg.PublishersFile = path
	rt, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	// must not panic or block
	rt.Notify(context.Background(), publishers.NewEvent(publishers.ActionUpload, "image", "m1"))
}

func TestRuntimeRejectsBadPublishersFile(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/")
	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestRuntimeReplacesRejectedCachedToken(t *testing.T) {
	var mu sync.Mutex
	tokenCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/cgi-bin/token" {
			mu.Lock()
			tokenCalls++
			mu.Unlock()
			_, _ = w.Write([]byte(`{"access_token":"fresh","expires_in":7200}`))
			return
		}
		if r.URL.Query().Get("access_token") != "fresh" {
			_, _ = w.Write([]byte(`{"errcode":40001,"errmsg":"invalid credential"}`))
			return
		}
		_, _ = w.Write([]byte(`{"voice_count":1,"video_count":2,"image_count":3,"news_count":4}`))
	}))
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	seed, err := storage.NewStore("bbolt", dbPath, storage.Options{})
	if err != nil {
		t.Fatalf("open seed store: %v", err)
	}
	if err := seed.Put("access_token.wx123", "stale", time.Hour); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("close seed store: %v", err)
	}

	cfg := testConfig(srv.URL + "/")
	cfg.AccessToken = ""
	cfg.AppID = "wx123"
	cfg.AppSecret = "secret"
	cfg.StorageType = "bbolt"
	cfg.BBoltPath = dbPath

	rt, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	for i := 0; i < 3; i++ {
		stats, err := rt.Material.Stats(context.Background())
		if err != nil {
			t.Fatalf("Stats call %d: %v", i, err)
		}
		if stats.NewsCount != 4 {
			t.Fatalf("unexpected stats %#v", stats)
		}
	}
	if tokenCalls != 1 {
		t.Fatalf("token fetched %d times, want 1", tokenCalls)
	}
}

func TestRuntimeStaticTokenSkipsTokenCache(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	held, err := storage.NewStore("bbolt", dbPath, storage.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer held.Close()

	cfg := testConfig("http://127.0.0.1:0/")
	cfg.StorageType = "bbolt"
	cfg.BBoltPath = dbPath

	rt, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New with a locked cache and a static token: %v", err)
	}
	rt.Close()
}
