package app

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-wxoa/internal/config"
	"github.com/samvad-hq/samvad-wxoa/internal/logger"
	"github.com/samvad-hq/samvad-wxoa/internal/storage"
	"github.com/samvad-hq/samvad-wxoa/pkg/credential"
	"github.com/samvad-hq/samvad-wxoa/pkg/httpclient"
	"github.com/samvad-hq/samvad-wxoa/pkg/material"
	"github.com/samvad-hq/samvad-wxoa/pkg/publishers"
	"github.com/samvad-hq/samvad-wxoa/pkg/user"
)

// Runtime holds the wired SDK clients a command runs against. It owns the
// token cache, when one is needed, and the event sinks; call Close when done.
type Runtime struct {
	cfg    *config.Config
	log    logger.Logger
	store  storage.Store
	fanout *publishers.Fanout

	Material *material.Client
	Users    *user.Client
	Tags     *user.TagClient
}

// New builds a runtime from cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r := &Runtime{cfg: cfg, log: log}

	creds, err := r.credentials()
	if err != nil {
		return nil, err
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.fanout = fanout

	textual := cfg.ContentTypePrefixes()
	transport := httpclient.NewRestyTransport(httpclient.Options{
		BaseURL:             cfg.BaseURL,
		Timeout:             cfg.HTTPTimeout,
		RetryCount:          cfg.HTTPRetryCount,
		Credentials:         creds,
		TextualContentTypes: textual,
		Logger:              log,
		RestyLogger:         restyLogger(log),
	})

	r.Material = material.New(transport,
		material.WithTextualContentTypes(textual...),
		material.WithLogger(log),
	)
	r.Users = user.New(transport, textual...)
	r.Tags = user.NewTagClient(transport, textual...)
	return r, nil
}

// credentials prefers a configured token over fetching one with the app
// secret. The token cache is opened only in the latter case.
func (r *Runtime) credentials() (credential.Provider, error) {
	cfg := r.cfg
	if cfg.AccessToken != "" {
		return credential.Static{Token: cfg.AccessToken}, nil
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	r.store = store
	r.log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyHTTPClient(cfg.HTTPTimeout).SetBaseURL(cfg.BaseURL)
	return credential.NewAccessToken(cfg.AppID, cfg.AppSecret, client, store), nil
}

func restyLogger(log logger.Logger) resty.Logger {
	if zl, ok := log.(*logger.ZapLogger); ok && zl != nil && zl.SugaredLogger != nil {
		return zl.SugaredLogger
	}
	return nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.DebugObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Notify sends evt to every configured sink. Failures are logged, never returned.
func (r *Runtime) Notify(ctx context.Context, evt publishers.Event) {
	if r == nil || r.fanout.Size() == 0 {
		return
	}
	delivered, err := r.fanout.Publish(ctx, evt)
	if err != nil {
		r.log.WarnObj("material event delivery failed", "event_delivery", map[string]any{
			"action":    evt.Action,
			"media_id":  evt.MediaID,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	r.log.DebugObj("material event delivered", "event_delivery", map[string]any{
		"action":    evt.Action,
		"media_id":  evt.MediaID,
		"delivered": delivered,
	})
}

// Close releases the sinks and the token cache, logging any errors encountered.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err)
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
