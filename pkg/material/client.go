// Package material wraps the permanent material endpoints of the Official
// Account platform: uploads, news articles, fetch, delete, paging and counts.
package material

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samvad-hq/samvad-wxoa/pkg/httpclient"
)

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}

// Client issues material requests through a Transport. It holds no mutable
// state and is safe for concurrent use when the transport is.
type Client struct {
	transport httpclient.Transport
	textual   []string
	log       Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTextualContentTypes replaces the content type prefixes Get decodes as JSON.
func WithTextualContentTypes(prefixes ...string) Option {
	return func(c *Client) {
		if len(prefixes) > 0 {
			c.textual = append([]string(nil), prefixes...)
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New builds a material client. Credentials are the transport's concern.
func New(transport httpclient.Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		textual:   append([]string(nil), httpclient.DefaultTextualContentTypes...),
		log:       noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpdateRequest is the update_news body.
type UpdateRequest struct {
	MediaID  string         `json:"media_id"`
	Index    int            `json:"index"`
	Articles map[string]any `json:"articles"`
}

// ListQuery is the batchget_material body.
type ListQuery struct {
	Type   MediaType `json:"type"`
	Offset int       `json:"offset"`
	Count  int       `json:"count"`
}

type newsRequest struct {
	Articles []map[string]any `json:"articles"`
}

type mediaIDRequest struct {
	MediaID string `json:"media_id"`
}

type videoDescription struct {
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
}

// UploadImage uploads a permanent image material.
func (c *Client) UploadImage(ctx context.Context, path string) (*UploadResult, error) {
	return c.uploadMedia(ctx, TypeImage, path, nil)
}

// UploadThumb uploads a permanent thumbnail material.
func (c *Client) UploadThumb(ctx context.Context, path string) (*UploadResult, error) {
	return c.uploadMedia(ctx, TypeThumb, path, nil)
}

// UploadVoice uploads a permanent voice material.
func (c *Client) UploadVoice(ctx context.Context, path string) (*UploadResult, error) {
	return c.uploadMedia(ctx, TypeVoice, path, nil)
}

// UploadVideo uploads a permanent video material. The platform expects title
// and introduction as a JSON document inside the description form field.
func (c *Client) UploadVideo(ctx context.Context, path, title, introduction string) (*UploadResult, error) {
	desc, err := json.Marshal(videoDescription{Title: title, Introduction: introduction})
	if err != nil {
		return nil, fmt.Errorf("encode video description: %w", err)
	}
	return c.uploadMedia(ctx, TypeVideo, path, map[string]string{"description": string(desc)})
}

func (c *Client) uploadMedia(ctx context.Context, typ MediaType, path string, fields map[string]string) (*UploadResult, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	resp, err := c.transport.PostMultipart(ctx, APIUpload, httpclient.Multipart{
		Files:  map[string]string{"media": path},
		Fields: fields,
		Query:  map[string]string{"type": string(typ)},
	})
	if err != nil {
		return nil, err
	}

	var out UploadResult
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadArticle adds a news material built from items, in order.
func (c *Client) UploadArticle(ctx context.Context, items Items) (*UploadResult, error) {
	resp, err := c.transport.PostJSON(ctx, APINewsUpload, newsRequest{Articles: items.payloads()})
	if err != nil {
		return nil, err
	}

	var out UploadResult
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateArticle replaces the article at index of the news material mediaID.
// When items is a sequence, the element at index is the replacement. Raw
// mappings keep only Article schema keys.
func (c *Client) UpdateArticle(ctx context.Context, mediaID string, items Items, index int) error {
	if index < 0 {
		return invalidArg("index", index, "must not be negative")
	}

	var target Item
	switch {
	case items.Len() == 0:
		return invalidArg("articles", 0, "no article given")
	case items.Single():
		target = items.list[0]
	case index >= items.Len():
		return invalidArg("index", index, fmt.Sprintf("out of range for %d articles", items.Len()))
	default:
		target = items.list[index]
	}

	resp, err := c.transport.PostJSON(ctx, APINewsUpdate, UpdateRequest{
		MediaID:  mediaID,
		Index:    index,
		Articles: target.updateTarget(),
	})
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, nil, c.textual)
}

// UploadArticleImage uploads an image for use inside article content and
// returns its URL.
func (c *Client) UploadArticleImage(ctx context.Context, path string) (*ArticleImage, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	resp, err := c.transport.PostMultipart(ctx, APINewsImageUpload, httpclient.Multipart{
		Files: map[string]string{"media": path},
	})
	if err != nil {
		return nil, err
	}

	var out ArticleImage
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a material. Textual responses (news, video metadata) are decoded;
// anything else is returned as raw bytes.
func (c *Client) Get(ctx context.Context, mediaID string) (*Content, error) {
	resp, err := c.transport.PostJSON(ctx, APIGet, mediaIDRequest{MediaID: mediaID})
	if err != nil {
		return nil, err
	}

	contentType := resp.ContentType()
	if !httpclient.IsTextual(contentType, c.textual) {
		return &Content{Kind: ContentRaw, ContentType: contentType, Raw: resp.Body(), body: resp.Body()}, nil
	}

	var data map[string]any
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("decode material %s: %w", mediaID, err)
	}
	return &Content{Kind: ContentStructured, ContentType: contentType, Data: data, body: resp.Body()}, nil
}

// Delete removes a material.
func (c *Client) Delete(ctx context.Context, mediaID string) error {
	resp, err := c.transport.PostJSON(ctx, APIDelete, mediaIDRequest{MediaID: mediaID})
	if err != nil {
		return err
	}
	return httpclient.DecodeJSON(resp, nil, c.textual)
}

// Lists pages through materials of typ. count is clamped to [1, MaxListCount].
func (c *Client) Lists(ctx context.Context, typ MediaType, offset, count int) (*MaterialList, error) {
	if !typ.Listable() {
		return nil, invalidArg("type", typ, "must be one of image, video, voice, news")
	}

	resp, err := c.transport.PostJSON(ctx, APILists, NewListQuery(typ, offset, count))
	if err != nil {
		return nil, err
	}

	var out MaterialList
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewListQuery builds a query with count inside [1, MaxListCount] and a
// non-negative offset.
func NewListQuery(typ MediaType, offset, count int) ListQuery {
	if offset < 0 {
		offset = 0
	}
	if count < 1 {
		count = 1
	}
	if count > MaxListCount {
		count = MaxListCount
	}
	return ListQuery{Type: typ, Offset: offset, Count: count}
}

// Stats returns the material counts.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	resp, err := c.transport.Get(ctx, APIStats, nil)
	if err != nil {
		return nil, err
	}

	var out Stats
	if err := httpclient.DecodeJSON(resp, &out, c.textual); err != nil {
		return nil, err
	}
	return &out, nil
}

// checkFile fails unless path names an existing, readable regular file.
func checkFile(path string) error {
	if path == "" {
		return invalidArg("path", path, "file path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return invalidArg("path", path, "file does not exist or is not readable")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return invalidArg("path", path, "not a regular file")
	}
	return nil
}
