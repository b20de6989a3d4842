package material

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ContentKind tells which variant a Content holds.
type ContentKind int

const (
	// ContentStructured is a decoded JSON body (news or video metadata).
	ContentStructured ContentKind = iota + 1
	// ContentRaw is an undecoded binary body (image, voice or thumb bytes).
	ContentRaw
)

func (k ContentKind) String() string {
	switch k {
	case ContentStructured:
		return "structured"
	case ContentRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Content is the result of Get: either Data or Raw is set, per Kind.
type Content struct {
	Kind        ContentKind
	ContentType string
	Data        map[string]any
	Raw         []byte

	body []byte
}

// IsRaw reports whether the body was passed through undecoded.
func (c *Content) IsRaw() bool { return c != nil && c.Kind == ContentRaw }

// Decode unmarshals a structured body into v.
func (c *Content) Decode(v any) error {
	if c == nil || c.Kind != ContentStructured {
		return errors.New("content is not structured")
	}
	if err := json.Unmarshal(c.body, v); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}
	return nil
}

// News decodes a news material body.
func (c *Content) News() (*NewsMaterial, error) {
	var out NewsMaterial
	if err := c.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Video decodes a video material body.
func (c *Content) Video() (*VideoMaterial, error) {
	var out VideoMaterial
	if err := c.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewsMaterial is the body returned for a news media id.
type NewsMaterial struct {
	NewsItem   []Article `json:"news_item"`
	CreateTime int64     `json:"create_time,omitempty"`
	UpdateTime int64     `json:"update_time,omitempty"`
}

// VideoMaterial is the body returned for a video media id.
type VideoMaterial struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DownURL     string `json:"down_url"`
}

// UploadResult is returned by the upload calls.
type UploadResult struct {
	MediaID string `json:"media_id"`
	URL     string `json:"url,omitempty"`
}

// ArticleImage is returned by UploadArticleImage.
type ArticleImage struct {
	URL string `json:"url"`
}

// MaterialList is one page of Lists.
type MaterialList struct {
	TotalCount int            `json:"total_count"`
	ItemCount  int            `json:"item_count"`
	Items      []MaterialItem `json:"item"`
}

// MaterialItem is one entry of a MaterialList. Content is only set for news.
type MaterialItem struct {
	MediaID    string        `json:"media_id"`
	Name       string        `json:"name,omitempty"`
	UpdateTime int64         `json:"update_time"`
	URL        string        `json:"url,omitempty"`
	Content    *NewsMaterial `json:"content,omitempty"`
}

// Stats holds the per-type material counts.
type Stats struct {
	VoiceCount int `json:"voice_count"`
	VideoCount int `json:"video_count"`
	ImageCount int `json:"image_count"`
	NewsCount  int `json:"news_count"`
}
