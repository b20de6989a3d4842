package material

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cast"
)

const legacyShowCoverKey = "show_cover"

// Article is one item of a news material.
type Article struct {
	Title              string `json:"title"`
	ThumbMediaID       string `json:"thumb_media_id,omitempty"`
	Author             string `json:"author,omitempty"`
	Digest             string `json:"digest,omitempty"`
	Content            string `json:"content,omitempty"`
	ContentSourceURL   string `json:"content_source_url,omitempty"`
	ShowCoverPic       *int   `json:"show_cover_pic,omitempty"`
	URL                string `json:"url,omitempty"`
	NeedOpenComment    *int   `json:"need_open_comment,omitempty"`
	OnlyFansCanComment *int   `json:"only_fans_can_comment,omitempty"`
}

var articleFields = []string{
	"title",
	"thumb_media_id",
	"author",
	"digest",
	"content",
	"content_source_url",
	"show_cover_pic",
	"url",
	"need_open_comment",
	"only_fans_can_comment",
}

// ArticleFields returns the wire keys of the Article schema in declaration order.
func ArticleFields() []string {
	return append([]string(nil), articleFields...)
}

func isArticleField(key string) bool {
	for _, f := range articleFields {
		if f == key {
			return true
		}
	}
	return false
}

// Flag returns a pointer to v, for the optional integer switches of Article.
func Flag(v int) *int { return &v }

// NewArticle builds an Article from a field mapping. The legacy show_cover key
// is migrated to show_cover_pic here and nowhere else; unknown keys are ignored.
// The integer switches accept whole numbers only, so a value that would change
// on conversion is rejected instead of being dropped or truncated.
func NewArticle(fields map[string]any) (Article, error) {
	fields = migrateLegacy(fields)

	var a Article
	a.Title = cast.ToString(fields["title"])
	a.ThumbMediaID = cast.ToString(fields["thumb_media_id"])
	a.Author = cast.ToString(fields["author"])
	a.Digest = cast.ToString(fields["digest"])
	a.Content = cast.ToString(fields["content"])
	a.ContentSourceURL = cast.ToString(fields["content_source_url"])
	a.URL = cast.ToString(fields["url"])

	var err error
	if a.ShowCoverPic, err = intField(fields, "show_cover_pic"); err != nil {
		return Article{}, err
	}
	if a.NeedOpenComment, err = intField(fields, "need_open_comment"); err != nil {
		return Article{}, err
	}
	if a.OnlyFansCanComment, err = intField(fields, "only_fans_can_comment"); err != nil {
		return Article{}, err
	}
	return a, nil
}

func intField(fields map[string]any, key string) (*int, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
	case float32:
		if float64(v) != math.Trunc(float64(v)) {
			return nil, invalidArg(key, raw, "must be a whole number")
		}
	case float64:
		if v != math.Trunc(v) {
			return nil, invalidArg(key, raw, "must be a whole number")
		}
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return nil, invalidArg(key, raw, "must be a whole number")
		}
	default:
		return nil, invalidArg(key, raw, fmt.Sprintf("must be an integer, got %T", raw))
	}

	n, err := cast.ToIntE(raw)
	if err != nil {
		return nil, invalidArg(key, raw, err.Error())
	}
	return &n, nil
}

// migrateLegacy returns a copy of fields with show_cover renamed to
// show_cover_pic. An explicit show_cover_pic wins over the alias.
func migrateLegacy(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	if legacy, ok := out[legacyShowCoverKey]; ok {
		if _, exists := out["show_cover_pic"]; !exists {
			out["show_cover_pic"] = legacy
		}
		delete(out, legacyShowCoverKey)
	}
	return out
}

// Map serializes the article, keeping only fields with a value.
func (a Article) Map() map[string]any {
	out := make(map[string]any, len(articleFields))
	putString := func(key, v string) {
		if v != "" {
			out[key] = v
		}
	}
	putInt := func(key string, v *int) {
		if v != nil {
			out[key] = *v
		}
	}

	putString("title", a.Title)
	putString("thumb_media_id", a.ThumbMediaID)
	putString("author", a.Author)
	putString("digest", a.Digest)
	putString("content", a.Content)
	putString("content_source_url", a.ContentSourceURL)
	putInt("show_cover_pic", a.ShowCoverPic)
	putString("url", a.URL)
	putInt("need_open_comment", a.NeedOpenComment)
	putInt("only_fans_can_comment", a.OnlyFansCanComment)
	return out
}

// Fields is a raw article mapping sent as-is on upload.
type Fields map[string]any

func (f Fields) clone() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// schemaOnly keeps the Article schema keys of f, after the legacy migration.
// The result is never nil.
func (f Fields) schemaOnly() map[string]any {
	migrated := migrateLegacy(f)
	out := make(map[string]any, len(migrated))
	for k, v := range migrated {
		if isArticleField(k) {
			out[k] = v
		}
	}
	return out
}

// Item is either a typed Article or a raw Fields mapping.
type Item struct {
	article *Article
	fields  Fields
}

// ArticleItem wraps a typed article.
func ArticleItem(a Article) Item { return Item{article: &a} }

// FieldsItem wraps a raw mapping. The mapping is copied.
func FieldsItem(f Fields) Item { return Item{fields: f.clone()} }

// payload is the upload form of the item: articles serialize, mappings pass through.
func (it Item) payload() map[string]any {
	if it.article != nil {
		return it.article.Map()
	}
	return it.fields.clone()
}

// updateTarget is the update form of the item: mappings are cut down to the schema.
func (it Item) updateTarget() map[string]any {
	if it.article != nil {
		return it.article.Map()
	}
	return it.fields.schemaOnly()
}

// Items is one article or a sequence of them.
type Items struct {
	list   []Item
	single bool
}

// One wraps a single item.
func One(item Item) Items { return Items{list: []Item{item}, single: true} }

// Many wraps an ordered sequence of items.
func Many(items ...Item) Items { return Items{list: append([]Item(nil), items...)} }

// Articles is a shorthand for Many over typed articles.
func Articles(articles ...Article) Items {
	list := make([]Item, len(articles))
	for i, a := range articles {
		list[i] = ArticleItem(a)
	}
	return Items{list: list}
}

// Len returns the number of items.
func (s Items) Len() int { return len(s.list) }

// Single reports whether the value was built with One.
func (s Items) Single() bool { return s.single }

func (s Items) payloads() []map[string]any {
	out := make([]map[string]any, len(s.list))
	for i, it := range s.list {
		out[i] = it.payload()
	}
	return out
}
