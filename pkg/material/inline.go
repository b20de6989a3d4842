package material

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InlineArticleImages uploads every local image referenced by the article
// content through UploadArticleImage and points its src at the returned URL.
// Relative paths resolve against baseDir. Remote and data URLs are kept.
// The input article is not modified.
func (c *Client) InlineArticleImages(ctx context.Context, article Article, baseDir string) (Article, error) {
	if strings.TrimSpace(article.Content) == "" {
		return article, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return article, fmt.Errorf("parse article content: %w", err)
	}

	images := doc.Find("img[src]")
	local := 0
	images.Each(func(_ int, s *goquery.Selection) {
		if _, ok := localImagePath(s.AttrOr("src", ""), baseDir); ok {
			local++
		}
	})
	if local == 0 {
		return article, nil
	}

	uploaded := make(map[string]string, local)
	var uploadErr error
	images.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.AttrOr("src", "")
		path, ok := localImagePath(src, baseDir)
		if !ok {
			return true
		}
		if url, seen := uploaded[path]; seen {
			s.SetAttr("src", url)
			return true
		}

		img, err := c.UploadArticleImage(ctx, path)
		if err != nil {
			uploadErr = fmt.Errorf("upload content image %s: %w", src, err)
			return false
		}
		uploaded[path] = img.URL
		s.SetAttr("src", img.URL)
		c.log.DebugObj("content image uploaded", "content_image", map[string]any{
			"src": src,
			"url": img.URL,
		})
		return true
	})
	if uploadErr != nil {
		return article, uploadErr
	}

	html, err := doc.Find("body").Html()
	if err != nil {
		return article, fmt.Errorf("render article content: %w", err)
	}

	out := article
	out.Content = html
	return out, nil
}

// localImagePath resolves src to a local file path, or reports false for
// remote, protocol-relative and data URLs.
func localImagePath(src, baseDir string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "data:"),
		strings.HasPrefix(lower, "//"):
		return "", false
	case strings.HasPrefix(lower, "file://"):
		src = src[len("file://"):]
	}
	if !filepath.IsAbs(src) && baseDir != "" {
		src = filepath.Join(baseDir, src)
	}
	return filepath.Clean(src), true
}
