package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/samvad-wxoa/pkg/material"
	"gopkg.in/yaml.v3"
)

// newsFile accepts a list of article mappings, a mapping with an "articles"
// list, or a single article mapping.
type newsFile struct {
	articles []map[string]any
	single   bool
}

func loadNewsFile(path string) (newsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return newsFile{}, fmt.Errorf("read news file: %w", err)
	}

	var doc any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &doc)
	} else {
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return newsFile{}, fmt.Errorf("decode news file: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		out, err := toMappings(v)
		return newsFile{articles: out}, err
	case map[string]any:
		if list, ok := v["articles"].([]any); ok {
			out, err := toMappings(list)
			return newsFile{articles: out}, err
		}
		return newsFile{articles: []map[string]any{v}, single: true}, nil
	}
	return newsFile{}, fmt.Errorf("news file must hold an article mapping or a list of them")
}

func toMappings(list []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("news file entry %d is not a mapping", i)
		}
		out = append(out, m)
	}
	return out, nil
}

// items turns the file into material items, inlining local images first when
// inline is set. Relative image paths resolve against the file's directory.
func (f newsFile) items(ctx context.Context, client *material.Client, inline bool, baseDir string) (material.Items, error) {
	list := make([]material.Item, 0, len(f.articles))
	for i, m := range f.articles {
		article, err := material.NewArticle(m)
		if err != nil {
			return material.Items{}, fmt.Errorf("article %d: %w", i, err)
		}
		if inline {
			article, err = client.InlineArticleImages(ctx, article, baseDir)
			if err != nil {
				return material.Items{}, fmt.Errorf("article %d: %w", i, err)
			}
		}
		list = append(list, material.ArticleItem(article))
	}
	if f.single && len(list) == 1 {
		return material.One(list[0]), nil
	}
	return material.Many(list...), nil
}
