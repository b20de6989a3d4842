package material

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineArticleImagesRewritesLocalSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o600))

	tr := newFakeTransport(`{"url":"http://mmbiz.qpic.cn/a"}`)
	in := Article{
		Title: "t",
		Content: `<p>hi</p><img src="a.png"/><img src="https://cdn.example.com/b.png"/>` +
			`<img src="./a.png"/>`,
	}

	out, err := New(tr).InlineArticleImages(context.Background(), in, dir)
	require.NoError(t, err)

	// one upload for the two references to the same file
	require.Len(t, tr.calls, 1)
	assert.Equal(t, APINewsImageUpload, tr.calls[0].path)
	assert.Equal(t, filepath.Join(dir, "a.png"), tr.calls[0].form.Files["media"])

	assert.Equal(t, 2, strings.Count(out.Content, `src="http://mmbiz.qpic.cn/a"`))
	assert.Contains(t, out.Content, `src="https://cdn.example.com/b.png"`)
	assert.Contains(t, out.Content, "<p>hi</p>")
	assert.Contains(t, in.Content, `src="a.png"`, "input must not change")
}

func TestInlineArticleImagesNoLocalImages(t *testing.T) {
	tr := newFakeTransport(`{}`)
	in := Article{Title: "t", Content: `<img src="data:image/png;base64,AAAA"><img src="//cdn/x.png">`}

	out, err := New(tr).InlineArticleImages(context.Background(), in, "")
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Empty(t, tr.calls)
}

func TestInlineArticleImagesMissingFile(t *testing.T) {
	tr := newFakeTransport(`{}`)
	in := Article{Title: "t", Content: `<img src="missing.png">`}

	_, err := New(tr).InlineArticleImages(context.Background(), in, t.TempDir())
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Empty(t, tr.calls)
}

func TestLocalImagePath(t *testing.T) {
	got, ok := localImagePath("file:///tmp/x.png", "/base")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/x.png", got)

	got, ok = localImagePath("img/x.png", "/base")
	assert.True(t, ok)
	assert.Equal(t, "/base/img/x.png", got)

	_, ok = localImagePath("HTTPS://example.com/x.png", "/base")
	assert.False(t, ok)
}
