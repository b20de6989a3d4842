package httpclient

import (
	"errors"
	"testing"
)

type stubResponse struct {
	body        []byte
	contentType string
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return 200 }
func (s stubResponse) ContentType() string { return s.contentType }

func TestIsTextual(t *testing.T) {
	cases := []struct {
		ct   string
		want bool
	}{
		{"text/plain", true},
		{"application/json; charset=utf-8", true},
		{"APPLICATION/JSON", true},
		{"image/jpeg", false},
		{"media/video", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsTextual(c.ct, nil); got != c.want {
			t.Fatalf("IsTextual(%q) = %v, want %v", c.ct, got, c.want)
		}
	}

	if IsTextual("application/json", []string{"text/"}) {
		t.Fatalf("custom prefixes must replace the defaults")
	}
}

func TestDecodeJSONRejectsBinary(t *testing.T) {
	var out map[string]any
	err := DecodeJSON(stubResponse{body: []byte("raw"), contentType: "video/mp4"}, &out, nil)
	if !errors.Is(err, ErrUnexpectedContentType) {
		t.Fatalf("expected ErrUnexpectedContentType, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		URL string `json:"url"`
	}
	err := DecodeJSON(stubResponse{body: []byte(`{"url":"http://mmbiz/x"}`), contentType: "text/plain"}, &out, nil)
	if err != nil || out.URL != "http://mmbiz/x" {
		t.Fatalf("DecodeJSON: %v %+v", err, out)
	}
}
