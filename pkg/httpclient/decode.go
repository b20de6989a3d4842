package httpclient

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// DefaultTextualContentTypes are the content type prefixes treated as JSON/text.
var DefaultTextualContentTypes = []string{
	"text/",
	"application/json",
	"application/javascript",
}

// IsTextual reports whether contentType starts with one of prefixes. The
// media type parameters (charset etc.) are ignored and the match is case-insensitive.
func IsTextual(contentType string, prefixes []string) bool {
	if len(prefixes) == 0 {
		prefixes = DefaultTextualContentTypes
	}
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	if mediaType == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(mediaType, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// DecodeJSON unmarshals resp into v after checking the declared content type.
func DecodeJSON(resp Response, v any, prefixes []string) error {
	if resp == nil {
		return fmt.Errorf("decode response: nil response")
	}
	if !IsTextual(resp.ContentType(), prefixes) {
		return fmt.Errorf("%w: %q", ErrUnexpectedContentType, resp.ContentType())
	}
	if v == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
