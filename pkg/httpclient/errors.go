package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedContentType is returned when a JSON result was expected but the
// response declared a non-textual content type.
var ErrUnexpectedContentType = errors.New("unexpected response content type")

// APIError is returned when the platform answers with a non-zero errcode.
type APIError struct {
	Path string
	Code int
	Msg  string
}

// Error implements error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api %s failed, errcode %d, errmsg %s", e.Path, e.Code, e.Msg)
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Path    string
	Status  int
	Snippet string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wechat api %s returned status %d: %s", e.Path, e.Status, e.Snippet)
}

// IsAPICode reports whether err is an APIError carrying one of codes.
func IsAPICode(err error, codes ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, c := range codes {
		if apiErr.Code == c {
			return true
		}
	}
	return false
}

// TokenRejectedCodes are the errcodes meaning the access token is invalid or expired.
var TokenRejectedCodes = []int{40001, 40014, 42001}

// IsTokenRejected reports whether err says the access token must be replaced.
func IsTokenRejected(err error) bool {
	return IsAPICode(err, TokenRejectedCodes...)
}

type errorEnvelope struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// checkAPIError inspects a JSON body for the platform error envelope.
func checkAPIError(path string, body []byte) error {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	if env.ErrCode == nil || *env.ErrCode == 0 {
		return nil
	}
	return &APIError{Path: path, Code: *env.ErrCode, Msg: env.ErrMsg}
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
