package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	ContentType() string
}

// Transport abstracts the three request shapes the platform API uses so callers
// can inject fakes or different transports.
type Transport interface {
	Get(ctx context.Context, path string, query map[string]string) (Response, error)
	PostJSON(ctx context.Context, path string, body any) (Response, error)
	PostMultipart(ctx context.Context, path string, form Multipart) (Response, error)
}

// Multipart describes a multipart/form-data request.
type Multipart struct {
	// Files maps a form field name to a local file path.
	Files map[string]string
	// Fields are plain form values.
	Fields map[string]string
	// Query is appended to the request URL.
	Query map[string]string
}

// CredentialProvider yields the auth fields merged into every request query.
type CredentialProvider interface {
	QueryAuthFields(ctx context.Context) (map[string]string, error)
}

// Invalidator is implemented by credentials that can drop a token the
// platform rejected.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Logger defines the logging surface the transport relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
