package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures a RestyTransport.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	RetryCount  int
	Credentials CredentialProvider
	// TextualContentTypes decide which responses are checked for an errcode.
	// Empty means DefaultTextualContentTypes.
	TextualContentTypes []string
	Logger              Logger
	// RestyLogger receives resty's own diagnostics; a zap SugaredLogger fits.
	RestyLogger resty.Logger
}

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client  *resty.Client
	creds   CredentialProvider
	textual []string
	log     Logger
}

// NewRestyTransport creates a transport bound to the platform base URL. When
// credentials are given, their query fields are merged into every request.
// A request answered with a rejected-token errcode is sent once more after the
// credentials are invalidated, when they support it.
func NewRestyTransport(opts Options) *RestyTransport {
	c := newRestyBaseClient(opts.Timeout).
		SetBaseURL(opts.BaseURL).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	if opts.RestyLogger != nil {
		c.SetLogger(opts.RestyLogger)
	}
	if opts.Credentials != nil {
		c.OnBeforeRequest(authMiddleware(opts.Credentials))
	}

	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	return &RestyTransport{
		client:  c,
		creds:   opts.Credentials,
		textual: append([]string(nil), opts.TextualContentTypes...),
		log:     log,
	}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

func authMiddleware(creds CredentialProvider) resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		fields, err := creds.QueryAuthFields(r.Context())
		if err != nil {
			return fmt.Errorf("resolve auth fields: %w", err)
		}
		if len(fields) > 0 {
			r.SetQueryParams(fields)
		}
		return nil
	}
}

// Get performs a GET request with the given query parameters.
func (t *RestyTransport) Get(ctx context.Context, path string, query map[string]string) (Response, error) {
	return t.execute(ctx, http.MethodGet, path, func() *resty.Request {
		req := t.client.R().SetContext(ctx)
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
		return req
	})
}

// PostJSON performs a POST request with body encoded as JSON. HTML characters
// are not escaped because article content is HTML.
func (t *RestyTransport) PostJSON(ctx context.Context, path string, body any) (Response, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, fmt.Errorf("encode %s body: %w", path, err)
	}
	payload := bytes.TrimRight(buf.Bytes(), "\n")

	return t.execute(ctx, http.MethodPost, path, func() *resty.Request {
		return t.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload)
	})
}

// PostMultipart performs a multipart/form-data POST request.
func (t *RestyTransport) PostMultipart(ctx context.Context, path string, form Multipart) (Response, error) {
	return t.execute(ctx, http.MethodPost, path, func() *resty.Request {
		req := t.client.R().SetContext(ctx)
		for field, file := range form.Files {
			req.SetFile(field, file)
		}
		if len(form.Fields) > 0 {
			req.SetFormData(form.Fields)
		}
		if len(form.Query) > 0 {
			req.SetQueryParams(form.Query)
		}
		return req
	})
}

// execute sends the request built by build. When the platform rejects the
// access token, the credentials are invalidated and a fresh request is sent once.
func (t *RestyTransport) execute(ctx context.Context, method, path string, build func() *resty.Request) (Response, error) {
	resp, err := t.send(build(), method, path)
	if err == nil || !IsTokenRejected(err) {
		return resp, err
	}

	inv, ok := t.creds.(Invalidator)
	if !ok {
		return nil, err
	}
	if invErr := inv.Invalidate(ctx); invErr != nil {
		t.log.WarnObj("access token invalidation failed", "token_refresh", map[string]any{
			"path":  path,
			"error": invErr.Error(),
		})
		return nil, err
	}
	t.log.DebugObj("access token rejected, retrying", "token_refresh", map[string]any{
		"method": method,
		"path":   path,
	})
	return t.send(build(), method, path)
}

func (t *RestyTransport) send(req *resty.Request, method, path string) (Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	out := &restyResponseAdapter{resp: resp}
	t.log.DebugObj("wechat api call", "http_call", map[string]any{
		"method":       method,
		"path":         path,
		"status":       resp.StatusCode(),
		"content_type": out.ContentType(),
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})

	if resp.IsError() {
		return nil, &StatusError{Path: path, Status: resp.StatusCode(), Snippet: readBodySnippet(resp.Body())}
	}
	if IsTextual(out.ContentType(), t.textual) {
		if apiErr := checkAPIError(path, resp.Body()); apiErr != nil {
			t.log.WarnObj("wechat api error", "api_error", apiErr)
			return nil, apiErr
		}
	}
	return out, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) ContentType() string { return r.resp.Header().Get("Content-Type") }
