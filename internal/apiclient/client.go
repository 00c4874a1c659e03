// Package apiclient is the typed HTTP transport used by the upload client.
// Every failure comes back as a *ClientError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"strings"
	"time"

	"github.com/OpenNSW/aadhaar/internal/filedata"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 30 * time.Second
)

// Client issues JSON requests against a base URL. Construct one per
// application root and pass it to whoever needs it.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	headers    http.Header
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithDefaultHeader adds a header sent on every request.
func WithDefaultHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// New creates a Client. Empty baseURL and non-positive timeout fall back to
// the defaults. Cookies set by the server are kept between calls.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Jar: jar},
		headers:    http.Header{},
	}
	c.headers.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL every endpoint is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers http.Header
	timeout time.Duration
}

// WithHeader sets a header on one request.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.headers.Set(key, value) }
}

// WithTimeout overrides the client timeout for one request.
func WithTimeout(d time.Duration) RequestOption {
	return func(rc *requestConfig) { rc.timeout = d }
}

func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, body, out, opts)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, body, out, opts)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPatch, endpoint, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, out, opts)
}

// Form is a multipart body: named files plus plain fields.
type Form struct {
	Files  map[string]*filedata.File
	Fields map[string]string
}

// UploadFile POSTs form as multipart/form-data. The JSON content type is
// not sent; the multipart boundary header replaces it.
func (c *Client) UploadFile(ctx context.Context, endpoint string, form Form, out any, opts ...RequestOption) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range form.Fields {
		if err := mw.WriteField(name, value); err != nil {
			return setupError(err)
		}
	}
	for field, file := range form.Files {
		if err := writeFilePart(mw, field, file); err != nil {
			return setupError(err)
		}
	}
	if err := mw.Close(); err != nil {
		return setupError(err)
	}

	opts = append(opts, WithHeader("Content-Type", mw.FormDataContentType()))
	return c.do(ctx, http.MethodPost, endpoint, &buf, out, opts)
}

func writeFilePart(mw *multipart.Writer, field string, file *filedata.File) error {
	if file == nil {
		return fmt.Errorf("no file for field %q", field)
	}
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
	contentType := file.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, rc)
	return err
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any, opts []RequestOption) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return setupError(fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, method, endpoint, reader, out, opts)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, out any, opts []RequestOption) error {
	rc := requestConfig{headers: c.headers.Clone(), timeout: c.timeout}
	for _, opt := range opts {
		opt(&rc)
	}

	ctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(endpoint), body)
	if err != nil {
		return setupError(err)
	}
	req.Header = rc.headers

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		ce := transportError(err)
		slog.WarnContext(ctx, "request failed", "method", method, "endpoint", endpoint, "error", err, "status", ce.StatusCode)
		return ce
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}
	slog.DebugContext(ctx, "request completed", "method", method, "endpoint", endpoint,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &errBody)
		}
		return responseError(resp.StatusCode, errBody)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ClientError{
			Message:    fmt.Sprintf("invalid response body: %v", err),
			StatusCode: resp.StatusCode,
			Data:       string(raw),
		}
	}
	return nil
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}
