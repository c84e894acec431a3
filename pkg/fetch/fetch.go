// Package fetch retrieves font binaries and stylesheets over HTTP.
//
// [Client.DataURL] performs a byte fetch of a URL and returns a fully
// self-describing inline representation: a base64-encoded, MIME-typed
// data: URI that is permanently substitutable for the URL. [Client.Text]
// fetches a stylesheet body as text. Caching is the caller's concern;
// the client only handles transport, retries, and MIME resolution.
//
// Transient failures (network errors, 5xx responses) are retried with
// exponential backoff. 4xx responses fail immediately.
package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/fontsnap/fontsnap/pkg/observability"
)

const (
	httpTimeout    = 15 * time.Second
	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond

	// maxBodySize bounds a single resource read. Web fonts are small;
	// 32 MiB leaves generous headroom for CJK families.
	maxBodySize = 32 << 20
)

var (
	// ErrNotFound is returned when the resource doesn't exist (404).
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// fontMIMETypes maps font file extensions to their MIME types.
// The Content-Type header wins when present; servers frequently ship
// fonts as application/octet-stream, which this map corrects.
var fontMIMETypes = map[string]string{
	".woff2": "font/woff2",
	".woff":  "font/woff",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
	".svg":   "image/svg+xml",
	".css":   "text/css",
}

// Client fetches resources with retries and a bounded timeout.
// The zero value is not usable; construct with [NewClient].
type Client struct {
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
// Useful for tests and for callers that need custom transports.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a fetch client with a standard timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: httpTimeout},
		userAgent: "fontsnap/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DataURL fetches the resource at rawurl and returns it as a data: URI
// of the form "data:<mime>;base64,<payload>". Supports arbitrary binary
// content. If rawurl is already a data: URI it is returned unchanged.
func (c *Client) DataURL(ctx context.Context, rawurl string) (string, error) {
	if strings.HasPrefix(rawurl, "data:") {
		return rawurl, nil
	}
	body, contentType, err := c.fetch(ctx, rawurl)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(resolveMIME(rawurl, contentType, body), body), nil
}

// Text fetches the resource at rawurl and returns the body as a string.
// Used for stylesheet documents.
func (c *Client) Text(ctx context.Context, rawurl string) (string, error) {
	body, _, err := c.fetch(ctx, rawurl)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// fetch GETs rawurl with retry on transient failures and returns the body
// and the Content-Type header value.
func (c *Client) fetch(ctx context.Context, rawurl string) ([]byte, string, error) {
	var (
		body        []byte
		contentType string
	)
	err := Retry(ctx, retryAttempts, retryBaseDelay, func() error {
		var err error
		body, contentType, err = c.doRequest(ctx, rawurl)
		return err
	})
	return body, contentType, err
}

func (c *Client) doRequest(ctx context.Context, rawurl string) ([]byte, string, error) {
	host, urlPath := hostPath(rawurl)
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, urlPath)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request for %s: %w", rawurl, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, urlPath, err)
		return nil, "", &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, http.MethodGet, host, urlPath, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, urlPath, err)
		return nil, "", &RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// EncodeDataURL builds a data: URI from a MIME type and raw bytes.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// resolveMIME determines the media type for a fetched resource.
// Precedence: font extension map, Content-Type header, content sniffing.
// The extension map outranks the header because font CDNs commonly serve
// woff2 as application/octet-stream.
func resolveMIME(rawurl, contentType string, body []byte) string {
	if u, err := url.Parse(rawurl); err == nil {
		if mt, ok := fontMIMETypes[strings.ToLower(path.Ext(u.Path))]; ok {
			return mt
		}
	}
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	return http.DetectContentType(body)
}

func hostPath(rawurl string) (string, string) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl, ""
	}
	return u.Host, u.Path
}
