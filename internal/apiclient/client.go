package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"sharetome/internal/model"
)

// DefaultBaseURL is used when Options.BaseURL is empty.
const DefaultBaseURL = "http://localhost:8080"

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the instrumented default client. Mostly useful in tests.
	HTTPClient *http.Client
	Logger     zerolog.Logger
	Metrics    *Metrics
}

// RequestOptions are the per-call HTTP options.
// Body is sent as-is when it is an io.Reader and JSON-encoded otherwise.
// Header values override the client defaults.
type RequestOptions struct {
	Method string
	Body   any
	Header http.Header
}

// Client talks to the ShareTome backend API.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	metrics *Metrics
}

// New creates a backend client.
func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL: base,
		http:    hc,
		log:     opts.Logger.With().Str("component", "apiclient").Logger(),
		metrics: opts.Metrics,
	}
}

// BaseURL returns the backend address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Request performs an authenticated call against endpoint and decodes a JSON
// response into out. out may be nil for calls whose response is ignored.
//
// The session principal is sent as the bearer credential. A missing principal
// fails with ErrUnauthenticated and nothing is sent.
func (c *Client) Request(ctx context.Context, sess *model.Session, endpoint string, opts RequestOptions, out any) error {
	if sess == nil || sess.Email == "" {
		return ErrUnauthenticated
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Authorization", "Bearer "+sess.Email)
	for k, vs := range opts.Header {
		header[http.CanonicalHeaderKey(k)] = vs
	}

	return c.do(ctx, opts.Method, endpoint, opts.Body, header, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, header http.Header, out any) error {
	if method == "" {
		method = http.MethodGet
	}

	reader, err := encodeBody(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header = header

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &RequestFailedError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &InvalidResponseError{Err: err}
	}
	return nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}
