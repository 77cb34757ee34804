package apiclient

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sharetome/internal/model"
)

// ResolveReadable reads endpoint for a resource that may be owned by the caller
// or shared publicly. The authenticated path is tried first; if it fails for any
// reason, including a missing session, a single unauthenticated GET is made to
// the same endpoint. When both fail the public-path error is returned.
//
// Only read operations may use this. Writes always go through Request.
func (c *Client) ResolveReadable(ctx context.Context, sess *model.Session, endpoint string, out any) error {
	err := c.Request(ctx, sess, endpoint, RequestOptions{Method: http.MethodGet}, out)
	if err == nil {
		c.metrics.observeRead(readAuthenticated)
		return nil
	}

	c.log.Debug().Err(err).Str("endpoint", endpoint).Msg("authenticated read failed, trying public path")
	trace.SpanFromContext(ctx).AddEvent("public_fallback", trace.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("reason", err.Error()),
	))

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if err := c.do(ctx, http.MethodGet, endpoint, nil, header, out); err != nil {
		c.metrics.observeRead(readFailed)
		return err
	}

	c.metrics.observeRead(readPublic)
	return nil
}
