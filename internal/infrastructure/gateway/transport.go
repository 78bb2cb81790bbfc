// Package gateway is the single HTTP boundary to the hub: Transport issues
// raw calls, Gateway adds the session credential and the renew-and-retry path.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/infrastructure/metrics"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-ID"

	mimeJSON = "application/json"
)

// Request is one outbound call. Body is sent as-is.
type Request struct {
	Method    string
	Path      string
	Body      []byte
	Header    http.Header
	RequestID string
}

// Transport sends requests to the hub base URL and reads responses fully.
type Transport struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewTransport returns a Transport for baseURL. A nil client means
// http.DefaultClient; per-call timeouts belong to the client.
func NewTransport(baseURL string, client *http.Client, log zerolog.Logger) *Transport {
	if client == nil {
		client = http.DefaultClient
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

// Do issues req. A returned error always wraps domain.ErrTransport and means
// no response was obtained.
func (t *Transport) Do(ctx context.Context, req Request) (*ports.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s %s: %v", domain.ErrTransport, req.Method, req.Path, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get(HeaderContentType) == "" {
		httpReq.Header.Set(HeaderContentType, mimeJSON)
	}
	if httpReq.Header.Get(HeaderAccept) == "" {
		httpReq.Header.Set(HeaderAccept, mimeJSON)
	}
	if req.RequestID != "" {
		httpReq.Header.Set(HeaderRequestID, req.RequestID)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("error").Inc()
		t.log.Warn().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Str("request_id", req.RequestID).
			Msg("request failed without response")
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: read %s %s: %v", domain.ErrTransport, req.Method, req.Path, err)
	}

	metrics.GatewayRequestsTotal.WithLabelValues(metrics.CodeClass(resp.StatusCode)).Inc()
	t.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Str("request_id", req.RequestID).
		Msg("request completed")

	return &ports.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       payload,
	}, nil
}
