package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/infrastructure/metrics"
)

// Gateway is the only path for calls to protected hub endpoints.
type Gateway struct {
	transport *Transport
	sessions  ports.SessionReader
	renewer   ports.CredentialRenewer
	clearer   ports.ConditionalClearer
	log       zerolog.Logger
}

var _ ports.Requester = (*Gateway)(nil)

func New(transport *Transport, sessions ports.SessionReader, renewer ports.CredentialRenewer, clearer ports.ConditionalClearer, log zerolog.Logger) *Gateway {
	return &Gateway{
		transport: transport,
		sessions:  sessions,
		renewer:   renewer,
		clearer:   clearer,
		log:       log,
	}
}

// Request sends one call. On a 401 to an authenticated call it renews at most
// once and resends the original request at most once; whatever the resend
// returns is handed back untouched. If renewal fails the session is cleared
// and the original 401 is returned. Both steps are tied to the credential the
// rejected request carried, so a session established in the meantime is
// reused rather than refreshed or torn down.
func (g *Gateway) Request(ctx context.Context, method, path string, body any, opts ...ports.RequestOption) (*ports.Response, error) {
	var o ports.RequestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		payload = b
	}

	header, sent := g.headers(o)
	req := Request{
		Method:    method,
		Path:      path,
		Body:      payload,
		Header:    header,
		RequestID: uuid.NewString(),
	}

	resp, err := g.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || o.SkipAuth {
		return resp, nil
	}

	if !g.renewer.RenewFrom(ctx, sent) {
		metrics.GatewayReauthTotal.WithLabelValues("teardown").Inc()
		g.log.Info().
			Str("path", path).
			Str("request_id", req.RequestID).
			Msg("request rejected and renewal failed, clearing session")
		g.clearer.ClearIf(ctx, sent, domain.ReasonRejected)
		return resp, nil
	}

	metrics.GatewayReauthTotal.WithLabelValues("retried").Inc()
	g.log.Debug().
		Str("path", path).
		Str("request_id", req.RequestID).
		Msg("credential renewed, resending request")

	req.Header, _ = g.headers(o)
	return g.transport.Do(ctx, req)
}

// headers builds the request headers and returns the session credential they
// carry, empty for skip-auth calls.
func (g *Gateway) headers(o ports.RequestOptions) (http.Header, string) {
	h := o.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	var credential string
	if !o.SkipAuth {
		credential = g.sessions.Current().Credential
		if credential != "" {
			h.Set(HeaderAuthorization, "Bearer "+credential)
		}
	}
	if o.Bearer != "" {
		h.Set(HeaderAuthorization, "Bearer "+o.Bearer)
	}
	return h, credential
}
