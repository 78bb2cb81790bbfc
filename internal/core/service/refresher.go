package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/infrastructure/gateway"
)

// Refresher calls the refresh endpoint directly on the transport, never
// through the gateway, so a rejected refresh cannot recurse into renewal.
type Refresher struct {
	transport *gateway.Transport
}

var _ ports.Refresher = (*Refresher)(nil)

func NewRefresher(transport *gateway.Transport) *Refresher {
	return &Refresher{transport: transport}
}

func (r *Refresher) Refresh(ctx context.Context, credential string) (*domain.AuthGrant, error) {
	resp, err := r.transport.Do(ctx, gateway.Request{
		Method:    http.MethodPost,
		Path:      pathRefresh,
		Header:    http.Header{gateway.HeaderAuthorization: {"Bearer " + credential}},
		RequestID: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", domain.ErrRefreshRejected, resp.StatusCode)
	}

	g, err := grant(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh: %v", domain.ErrInvalidResponse, err)
	}
	return &g, nil
}
