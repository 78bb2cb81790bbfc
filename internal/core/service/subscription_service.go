package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

const pathSubscriptions = "/api/subscriptions"

// SubscriptionService manages law change notification subscriptions.
// Successful responses wrap the record in {"data": ...}.
type SubscriptionService struct {
	gateway  ports.Requester
	validate *Validator
	log      zerolog.Logger
}

func NewSubscriptionService(gateway ports.Requester, validate *Validator, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{gateway: gateway, validate: validate, log: log}
}

func (s *SubscriptionService) List(ctx context.Context) Result[[]domain.Subscription] {
	op := operation{method: http.MethodGet, path: pathSubscriptions, fallback: "Failed to load subscriptions", message: errorList}
	return call(ctx, s.gateway, s.log, op, nil, field[[]domain.Subscription]("data"))
}

func (s *SubscriptionService) Get(ctx context.Context, id string) Result[domain.Subscription] {
	if err := s.validate.Var("id", id, "required"); err != nil {
		return fail[domain.Subscription](err.Error())
	}
	op := operation{method: http.MethodGet, path: subscriptionPath(id), fallback: "Subscription not found", message: errorList}
	return call(ctx, s.gateway, s.log, op, nil, field[domain.Subscription]("data"))
}

func (s *SubscriptionService) Create(ctx context.Context, in domain.CreateSubscriptionParams) Result[domain.Subscription] {
	if err := s.validate.Struct(in); err != nil {
		return fail[domain.Subscription](err.Error())
	}
	op := operation{method: http.MethodPost, path: pathSubscriptions, fallback: "Failed to create subscription", message: errorList}
	return call(ctx, s.gateway, s.log, op, in, field[domain.Subscription]("data"))
}

func (s *SubscriptionService) Update(ctx context.Context, id string, in domain.UpdateSubscriptionParams) Result[domain.Subscription] {
	if err := s.validate.Var("id", id, "required"); err != nil {
		return fail[domain.Subscription](err.Error())
	}
	if err := s.validate.Struct(in); err != nil {
		return fail[domain.Subscription](err.Error())
	}
	op := operation{method: http.MethodPatch, path: subscriptionPath(id), fallback: "Failed to update subscription", message: errorList}
	return call(ctx, s.gateway, s.log, op, in, field[domain.Subscription]("data"))
}

// Delete removes a subscription. The body is only read on failure.
func (s *SubscriptionService) Delete(ctx context.Context, id string) Result[struct{}] {
	if err := s.validate.Var("id", id, "required"); err != nil {
		return fail[struct{}](err.Error())
	}
	op := operation{method: http.MethodDelete, path: subscriptionPath(id), fallback: "Failed to delete subscription", message: errorList}
	return call(ctx, s.gateway, s.log, op, nil, ignore)
}

func subscriptionPath(id string) string {
	return pathSubscriptions + "/" + url.PathEscape(id)
}
