package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

const pathNotificationEvents = "/api/notification-events"

// EventService reads the organization's law change notification feed.
type EventService struct {
	gateway ports.Requester
	log     zerolog.Logger
}

func NewEventService(gateway ports.Requester, log zerolog.Logger) *EventService {
	return &EventService{gateway: gateway, log: log}
}

func (s *EventService) List(ctx context.Context) Result[[]domain.LawChangeEvent] {
	op := operation{method: http.MethodGet, path: pathNotificationEvents, fallback: "Failed to load events", message: errorList}
	return call(ctx, s.gateway, s.log, op, nil, field[[]domain.LawChangeEvent]("data"))
}
