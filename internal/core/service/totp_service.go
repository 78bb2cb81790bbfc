package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

const pathTotp = "/api/auth/totp"

type totpCode struct {
	Code string `json:"code" validate:"required"`
}

// TotpService manages two-factor authentication for the signed-in user.
// Responses are the data record itself.
type TotpService struct {
	gateway  ports.Requester
	validate *Validator
	log      zerolog.Logger
}

func NewTotpService(gateway ports.Requester, validate *Validator, log zerolog.Logger) *TotpService {
	return &TotpService{gateway: gateway, validate: validate, log: log}
}

func (s *TotpService) Status(ctx context.Context) Result[domain.TotpStatus] {
	op := operation{method: http.MethodGet, path: pathTotp + "/status", fallback: "Failed to check TOTP status", message: errorOrMessage}
	return call(ctx, s.gateway, s.log, op, nil, whole[domain.TotpStatus])
}

func (s *TotpService) Setup(ctx context.Context) Result[domain.TotpSetup] {
	op := operation{method: http.MethodPost, path: pathTotp + "/setup", fallback: "Failed to setup TOTP", message: errorOrMessage}
	return call(ctx, s.gateway, s.log, op, nil, whole[domain.TotpSetup])
}

func (s *TotpService) Enable(ctx context.Context, code string) Result[domain.TotpToggle] {
	return s.toggle(ctx, "/enable", code)
}

func (s *TotpService) Disable(ctx context.Context, code string) Result[domain.TotpToggle] {
	return s.toggle(ctx, "/disable", code)
}

func (s *TotpService) toggle(ctx context.Context, action, code string) Result[domain.TotpToggle] {
	in := totpCode{Code: code}
	if err := s.validate.Struct(in); err != nil {
		return fail[domain.TotpToggle](err.Error())
	}
	op := operation{method: http.MethodPost, path: pathTotp + action, fallback: "Invalid code", message: errorOrMessage}
	return call(ctx, s.gateway, s.log, op, in, whole[domain.TotpToggle])
}
