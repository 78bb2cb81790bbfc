package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

const (
	pathProfile        = "/api/auth/profile"
	pathChangePassword = "/api/auth/profile/change-password"
	pathOrganization   = "/api/auth/organization"
)

type passwordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// ProfileService reads and edits the signed-in user and their organization.
type ProfileService struct {
	gateway  ports.Requester
	validate *Validator
	log      zerolog.Logger
}

func NewProfileService(gateway ports.Requester, validate *Validator, log zerolog.Logger) *ProfileService {
	return &ProfileService{gateway: gateway, validate: validate, log: log}
}

func (s *ProfileService) GetProfile(ctx context.Context) Result[domain.ProfileUser] {
	op := operation{method: http.MethodGet, path: pathProfile, fallback: "Failed to fetch profile", message: errorOrMessage}
	return call(ctx, s.gateway, s.log, op, nil, field[domain.ProfileUser]("user"))
}

// UpdateProfile sends only the fields that are set, unwrapped.
func (s *ProfileService) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) Result[domain.ProfileUser] {
	if err := s.validate.Struct(in); err != nil {
		return fail[domain.ProfileUser](err.Error())
	}
	op := operation{method: http.MethodPatch, path: pathProfile, fallback: "Failed to update profile", message: errorOrMessage}
	return call(ctx, s.gateway, s.log, op, in, field[domain.ProfileUser]("user"))
}

func (s *ProfileService) ChangePassword(ctx context.Context, current, next string) Result[struct{}] {
	in := passwordChange{CurrentPassword: current, NewPassword: next}
	if err := s.validate.Struct(in); err != nil {
		return fail[struct{}](err.Error())
	}
	op := operation{method: http.MethodPost, path: pathChangePassword, fallback: "Failed to change password", message: errorOrMessage}
	return call(ctx, s.gateway, s.log, op, in, ignore)
}

func (s *ProfileService) GetOrganization(ctx context.Context) Result[domain.Organization] {
	op := operation{method: http.MethodGet, path: pathOrganization, fallback: "Failed to fetch organization", message: errorOrMessage}
	return call(ctx, s.gateway, s.log, op, nil, field[domain.Organization]("organization"))
}

// UpdateOrganization sends the changes wrapped as {"organization": {...}}.
func (s *ProfileService) UpdateOrganization(ctx context.Context, in domain.OrganizationUpdate) Result[domain.Organization] {
	op := operation{method: http.MethodPatch, path: pathOrganization, fallback: "Failed to update organization", message: errorOrMessage}
	body := struct {
		Organization domain.OrganizationUpdate `json:"organization"`
	}{in}
	return call(ctx, s.gateway, s.log, op, body, field[domain.Organization]("organization"))
}
