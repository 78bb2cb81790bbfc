package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
)

const (
	pathRegister          = "/api/auth/register"
	pathLogin             = "/api/auth/login"
	pathLogout            = "/api/auth/logout"
	pathRefresh           = "/api/auth/refresh"
	pathMagicLinkRequest  = "/api/auth/magic-link/request"
	pathMagicLinkCallback = "/api/auth/magic-link/callback"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type magicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type magicLinkCallback struct {
	Token string `json:"token" validate:"required"`
}

type userEnvelope[T any] struct {
	User T `json:"user"`
}

// AuthService covers the identity endpoints. Login flows are public calls;
// a successful one establishes the session.
type AuthService struct {
	gateway     ports.Requester
	sessions    ports.SessionReader
	establisher ports.SessionEstablisher
	clearer     ports.SessionClearer
	validate    *Validator
	log         zerolog.Logger
}

func NewAuthService(
	gateway ports.Requester,
	sessions ports.SessionReader,
	establisher ports.SessionEstablisher,
	clearer ports.SessionClearer,
	validate *Validator,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		gateway:     gateway,
		sessions:    sessions,
		establisher: establisher,
		clearer:     clearer,
		validate:    validate,
		log:         log,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) Result[struct{}] {
	return s.signIn(ctx, pathRegister, "Registration failed", credentials{Email: email, Password: password})
}

func (s *AuthService) Login(ctx context.Context, email, password string) Result[struct{}] {
	return s.signIn(ctx, pathLogin, "Login failed", credentials{Email: email, Password: password})
}

// CompleteMagicLink exchanges a magic-link token for a session.
func (s *AuthService) CompleteMagicLink(ctx context.Context, token string) Result[struct{}] {
	in := magicLinkCallback{Token: token}
	if err := s.validate.Struct(in); err != nil {
		return fail[struct{}](err.Error())
	}
	return s.establish(ctx, pathMagicLinkCallback, "Magic link authentication failed", in)
}

// RequestMagicLink asks the hub to email a sign-in link. The session is not
// touched.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) Result[struct{}] {
	in := magicLinkRequest{Email: email}
	if err := s.validate.Struct(in); err != nil {
		return fail[struct{}](err.Error())
	}
	op := operation{
		method:   http.MethodPost,
		path:     pathMagicLinkRequest,
		fallback: "Failed to send magic link",
		message:  errorOrMessage,
		opts:     []ports.RequestOption{ports.SkipAuth()},
	}
	return call(ctx, s.gateway, s.log, op, userEnvelope[magicLinkRequest]{User: in}, ignore)
}

// Logout tells the hub the credential is done with, then clears the session
// whatever the hub answered.
func (s *AuthService) Logout(ctx context.Context) Result[struct{}] {
	if credential := s.sessions.Current().Credential; credential != "" {
		resp, err := s.gateway.Request(ctx, http.MethodPost, pathLogout, nil,
			ports.SkipAuth(), ports.WithBearer(credential))
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("logout call failed, clearing locally")
		case !resp.OK():
			s.log.Debug().Int("status", resp.StatusCode).Msg("logout rejected by hub, clearing locally")
		}
	}
	s.clearer.ClearWith(ctx, domain.ReasonLogout)
	return succeed(struct{}{})
}

func (s *AuthService) signIn(ctx context.Context, path, fallback string, in credentials) Result[struct{}] {
	if err := s.validate.Struct(in); err != nil {
		return fail[struct{}](err.Error())
	}
	return s.establish(ctx, path, fallback, userEnvelope[credentials]{User: in})
}

func (s *AuthService) establish(ctx context.Context, path, fallback string, body any) Result[struct{}] {
	op := operation{
		method:   http.MethodPost,
		path:     path,
		fallback: fallback,
		message:  errorOrMessage,
		opts:     []ports.RequestOption{ports.SkipAuth()},
	}
	res := call(ctx, s.gateway, s.log, op, body, grant)
	if !res.OK {
		return fail[struct{}](res.Error)
	}

	g := res.Data
	s.establisher.Establish(ctx, g.Token, g.User, g.OrganizationID, g.Role)
	return succeed(struct{}{})
}

func grant(resp *ports.Response) (domain.AuthGrant, error) {
	g, err := whole[domain.AuthGrant](resp)
	if err != nil {
		return g, err
	}
	if g.Token == "" {
		return g, domain.ErrInvalidResponse
	}
	return g, nil
}
