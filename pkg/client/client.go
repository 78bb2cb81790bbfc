// Package client is the entry point for hosts embedding the hub client. A
// Client is built once per process and owns the session, its renewal and
// every hub call made on the user's behalf.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/core/service"
	"github.com/sertantai/hub-client/internal/core/session"
	"github.com/sertantai/hub-client/internal/core/token"
	"github.com/sertantai/hub-client/internal/infrastructure/config"
	mongostore "github.com/sertantai/hub-client/internal/infrastructure/db/mongo"
	redisstore "github.com/sertantai/hub-client/internal/infrastructure/db/redis"
	"github.com/sertantai/hub-client/internal/infrastructure/gateway"
	"github.com/sertantai/hub-client/internal/infrastructure/storage/file"
	"github.com/sertantai/hub-client/internal/infrastructure/storage/memory"
	"github.com/sertantai/hub-client/pkg/logger"
)

// Client is the process-wide hub client.
type Client struct {
	log     zerolog.Logger
	closers []func(context.Context) error

	manager *session.Manager
	gateway *gateway.Gateway

	auth          *service.AuthService
	profile       *service.ProfileService
	totp          *service.TotpService
	subscriptions *service.SubscriptionService
	events        *service.EventService
}

// Option adjusts how New wires the client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	storage    ports.CredentialStore
	log        *zerolog.Logger
}

// WithHTTPClient replaces the HTTP client built from Config.RequestTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithCredentialStore bypasses Config.Storage and persists through s.
func WithCredentialStore(s CredentialStore) Option {
	return func(o *options) { o.storage = s }
}

// WithLogger sets the base logger. Without it the pkg/logger singleton is
// used, which stays silent until the host calls logger.Init.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}

// LoadConfig reads configuration from the environment.
func LoadConfig(ctx context.Context) (*Config, error) {
	return config.Load(ctx)
}

// MustLoadConfig is LoadConfig for process start: it panics on invalid
// configuration.
func MustLoadConfig() *Config {
	return config.MustLoad()
}

// InitLogging initialises the pkg/logger singleton from the HUB_LOG_LEVEL,
// HUB_LOG_PRETTY and HUB_ENV settings. Output defaults to stderr when out is
// nil. Hosts that manage their own logger pass it with WithLogger instead.
func InitLogging(cfg *Config, out io.Writer) zerolog.Logger {
	return logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: out,
		Env:    cfg.Env,
	})
}

// New wires a client. It does not touch the persisted credential; call
// Restore once the host is ready to observe the session.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("client: nil config")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	base := logger.Get()
	if o.log != nil {
		base = *o.log
	}
	component := func(name string) zerolog.Logger {
		return base.With().Str("component", name).Logger()
	}

	c := &Client{log: component("client")}

	storage := o.storage
	if storage == nil {
		s, closer, err := openStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		storage = s
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	transport := gateway.NewTransport(cfg.APIURL, httpClient, component("transport"))

	store := session.NewStore(storage, component("session"))
	renewer := session.NewRenewer(store, service.NewRefresher(transport), component("renewer"))
	scheduler := session.NewScheduler(store, renewer, cfg.Refresh.Interval, cfg.Refresh.Grace, component("scheduler"))
	c.manager = session.NewManager(store, renewer, scheduler, component("session"))
	c.gateway = gateway.New(transport, store, renewer, store, component("gateway"))

	validate := service.NewValidator()
	c.auth = service.NewAuthService(c.gateway, store, c.manager, store, validate, component("auth"))
	c.profile = service.NewProfileService(c.gateway, validate, component("profile"))
	c.totp = service.NewTotpService(c.gateway, validate, component("totp"))
	c.subscriptions = service.NewSubscriptionService(c.gateway, validate, component("subscriptions"))
	c.events = service.NewEventService(c.gateway, component("events"))

	c.log.Debug().
		Str("api_url", cfg.APIURL).
		Str("storage", cfg.Storage.Backend).
		Msg("hub client ready")
	return c, nil
}

func openStorage(ctx context.Context, cfg *Config) (ports.CredentialStore, func(context.Context) error, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewCredentialStore(), nil, nil

	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:    cfg.Redis.Addr,
			DB:      cfg.Redis.DB,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("client: %w", err)
		}
		closer := func(context.Context) error { return rdb.Close() }
		return redisstore.NewCredentialStore(rdb, cfg.Storage.Key), closer, nil

	case config.BackendMongo:
		mc, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.RequestTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("client: %w", err)
		}
		return mongostore.NewCredentialStore(db, cfg.Storage.Key), mc.Disconnect, nil

	case config.BackendFile, "":
		path, err := cfg.CredentialFile()
		if err != nil {
			return nil, nil, fmt.Errorf("client: %w", err)
		}
		return file.NewCredentialStore(path), nil, nil

	default:
		return nil, nil, fmt.Errorf("client: unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Restore rebuilds the session from the persisted credential. Call it once,
// at startup.
func (c *Client) Restore(ctx context.Context) {
	c.manager.Restore(ctx)
}

// Session returns a snapshot of the current session.
func (c *Client) Session() Session {
	return c.manager.Store().Current()
}

// Claims decodes the current credential's claims without verifying them.
func (c *Client) Claims() (*Claims, bool) {
	return token.Decode(c.Session().Credential)
}

// Subscribe calls fn with the current session and then on every transition,
// in order. The returned function unsubscribes.
func (c *Client) Subscribe(fn func(Session)) (unsubscribe func()) {
	return c.manager.Store().Subscribe(fn)
}

// Renew exchanges the current credential for a fresh one.
func (c *Client) Renew(ctx context.Context) bool {
	return c.manager.Renewer().Renew(ctx)
}

func (c *Client) Register(ctx context.Context, email, password string) Result[struct{}] {
	return c.auth.Register(ctx, email, password)
}

func (c *Client) Login(ctx context.Context, email, password string) Result[struct{}] {
	return c.auth.Login(ctx, email, password)
}

func (c *Client) Logout(ctx context.Context) Result[struct{}] {
	return c.auth.Logout(ctx)
}

func (c *Client) RequestMagicLink(ctx context.Context, email string) Result[struct{}] {
	return c.auth.RequestMagicLink(ctx, email)
}

func (c *Client) CompleteMagicLink(ctx context.Context, linkToken string) Result[struct{}] {
	return c.auth.CompleteMagicLink(ctx, linkToken)
}

// Request sends an arbitrary call through the authenticated gateway.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.gateway.Request(ctx, method, path, body, opts...)
}

func (c *Client) Profile() *ProfileService { return c.profile }

func (c *Client) Totp() *TotpService { return c.totp }

func (c *Client) Subscriptions() *SubscriptionService { return c.subscriptions }

func (c *Client) Events() *EventService { return c.events }

// Close stops background renewal and releases storage connections. The
// session itself, and the persisted credential, are left as they are.
func (c *Client) Close(ctx context.Context) error {
	c.manager.Scheduler().Stop()

	var errs []error
	for _, closer := range c.closers {
		if err := closer(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
