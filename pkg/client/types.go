package client

import (
	"github.com/sertantai/hub-client/internal/core/domain"
	"github.com/sertantai/hub-client/internal/core/ports"
	"github.com/sertantai/hub-client/internal/core/service"
	"github.com/sertantai/hub-client/internal/infrastructure/config"
)

// Configuration.
type (
	Config        = config.Config
	RefreshConfig = config.RefreshConfig
	StorageConfig = config.StorageConfig
	RedisConfig   = config.RedisConfig
	MongoConfig   = config.MongoConfig
)

// Session state.
type (
	Session      = domain.Session
	SessionState = domain.SessionState
	Identity     = domain.Identity
	Claims       = domain.Claims
)

const (
	StateEmpty         = domain.StateEmpty
	StateAuthenticated = domain.StateAuthenticated
)

// Results and resource records.
type (
	Result[T any] = service.Result[T]

	ProfileUser              = domain.ProfileUser
	ProfileUpdate            = domain.ProfileUpdate
	Organization             = domain.Organization
	OrganizationUpdate       = domain.OrganizationUpdate
	TotpStatus               = domain.TotpStatus
	TotpSetup                = domain.TotpSetup
	TotpToggle               = domain.TotpToggle
	Subscription             = domain.Subscription
	Frequency                = domain.Frequency
	LawChangeEvent           = domain.LawChangeEvent
	CreateSubscriptionParams = domain.CreateSubscriptionParams
	UpdateSubscriptionParams = domain.UpdateSubscriptionParams
)

const (
	FrequencyImmediate    = domain.FrequencyImmediate
	FrequencyDailyDigest  = domain.FrequencyDailyDigest
	FrequencyWeeklyDigest = domain.FrequencyWeeklyDigest
)

// Services.
type (
	AuthService         = service.AuthService
	ProfileService      = service.ProfileService
	TotpService         = service.TotpService
	SubscriptionService = service.SubscriptionService
	EventService        = service.EventService
)

// Raw gateway access.
type (
	Response        = ports.Response
	RequestOption   = ports.RequestOption
	CredentialStore = ports.CredentialStore
)

var (
	SkipAuth   = ports.SkipAuth
	WithBearer = ports.WithBearer
	WithHeader = ports.WithHeader
)

// Storage backends accepted by Config.Storage.Backend.
const (
	BackendFile   = config.BackendFile
	BackendMemory = config.BackendMemory
	BackendRedis  = config.BackendRedis
	BackendMongo  = config.BackendMongo
)
