package domain

// Frequency controls how often matching law changes are delivered.
type Frequency string

const (
	FrequencyImmediate    Frequency = "immediate"
	FrequencyDailyDigest  Frequency = "daily_digest"
	FrequencyWeeklyDigest Frequency = "weekly_digest"
)

// Subscription is a notification subscription owned by an organization.
type Subscription struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	UserID          *string   `json:"user_id"`
	Name            string    `json:"name"`
	LawFamilies     []string  `json:"law_families"`
	GeoExtent       []string  `json:"geo_extent"`
	ChangeTypes     []string  `json:"change_types"`
	Keywords        []string  `json:"keywords"`
	TypeCodes       []string  `json:"type_codes"`
	Frequency       Frequency `json:"frequency"`
	DeliveryMethods []string  `json:"delivery_methods"`
	Enabled         bool      `json:"enabled"`
	InsertedAt      string    `json:"inserted_at"`
	UpdatedAt       string    `json:"updated_at"`
}

// LawChangeEvent is a delivered (or pending) notification.
type LawChangeEvent struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	SubscriptionID string   `json:"subscription_id"`
	LawName        string   `json:"law_name"`
	LawTitle       string   `json:"law_title"`
	ChangeType     string   `json:"change_type"`
	Families       []string `json:"families"`
	Summary        *string  `json:"summary"`
	DeliveredAt    *string  `json:"delivered_at"`
	BatchID        *string  `json:"batch_id"`
	InsertedAt     string   `json:"inserted_at"`
}

// CreateSubscriptionParams is sent as-is as the POST body.
type CreateSubscriptionParams struct {
	Name            string    `json:"name" validate:"required"`
	LawFamilies     []string  `json:"law_families,omitempty"`
	GeoExtent       []string  `json:"geo_extent,omitempty"`
	ChangeTypes     []string  `json:"change_types,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	TypeCodes       []string  `json:"type_codes,omitempty"`
	Frequency       Frequency `json:"frequency,omitempty" validate:"omitempty,oneof=immediate daily_digest weekly_digest"`
	DeliveryMethods []string  `json:"delivery_methods,omitempty"`
}

// UpdateSubscriptionParams is sent as-is as the PATCH body. Nil fields are
// left untouched by the server.
type UpdateSubscriptionParams struct {
	Name            *string   `json:"name,omitempty"`
	LawFamilies     []string  `json:"law_families,omitempty"`
	GeoExtent       []string  `json:"geo_extent,omitempty"`
	ChangeTypes     []string  `json:"change_types,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	TypeCodes       []string  `json:"type_codes,omitempty"`
	Frequency       Frequency `json:"frequency,omitempty" validate:"omitempty,oneof=immediate daily_digest weekly_digest"`
	DeliveryMethods []string  `json:"delivery_methods,omitempty"`
	Enabled         *bool     `json:"enabled,omitempty"`
}
