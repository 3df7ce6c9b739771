package subscriptions

import (
	"time"

	"barbergate/internal/domain/tenants"
	"barbergate/internal/domain/users"
)

const (
	PlanTypeTrial = "trial"

	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusCancelled = "cancelled"
)

// BarbershopSubscription gates the tenant itself (trial vs paid platform access).
type BarbershopSubscription struct {
	ID           uint `gorm:"primaryKey"`
	BarbershopID uint `gorm:"index"`

	PlanType string `gorm:"type:varchar(20);not null;default:'trial'"`
	Status   string `gorm:"type:varchar(20);not null;default:'active'"`

	TrialEndsAt        *time.Time
	SubscriptionEndsAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionPlan is a service plan a barbershop sells to its end customers.
type SubscriptionPlan struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index" json:"barbershop_id"`

	Name         string  `gorm:"not null" json:"name"`
	Description  string  `json:"description"`
	PriceBRL     float64 `gorm:"column:price_brl" json:"price_brl"`
	DurationDays int     `gorm:"not null" json:"duration_days"`
	Active       bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
}

// ClientSubscription is an end customer's paid plan at one barbershop.
// At most one active row per (user, barbershop); enforced by a partial unique
// index so concurrent duplicate webhook deliveries collapse into one upsert.
type ClientSubscription struct {
	ID           uint `gorm:"primaryKey"`
	PlanID       uint
	Plan         *SubscriptionPlan
	BarbershopID uint `gorm:"index"`
	Barbershop   *tenants.Barbershop
	UserID       uint `gorm:"index"`
	User         *users.User

	StartedAt time.Time
	ExpiresAt time.Time
	Status    string `gorm:"type:varchar(20);not null;default:'active'"`

	PaymentMethod string
	TransactionID string
	PreferenceID  string `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentTransaction is created pending at checkout initiation (keyed by the
// provider preference id) and finalized exactly once per relevant webhook
// delivery. RawPayload keeps the provider response verbatim for audit.
type PaymentTransaction struct {
	ID           uint   `gorm:"primaryKey"`
	PreferenceID string `gorm:"not null;uniqueIndex:idx_payment_transactions_preference"`

	BarbershopID uint `gorm:"index"`
	UserID       uint `gorm:"index"`
	PlanID       uint

	ExternalReference string `gorm:"index"`

	AmountBRL         float64 `gorm:"column:amount_brl"`
	Status            string  `gorm:"type:varchar(30);not null;default:'pending'"`
	PaymentMethod     string
	ProviderPaymentID string
	RawPayload        []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Notification is the user-facing feed entry written by the reconciler.
type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index" json:"user_id"`
	Type    string `gorm:"type:varchar(20)" json:"type"` // "success" | "error"
	Title   string `json:"title"`
	Message string `json:"message"`
	Read    bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}
