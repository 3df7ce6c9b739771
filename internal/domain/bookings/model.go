package bookings

import (
	"time"

	"barbergate/internal/domain/tenants"
	"barbergate/internal/domain/users"
)

const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type Service struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index" json:"barbershop_id"`

	Name            string  `gorm:"not null" json:"name"`
	Description     string  `json:"description"`
	PriceBRL        float64 `gorm:"column:price_brl" json:"price_brl"`
	DurationMinutes int     `gorm:"default:30" json:"duration_minutes"`
	Active          bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
}

type Professional struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index" json:"barbershop_id"`

	Name      string `gorm:"not null" json:"name"`
	Specialty string `json:"specialty"`
	Active    bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
}

type Client struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	BarbershopID uint        `gorm:"index" json:"barbershop_id"`
	UserID       *uint       `json:"user_id"`
	User         *users.User `json:"-"`

	Name  string `gorm:"not null" json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	CreatedAt time.Time `json:"created_at"`
}

type Booking struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	BarbershopID uint                `gorm:"index" json:"barbershop_id"`
	Barbershop   *tenants.Barbershop `json:"-"`

	ServiceID      uint          `json:"service_id"`
	Service        *Service      `json:"service,omitempty"`
	ProfessionalID uint          `json:"professional_id"`
	Professional   *Professional `json:"professional,omitempty"`
	ClientID       uint          `json:"client_id"`
	Client         *Client       `json:"client,omitempty"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"type:varchar(20);default:'scheduled'" json:"status"`
	Notes  string `gorm:"size:255" json:"notes"`

	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
