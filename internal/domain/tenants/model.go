package tenants

import (
	"time"

	"barbergate/internal/domain/users"
)

// Barbershop is the tenant aggregate. Every public route and every piece of
// booking data hangs off one of these rows.
type Barbershop struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	OwnerID uint        `gorm:"index" json:"owner_id"`
	Owner   *users.User `json:"-"`

	Slug string `gorm:"not null;uniqueIndex:idx_barbershops_slug" json:"slug"`
	Name string `gorm:"not null" json:"name"`

	LogoURL       string `json:"logo_url"`
	PrimaryColor  string `gorm:"type:varchar(10)" json:"primary_color"`
	CustomMessage string `json:"custom_message"`

	Address   string `json:"address"`
	Phone     string `json:"phone"`
	WhatsApp  string `gorm:"column:whatsapp" json:"whatsapp"`
	Instagram string `json:"instagram"`
	TikTok    string `gorm:"column:tiktok" json:"tiktok"`

	OpeningTime string `gorm:"type:varchar(5)" json:"opening_time"` // "09:00"
	ClosingTime string `gorm:"type:varchar(5)" json:"closing_time"` // "19:00"
	OpeningDays string `json:"opening_days"`                        // comma separated: "mon,tue,..."

	// At most one row holds this flag; enforced by a partial unique index
	// created in database.InitDB.
	IsOfficial bool `gorm:"index" json:"is_official"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BasePath is the link prefix all tenant-scoped routes live under.
// The official shop is served at the root, everything else under /b/<slug>.
func (b *Barbershop) BasePath() string {
	if b.IsOfficial {
		return ""
	}
	return "/b/" + b.Slug
}
