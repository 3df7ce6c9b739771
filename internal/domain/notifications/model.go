package notifications

import "time"

const (
	EventConfirmation = "confirmation"
	EventCancellation = "cancellation"
	EventReminder     = "reminder"

	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"

	StatusSent   = "sent"
	StatusFailed = "failed"
)

// NotificationSetting holds the per-tenant channel and event switches.
// A tenant with no row gets the in-code defaults (email on, WhatsApp off, all
// events on). No `default` tags here: gorm omits zero-value fields from the
// INSERT when one is present, which would silently flip a disabled switch back
// to the column default. Every write carries explicit values.
type NotificationSetting struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"uniqueIndex:idx_notification_settings_shop" json:"barbershop_id"`

	EmailEnabled    bool `json:"email_enabled"`
	WhatsAppEnabled bool `gorm:"column:whatsapp_enabled" json:"whatsapp_enabled"`

	SendConfirmation bool `json:"send_confirmation"`
	SendReminder     bool `json:"send_reminder"`
	SendCancellation bool `json:"send_cancellation"`

	UpdatedAt time.Time `json:"updated_at"`
}

type NotificationTemplate struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index:idx_notification_templates_key" json:"barbershop_id"`

	Event   string `gorm:"type:varchar(20);index:idx_notification_templates_key" json:"event"`
	Channel string `gorm:"type:varchar(20);index:idx_notification_templates_key" json:"channel"`
	Content string `gorm:"type:text" json:"content"`
	Active  bool   `json:"active"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NotificationLog is append-only; one row per dispatch attempt. Never read
// back into gating logic.
type NotificationLog struct {
	ID           uint `gorm:"primaryKey"`
	BarbershopID uint `gorm:"index"`

	Channel      string `gorm:"type:varchar(20)"`
	Recipient    string
	Content      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // sent | failed
	ErrorMessage string `gorm:"type:text"`

	SentAt time.Time
}

// BookingReminderSent is the dedup marker the reminder job checks before
// sending and writes after a successful send.
type BookingReminderSent struct {
	ID        uint `gorm:"primaryKey"`
	BookingID uint `gorm:"uniqueIndex:idx_booking_reminders_booking"`
	SentAt    time.Time
}

func (BookingReminderSent) TableName() string { return "booking_reminders_sent" }
