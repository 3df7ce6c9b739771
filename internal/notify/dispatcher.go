package notify

import (
	"context"
	"errors"
	"time"

	"barbergate/internal/domain/notifications"
	"barbergate/internal/domain/tenants"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingDetails carries everything a template can reference.
type BookingDetails struct {
	ClientName       string
	ClientEmail      string
	ClientPhone      string
	ServiceName      string
	ProfessionalName string
	Date             string // "02/01/2006"
	Time             string // "15:04"
}

// Result reports per-channel outcomes. Overall success is "at least one
// channel sent"; callers decide what to do with partial failure.
type Result struct {
	EmailSent    bool     `json:"email_sent"`
	WhatsAppSent bool     `json:"whatsapp_sent"`
	Errors       []string `json:"errors"`
}

func (r Result) Sent() bool {
	return r.EmailSent || r.WhatsAppSent
}

// Dispatcher fans a domain event out to every enabled channel independently.
// It performs no deduplication; callers that may fire the same event twice
// (the reminder job) keep their own markers.
type Dispatcher struct {
	db    *gorm.DB
	relay Relay
	log   *zap.Logger

	// When true the email channel also honors the per-tenant email_enabled
	// flag instead of firing for any client with an email on file.
	EmailRequiresOptIn bool
}

func NewDispatcher(db *gorm.DB, relay Relay, log *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, relay: relay, log: log}
}

// Dispatch attempts delivery over each applicable channel. Channel failures
// never abort the other channel; all failures are collected into the result.
func (d *Dispatcher) Dispatch(ctx context.Context, shop *tenants.Barbershop, event string, details BookingDetails) Result {
	var res Result

	settings := d.effectiveSettings(shop.ID)
	if !eventEnabled(settings, event) {
		d.log.Info("notification event disabled for tenant",
			zap.Uint("barbershop_id", shop.ID), zap.String("event", event))
		return res
	}

	data := notifications.TemplateData{
		ClientName:       details.ClientName,
		ServiceName:      details.ServiceName,
		ProfessionalName: details.ProfessionalName,
		Date:             details.Date,
		Time:             details.Time,
		BarbershopName:   shop.Name,
	}

	if details.ClientEmail != "" && (!d.EmailRequiresOptIn || settings.EmailEnabled) {
		content := d.renderContent(shop.ID, event, notifications.ChannelEmail, data)
		err := d.relay.SendEmail(ctx, shop.ID, map[string]interface{}{
			"client_email": details.ClientEmail,
			"subject":      emailSubject(event, shop.Name),
			"content":      content,
		})
		res.EmailSent = d.record(shop.ID, notifications.ChannelEmail, details.ClientEmail, content, err, &res)
	}

	if settings.WhatsAppEnabled && details.ClientPhone != "" {
		phone := notifications.NormalizePhone(details.ClientPhone)
		content := d.renderContent(shop.ID, event, notifications.ChannelWhatsApp, data)
		err := d.relay.SendWhatsApp(ctx, shop.ID, phone, content)
		res.WhatsAppSent = d.record(shop.ID, notifications.ChannelWhatsApp, phone, content, err, &res)
	}

	return res
}

// record logs the attempt and folds the outcome into the result. An
// unconfigured channel is a logged no-op, not a failure.
func (d *Dispatcher) record(shopID uint, channel, recipient, content string, sendErr error, res *Result) bool {
	if errors.Is(sendErr, ErrChannelUnconfigured) {
		d.log.Warn("notification channel has no relay URL, skipping",
			zap.Uint("barbershop_id", shopID), zap.String("channel", channel))
		return false
	}

	entry := notifications.NotificationLog{
		BarbershopID: shopID,
		Channel:      channel,
		Recipient:    recipient,
		Content:      content,
		Status:       notifications.StatusSent,
		SentAt:       time.Now(),
	}

	if sendErr != nil {
		entry.Status = notifications.StatusFailed
		entry.ErrorMessage = sendErr.Error()
		res.Errors = append(res.Errors, channel+": "+sendErr.Error())
	}

	if err := d.db.Create(&entry).Error; err != nil {
		d.log.Error("failed to write notification log", zap.Error(err))
	}

	return sendErr == nil
}

func (d *Dispatcher) renderContent(shopID uint, event, channel string, data notifications.TemplateData) string {
	var tmpl notifications.NotificationTemplate
	err := d.db.
		Where("barbershop_id = ? AND event = ? AND channel = ? AND active = ?", shopID, event, channel, true).
		First(&tmpl).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			d.log.Error("template lookup failed, using default", zap.Error(err))
		}
		return notifications.DefaultMessage(event, data)
	}

	content, unknown := notifications.Render(tmpl.Content, data)
	if len(unknown) > 0 {
		d.log.Warn("template references unknown placeholders",
			zap.Uint("barbershop_id", shopID), zap.Strings("tokens", unknown))
	}
	return content
}

func (d *Dispatcher) effectiveSettings(shopID uint) notifications.NotificationSetting {
	var s notifications.NotificationSetting
	err := d.db.Where("barbershop_id = ?", shopID).First(&s).Error
	if err != nil {
		// No row (or a read failure): email on, WhatsApp off, all events on.
		return notifications.NotificationSetting{
			BarbershopID:     shopID,
			EmailEnabled:     true,
			WhatsAppEnabled:  false,
			SendConfirmation: true,
			SendReminder:     true,
			SendCancellation: true,
		}
	}
	return s
}

func eventEnabled(s notifications.NotificationSetting, event string) bool {
	switch event {
	case notifications.EventConfirmation:
		return s.SendConfirmation
	case notifications.EventReminder:
		return s.SendReminder
	case notifications.EventCancellation:
		return s.SendCancellation
	default:
		return false
	}
}

func emailSubject(event, shopName string) string {
	switch event {
	case notifications.EventConfirmation:
		return "Agendamento confirmado - " + shopName
	case notifications.EventCancellation:
		return "Agendamento cancelado - " + shopName
	case notifications.EventReminder:
		return "Lembrete de agendamento - " + shopName
	default:
		return shopName
	}
}
