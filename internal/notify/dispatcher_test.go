package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"barbergate/internal/domain/notifications"
	"barbergate/internal/domain/tenants"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeRelay struct {
	emailErr    error
	whatsappErr error

	emails    []map[string]interface{}
	whatsapps []string
	phones    []string
}

func (f *fakeRelay) SendEmail(_ context.Context, _ uint, payload map[string]interface{}) error {
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emails = append(f.emails, payload)
	return nil
}

func (f *fakeRelay) SendWhatsApp(_ context.Context, _ uint, phone, message string) error {
	if f.whatsappErr != nil {
		return f.whatsappErr
	}
	f.phones = append(f.phones, phone)
	f.whatsapps = append(f.whatsapps, message)
	return nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&notifications.NotificationSetting{},
		&notifications.NotificationTemplate{},
		&notifications.NotificationLog{},
	))
	return db
}

func testShop() *tenants.Barbershop {
	return &tenants.Barbershop{ID: 1, Name: "Imperio Barber", Slug: "imperio-barber"}
}

func testDetails() BookingDetails {
	return BookingDetails{
		ClientName:       "Maria",
		ClientEmail:      "maria@example.com",
		ClientPhone:      "(11) 98888-7777",
		ServiceName:      "Corte Degradê",
		ProfessionalName: "João",
		Date:             "15/03/2026",
		Time:             "14:30",
	}
}

func TestDispatchDefaultsEmailOnlyWhenNoSettingsRow(t *testing.T) {
	db := testDB(t)
	relay := &fakeRelay{}
	d := NewDispatcher(db, relay, zap.NewNop())

	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, testDetails())

	require.True(t, res.EmailSent)
	require.False(t, res.WhatsAppSent)
	require.Empty(t, res.Errors)
	require.Len(t, relay.emails, 1)
	require.Empty(t, relay.whatsapps)

	var logs []notifications.NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, notifications.ChannelEmail, logs[0].Channel)
	require.Equal(t, notifications.StatusSent, logs[0].Status)
	require.Equal(t, "maria@example.com", logs[0].Recipient)
}

func TestDispatchBothChannelsEnabled(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		EmailEnabled:     true,
		WhatsAppEnabled:  true,
		SendConfirmation: true,
		SendReminder:     true,
		SendCancellation: true,
	}).Error)

	relay := &fakeRelay{}
	d := NewDispatcher(db, relay, zap.NewNop())

	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, testDetails())

	require.True(t, res.EmailSent)
	require.True(t, res.WhatsAppSent)
	require.Empty(t, res.Errors)
	require.Equal(t, []string{"5511988887777"}, relay.phones)
}

func TestDispatchChannelFailuresAreIndependent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		EmailEnabled:     true,
		WhatsAppEnabled:  true,
		SendConfirmation: true,
	}).Error)

	relay := &fakeRelay{emailErr: errors.New("relay returned 500")}
	d := NewDispatcher(db, relay, zap.NewNop())

	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, testDetails())

	require.False(t, res.EmailSent)
	require.True(t, res.WhatsAppSent)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "email")
	require.True(t, res.Sent())

	var logs []notifications.NotificationLog
	require.NoError(t, db.Order("channel ASC").Find(&logs).Error)
	require.Len(t, logs, 2)
	require.Equal(t, notifications.StatusFailed, logs[0].Status)
	require.NotEmpty(t, logs[0].ErrorMessage)
	require.Equal(t, notifications.StatusSent, logs[1].Status)
}

func TestDispatchAllChannelsFailing(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		EmailEnabled:     true,
		WhatsAppEnabled:  true,
		SendConfirmation: true,
	}).Error)

	relay := &fakeRelay{
		emailErr:    errors.New("email down"),
		whatsappErr: errors.New("whatsapp down"),
	}
	d := NewDispatcher(db, relay, zap.NewNop())

	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, testDetails())

	require.False(t, res.Sent())
	require.Len(t, res.Errors, 2)
}

func TestDispatchDisabledEventSendsNothing(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		EmailEnabled:     true,
		WhatsAppEnabled:  true,
		SendConfirmation: false,
		SendReminder:     true,
	}).Error)

	relay := &fakeRelay{}
	d := NewDispatcher(db, relay, zap.NewNop())

	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, testDetails())

	require.False(t, res.Sent())
	require.Empty(t, relay.emails)
	require.Empty(t, relay.whatsapps)

	var count int64
	require.NoError(t, db.Model(&notifications.NotificationLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDispatchUnconfiguredChannelIsNotAFailure(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		EmailEnabled:     true,
		WhatsAppEnabled:  true,
		SendConfirmation: true,
	}).Error)

	relay := &fakeRelay{emailErr: ErrChannelUnconfigured}
	d := NewDispatcher(db, relay, zap.NewNop())

	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, testDetails())

	require.False(t, res.EmailSent)
	require.True(t, res.WhatsAppSent)
	require.Empty(t, res.Errors)

	// Skipped channels leave no log row either.
	var logs []notifications.NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, notifications.ChannelWhatsApp, logs[0].Channel)
}

func TestDispatchUsesTenantTemplate(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		WhatsAppEnabled:  true,
		SendConfirmation: true,
	}).Error)
	require.NoError(t, db.Create(&notifications.NotificationTemplate{
		BarbershopID: 1,
		Event:        notifications.EventConfirmation,
		Channel:      notifications.ChannelWhatsApp,
		Content:      "Oi {{cliente_nome}}, {{servico}} em {{data}}!",
		Active:       true,
	}).Error)

	relay := &fakeRelay{}
	d := NewDispatcher(db, relay, zap.NewNop())

	details := testDetails()
	details.ClientEmail = ""
	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, details)

	require.True(t, res.WhatsAppSent)
	require.Equal(t, []string{"Oi Maria, Corte Degradê em 15/03/2026!"}, relay.whatsapps)
}

func TestDispatchFallsBackToDefaultMessage(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		WhatsAppEnabled:  true,
		SendCancellation: true,
	}).Error)

	relay := &fakeRelay{}
	d := NewDispatcher(db, relay, zap.NewNop())

	details := testDetails()
	details.ClientEmail = ""
	res := d.Dispatch(context.Background(), testShop(), notifications.EventCancellation, details)

	require.True(t, res.WhatsAppSent)
	require.Len(t, relay.whatsapps, 1)
	require.Contains(t, relay.whatsapps[0], "cancelado")
	require.Contains(t, relay.whatsapps[0], "Maria")
}

func TestDispatchEmailOptInGate(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&notifications.NotificationSetting{
		BarbershopID:     1,
		EmailEnabled:     false,
		SendConfirmation: true,
	}).Error)

	relay := &fakeRelay{}
	d := NewDispatcher(db, relay, zap.NewNop())
	d.EmailRequiresOptIn = true

	res := d.Dispatch(context.Background(), testShop(), notifications.EventConfirmation, testDetails())

	require.False(t, res.EmailSent)
	require.Empty(t, relay.emails)
}
