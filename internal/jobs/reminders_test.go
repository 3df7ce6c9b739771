package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"barbergate/internal/domain/bookings"
	"barbergate/internal/domain/notifications"
	"barbergate/internal/domain/ratelimit"
	"barbergate/internal/domain/tenants"
	"barbergate/internal/notify"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingRelay struct {
	emailErr error
	messages []string
}

func (r *recordingRelay) SendEmail(_ context.Context, _ uint, payload map[string]interface{}) error {
	if r.emailErr != nil {
		return r.emailErr
	}
	content, _ := payload["content"].(string)
	r.messages = append(r.messages, content)
	return nil
}

func (r *recordingRelay) SendWhatsApp(_ context.Context, _ uint, _, message string) error {
	r.messages = append(r.messages, message)
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
		&tenants.Barbershop{},
		&bookings.Service{},
		&bookings.Professional{},
		&bookings.Client{},
		&bookings.Booking{},
		&notifications.NotificationSetting{},
		&notifications.NotificationTemplate{},
		&notifications.NotificationLog{},
		&notifications.BookingReminderSent{},
		&ratelimit.Window{},
	))
	return db
}

type fixture struct {
	db    *gorm.DB
	shop  tenants.Barbershop
	svc   bookings.Service
	pro   bookings.Professional
	cli   bookings.Client
	relay *recordingRelay
	job   *ReminderJob
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)

	f := &fixture{db: db, relay: &recordingRelay{}}

	f.shop = tenants.Barbershop{Name: "Imperio Barber", Slug: "imperio-barber"}
	require.NoError(t, db.Create(&f.shop).Error)

	f.svc = bookings.Service{BarbershopID: f.shop.ID, Name: "Corte", DurationMinutes: 30, Active: true}
	require.NoError(t, db.Create(&f.svc).Error)

	f.pro = bookings.Professional{BarbershopID: f.shop.ID, Name: "João", Active: true}
	require.NoError(t, db.Create(&f.pro).Error)

	f.cli = bookings.Client{BarbershopID: f.shop.ID, Name: "Maria", Email: "maria@example.com"}
	require.NoError(t, db.Create(&f.cli).Error)

	dispatcher := notify.NewDispatcher(db, f.relay, zap.NewNop())
	f.job = &ReminderJob{DB: db, Dispatcher: dispatcher, Log: zap.NewNop()}
	return f
}

func (f *fixture) addBooking(t *testing.T, start time.Time, status string) bookings.Booking {
	t.Helper()
	b := bookings.Booking{
		BarbershopID:   f.shop.ID,
		ServiceID:      f.svc.ID,
		ProfessionalID: f.pro.ID,
		ClientID:       f.cli.ID,
		StartTime:      start,
		EndTime:        start.Add(30 * time.Minute),
		Status:         status,
	}
	require.NoError(t, f.db.Create(&b).Error)
	return b
}

func TestReminderRunSendsForUpcomingBookings(t *testing.T) {
	f := setup(t)
	f.addBooking(t, time.Now().Add(3*time.Hour), bookings.StatusScheduled)

	run, err := f.job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, run.Checked)
	require.Equal(t, 1, run.Sent)
	require.Zero(t, run.Failed)
	require.Len(t, f.relay.messages, 1)
	require.Contains(t, f.relay.messages[0], "Lembrete")
}

func TestReminderRunIgnoresOutOfWindowAndCancelled(t *testing.T) {
	f := setup(t)
	f.addBooking(t, time.Now().Add(48*time.Hour), bookings.StatusScheduled)
	f.addBooking(t, time.Now().Add(-time.Hour), bookings.StatusScheduled)
	f.addBooking(t, time.Now().Add(2*time.Hour), bookings.StatusCancelled)

	run, err := f.job.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, run.Checked)
	require.Zero(t, run.Sent)
	require.Empty(t, f.relay.messages)
}

func TestReminderRunDeduplicatesAcrossRuns(t *testing.T) {
	f := setup(t)
	booking := f.addBooking(t, time.Now().Add(6*time.Hour), bookings.StatusScheduled)

	run, err := f.job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, run.Sent)

	run, err = f.job.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, run.Sent)
	require.Equal(t, 1, run.Skipped)
	require.Len(t, f.relay.messages, 1)

	var marker notifications.BookingReminderSent
	require.NoError(t, f.db.Where("booking_id = ?", booking.ID).First(&marker).Error)
}

func TestReminderRunRetriesWhenNothingDelivered(t *testing.T) {
	f := setup(t)
	f.relay.emailErr = errors.New("relay down")
	booking := f.addBooking(t, time.Now().Add(6*time.Hour), bookings.StatusScheduled)

	run, err := f.job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, run.Failed)
	require.Zero(t, run.Sent)

	// No marker written: the next run retries this booking.
	var count int64
	require.NoError(t, f.db.Model(&notifications.BookingReminderSent{}).
		Where("booking_id = ?", booking.ID).Count(&count).Error)
	require.Zero(t, count)

	f.relay.emailErr = nil
	run, err = f.job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, run.Sent)
}

func TestRunPrunesExpiredRateLimitWindows(t *testing.T) {
	f := setup(t)

	stale := ratelimit.Window{Key: "user:1", WindowStart: time.Now().Add(-48 * time.Hour).Unix(), Count: 9}
	current := ratelimit.Window{Key: "user:1", WindowStart: time.Now().Truncate(time.Minute).Unix(), Count: 2}
	require.NoError(t, f.db.Create(&stale).Error)
	require.NoError(t, f.db.Create(&current).Error)

	_, err := f.job.Run(context.Background())
	require.NoError(t, err)

	var remaining []ratelimit.Window
	require.NoError(t, f.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, current.WindowStart, remaining[0].WindowStart)
}
