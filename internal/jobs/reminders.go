package jobs

import (
	"context"
	"time"

	"barbergate/internal/domain/bookings"
	"barbergate/internal/domain/notifications"
	"barbergate/internal/domain/ratelimit"
	"barbergate/internal/notify"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderJob sends the 24h-ahead booking reminders. It is idempotent per
// booking: a BookingReminderSent marker is written only after at least one
// channel delivered, so a run that failed entirely retries the booking on the
// next tick.
type ReminderJob struct {
	DB         *gorm.DB
	Dispatcher *notify.Dispatcher
	Log        *zap.Logger
}

type ReminderRun struct {
	Checked int `json:"checked"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Run scans scheduled bookings starting within the next 24 hours.
func (j *ReminderJob) Run(ctx context.Context) (ReminderRun, error) {
	var run ReminderRun

	now := time.Now()
	var due []bookings.Booking
	err := j.DB.
		Preload("Barbershop").
		Preload("Service").
		Preload("Professional").
		Preload("Client").
		Where("status = ? AND start_time > ? AND start_time <= ?",
			bookings.StatusScheduled, now, now.Add(24*time.Hour)).
		Find(&due).Error
	if err != nil {
		return run, err
	}

	for _, booking := range due {
		run.Checked++

		if ctx.Err() != nil {
			return run, ctx.Err()
		}

		var marker notifications.BookingReminderSent
		if err := j.DB.Where("booking_id = ?", booking.ID).First(&marker).Error; err == nil {
			run.Skipped++
			continue
		}

		if booking.Barbershop == nil || booking.Client == nil {
			j.Log.Warn("reminder skipped, booking missing relations", zap.Uint("booking_id", booking.ID))
			run.Skipped++
			continue
		}

		details := notify.BookingDetails{
			ClientName:  booking.Client.Name,
			ClientEmail: booking.Client.Email,
			ClientPhone: booking.Client.Phone,
			Date:        booking.StartTime.Format("02/01/2006"),
			Time:        booking.StartTime.Format("15:04"),
		}
		if booking.Service != nil {
			details.ServiceName = booking.Service.Name
		}
		if booking.Professional != nil {
			details.ProfessionalName = booking.Professional.Name
		}

		result := j.Dispatcher.Dispatch(ctx, booking.Barbershop, notifications.EventReminder, details)
		if !result.Sent() {
			j.Log.Warn("reminder not delivered on any channel",
				zap.Uint("booking_id", booking.ID), zap.Strings("errors", result.Errors))
			run.Failed++
			continue
		}

		marker = notifications.BookingReminderSent{BookingID: booking.ID, SentAt: time.Now()}
		if err := j.DB.Create(&marker).Error; err != nil {
			// Duplicate marker from a concurrent run is fine; the unique
			// index holds the invariant.
			j.Log.Warn("failed to write reminder marker", zap.Uint("booking_id", booking.ID), zap.Error(err))
		}
		run.Sent++
	}

	j.pruneRateLimitWindows(now)

	return run, nil
}

// pruneRateLimitWindows rides along on the reminder tick and drops counter
// rows whose window closed more than a day ago; the table would otherwise grow
// by one row per caller per window forever.
func (j *ReminderJob) pruneRateLimitWindows(now time.Time) {
	cutoff := now.Add(-24 * time.Hour).Unix()
	res := j.DB.Where("window_start < ?", cutoff).Delete(&ratelimit.Window{})
	if res.Error != nil {
		j.Log.Warn("failed to prune rate limit windows", zap.Error(res.Error))
		return
	}
	if res.RowsAffected > 0 {
		j.Log.Info("pruned expired rate limit windows", zap.Int64("rows", res.RowsAffected))
	}
}
