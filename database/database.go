package database

import (
	"fmt"
	"log"
	"os"

	"barbergate/internal/domain/bookings"
	"barbergate/internal/domain/notifications"
	"barbergate/internal/domain/ratelimit"
	"barbergate/internal/domain/subscriptions"
	"barbergate/internal/domain/tenants"
	"barbergate/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		// core
		&users.User{},
		&users.VerificationToken{},
		&tenants.Barbershop{},

		// subscriptions & payments
		&subscriptions.BarbershopSubscription{},
		&subscriptions.SubscriptionPlan{},
		&subscriptions.ClientSubscription{},
		&subscriptions.PaymentTransaction{},
		&subscriptions.Notification{},

		// bookings
		&bookings.Service{},
		&bookings.Professional{},
		&bookings.Client{},
		&bookings.Booking{},

		// notifications
		&notifications.NotificationSetting{},
		&notifications.NotificationTemplate{},
		&notifications.NotificationLog{},
		&notifications.BookingReminderSent{},

		// infra
		&ratelimit.Window{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	// Partial unique indexes AutoMigrate cannot express:
	// exactly one official barbershop, at most one active client
	// subscription per (user, barbershop).
	if err := DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_barbershops_official
		ON barbershops (is_official) WHERE is_official = true;`).Error; err != nil {
		log.Fatal("❌ Failed to create official index:", err)
	}
	if err := DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_client_subscriptions_active
		ON client_subscriptions (user_id, barbershop_id) WHERE status = 'active';`).Error; err != nil {
		log.Fatal("❌ Failed to create active subscription index:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
