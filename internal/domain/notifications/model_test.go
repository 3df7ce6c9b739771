package notifications

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&NotificationSetting{}, &NotificationTemplate{}))
	return db
}

// Disabled switches must survive the INSERT; a column default that shadows a
// false field would make the channel/event toggles write-only.
func TestNotificationSettingPersistsDisabledSwitches(t *testing.T) {
	db := testDB(t)

	row := NotificationSetting{
		BarbershopID:     1,
		EmailEnabled:     false,
		WhatsAppEnabled:  true,
		SendConfirmation: false,
		SendReminder:     true,
		SendCancellation: false,
	}
	require.NoError(t, db.Create(&row).Error)

	var stored NotificationSetting
	require.NoError(t, db.Where("barbershop_id = ?", 1).First(&stored).Error)
	require.False(t, stored.EmailEnabled)
	require.True(t, stored.WhatsAppEnabled)
	require.False(t, stored.SendConfirmation)
	require.True(t, stored.SendReminder)
	require.False(t, stored.SendCancellation)
}

func TestNotificationTemplatePersistsInactiveFlag(t *testing.T) {
	db := testDB(t)

	row := NotificationTemplate{
		BarbershopID: 1,
		Event:        EventConfirmation,
		Channel:      ChannelEmail,
		Content:      "Olá {{cliente_nome}}",
		Active:       false,
	}
	require.NoError(t, db.Create(&row).Error)

	var stored NotificationTemplate
	require.NoError(t, db.Where("barbershop_id = ?", 1).First(&stored).Error)
	require.False(t, stored.Active)
}
