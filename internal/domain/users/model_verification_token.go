package users

import "time"

type VerificationToken struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"index"`
	Token  string `gorm:"uniqueIndex"`
	Type   string `gorm:"type:varchar(30);default:'email_verification'"`

	ExpiresAt time.Time
	CreatedAt time.Time
}
