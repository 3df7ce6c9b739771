package ratelimit

// Window is a fixed-window counter row keyed by caller identity. The store is
// the shared database, not process memory, so the limit holds across replicas.
type Window struct {
	ID          uint   `gorm:"primaryKey"`
	Key         string `gorm:"uniqueIndex:idx_rate_limit_key_window;size:120"`
	WindowStart int64  `gorm:"uniqueIndex:idx_rate_limit_key_window"`
	Count       int
}

func (Window) TableName() string {
	return "rate_limit_windows"
}
