package middleware

import (
	"fmt"
	"net/http"
	"time"

	"barbergate/database"
	"barbergate/internal/app/logger"
	"barbergate/internal/domain/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateLimit bounds requests per caller within a fixed window. Caller identity
// is the authenticated user id when present, else the client IP.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if uid := c.GetUint("user_id"); uid != 0 {
			key = fmt.Sprintf("user:%d", uid)
		}

		start := time.Now().Truncate(window).Unix()
		row := ratelimit.Window{Key: key, WindowStart: start, Count: 1}

		err := database.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}, {Name: "window_start"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count": gorm.Expr("rate_limit_windows.count + 1"),
			}),
		}).Create(&row).Error
		if err != nil {
			// A broken counter store must not take the feature down.
			logger.L().Error("rate limit counter update failed", zap.Error(err))
			c.Next()
			return
		}

		var current ratelimit.Window
		if err := database.DB.
			Where("key = ? AND window_start = ?", key, start).
			First(&current).Error; err == nil && current.Count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, slow down",
			})
			return
		}

		c.Next()
	}
}
