package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"barbergate/database"
	"barbergate/internal/domain/subscriptions"
	"barbergate/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const supportWhatsApp = "5511999990000"

// RequireActiveAccess gates owner features behind the tenant's trial/paid
// state. Blocks with 402 when the trial is over and no paid subscription is
// active; the only recovery action offered is the support contact link.
func RequireActiveAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var shop tenants.Barbershop
		if err := database.DB.Where("owner_id = ?", userID).First(&shop).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No barbershop for this account"})
			return
		}

		var sub subscriptions.BarbershopSubscription
		var subPtr *subscriptions.BarbershopSubscription
		err := database.DB.
			Where("barbershop_id = ?", shop.ID).
			Order("created_at DESC").
			First(&sub).Error
		if err == nil {
			subPtr = &sub
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subscription"})
			return
		}

		access := subscriptions.Evaluate(time.Now(), subPtr)
		if access.Blocked() {
			msg := url.QueryEscape("Olá! Meu período de teste expirou e quero assinar o plano.")
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":       "Trial expired and no active subscription",
				"contact_url": "https://wa.me/" + supportWhatsApp + "?text=" + msg,
			})
			return
		}

		c.Set("access", access)
		c.Set("owned_barbershop_id", shop.ID)
		c.Next()
	}
}
