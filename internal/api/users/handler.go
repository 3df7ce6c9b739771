package usersapi

import (
	"errors"
	"net/http"
	"time"

	"barbergate/database"
	"barbergate/internal/domain/subscriptions"
	"barbergate/internal/domain/tenants"
	"barbergate/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type meResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Lastname   string `json:"lastname"`
	Tel        string `json:"tel"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`

	Barbershop *tenants.Barbershop   `json:"barbershop,omitempty"`
	Access     *subscriptions.Access `json:"access,omitempty"`
}

// GET /me (auth)
func GetMe(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	resp := meResponse{
		ID:         user.ID,
		Name:       user.Name,
		Lastname:   user.Lastname,
		Tel:        user.Tel,
		Email:      user.Email,
		Role:       user.Role,
		IsVerified: user.IsVerified,
	}

	// Owners also get their shop plus the trial/subscription state the
	// frontend uses to render the paywall banner.
	var shop tenants.Barbershop
	err := database.DB.Where("owner_id = ?", user.ID).First(&shop).Error
	if err == nil {
		resp.Barbershop = &shop

		var sub subscriptions.BarbershopSubscription
		var subPtr *subscriptions.BarbershopSubscription
		subErr := database.DB.
			Where("barbershop_id = ?", shop.ID).
			Order("created_at DESC").
			First(&sub).Error
		if subErr == nil {
			subPtr = &sub
		}

		access := subscriptions.Evaluate(time.Now(), subPtr)
		resp.Access = &access
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load barbershop"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
