package tenantsapi

import (
	"net/http"

	"barbergate/config"
	"barbergate/database"
	"barbergate/internal/app/logger"
	"barbergate/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GET /barbershops/by-slug/:slug
func GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	shop, err := tenants.Default.BySlug(slug)
	if err != nil {
		logger.L().Error("slug lookup failed", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load barbershop, please retry", "retry": true})
		return
	}
	if shop == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":        "Barbershop not found",
			"slug":         slug,
			"register_url": config.APP_URL + "/cadastro",
		})
		return
	}

	c.JSON(http.StatusOK, shop)
}

// GET /barbershops/official
func GetOfficial(c *gin.Context) {
	shop, err := tenants.Default.Official()
	if err != nil {
		logger.L().Error("official lookup failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not load barbershop, please retry", "retry": true})
		return
	}
	if shop == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":        "No official barbershop configured",
			"register_url": config.APP_URL + "/cadastro",
		})
		return
	}

	c.JSON(http.StatusOK, shop)
}

// GET /barbershops/exists/:slug
//
// Cheap existence check the SPA uses before navigation, so a broken link can
// fall back to the last-known slug kept in local storage.
func CheckExists(c *gin.Context) {
	slug := c.Param("slug")

	shop, err := tenants.Default.BySlug(slug)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not check barbershop", "retry": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"slug": slug, "exists": shop != nil})
}

// PUT /my/barbershop (auth, owner)
func UpdateMine(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var shop tenants.Barbershop
	if err := database.DB.Where("owner_id = ?", userID).First(&shop).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No barbershop for this account"})
		return
	}

	var input struct {
		Name          *string `json:"name"`
		LogoURL       *string `json:"logo_url"`
		PrimaryColor  *string `json:"primary_color"`
		CustomMessage *string `json:"custom_message"`
		Address       *string `json:"address"`
		Phone         *string `json:"phone"`
		WhatsApp      *string `json:"whatsapp"`
		Instagram     *string `json:"instagram"`
		TikTok        *string `json:"tiktok"`
		OpeningTime   *string `json:"opening_time"`
		ClosingTime   *string `json:"closing_time"`
		OpeningDays   *string `json:"opening_days"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	set("name", input.Name)
	set("logo_url", input.LogoURL)
	set("primary_color", input.PrimaryColor)
	set("custom_message", input.CustomMessage)
	set("address", input.Address)
	set("phone", input.Phone)
	set("whatsapp", input.WhatsApp)
	set("instagram", input.Instagram)
	set("tiktok", input.TikTok)
	set("opening_time", input.OpeningTime)
	set("closing_time", input.ClosingTime)
	set("opening_days", input.OpeningDays)

	if len(updates) == 0 {
		c.JSON(http.StatusOK, shop)
		return
	}

	if err := database.DB.Model(&shop).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update barbershop"})
		return
	}

	// Any handler still holding the stale cache entry would serve the old
	// branding under this slug; drop it now.
	tenants.Default.Invalidate(shop.Slug)

	if err := database.DB.First(&shop, shop.ID).Error; err == nil {
		c.JSON(http.StatusOK, shop)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

// POST /admin/barbershops/ensure-official (admin)
func EnsureOfficial(c *gin.Context) {
	shop, err := tenants.EnsureOfficial(database.DB, config.OFFICIAL_NAME)
	if err != nil {
		logger.L().Error("ensure official failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to flag official barbershop"})
		return
	}
	if shop == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No barbershops exist yet"})
		return
	}

	c.JSON(http.StatusOK, shop)
}
