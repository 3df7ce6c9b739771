package admin

import (
	"net/http"
	"time"

	"barbergate/database"
	"barbergate/internal/domain/bookings"
	"barbergate/internal/domain/notifications"
	"barbergate/internal/domain/subscriptions"
	"barbergate/internal/domain/tenants"
	"barbergate/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

/* ---------------- owner dashboard ---------------- */

type OwnerStats struct {
	TotalBookings    int     `json:"total_bookings"`
	UpcomingBookings int     `json:"upcoming_bookings"`
	TotalClients     int     `json:"total_clients"`
	MonthRevenue     float64 `json:"month_revenue"`
}

func ownedShopID(c *gin.Context) (uint, bool) {
	shopID := c.GetUint("owned_barbershop_id")
	if shopID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No barbershop for this account"})
		return 0, false
	}
	return shopID, true
}

// GET /my/stats (auth, owner)
func GetOwnerStats(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var stats OwnerStats

	var totalBookings int64
	var upcoming int64
	var totalClients int64
	var monthRevenue float64

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	database.DB.Model(&bookings.Booking{}).Where("barbershop_id = ?", shopID).Count(&totalBookings)
	database.DB.Model(&bookings.Booking{}).
		Where("barbershop_id = ? AND status = ? AND start_time >= ?", shopID, bookings.StatusScheduled, now).
		Count(&upcoming)
	database.DB.Model(&bookings.Client{}).Where("barbershop_id = ?", shopID).Count(&totalClients)
	database.DB.Model(&subscriptions.PaymentTransaction{}).
		Where("barbershop_id = ? AND status = ? AND created_at >= ?", shopID, "completed", monthStart).
		Select("COALESCE(SUM(amount_brl), 0)").Scan(&monthRevenue)

	stats.TotalBookings = int(totalBookings)
	stats.UpcomingBookings = int(upcoming)
	stats.TotalClients = int(totalClients)
	stats.MonthRevenue = monthRevenue

	c.JSON(http.StatusOK, stats)
}

// GET /my/bookings (auth, owner)
func ListBookings(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	q := database.DB.
		Preload("Service").
		Preload("Professional").
		Preload("Client").
		Where("barbershop_id = ?", shopID)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if day := c.Query("date"); day != "" {
		start, err := time.ParseInLocation("2006-01-02", day, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
			return
		}
		q = q.Where("start_time >= ? AND start_time < ?", start, start.AddDate(0, 0, 1))
	}

	var rows []bookings.Booking
	if err := q.Order("start_time ASC").Limit(200).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// GET /my/clients (auth, owner)
func ListClients(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var rows []bookings.Client
	if err := database.DB.
		Where("barbershop_id = ?", shopID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load clients"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

/* ---------------- catalog management ---------------- */

// POST /my/services (auth, owner)
func CreateService(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var input struct {
		Name            string  `json:"name" binding:"required"`
		Description     string  `json:"description"`
		PriceBRL        float64 `json:"price_brl"`
		DurationMinutes int     `json:"duration_minutes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.DurationMinutes <= 0 {
		input.DurationMinutes = 30
	}

	service := bookings.Service{
		BarbershopID:    shopID,
		Name:            input.Name,
		Description:     input.Description,
		PriceBRL:        input.PriceBRL,
		DurationMinutes: input.DurationMinutes,
		Active:          true,
	}
	if err := database.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, service)
}

// PUT /my/services/:id (auth, owner)
func UpdateService(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var service bookings.Service
	if err := database.DB.Where("id = ? AND barbershop_id = ?", c.Param("id"), shopID).First(&service).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}

	var input struct {
		Name            *string  `json:"name"`
		Description     *string  `json:"description"`
		PriceBRL        *float64 `json:"price_brl"`
		DurationMinutes *int     `json:"duration_minutes"`
		Active          *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceBRL != nil {
		updates["price_brl"] = *input.PriceBRL
	}
	if input.DurationMinutes != nil && *input.DurationMinutes > 0 {
		updates["duration_minutes"] = *input.DurationMinutes
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&service).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service"})
			return
		}
	}

	c.JSON(http.StatusOK, service)
}

// POST /my/professionals (auth, owner)
func CreateProfessional(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var input struct {
		Name      string `json:"name" binding:"required"`
		Specialty string `json:"specialty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pro := bookings.Professional{
		BarbershopID: shopID,
		Name:         input.Name,
		Specialty:    input.Specialty,
		Active:       true,
	}
	if err := database.DB.Create(&pro).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create professional"})
		return
	}

	c.JSON(http.StatusCreated, pro)
}

// PUT /my/professionals/:id (auth, owner)
func UpdateProfessional(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var pro bookings.Professional
	if err := database.DB.Where("id = ? AND barbershop_id = ?", c.Param("id"), shopID).First(&pro).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Professional not found"})
		return
	}

	var input struct {
		Name      *string `json:"name"`
		Specialty *string `json:"specialty"`
		Active    *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Specialty != nil {
		updates["specialty"] = *input.Specialty
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&pro).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update professional"})
			return
		}
	}

	c.JSON(http.StatusOK, pro)
}

// POST /my/plans (auth, owner)
func CreatePlan(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var input struct {
		Name         string  `json:"name" binding:"required"`
		Description  string  `json:"description"`
		PriceBRL     float64 `json:"price_brl" binding:"required"`
		DurationDays int     `json:"duration_days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := subscriptions.SubscriptionPlan{
		BarbershopID: shopID,
		Name:         input.Name,
		Description:  input.Description,
		PriceBRL:     input.PriceBRL,
		DurationDays: input.DurationDays,
		Active:       true,
	}
	if err := database.DB.Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

/* ---------------- notification preferences ---------------- */

// GET /my/notification-settings (auth, owner)
func GetNotificationSettings(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var settings notifications.NotificationSetting
	if err := database.DB.Where("barbershop_id = ?", shopID).First(&settings).Error; err != nil {
		// No row yet: report the channel defaults the dispatcher applies.
		settings = notifications.NotificationSetting{
			BarbershopID:     shopID,
			EmailEnabled:     true,
			WhatsAppEnabled:  false,
			SendConfirmation: true,
			SendReminder:     true,
			SendCancellation: true,
		}
	}

	c.JSON(http.StatusOK, settings)
}

// PUT /my/notification-settings (auth, owner)
func UpdateNotificationSettings(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var input struct {
		EmailEnabled     bool `json:"email_enabled"`
		WhatsAppEnabled  bool `json:"whatsapp_enabled"`
		SendConfirmation bool `json:"send_confirmation"`
		SendReminder     bool `json:"send_reminder"`
		SendCancellation bool `json:"send_cancellation"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := notifications.NotificationSetting{
		BarbershopID:     shopID,
		EmailEnabled:     input.EmailEnabled,
		WhatsAppEnabled:  input.WhatsAppEnabled,
		SendConfirmation: input.SendConfirmation,
		SendReminder:     input.SendReminder,
		SendCancellation: input.SendCancellation,
	}

	err := database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "barbershop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email_enabled", "whatsapp_enabled",
			"send_confirmation", "send_reminder", "send_cancellation",
			"updated_at",
		}),
	}).Create(&settings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// GET /my/notification-templates (auth, owner)
func ListTemplates(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var rows []notifications.NotificationTemplate
	if err := database.DB.
		Where("barbershop_id = ?", shopID).
		Order("event ASC, channel ASC").
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load templates"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// PUT /my/notification-templates (auth, owner)
func UpsertTemplate(c *gin.Context) {
	shopID, ok := ownedShopID(c)
	if !ok {
		return
	}

	var input struct {
		Event   string `json:"event" binding:"required"`
		Channel string `json:"channel" binding:"required"`
		Content string `json:"content" binding:"required"`
		Active  *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch input.Event {
	case notifications.EventConfirmation, notifications.EventReminder, notifications.EventCancellation:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event"})
		return
	}
	switch input.Channel {
	case notifications.ChannelEmail, notifications.ChannelWhatsApp:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown channel"})
		return
	}

	// Reject templates whose placeholders the renderer would pass through
	// untouched.
	if unknown := notifications.UnknownPlaceholders(input.Content); len(unknown) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown placeholders", "placeholders": unknown})
		return
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	var tpl notifications.NotificationTemplate
	err := database.DB.
		Where("barbershop_id = ? AND event = ? AND channel = ?", shopID, input.Event, input.Channel).
		First(&tpl).Error
	if err == nil {
		tpl.Content = input.Content
		tpl.Active = active
		if err := database.DB.Save(&tpl).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save template"})
			return
		}
		c.JSON(http.StatusOK, tpl)
		return
	}

	tpl = notifications.NotificationTemplate{
		BarbershopID: shopID,
		Event:        input.Event,
		Channel:      input.Channel,
		Content:      input.Content,
		Active:       active,
	}
	if err := database.DB.Create(&tpl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save template"})
		return
	}

	c.JSON(http.StatusCreated, tpl)
}

/* ---------------- platform admin ---------------- */

type AdminStats struct {
	TotalUsers       int     `json:"total_users"`
	TotalBarbershops int     `json:"total_barbershops"`
	TotalRevenue     float64 `json:"total_revenue"`
	RecentRevenue    float64 `json:"recent_revenue"`
}

// GET /admin/stats (admin)
func GetAdminStats(c *gin.Context) {
	var stats AdminStats

	var totalUsers int64
	var totalShops int64
	var totalRevenue float64
	var recentRevenue float64

	database.DB.Model(&users.User{}).Count(&totalUsers)
	database.DB.Model(&tenants.Barbershop{}).Count(&totalShops)
	database.DB.Model(&subscriptions.PaymentTransaction{}).
		Where("status = ?", "completed").
		Select("COALESCE(SUM(amount_brl), 0)").Scan(&totalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&subscriptions.PaymentTransaction{}).
		Where("status = ? AND created_at >= ?", "completed", thirtyDaysAgo).
		Select("COALESCE(SUM(amount_brl), 0)").Scan(&recentRevenue)

	stats.TotalUsers = int(totalUsers)
	stats.TotalBarbershops = int(totalShops)
	stats.TotalRevenue = totalRevenue
	stats.RecentRevenue = recentRevenue

	c.JSON(http.StatusOK, stats)
}

// GET /admin/barbershops (admin)
func ListAllBarbershops(c *gin.Context) {
	var shops []tenants.Barbershop
	if err := database.DB.Order("created_at DESC").Find(&shops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load barbershops"})
		return
	}

	c.JSON(http.StatusOK, shops)
}
