package bookingsapi

import (
	"errors"
	"net/http"
	"time"

	"barbergate/database"
	"barbergate/internal/app/http/middleware"
	"barbergate/internal/domain/bookings"
	"barbergate/internal/domain/notifications"
	"barbergate/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Dispatcher *notify.Dispatcher
}

func NewHandler(d *notify.Dispatcher) *Handler {
	return &Handler{Dispatcher: d}
}

// GET /b/:slug/services (and / for the official shop)
func (h *Handler) ListServices(c *gin.Context) {
	shop, ok := middleware.MustBarbershop(c)
	if !ok {
		return
	}

	var services []bookings.Service
	if err := database.DB.
		Where("barbershop_id = ? AND active = ?", shop.ID, true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

// GET /b/:slug/professionals
func (h *Handler) ListProfessionals(c *gin.Context) {
	shop, ok := middleware.MustBarbershop(c)
	if !ok {
		return
	}

	var pros []bookings.Professional
	if err := database.DB.
		Where("barbershop_id = ? AND active = ?", shop.ID, true).
		Order("name ASC").
		Find(&pros).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load professionals"})
		return
	}

	c.JSON(http.StatusOK, pros)
}

// POST /b/:slug/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	shop, ok := middleware.MustBarbershop(c)
	if !ok {
		return
	}

	var input struct {
		ServiceID      uint   `json:"service_id" binding:"required"`
		ProfessionalID uint   `json:"professional_id" binding:"required"`
		Date           string `json:"date" binding:"required"` // "2006-01-02"
		Time           string `json:"time" binding:"required"` // "15:04"
		Notes          string `json:"notes"`
		ClientName     string `json:"client_name" binding:"required"`
		ClientEmail    string `json:"client_email"`
		ClientPhone    string `json:"client_phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", input.Date+" "+input.Time, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date or time"})
		return
	}

	var service bookings.Service
	if err := database.DB.
		Where("id = ? AND barbershop_id = ? AND active = ?", input.ServiceID, shop.ID, true).
		First(&service).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown service"})
		return
	}

	var pro bookings.Professional
	if err := database.DB.
		Where("id = ? AND barbershop_id = ? AND active = ?", input.ProfessionalID, shop.ID, true).
		First(&pro).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown professional"})
		return
	}

	client, err := findOrCreateClient(shop.ID, c.GetUint("user_id"), input.ClientName, input.ClientEmail, input.ClientPhone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save client"})
		return
	}

	booking := bookings.Booking{
		BarbershopID:   shop.ID,
		ServiceID:      service.ID,
		ProfessionalID: pro.ID,
		ClientID:       client.ID,
		StartTime:      start,
		EndTime:        start.Add(time.Duration(service.DurationMinutes) * time.Minute),
		Status:         bookings.StatusScheduled,
		Notes:          input.Notes,
	}
	if err := database.DB.Create(&booking).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	result := h.Dispatcher.Dispatch(c.Request.Context(), shop, notifications.EventConfirmation, notify.BookingDetails{
		ClientName:       client.Name,
		ClientEmail:      client.Email,
		ClientPhone:      client.Phone,
		ServiceName:      service.Name,
		ProfessionalName: pro.Name,
		Date:             start.Format("02/01/2006"),
		Time:             start.Format("15:04"),
	})

	c.JSON(http.StatusCreated, gin.H{
		"booking":      booking,
		"notification": result,
	})
}

// POST /b/:slug/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	shop, ok := middleware.MustBarbershop(c)
	if !ok {
		return
	}

	var booking bookings.Booking
	err := database.DB.
		Preload("Service").
		Preload("Professional").
		Preload("Client").
		Where("id = ? AND barbershop_id = ?", c.Param("id"), shop.ID).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load booking"})
		return
	}

	if booking.Status == bookings.StatusCancelled {
		c.JSON(http.StatusOK, gin.H{"message": "Already cancelled"})
		return
	}

	now := time.Now()
	if err := database.DB.Model(&booking).Updates(map[string]interface{}{
		"status":       bookings.StatusCancelled,
		"cancelled_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		return
	}

	details := notify.BookingDetails{
		Date: booking.StartTime.Format("02/01/2006"),
		Time: booking.StartTime.Format("15:04"),
	}
	if booking.Client != nil {
		details.ClientName = booking.Client.Name
		details.ClientEmail = booking.Client.Email
		details.ClientPhone = booking.Client.Phone
	}
	if booking.Service != nil {
		details.ServiceName = booking.Service.Name
	}
	if booking.Professional != nil {
		details.ProfessionalName = booking.Professional.Name
	}

	result := h.Dispatcher.Dispatch(c.Request.Context(), shop, notifications.EventCancellation, details)

	c.JSON(http.StatusOK, gin.H{
		"message":      "Booking cancelled",
		"notification": result,
	})
}

func findOrCreateClient(shopID, userID uint, name, email, phone string) (*bookings.Client, error) {
	var client bookings.Client

	q := database.DB.Where("barbershop_id = ?", shopID)
	if email != "" {
		q = q.Where("email = ?", email)
	} else {
		q = q.Where("name = ? AND phone = ?", name, phone)
	}

	err := q.First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = bookings.Client{
		BarbershopID: shopID,
		Name:         name,
		Email:        email,
		Phone:        phone,
	}
	if userID != 0 {
		client.UserID = &userID
	}
	if err := database.DB.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}
