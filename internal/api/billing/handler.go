package billing

import (
	"net/http"

	"barbergate/config"
	"barbergate/database"
	"barbergate/internal/app/http/middleware"
	"barbergate/internal/app/logger"
	"barbergate/internal/domain/subscriptions"
	"barbergate/internal/infra/mercadopago"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Provider *mercadopago.Provider
}

func NewHandler(p *mercadopago.Provider) *Handler {
	return &Handler{Provider: p}
}

// GET /b/:slug/plans
func (h *Handler) ListPlans(c *gin.Context) {
	shop, ok := middleware.MustBarbershop(c)
	if !ok {
		return
	}

	var plans []subscriptions.SubscriptionPlan
	if err := database.DB.
		Where("barbershop_id = ? AND active = ?", shop.ID, true).
		Order("price_brl ASC").
		Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// POST /b/:slug/checkout (auth)
//
// Registers the checkout intent with the provider first, then records the
// pending transaction keyed by the returned preference id. The webhook
// reconciler later matches the provider payment back through
// external_reference.
func (h *Handler) CreateCheckout(c *gin.Context) {
	shop, ok := middleware.MustBarbershop(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		PlanID uint `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var plan subscriptions.SubscriptionPlan
	if err := database.DB.
		Where("id = ? AND barbershop_id = ? AND active = ?", input.PlanID, shop.ID, true).
		First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	}

	externalRef := mercadopago.BuildExternalReference(plan.ID, shop.ID, userID)

	pref, err := h.Provider.CreatePreference(
		c.Request.Context(),
		plan.Name,
		plan.PriceBRL,
		externalRef,
		config.WEBHOOK_BASE_URL+"/webhook/mercadopago",
		config.APP_URL+shop.BasePath()+"/planos",
	)
	if err != nil {
		logger.L().Error("checkout preference failed",
			zap.Uint("plan_id", plan.ID),
			zap.Uint("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable, try again"})
		return
	}

	tx := subscriptions.PaymentTransaction{
		PreferenceID:      pref.ID,
		BarbershopID:      shop.ID,
		UserID:            userID,
		PlanID:            plan.ID,
		ExternalReference: externalRef,
		AmountBRL:         plan.PriceBRL,
		Status:            "pending",
	}
	if err := database.DB.Create(&tx).Error; err != nil {
		logger.L().Error("pending transaction insert failed",
			zap.String("preference_id", pref.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"preference_id": pref.ID,
		"init_point":    pref.InitPoint,
	})
}

// GET /my/payments (auth)
func (h *Handler) ListMyPayments(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var txs []subscriptions.PaymentTransaction
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

// GET /my/subscriptions (auth)
func (h *Handler) ListMySubscriptions(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var subs []subscriptions.ClientSubscription
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

// GET /my/notifications (auth)
func (h *Handler) ListMyNotifications(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var rows []subscriptions.Notification
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// POST /my/notifications/:id/read (auth)
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	res := database.DB.Model(&subscriptions.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Update("read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}
