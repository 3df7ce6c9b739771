package paymentwebhook

import (
	"context"
	"net/http"
	"strconv"

	"barbergate/internal/infra/mercadopago"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentFetcher re-fetches the authoritative payment record from the
// provider. Callback-supplied status fields are unauthenticated hints and are
// never used directly.
type PaymentFetcher interface {
	PaymentByID(ctx context.Context, id int64) (*mercadopago.PaymentInfo, error)
}

type Handler struct {
	DB       *gorm.DB
	Payments PaymentFetcher
	Log      *zap.Logger
}

func NewHandler(db *gorm.DB, payments PaymentFetcher, log *zap.Logger) *Handler {
	return &Handler{DB: db, Payments: payments, Log: log}
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// HandleWebhook is the provider callback entrypoint.
//
// Every code path answers 200 "OK": a failing handler must never push the
// provider into a retry storm. Internal failures are logged only.
func (h *Handler) HandleWebhook(c *gin.Context) {
	topic, rawID := extractCallback(c)

	if topic != "payment" {
		c.String(http.StatusOK, "OK")
		return
	}

	paymentID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.Log.Warn("webhook payment id missing or malformed", zap.String("id", rawID))
		c.String(http.StatusOK, "OK")
		return
	}

	if err := h.process(c.Request.Context(), paymentID); err != nil {
		h.Log.Error("payment webhook processing failed",
			zap.Int64("payment_id", paymentID), zap.Error(err))
	}

	c.String(http.StatusOK, "OK")
}

// extractCallback reads the topic/type and id from query parameters and/or
// the JSON body; either location may be populated depending on the delivery
// variant.
func extractCallback(c *gin.Context) (topic, id string) {
	topic = c.Query("topic")
	if topic == "" {
		topic = c.Query("type")
	}
	id = c.Query("id")
	if id == "" {
		id = c.Query("data.id")
	}

	var body webhookBody
	if err := c.ShouldBindJSON(&body); err == nil {
		if topic == "" {
			topic = body.Type
		}
		if id == "" {
			id = body.Data.ID
		}
	}
	return topic, id
}
