package paymentwebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barbergate/internal/domain/subscriptions"
	"barbergate/internal/infra/mercadopago"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// process reconciles one payment callback against our records. Duplicate and
// out-of-order deliveries are safe: the transaction update is last-write-wins
// on the preference id, and the subscription write is an atomic upsert against
// the (user, barbershop, active) partial unique index.
func (h *Handler) process(ctx context.Context, paymentID int64) error {
	info, err := h.Payments.PaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}

	planID, shopID, userID, err := mercadopago.ParseExternalReference(info.ExternalReference)
	if err != nil {
		// Not correlatable to our records; acknowledge and stop, a retry
		// would see the same payload.
		h.Log.Warn("payment has no usable external reference",
			zap.Int64("payment_id", paymentID), zap.Error(err))
		return nil
	}

	tx, err := h.updateTransaction(info)
	if err != nil {
		return err
	}

	switch info.Status {
	case "approved":
		if err := h.applyApproved(planID, shopID, userID, info, tx); err != nil {
			return err
		}
		return h.notify(userID, "success", "Pagamento aprovado",
			"Sua assinatura foi ativada. Bom proveito!")

	case "rejected", "cancelled":
		return h.notify(userID, "error", "Pagamento não aprovado",
			"Não foi possível processar seu pagamento. Tente novamente ou use outro método.")

	default:
		// pending / in_process / refunded etc: transaction updated, nothing
		// user-facing to say yet.
		return nil
	}
}

// updateTransaction finalizes the pending transaction row created at checkout
// time. The provider payment does not echo the preference id, so the row is
// located through the external reference; the update itself still lands on a
// single preference-keyed row and is idempotent.
func (h *Handler) updateTransaction(info *mercadopago.PaymentInfo) (*subscriptions.PaymentTransaction, error) {
	var tx subscriptions.PaymentTransaction
	err := h.DB.
		Where("external_reference = ?", info.ExternalReference).
		Order("created_at DESC").
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.Log.Warn("no checkout transaction for payment",
			zap.Int64("payment_id", info.ID),
			zap.String("external_reference", info.ExternalReference))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load transaction: %w", err)
	}

	updates := map[string]interface{}{
		"status":              mercadopago.MapStatus(info.Status),
		"payment_method":      info.PaymentMethod,
		"provider_payment_id": fmt.Sprint(info.ID),
		"raw_payload":         info.RawPayload,
	}
	if err := h.DB.Model(&subscriptions.PaymentTransaction{}).
		Where("preference_id = ?", tx.PreferenceID).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update transaction %s: %w", tx.PreferenceID, err)
	}
	return &tx, nil
}

func (h *Handler) applyApproved(planID, shopID, userID uint, info *mercadopago.PaymentInfo, tx *subscriptions.PaymentTransaction) error {
	var plan subscriptions.SubscriptionPlan
	if err := h.DB.First(&plan, planID).Error; err != nil {
		return fmt.Errorf("plan %d not found: %w", planID, err)
	}

	now := time.Now()
	sub := subscriptions.ClientSubscription{
		PlanID:        plan.ID,
		BarbershopID:  shopID,
		UserID:        userID,
		StartedAt:     now,
		ExpiresAt:     now.AddDate(0, 0, plan.DurationDays),
		Status:        subscriptions.StatusActive,
		PaymentMethod: info.PaymentMethod,
		TransactionID: fmt.Sprint(info.ID),
	}
	if tx != nil {
		sub.PreferenceID = tx.PreferenceID
	}

	// Insert-or-extend in one statement; concurrent duplicate deliveries
	// cannot create a second active row.
	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "barbershop_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: "status", Value: subscriptions.StatusActive},
		}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "started_at", "expires_at", "payment_method",
			"transaction_id", "preference_id", "updated_at",
		}),
	}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("upsert client subscription: %w", err)
	}
	return nil
}

func (h *Handler) notify(userID uint, kind, title, message string) error {
	n := subscriptions.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := h.DB.Create(&n).Error; err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
