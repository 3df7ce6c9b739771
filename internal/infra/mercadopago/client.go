package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// PaymentInfo is the slice of the provider payment record the reconciler
// needs, plus the raw payload for the audit column.
type PaymentInfo struct {
	ID                int64
	Status            string
	ExternalReference string
	PaymentMethod     string
	AmountBRL         float64
	RawPayload        []byte
}

// CheckoutPreference is the result of initiating a checkout with the provider.
type CheckoutPreference struct {
	ID        string
	InitPoint string
}

// Provider wraps the Mercado Pago SDK. Payment status from webhooks is never
// trusted; PaymentByID re-fetches the authoritative record.
type Provider struct {
	payments    payment.Client
	preferences preference.Client
}

func NewProvider(accessToken string) (*Provider, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &Provider{
		payments:    payment.NewClient(cfg),
		preferences: preference.NewClient(cfg),
	}, nil
}

func (p *Provider) PaymentByID(ctx context.Context, id int64) (*PaymentInfo, error) {
	resource, err := p.payments.Get(ctx, int(id))
	if err != nil {
		return nil, fmt.Errorf("fetch payment %d: %w", id, err)
	}

	raw, err := json.Marshal(resource)
	if err != nil {
		return nil, fmt.Errorf("marshal payment %d payload: %w", id, err)
	}

	return &PaymentInfo{
		ID:                int64(resource.ID),
		Status:            resource.Status,
		ExternalReference: resource.ExternalReference,
		PaymentMethod:     resource.PaymentMethodID,
		AmountBRL:         resource.TransactionAmount,
		RawPayload:        raw,
	}, nil
}

// CreatePreference registers a checkout intent with the provider and returns
// the preference id used to key our pending transaction row.
func (p *Provider) CreatePreference(ctx context.Context, title string, amountBRL float64, externalRef, notificationURL, backURL string) (*CheckoutPreference, error) {
	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:     title,
				Quantity:  1,
				UnitPrice: amountBRL,
			},
		},
		ExternalReference: externalRef,
		NotificationURL:   notificationURL,
		BackURLs: &preference.BackURLsRequest{
			Success: backURL,
			Pending: backURL,
			Failure: backURL,
		},
	}

	resource, err := p.preferences.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	return &CheckoutPreference{ID: resource.ID, InitPoint: resource.InitPoint}, nil
}
