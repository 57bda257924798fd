package order

import (
	"math"

	"github.com/simp-lee/rentfront/internal/domain"
)

// CreateOrderRequest is the input for renting a product.
type CreateOrderRequest struct {
	ProductID    string `json:"productId" form:"product_id" binding:"required"`
	DurationDays int    `json:"durationDays" form:"duration_days" binding:"required,min=1"`
}

// Checkout is the template model of the payment widget on an order page.
type Checkout struct {
	Enabled        bool
	KeyID          string
	PaymentOrderID string
	Currency       string
	// AmountMinor is the amount in the currency's minor unit, as the gateway
	// expects it.
	AmountMinor int64
}

func newCheckout(o *domain.Order, settings PaymentSettings) Checkout {
	return Checkout{
		Enabled:        settings.Enabled() && o.Status == domain.OrderCreated && o.PaymentOrderID != "",
		KeyID:          settings.KeyID,
		PaymentOrderID: o.PaymentOrderID,
		Currency:       o.Currency,
		AmountMinor:    int64(math.Round(o.Amount * 100)),
	}
}
