package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/metrics"
	"github.com/simp-lee/rentfront/internal/payment"
	"github.com/simp-lee/rentfront/internal/session"
)

// PaymentSettings holds the payment gateway account used for checkout.
type PaymentSettings struct {
	KeyID     string
	KeySecret string
	Currency  string
}

// Enabled reports whether online payment is configured.
func (p PaymentSettings) Enabled() bool {
	return p.KeyID != "" && p.KeySecret != ""
}

// Service defines the order operations of the signed-in viewer.
type Service interface {
	Checkout(ctx context.Context, productID string, durationDays int) (*domain.Order, error)
	ListMine(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Order], error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Verify(ctx context.Context, id string, confirmation domain.PaymentConfirmation) (*domain.Order, error)
}

type orderService struct {
	orders    domain.OrderRepository
	products  domain.ProductService
	payment   PaymentSettings
	collector *metrics.Collector
}

// NewService creates an order Service. collector may be nil.
func NewService(orders domain.OrderRepository, products domain.ProductService, settings PaymentSettings, collector *metrics.Collector) Service {
	if settings.Currency == "" {
		settings.Currency = "INR"
	}
	return &orderService{orders: orders, products: products, payment: settings, collector: collector}
}

// Checkout opens an order renting productID for durationDays. The amount is
// the discounted price of the product's tier for that duration.
func (s *orderService) Checkout(ctx context.Context, productID string, durationDays int) (*domain.Order, error) {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return nil, domain.ErrUnauthorized
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	tier, ok := product.TierFor(durationDays)
	if !ok {
		return nil, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("%s cannot be rented for %d days", product.Name, durationDays), nil)
	}

	order := &domain.Order{
		UserID:       sess.UserID(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		DurationDays: tier.DurationDays,
		Amount:       tier.DiscountedPrice,
		Currency:     s.payment.Currency,
		Status:       domain.OrderCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.collector.RecordOrderCreated()
	slog.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("product_id", order.ProductID),
		slog.Int("duration_days", order.DurationDays),
	)
	return order, nil
}

// ListMine returns the viewer's orders, newest first.
func (s *orderService) ListMine(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Order], error) {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return nil, domain.ErrUnauthorized
	}
	req.Sort = "created_at:desc"
	req.Filter = nil
	return s.orders.ListByUser(ctx, sess.UserID(), req)
}

// Get returns an order the viewer may see. Other customers' orders are
// reported as not found.
func (s *orderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	sess := session.FromContext(ctx)
	if !sess.LoggedIn() {
		return nil, domain.ErrUnauthorized
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errOrderNotFound
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, errOrderNotFound
		}
		return nil, err
	}
	if order.UserID != "" && order.UserID != sess.UserID() && !sess.IsAdmin() {
		return nil, errOrderNotFound
	}
	return order, nil
}

// Verify checks a payment confirmation and marks the order paid. Verifying an
// already paid order returns it unchanged. Only the order's owner may verify
// it; admins can read other customers' orders but not pay for them.
func (s *orderService) Verify(ctx context.Context, id string, confirmation domain.PaymentConfirmation) (*domain.Order, error) {
	if !s.payment.Enabled() {
		return nil, domain.NewAppError(domain.CodeValidation, "online payment is not configured", nil)
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != "" && order.UserID != session.FromContext(ctx).UserID() {
		return nil, errOrderNotFound
	}
	switch order.Status {
	case domain.OrderPaid:
		return order, nil
	case domain.OrderCreated:
	default:
		return nil, domain.NewAppError(domain.CodeValidation, "order can no longer be paid", nil)
	}
	if order.PaymentOrderID == "" || confirmation.PaymentOrderID != order.PaymentOrderID {
		s.collector.RecordPaymentVerification(false)
		return nil, domain.NewAppError(domain.CodeValidation, "payment does not belong to this order", nil)
	}

	ok := payment.VerifySignature(confirmation.PaymentOrderID, confirmation.PaymentID, confirmation.Signature, s.payment.KeySecret)
	s.collector.RecordPaymentVerification(ok)
	if !ok {
		slog.WarnContext(ctx, "payment signature rejected", slog.String("order_id", order.ID))
		return nil, domain.NewAppError(domain.CodeValidation, "payment signature verification failed", nil)
	}

	paid, err := s.orders.MarkPaid(ctx, order.ID, confirmation)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "order paid",
		slog.String("order_id", paid.ID),
		slog.String("payment_id", confirmation.PaymentID),
	)
	return paid, nil
}

var errOrderNotFound = domain.NewAppError(domain.CodeNotFound, "order not found", nil)
