package domain

import "context"

// OrderStatus is the payment lifecycle of a rental order.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a rental of one product for one pricing tier's duration.
type Order struct {
	BaseModel
	UserID         string      `gorm:"size:36;index;not null" json:"userId"`
	ProductID      string      `gorm:"size:36;index;not null" json:"productId"`
	ProductName    string      `gorm:"size:200" json:"productName"`
	DurationDays   int         `gorm:"not null" json:"durationDays"`
	Amount         float64     `gorm:"not null" json:"amount"`
	Currency       string      `gorm:"size:3;not null;default:INR" json:"currency"`
	Status         OrderStatus `gorm:"size:20;index;not null" json:"status"`
	PaymentOrderID string      `gorm:"size:64;index" json:"paymentOrderId,omitempty"`
	PaymentID      string      `gorm:"size:64" json:"paymentId,omitempty"`
}

// PaymentConfirmation is what the payment gateway hands back to the browser
// after checkout.
type PaymentConfirmation struct {
	PaymentOrderID string `json:"razorpay_order_id" form:"razorpay_order_id" binding:"required"`
	PaymentID      string `json:"razorpay_payment_id" form:"razorpay_payment_id" binding:"required"`
	Signature      string `json:"razorpay_signature" form:"razorpay_signature" binding:"required"`
}

// OrderRepository is the data access interface for orders. userID scopes the
// query to one customer; the remote backend derives it from the bearer token.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, req PageRequest) (*PageResult[Order], error)
	ListRecent(ctx context.Context, limit int) ([]Order, error)
	MarkPaid(ctx context.Context, id string, confirmation PaymentConfirmation) (*Order, error)
}
