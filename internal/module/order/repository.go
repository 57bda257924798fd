package order

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/payment"
	"github.com/simp-lee/rentfront/internal/pkg"
)

var allowedSortFields = []string{"created_at", "amount", "status"}

// orderRepository implements domain.OrderRepository using GORM.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an OrderRepository backed by the local database.
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts order and opens its gateway order id.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.PaymentOrderID == "" {
		order.PaymentOrderID = payment.NewOrderID()
	}
	if order.Status == "" {
		order.Status = domain.OrderCreated
	}
	return pkg.MapDBError(r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, req domain.PageRequest) (*domain.PageResult[domain.Order], error) {
	base := r.db.WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var orders []domain.Order
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&orders).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return pkg.NewPageResult(orders, total, req), nil
}

// ListRecent returns the newest limit orders across all users.
func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	orders := []domain.Order{}
	if limit <= 0 {
		return orders, nil
	}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return orders, nil
}

// MarkPaid records the payment against an open order. The status guard in
// the update keeps concurrent confirmations from both succeeding.
func (r *orderRepository) MarkPaid(ctx context.Context, id string, confirmation domain.PaymentConfirmation) (*domain.Order, error) {
	var order domain.Order
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", id, domain.OrderCreated).
			Updates(map[string]any{
				"status":     domain.OrderPaid,
				"payment_id": confirmation.PaymentID,
			})
		if res.Error != nil {
			return pkg.MapDBError(res.Error)
		}
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			return pkg.MapDBError(err)
		}
		if res.RowsAffected == 0 {
			return domain.NewAppError(domain.CodeValidation, "order can no longer be paid", nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
