package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/simp-lee/rentfront/internal/domain"
)

type orderResponse struct {
	Order domain.Order `json:"order"`
}

type orderListResponse struct {
	Orders      []domain.Order `json:"orders"`
	TotalPages  int            `json:"totalPages"`
	TotalOrders int64          `json:"totalOrders"`
}

type createOrderRequest struct {
	ProductID    string `json:"productId"`
	DurationDays int    `json:"durationDays"`
}

type orderRepository struct {
	client *Client
}

// NewOrderRepository returns a domain.OrderRepository served by the backend.
// The backend scopes customer queries by the bearer token, so userID
// arguments are not sent.
func NewOrderRepository(c *Client) domain.OrderRepository {
	return &orderRepository{client: c}
}

// Create asks the backend to open the order and its payment. The backend
// prices the order; order is replaced with what it returns.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	var resp orderResponse
	in := createOrderRequest{ProductID: order.ProductID, DurationDays: order.DurationDays}
	if err := r.client.send(ctx, "POST /orders", http.MethodPost, "/orders", in, &resp); err != nil {
		return err
	}
	*order = resp.Order
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var resp orderResponse
	if err := r.client.get(ctx, "GET /orders/{id}", "/orders/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, _ string, req domain.PageRequest) (*domain.PageResult[domain.Order], error) {
	var resp orderListResponse
	if err := r.client.get(ctx, "GET /orders/me", "/orders/me", pageQuery(req), &resp); err != nil {
		return nil, err
	}
	return pageResult(resp.Orders, resp.TotalOrders, resp.TotalPages, req), nil
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var resp orderListResponse
	if err := r.client.get(ctx, "GET /admin/orders", "/admin/orders", q, &resp); err != nil {
		return nil, err
	}
	if resp.Orders == nil {
		return []domain.Order{}, nil
	}
	return resp.Orders, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id string, confirmation domain.PaymentConfirmation) (*domain.Order, error) {
	var resp orderResponse
	path := "/orders/" + url.PathEscape(id) + "/verify"
	if err := r.client.send(ctx, "POST /orders/{id}/verify", http.MethodPost, path, confirmation, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}
