package order

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// OrderHandler handles REST API requests for the viewer's orders.
type OrderHandler struct {
	svc Service
}

// NewOrderHandler creates a new OrderHandler with the given service.
func NewOrderHandler(svc Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	result, err := h.svc.ListMine(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	o, err := h.svc.Checkout(c.Request.Context(), req.ProductID, req.DurationDays)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, o)
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, o)
}

// Verify handles POST /api/v1/orders/:id/verify.
func (h *OrderHandler) Verify(c *gin.Context) {
	var confirmation domain.PaymentConfirmation
	if !pkg.BindAndValidate(c, &confirmation) {
		return
	}

	o, err := h.svc.Verify(c.Request.Context(), c.Param("id"), confirmation)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, o)
}
