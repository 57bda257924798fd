package order

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// OrderPageHandler serves the order pages.
type OrderPageHandler struct {
	svc      Service
	settings PaymentSettings
}

// NewPageHandler creates a new OrderPageHandler.
func NewPageHandler(svc Service, settings PaymentSettings) *OrderPageHandler {
	return &OrderPageHandler{svc: svc, settings: settings}
}

// ListPage handles GET /orders.
func (h *OrderPageHandler) ListPage(c *gin.Context) {
	ctx := c.Request.Context()
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.ListMine(ctx, req)
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	if clamped := pkg.ClampPage(req.Page, result.TotalPages); clamped != req.Page {
		req.Page = clamped
		if result, err = h.svc.ListMine(ctx, req); err != nil {
			pkg.PageError(c, err)
			return
		}
	}

	c.HTML(http.StatusOK, "orders/list.html", pkg.View(c, gin.H{
		"Title":      "My orders",
		"Orders":     result.Items,
		"Pagination": pkg.NewPageView(result, "/orders", c.Request.URL.Query()),
	}))
}

// DetailPage handles GET /orders/:id.
func (h *OrderPageHandler) DetailPage(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	c.HTML(http.StatusOK, "orders/detail.html", pkg.View(c, gin.H{
		"Title":    "Order " + o.ID,
		"Order":    o,
		"Checkout": newCheckout(o, h.settings),
		"Notice":   notice(c.Query("status")),
	}))
}

// Create handles POST /orders.
func (h *OrderPageHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		pkg.RenderError(c, http.StatusBadRequest, "Choose a rental duration.")
		return
	}

	o, err := h.svc.Checkout(c.Request.Context(), req.ProductID, req.DurationDays)
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders/"+url.PathEscape(o.ID))
}

// Verify handles POST /orders/:id/verify, the payment widget's callback.
func (h *OrderPageHandler) Verify(c *gin.Context) {
	var confirmation domain.PaymentConfirmation
	if err := c.ShouldBind(&confirmation); err != nil {
		pkg.RenderError(c, http.StatusBadRequest, "The payment confirmation is incomplete.")
		return
	}

	o, err := h.svc.Verify(c.Request.Context(), c.Param("id"), confirmation)
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/orders/"+url.PathEscape(o.ID)+"?status=paid")
}

func notice(status string) string {
	if status == "paid" {
		return "Payment received. Your rental is confirmed."
	}
	return ""
}
