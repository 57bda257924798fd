package order

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/middleware"
)

// OrderModule implements the app.Module interface for orders.
type OrderModule struct {
	handler     *OrderHandler
	pageHandler *OrderPageHandler
}

// NewModule creates a new OrderModule with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *OrderHandler, ph *OrderPageHandler) *OrderModule {
	if h == nil {
		panic("order.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("order.NewModule: pageHandler must not be nil")
	}
	return &OrderModule{handler: h, pageHandler: ph}
}

// RegisterRoutes registers order API and page routes. All of them require a
// signed-in viewer.
func (m *OrderModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	orders := api.Group("/orders", middleware.RequireLogin())
	orders.GET("", m.handler.List)
	orders.POST("", m.handler.Create)
	orders.GET("/:id", m.handler.Get)
	orders.POST("/:id/verify", m.handler.Verify)

	orderPages := pages.Group("/orders", middleware.RequireLogin())
	orderPages.GET("", m.pageHandler.ListPage)
	orderPages.POST("", m.pageHandler.Create)
	orderPages.GET("/:id", m.pageHandler.DetailPage)
	orderPages.POST("/:id/verify", m.pageHandler.Verify)
}
