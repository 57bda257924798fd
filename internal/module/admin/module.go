package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/middleware"
)

// AdminModule implements the app.Module interface for the admin dashboard.
type AdminModule struct {
	handler *AdminHandler
}

// NewModule creates a new AdminModule. Panics if h is nil.
func NewModule(h *AdminHandler) *AdminModule {
	if h == nil {
		panic("admin.NewModule: handler must not be nil")
	}
	return &AdminModule{handler: h}
}

// RegisterRoutes registers the admin-only routes.
func (m *AdminModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/admin/stats", middleware.RequireAdmin(), m.handler.Stats)
	pages.GET("/admin", middleware.RequireAdmin(), m.handler.DashboardPage)
}
