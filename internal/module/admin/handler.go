package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/pkg"
)

// AdminHandler serves the admin API and dashboard page.
type AdminHandler struct {
	svc Service
}

// NewAdminHandler creates a new AdminHandler with the given service.
func NewAdminHandler(svc Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, stats)
}

// DashboardPage handles GET /admin.
func (h *AdminHandler) DashboardPage(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	c.HTML(http.StatusOK, "admin/dashboard.html", pkg.View(c, gin.H{
		"Title":        "Dashboard",
		"Stats":        d.Stats,
		"RecentOrders": d.RecentOrders,
	}))
}
