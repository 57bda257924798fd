package kyc

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/middleware"
)

// KYCModule implements the app.Module interface for identity verification.
type KYCModule struct {
	handler     *KYCHandler
	pageHandler *KYCPageHandler
}

// NewModule creates a new KYCModule with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *KYCHandler, ph *KYCPageHandler) *KYCModule {
	if h == nil {
		panic("kyc.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("kyc.NewModule: pageHandler must not be nil")
	}
	return &KYCModule{handler: h, pageHandler: ph}
}

// RegisterRoutes registers the customer KYC routes and the admin review
// routes.
func (m *KYCModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	mine := api.Group("/kyc", middleware.RequireLogin())
	mine.GET("", m.handler.Status)
	mine.POST("", m.handler.Submit)

	review := api.Group("/admin/kyc", middleware.RequireAdmin())
	review.GET("", m.handler.List)
	review.PATCH("/:id", m.handler.Review)

	minePages := pages.Group("/kyc", middleware.RequireLogin())
	minePages.GET("", m.pageHandler.StatusPage)
	minePages.POST("", m.pageHandler.Submit)

	reviewPages := pages.Group("/admin/kyc", middleware.RequireAdmin())
	reviewPages.GET("", m.pageHandler.AdminListPage)
	reviewPages.POST("/:id/review", m.pageHandler.Review)
}
