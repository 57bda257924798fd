package catalog

import "github.com/gin-gonic/gin"

// CatalogModule implements the app.Module interface for the product catalog.
type CatalogModule struct {
	handler     *ProductHandler
	pageHandler *CatalogPageHandler
}

// NewModule creates a new CatalogModule with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *ProductHandler, ph *CatalogPageHandler) *CatalogModule {
	if h == nil {
		panic("catalog.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("catalog.NewModule: pageHandler must not be nil")
	}
	return &CatalogModule{handler: h, pageHandler: ph}
}

// RegisterRoutes registers catalog API and page routes.
func (m *CatalogModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/products", m.handler.List)
	api.GET("/products/:id", m.handler.Get)

	pages.GET("/", m.pageHandler.Home)
	pages.GET("/products", m.pageHandler.ListPage)
	pages.GET("/products/:id", m.pageHandler.DetailPage)
}
