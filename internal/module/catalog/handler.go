package catalog

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// ProductHandler handles REST API requests for the product catalog.
type ProductHandler struct {
	svc domain.ProductService
}

// NewProductHandler creates a new ProductHandler with the given service.
func NewProductHandler(svc domain.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(c *gin.Context) {
	result, err := h.svc.ListProducts(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	items := make([]ProductResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, newProductResponse(p))
	}
	pkg.List(c, &domain.PageResult[ProductResponse]{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /api/v1/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, newProductResponse(*p))
}
