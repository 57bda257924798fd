package catalog

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/domain"
	"github.com/simp-lee/rentfront/internal/pkg"
)

// FeaturedCount is the number of products shown on the home page.
const FeaturedCount = 8

// DescriptionRenderer turns a stored product description into safe HTML.
type DescriptionRenderer interface {
	HTML(raw string) template.HTML
}

// CatalogPageHandler serves the home page and product pages.
type CatalogPageHandler struct {
	svc         domain.ProductService
	description DescriptionRenderer
}

// NewPageHandler creates a new CatalogPageHandler.
func NewPageHandler(svc domain.ProductService, description DescriptionRenderer) *CatalogPageHandler {
	return &CatalogPageHandler{svc: svc, description: description}
}

// Home handles GET /. The page still renders when featured products cannot
// be loaded.
func (h *CatalogPageHandler) Home(c *gin.Context) {
	featured, err := h.svc.FeaturedProducts(c.Request.Context(), FeaturedCount)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "featured products unavailable", slog.String("error", err.Error()))
	}
	c.HTML(http.StatusOK, "catalog/home.html", pkg.View(c, gin.H{
		"Title":       "Rent or buy anything",
		"Featured":    newProductCards(featured),
		"Unavailable": err != nil,
		"Categories":  Categories,
	}))
}

// ListPage handles GET /products. A page past the end is clamped to the last
// page and fetched again.
func (h *CatalogPageHandler) ListPage(c *gin.Context) {
	ctx := c.Request.Context()
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.ListProducts(ctx, req)
	if err != nil {
		pkg.PageError(c, err)
		return
	}
	if clamped := pkg.ClampPage(req.Page, result.TotalPages); clamped != req.Page {
		req.Page = clamped
		if result, err = h.svc.ListProducts(ctx, req); err != nil {
			pkg.PageError(c, err)
			return
		}
	}

	c.HTML(http.StatusOK, "catalog/list.html", pkg.View(c, gin.H{
		"Title":      "Browse products",
		"Products":   newProductCards(result.Items),
		"Pagination": pkg.NewPageView(result, "/products", c.Request.URL.Query()),
		"Category":   req.Filter[FilterCategory],
		"Search":     req.Filter[FilterSearch],
		"Categories": Categories,
	}))
}

// DetailPage handles GET /products/:id.
func (h *CatalogPageHandler) DetailPage(c *gin.Context) {
	p, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.PageError(c, err)
		return
	}

	best, hasDeal := p.BestDeal()
	c.HTML(http.StatusOK, "catalog/detail.html", pkg.View(c, gin.H{
		"Title":       p.Name,
		"Product":     p,
		"Description": h.description.HTML(p.Description),
		"BestDeal":    best,
		"HasDeal":     hasDeal,
	}))
}
