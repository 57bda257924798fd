package app

import "github.com/gin-gonic/gin"

// Module is a storefront feature (catalog, orders, KYC, ...) that mounts its
// own routes. api is the /api/v1 group answered with the JSON envelope;
// pages is the CSRF-protected group for server-rendered pages and forms.
// Both groups already carry the viewer's session.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup)
}

// ModuleFunc adapts a plain function to Module.
type ModuleFunc func(api *gin.RouterGroup, pages *gin.RouterGroup)

// RegisterRoutes calls f(api, pages).
func (f ModuleFunc) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	f(api, pages)
}
