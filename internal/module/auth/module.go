package auth

import "github.com/gin-gonic/gin"

// AuthModule mounts sign-in, sign-up and sign-out.
type AuthModule struct {
	api   *AuthHandler
	pages *AuthPageHandler
}

// NewModule panics if either handler is nil.
func NewModule(api *AuthHandler, pages *AuthPageHandler) *AuthModule {
	switch {
	case api == nil:
		panic("auth.NewModule: handler must not be nil")
	case pages == nil:
		panic("auth.NewModule: pageHandler must not be nil")
	}
	return &AuthModule{api: api, pages: pages}
}

func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	g := api.Group("/auth")
	g.POST("/login", m.api.Login)
	g.POST("/register", m.api.Register)

	pages.GET("/login", m.pages.LoginPage)
	pages.POST("/login", m.pages.Login)
	pages.GET("/register", m.pages.RegisterPage)
	pages.POST("/register", m.pages.Register)
	pages.POST("/logout", m.pages.Logout)
}
