package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/middleware"
)

// UserModule serves the signed-in viewer's profile. It has no pages; the
// navigation bar reads the session directly.
type UserModule struct {
	handler *UserHandler
}

// NewModule panics if h is nil.
func NewModule(h *UserHandler) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h}
}

func (m *UserModule) RegisterRoutes(api, _ *gin.RouterGroup) {
	api.GET("/me", middleware.RequireLogin(), m.handler.Me)
}
