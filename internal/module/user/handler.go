package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/rentfront/internal/pkg"
)

// UserHandler handles REST API requests about the signed-in user.
type UserHandler struct {
	svc Service
}

// NewUserHandler creates a new UserHandler with the given service.
func NewUserHandler(svc Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me handles GET /api/v1/me.
func (h *UserHandler) Me(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, profile)
}
