package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-auth/internal/transport/http/middleware"
)

// UserHandler exposes endpoints available to any authenticated account.
type UserHandler struct{}

// NewUserHandler constructs UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// RegisterRoutes binds user-facing routes.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.dashboard)
}

func (h *UserHandler) dashboard(c *gin.Context) {
	user, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Message: fmt.Sprintf("Welcome back, %s", user.DisplayName()),
		User:    newUserSummary(*user),
	})
}
