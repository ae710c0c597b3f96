package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/social-platform-auth/internal/usecase"
)

// AdminHandler exposes administrative user-management and audit endpoints.
type AdminHandler struct {
	users  *usecase.UserService
	audit  *usecase.AuditLogger
	logger *zap.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(users *usecase.UserService, audit *usecase.AuditLogger, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AdminHandler{
		users:  users,
		audit:  audit,
		logger: logger,
	}
}

// RegisterRoutes binds administrative routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users", h.listUsers)
	r.PATCH("/users/:userId/role", h.changeRole)
	r.DELETE("/users/:userId", h.deleteUser)
	r.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, newUserSummary(user))
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users: summaries,
		Total: len(summaries),
	})
}

func (h *AdminHandler) changeRole(c *gin.Context) {
	targetID := strings.TrimSpace(c.Param("userId"))
	if targetID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	var req RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role is required"))
		return
	}

	role := domain.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role must be USER or ADMIN"))
		return
	}

	actor, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	updated, err := h.users.ChangeRole(c.Request.Context(), actor.ID, targetID, role)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRole, Status: http.StatusBadRequest, Message: "role must be USER or ADMIN"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to update role")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(updated))
}

func (h *AdminHandler) deleteUser(c *gin.Context) {
	targetID := strings.TrimSpace(c.Param("userId"))
	if targetID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "user id is required"))
		return
	}

	actor, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), actor.ID, targetID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSelfDelete, Status: http.StatusBadRequest, Message: "cannot delete your own account"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) listAuditLogs(c *gin.Context) {
	limit := usecase.DefaultAuditListLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.audit.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list audit logs"))
		return
	}

	payloads := make([]AuditEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, newAuditEntryPayload(entry))
	}

	c.JSON(http.StatusOK, AuditListResponse{
		Entries: payloads,
		Total:   len(payloads),
	})
}
