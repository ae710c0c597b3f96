package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appLogger "github.com/arklim/social-platform-auth/internal/infra/logger"
	"github.com/arklim/social-platform-auth/internal/infra/security"
	"github.com/arklim/social-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/social-platform-auth/internal/usecase"
)

const tokenType = "Bearer"

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth      *usecase.AuthService
	codec     *security.TokenCodec
	validator *security.PasswordValidator
	logger    *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, codec *security.TokenCodec, validator *security.PasswordValidator, logger *zap.Logger) *AuthHandler {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthHandler{
		auth:      auth,
		codec:     codec,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, extraMiddlewares ...gin.HandlerFunc) {
	if len(extraMiddlewares) > 0 {
		r.Use(extraMiddlewares...)
	}

	r.POST("/register", h.register)
	r.POST("/login", h.login)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Validate(req.Password); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Message))
			return
		}
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "password does not meet requirements"))
		return
	}

	if score := security.PasswordStrengthScore(req.Password, req.Email, req.Name); score < 2 {
		h.logger.Warn("weak password accepted at registration",
			zap.String("email", appLogger.MaskEmail(req.Email)),
			zap.Int("score", score))
	}

	user, token, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrEmailInUse) {
			c.JSON(http.StatusConflict, NewErrorResponse(c, "email already in use"))
			return
		}
		h.logger.Error("register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to register user"))
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token:     token,
		TokenType: tokenType,
		ExpiresIn: int(h.codec.TTL().Seconds()),
		User:      newUserSummary(user),
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	ip := middleware.GetRequestContext(c).IP
	if ip == "" {
		ip = c.ClientIP()
	}

	user, token, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		IP:       ip,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "incorrect email or password"))
			return
		}
		h.logger.Error("login user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to log in"))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		TokenType: tokenType,
		ExpiresIn: int(h.codec.TTL().Seconds()),
		User:      newUserSummary(user),
	})
}
