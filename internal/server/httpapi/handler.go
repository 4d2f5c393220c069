// Package httpapi exposes the auth service over HTTP. It holds no business
// logic: it binds requests, translates service errors to status codes, and
// moves the refresh token between the service and an http-only cookie.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"magiclink/internal/common"
	"magiclink/internal/logging"
	"magiclink/internal/server/config"
	"magiclink/internal/server/services"
)

// RefreshTokenCookie is the cookie carrying the rotating refresh token.
const RefreshTokenCookie = "jwt.refreshToken"

// AuthService is the part of the service layer the HTTP handlers consume.
type AuthService interface {
	Login(ctx context.Context, email string) (*services.LoginResult, error)
	Redeem(ctx context.Context, attemptID string, magicToken string) (*services.RedeemResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetProfile(ctx context.Context, userID string) (*services.UserProfile, error)
}

type Handler struct {
	service              AuthService
	log                  logging.Logger
	accessSecret         []byte
	refreshTokenValidity time.Duration
	secureCookies        bool
}

func NewHandler(svc AuthService, l logging.Logger, cfg *config.Config) *Handler {
	return &Handler{
		service:              svc,
		log:                  l.With("module", "httpapi"),
		accessSecret:         []byte(cfg.AccessSecret),
		refreshTokenValidity: cfg.RefreshTokenValidity,
		secureCookies:        cfg.Env == "prod",
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, errMessage string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Message: errMessage})
}

// statusFromError maps service sentinel errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := statusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	newErrorResponse(c, status, msg)
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/verify-token/:id/:token", h.VerifyToken)
		auth.POST("/refresh", h.RefreshTokens)

		auth.Use(h.AuthMiddleware())
		auth.GET("/profile", h.GetProfile)
	}

	return router
}

// setRefreshCookie stores the refresh token in an http-only, SameSite=Strict
// cookie; Secure is set outside local environments.
func (h *Handler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshTokenCookie, token, int(h.refreshTokenValidity.Seconds()), "/", "", h.secureCookies, true)
}

// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "email is required")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req.Email)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": res.Message})
}

// POST /auth/verify-token/:id/:token
func (h *Handler) VerifyToken(c *gin.Context) {
	res, err := h.service.Redeem(c.Request.Context(), c.Param("id"), c.Param("token"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.setRefreshCookie(c, res.RefreshToken)

	// The refresh token travels only in the cookie, never in the body.
	c.JSON(http.StatusOK, gin.H{
		"message":     res.Message,
		"user":        res.User,
		"accessToken": res.AccessToken,
	})
}

// POST /auth/refresh
func (h *Handler) RefreshTokens(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		newErrorResponse(c, http.StatusUnauthorized, "refresh token not found in cookies")
		return
	}

	pair, err := h.service.RefreshTokens(c.Request.Context(), refreshToken)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)

	c.JSON(http.StatusOK, gin.H{"accessToken": pair.AccessToken})
}

// GET /auth/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		newErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
