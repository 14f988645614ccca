package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auctionhouse/internal/auctionerrors"
	model "auctionhouse/internal/models"
	"auctionhouse/services/helpers"
	"auctionhouse/utils"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, phone, password string) (model.User, string, error)
	Login(ctx context.Context, email, password string) (model.User, string, error)
	TokenTTL() time.Duration
}

type AuthHandler struct {
	service      AuthServiceInterface
	cookieSecure bool
}

func NewAuthHandler(service AuthServiceInterface, cookieSecure bool) *AuthHandler {
	return &AuthHandler{service: service, cookieSecure: cookieSecure}
}

// Request/Response DTOs
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// RegisterHandler handles POST /auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "RegisterHandler", err, map[string]any{"email": req.Email})
		return
	}

	h.setAuthCookie(c, token)
	utils.JSONResponse(c, http.StatusCreated, UserResponse{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}, "registration successful")
	helpers.LogSuccess("RegisterHandler", "user registered", map[string]any{"user_id": user.UserID})
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "LoginHandler", err, map[string]any{"email": req.Email})
		return
	}

	h.setAuthCookie(c, token)
	utils.JSONResponse(c, http.StatusOK, UserResponse{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
	}, "login successful")
	helpers.LogSuccess("LoginHandler", "user logged in", map[string]any{"user_id": user.UserID})
}

// LogoutHandler handles POST /auth/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(helpers.AuthCookieName, "", -1, "/", "", h.cookieSecure, true)
	utils.JSONResponse(c, http.StatusOK, nil, "logged out")
}

// MeHandler handles GET /auth/me
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		helpers.HandleServiceError(c, "MeHandler", auctionerrors.ErrUnauthorized, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, UserResponse{
		UserID: user.UserID,
		Email:  user.Email,
		Role:   user.Role,
	}, "authenticated")
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(helpers.AuthCookieName, token, int(h.service.TokenTTL().Seconds()), "/", "", h.cookieSecure, true)
}
