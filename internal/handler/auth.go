package handler

import (
	"context"  // provides context with cancellation for store calls
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for store calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/job-portal-manager/internal/model"   // user summary returned on login
	"github.com/iliyamo/job-portal-manager/internal/service" // registration and login rules
)

// requestTimeout bounds every store call made by a handler.
const requestTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type registerResp struct {
	Message string `json:"message"`
	UserID  uint64 `json:"user_id"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginResp struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    model.UserSummary `json:"user"`
}

// Register: create a user. No token is issued; the client logs in next.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	uid, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResp{Message: "User registered successfully", UserID: uid})
}

// Login: verify credentials and return a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResp{Message: "Login successful", Token: res.Token, User: res.User})
}
