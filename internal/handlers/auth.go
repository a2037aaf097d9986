package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/social-connect/backend/internal/models"
	"github.com/anonto42/social-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login and the current-user lookup.
type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterUserRoutes mounts registration on the public /users group.
func (h *AuthHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("", h.Register)
}

// RegisterAuthRoutes mounts login and, when an auth middleware is given,
// the protected current-user lookup.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, protect echo.MiddlewareFunc) {
	g.POST("", h.Login)
	g.GET("", h.CurrentUser, protect)
	if h.users.FirebaseEnabled() {
		g.POST("/firebase", h.FirebaseLogin)
	}
}

// Register creates an account and answers with a token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.users.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}

// Login checks email and password and answers with a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}

// CurrentUser returns the authenticated user without the password digest.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// FirebaseLogin exchanges a Firebase ID token for a local token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.users.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
		}
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.TokenResponse{Token: token})
}
