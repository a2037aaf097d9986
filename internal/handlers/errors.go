package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/social-connect/backend/internal/middleware"
	"github.com/anonto42/social-connect/backend/internal/services"
	"github.com/anonto42/social-connect/backend/internal/validators"
	"github.com/labstack/echo/v4"
)

// serviceError maps a service error to the HTTP error returned to the
// client. Unknown errors are logged and reported as an opaque 500.
func serviceError(c echo.Context, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"errors": []validators.FieldError{{Field: verr.Field, Msg: verr.Message}},
		})
	case errors.Is(err, services.ErrPostNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Comment does not exist")
	case errors.Is(err, services.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authorized")
	case errors.Is(err, services.ErrAlreadyLiked):
		return echo.NewHTTPError(http.StatusBadRequest, "Post already liked")
	case errors.Is(err, services.ErrNotLiked):
		return echo.NewHTTPError(http.StatusBadRequest, "Post has not yet been liked")
	case errors.Is(err, services.ErrUserExists):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"errors": []validators.FieldError{{Msg: "User already exists"}},
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"errors": []validators.FieldError{{Msg: "Invalid Credentials"}},
		})
	}

	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

// currentUserID returns the user id set by the auth middleware.
func currentUserID(c echo.Context) (string, error) {
	userID, ok := c.Get(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "No token, authorization denied")
	}
	return userID, nil
}
