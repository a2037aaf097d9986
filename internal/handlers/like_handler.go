package handlers

import (
	"net/http"

	"github.com/anonto42/social-connect/backend/internal/models"
	"github.com/anonto42/social-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles liking and unliking posts
type LikeHandler struct {
	posts *services.PostService
}

func NewLikeHandler(posts *services.PostService) *LikeHandler {
	return &LikeHandler{posts: posts}
}

// RegisterLikeRoutes registers like-related routes on the posts group
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/like/:post_id", h.LikePost)
	g.PUT("/unlike/:post_id", h.UnlikePost)
}

// LikePost adds the caller's like and returns the post's likes
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	likes, err := h.posts.Like(c.Request().Context(), userID, c.Param("post_id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, nonNilLikes(likes))
}

// UnlikePost removes the caller's like and returns the post's likes
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	likes, err := h.posts.Unlike(c.Request().Context(), userID, c.Param("post_id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, nonNilLikes(likes))
}

func nonNilLikes(likes []models.Like) []models.Like {
	if likes == nil {
		return []models.Like{}
	}
	return likes
}
