package handlers

import (
	"net/http"

	"github.com/anonto42/social-connect/backend/internal/models"
	"github.com/anonto42/social-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	posts *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *services.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment-related routes on the posts group
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comment/:post_id", h.CreateComment)
	g.DELETE("/comment/:post_id/:comment_id", h.DeleteComment)
}

// CreateComment adds a comment and returns the post's comments
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comments, err := h.posts.AddComment(c.Request().Context(), userID, c.Param("post_id"), req.Text)
	if err != nil {
		return serviceError(c, err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment removes one of the caller's comments and returns the rest
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	comments, err := h.posts.DeleteComment(c.Request().Context(), userID, c.Param("post_id"), c.Param("comment_id"))
	if err != nil {
		return serviceError(c, err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return c.JSON(http.StatusOK, comments)
}
