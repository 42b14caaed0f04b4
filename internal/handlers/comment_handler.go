package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.POST("/posts/:post_id/comments", h.CreateComment, middleware.RequireUser)
	g.GET("/comments/:id", h.GetComment)
	g.PUT("/comments/:id", h.UpdateComment, middleware.RequireUser)
	g.PATCH("/comments/:id", h.UpdateComment, middleware.RequireUser)
	g.DELETE("/comments/:id", h.DeleteComment, middleware.RequireUser)
	g.GET("/comments/:id/replies", h.GetReplies)
	g.GET("/users/:username/comments", h.GetUserComments)
	g.GET("/my-comments", h.GetMyComments, middleware.RequireUser)
}

// CreateComment adds a comment or a reply to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Create(postID, currentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID lists the top-level comments of a post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := parseID(c, "post_id")
	if err != nil {
		return err
	}
	filter := models.CommentFilter{
		Author:     c.QueryParam("author"),
		Content:    c.QueryParam("content"),
		HasReplies: queryBool(c, "has_replies"),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "page_size"),
	}

	page, err := h.comments.ListForPost(postID, filter, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetComment returns a comment with its replies
func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	comment, err := h.comments.Get(id, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// GetReplies lists the replies of a comment
func (h *CommentHandler) GetReplies(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	replies, err := h.comments.Replies(id, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, replies)
}

// UpdateComment edits a comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Update(id, currentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment soft-deletes a comment and its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.comments.Delete(id, currentUserID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetUserComments lists a user's comments
func (h *CommentHandler) GetUserComments(c echo.Context) error {
	page, err := h.comments.ListByUsername(c.Param("username"), queryInt(c, "page"), queryInt(c, "page_size"), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetMyComments lists the caller's comments
func (h *CommentHandler) GetMyComments(c echo.Context) error {
	userID := currentUserID(c)
	page, err := h.comments.ListByAuthor(userID, queryInt(c, "page"), queryInt(c, "page_size"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
