package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost, middleware.RequireUser)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost, middleware.RequireUser)
	g.PATCH("/posts/:id", h.UpdatePost, middleware.RequireUser)
	g.DELETE("/posts/:id", h.DeletePost, middleware.RequireUser)
	g.GET("/users/:username/posts", h.GetUserPosts)
	g.GET("/my-posts", h.GetMyPosts, middleware.RequireUser)
}

func postFilter(c echo.Context) (models.PostFilter, error) {
	filter := models.PostFilter{
		Author:   c.QueryParam("author"),
		Title:    c.QueryParam("title"),
		Search:   c.QueryParam("search"),
		Ordering: c.QueryParam("ordering"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	if id := queryInt(c, "author_id"); id > 0 {
		filter.AuthorID = uint(id)
	}
	var err error
	if filter.CreatedAfter, err = queryTime(c, "created_after"); err != nil {
		return filter, err
	}
	if filter.CreatedBefore, err = queryTime(c, "created_before"); err != nil {
		return filter, err
	}
	return filter, nil
}

// CreatePost creates a new post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(currentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.posts.Get(id, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts lists active posts with filters and pagination
func (h *PostHandler) GetPosts(c echo.Context) error {
	filter, err := postFilter(c)
	if err != nil {
		return err
	}

	page, err := h.posts.List(filter, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetUserPosts lists the active posts of a user
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	filter, err := postFilter(c)
	if err != nil {
		return err
	}

	page, err := h.posts.ListByUsername(c.Param("username"), filter, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetMyPosts lists the caller's active posts
func (h *PostHandler) GetMyPosts(c echo.Context) error {
	filter, err := postFilter(c)
	if err != nil {
		return err
	}
	filter.AuthorID = currentUserID(c)

	page, err := h.posts.List(filter, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Update(id, currentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost soft-deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.posts.Delete(id, currentUserID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
