package services

import (
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
)

const feedLimit = 20

// PostService manages posts
type PostService struct {
	posts   repositories.PostRepository
	users   repositories.UserRepository
	follows repositories.FollowRepository
	views   views
}

// NewPostService creates a PostService
func NewPostService(posts repositories.PostRepository, comments repositories.CommentRepository, likes repositories.LikeRepository, users repositories.UserRepository, follows repositories.FollowRepository) *PostService {
	return &PostService{
		posts:   posts,
		users:   users,
		follows: follows,
		views:   views{likes: likes, posts: posts, comments: comments},
	}
}

func validatePost(title, content string) error {
	fields := map[string]string{}
	if n := runeLen(title); n < 5 {
		fields["title"] = "Title must be at least 5 characters long."
	} else if n > 200 {
		fields["title"] = "Title cannot exceed 200 characters."
	}
	if runeLen(content) < 10 {
		fields["content"] = "Content must be at least 10 characters long."
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields)
	}
	return nil
}

// Create publishes a post by authorID
func (s *PostService) Create(authorID uint, req *models.CreatePostRequest) (*models.PostView, error) {
	if err := validatePost(req.Title, req.Content); err != nil {
		return nil, err
	}
	post := &models.Post{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		AuthorID: authorID,
	}
	if err := s.posts.CreatePost(post); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Get(post.ID, authorID)
}

// Get returns an active post as seen by viewerID (0 = anonymous)
func (s *PostService) Get(id, viewerID uint) (*models.PostView, error) {
	post, err := s.posts.GetPostByID(id, repositories.ActiveOnly)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	view, err := s.views.post(post, viewerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &view, nil
}

// List pages through active posts matching filter
func (s *PostService) List(filter models.PostFilter, viewerID uint) (*models.Page[models.PostView], error) {
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	posts, total, err := s.posts.ListPosts(filter, repositories.ActiveOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	items, err := s.views.postList(posts, viewerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	page := models.NewPage(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListByUsername pages through a user's active posts
func (s *PostService) ListByUsername(username string, filter models.PostFilter, viewerID uint) (*models.Page[models.PostView], error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	filter.AuthorID = user.ID
	return s.List(filter, viewerID)
}

// Update edits a post owned by actorID
func (s *PostService) Update(id, actorID uint, req *models.UpdatePostRequest) (*models.PostView, error) {
	post, err := s.authorize(id, actorID)
	if err != nil {
		return nil, err
	}

	title, content := post.Title, post.Content
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		content = *req.Content
	}
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	post.Title = strings.TrimSpace(title)
	post.Content = strings.TrimSpace(content)
	if err := s.posts.UpdatePost(post); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Get(post.ID, actorID)
}

// Delete soft-deletes a post owned by actorID
func (s *PostService) Delete(id, actorID uint) error {
	if _, err := s.authorize(id, actorID); err != nil {
		return err
	}
	if err := s.posts.DeactivatePost(id); err != nil {
		return lookupErr(err, "post")
	}
	return nil
}

// authorize loads an active post that actorID may modify
func (s *PostService) authorize(id, actorID uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(id, repositories.ActiveOnly)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if !canModify(actor, post.AuthorID) {
		return nil, apperrors.Forbidden("You do not have permission to perform this action.")
	}
	return post, nil
}

// Feed returns the newest posts of the users userID follows
func (s *PostService) Feed(userID uint) ([]models.PostView, error) {
	authorIDs, err := s.follows.GetFollowedUserIDs(userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	posts, err := s.posts.GetPostsByAuthorIDs(authorIDs, feedLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	items, err := s.views.postList(posts, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}
