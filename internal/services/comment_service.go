package services

import (
	"errors"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/notifications"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
)

const maxCommentLen = 1000

// CommentService manages comments and one-level replies
type CommentService struct {
	comments   repositories.CommentRepository
	posts      repositories.PostRepository
	users      repositories.UserRepository
	dispatcher *notifications.Dispatcher
	views      views
}

// NewCommentService creates a CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, likes repositories.LikeRepository, users repositories.UserRepository, dispatcher *notifications.Dispatcher) *CommentService {
	return &CommentService{
		comments:   comments,
		posts:      posts,
		users:      users,
		dispatcher: dispatcher,
		views:      views{likes: likes, posts: posts, comments: comments},
	}
}

func validateContent(content string) error {
	n := runeLen(content)
	if n == 0 {
		return apperrors.FieldError("content", "Comment cannot be empty.")
	}
	if n > maxCommentLen {
		return apperrors.FieldError("content", "Comment cannot exceed 1000 characters.")
	}
	return nil
}

// ListForPost pages through the top-level comments of an active post
func (s *CommentService) ListForPost(postID uint, filter models.CommentFilter, viewerID uint) (*models.Page[models.CommentView], error) {
	if _, err := s.posts.GetPostByID(postID, repositories.ActiveOnly); err != nil {
		return nil, lookupErr(err, "post")
	}
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	comments, total, err := s.comments.GetTopLevelByPostID(postID, filter, repositories.ActiveOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	items, err := s.views.commentList(comments, viewerID, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	page := models.NewPage(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Create adds a comment, or a reply when req.Parent is set, and notifies
// the post author or the parent comment's author respectively
func (s *CommentService) Create(postID, authorID uint, req *models.CreateCommentRequest) (*models.CommentView, error) {
	post, err := s.posts.GetPostByID(postID, repositories.ActiveOnly)
	if err != nil {
		return nil, lookupErr(err, "post")
	}
	if err := validateContent(req.Content); err != nil {
		return nil, err
	}

	var parent *models.Comment
	if req.Parent != nil {
		if parent, err = s.validParent(*req.Parent, postID); err != nil {
			return nil, err
		}
	}

	comment := &models.Comment{
		Content:  strings.TrimSpace(req.Content),
		AuthorID: authorID,
		PostID:   postID,
		ParentID: req.Parent,
	}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.dispatcher.CommentCreated(comment, post, parent)

	return s.Get(comment.ID, authorID)
}

// validParent checks a reply target: it must exist, be active, belong to
// the same post and not itself be a reply
func (s *CommentService) validParent(parentID, postID uint) (*models.Comment, error) {
	parent, err := s.comments.GetCommentByID(parentID, repositories.ActiveOnly)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.FieldError("parent", "Parent comment does not exist.")
		}
		return nil, apperrors.Internal(err)
	}
	if parent.PostID != postID {
		return nil, apperrors.FieldError("parent", "Parent comment must belong to the same post.")
	}
	if parent.IsReply() {
		return nil, apperrors.FieldError("parent", "Cannot reply to a reply. Only one level of nesting is allowed.")
	}
	return parent, nil
}

// Get returns an active comment with its active replies
func (s *CommentService) Get(id, viewerID uint) (*models.CommentView, error) {
	comment, err := s.comments.GetCommentByID(id, repositories.ActiveOnly)
	if err != nil {
		return nil, lookupErr(err, "comment")
	}
	view, err := s.views.comment(comment, viewerID, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &view, nil
}

// Replies lists the active replies of an active comment
func (s *CommentService) Replies(id, viewerID uint) ([]models.CommentView, error) {
	if _, err := s.comments.GetCommentByID(id, repositories.ActiveOnly); err != nil {
		return nil, lookupErr(err, "comment")
	}
	replies, err := s.comments.GetReplies(id, repositories.ActiveOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	items, err := s.views.commentList(replies, viewerID, false)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return items, nil
}

// Update edits a comment owned by actorID
func (s *CommentService) Update(id, actorID uint, req *models.UpdateCommentRequest) (*models.CommentView, error) {
	comment, err := s.authorize(id, actorID)
	if err != nil {
		return nil, err
	}
	if err := validateContent(req.Content); err != nil {
		return nil, err
	}
	comment.Content = strings.TrimSpace(req.Content)
	if err := s.comments.UpdateComment(comment); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.Get(id, actorID)
}

// Delete soft-deletes a comment owned by actorID along with its replies
func (s *CommentService) Delete(id, actorID uint) error {
	if _, err := s.authorize(id, actorID); err != nil {
		return err
	}
	if err := s.comments.DeactivateComment(id); err != nil {
		return lookupErr(err, "comment")
	}
	return nil
}

func (s *CommentService) authorize(id, actorID uint) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(id, repositories.ActiveOnly)
	if err != nil {
		return nil, lookupErr(err, "comment")
	}
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if !canModify(actor, comment.AuthorID) {
		return nil, apperrors.Forbidden("You do not have permission to perform this action.")
	}
	return comment, nil
}

// ListByAuthor pages through a user's active comments
func (s *CommentService) ListByAuthor(authorID uint, page, pageSize int, viewerID uint) (*models.Page[models.CommentView], error) {
	page, pageSize = repositories.NormalizePage(page, pageSize)
	comments, total, err := s.comments.GetCommentsByAuthorID(authorID, page, pageSize, repositories.ActiveOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	items, err := s.views.commentList(comments, viewerID, false)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	result := models.NewPage(items, total, page, pageSize)
	return &result, nil
}

// ListByUsername pages through the active comments of username
func (s *CommentService) ListByUsername(username string, page, pageSize int, viewerID uint) (*models.Page[models.CommentView], error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return s.ListByAuthor(user.ID, page, pageSize, viewerID)
}
