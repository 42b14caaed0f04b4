package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/metrics"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/notifications"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
)

// LikeStatus is the state of a target after a like or unlike
type LikeStatus struct {
	TargetType models.TargetType `json:"target_type"`
	TargetID   uint              `json:"target_id"`
	Liked      bool              `json:"liked"`
	LikesCount int64             `json:"likes_count"`
	Detail     string            `json:"detail"`
}

// LikeService likes and unlikes posts and comments
type LikeService struct {
	likes      repositories.LikeRepository
	posts      repositories.PostRepository
	comments   repositories.CommentRepository
	dispatcher *notifications.Dispatcher
}

// NewLikeService creates a LikeService
func NewLikeService(likes repositories.LikeRepository, posts repositories.PostRepository, comments repositories.CommentRepository, dispatcher *notifications.Dispatcher) *LikeService {
	return &LikeService{likes: likes, posts: posts, comments: comments, dispatcher: dispatcher}
}

// Like records userID's like on target. A second like on the same target is
// a conflict, including one lost to a concurrent insert.
func (s *LikeService) Like(userID uint, target models.TargetRef) (*LikeStatus, error) {
	ownerID, err := s.activeOwner(target)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.HasUserLiked(userID, target)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if liked {
		return nil, apperrors.Conflict(fmt.Sprintf("%s already liked", label(target.Type)))
	}

	like := &models.Like{UserID: userID, TargetType: target.Type, TargetID: target.ID}
	if err := s.likes.CreateLike(like); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("%s already liked", label(target.Type)))
		}
		return nil, apperrors.Internal(err)
	}
	metrics.Like(string(target.Type), "create")

	s.dispatcher.LikeCreated(like, ownerID)

	return s.status(target, true, fmt.Sprintf("%s liked successfully", label(target.Type)))
}

// Unlike removes userID's like on target and its notification
func (s *LikeService) Unlike(userID uint, target models.TargetRef) (*LikeStatus, error) {
	ownerID, err := s.activeOwner(target)
	if err != nil {
		return nil, err
	}

	if err := s.likes.DeleteLike(userID, target); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("like")
		}
		return nil, apperrors.Internal(err)
	}
	metrics.Like(string(target.Type), "delete")

	s.dispatcher.LikeDeleted(&models.Like{UserID: userID, TargetType: target.Type, TargetID: target.ID}, ownerID)

	return s.status(target, false, fmt.Sprintf("%s unliked successfully", label(target.Type)))
}

// activeOwner validates the target and returns the id of its author
func (s *LikeService) activeOwner(target models.TargetRef) (uint, error) {
	switch target.Type {
	case models.TargetPost:
		post, err := s.posts.GetPostByID(target.ID, repositories.ActiveOnly)
		if err != nil {
			return 0, lookupErr(err, "post")
		}
		return post.AuthorID, nil
	case models.TargetComment:
		comment, err := s.comments.GetCommentByID(target.ID, repositories.ActiveOnly)
		if err != nil {
			return 0, lookupErr(err, "comment")
		}
		return comment.AuthorID, nil
	}
	return 0, apperrors.FieldError("target_type", "Only posts and comments can be liked.")
}

func (s *LikeService) status(target models.TargetRef, liked bool, detail string) (*LikeStatus, error) {
	count, err := s.likes.CountLikes(target)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &LikeStatus{
		TargetType: target.Type,
		TargetID:   target.ID,
		Liked:      liked,
		LikesCount: count,
		Detail:     detail,
	}, nil
}

func label(t models.TargetType) string {
	switch t {
	case models.TargetPost:
		return "Post"
	case models.TargetComment:
		return "Comment"
	}
	return string(t)
}
