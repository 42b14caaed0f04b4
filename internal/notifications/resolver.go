package notifications

import (
	"errors"

	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"go.uber.org/zap"
)

// Target is a resolved TargetRef. Exactly one of Post, Comment or Profile
// is set, matching Type.
type Target struct {
	Type    models.TargetType
	Post    *models.Post
	Comment *models.Comment
	Profile *models.Profile
}

// OwnerID returns the user who owns the target: the author of a post or
// comment, or the user behind a profile
func (t Target) OwnerID() uint {
	switch t.Type {
	case models.TargetPost:
		return t.Post.AuthorID
	case models.TargetComment:
		return t.Comment.AuthorID
	case models.TargetProfile:
		return t.Profile.UserID
	}
	return 0
}

// Resolver maps a generic reference to its entity
type Resolver interface {
	Resolve(ref models.TargetRef) (Target, bool)
}

// StoreResolver resolves references against the repositories. Soft-deleted
// posts and comments still resolve so historical notifications can render.
type StoreResolver struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	profiles repositories.ProfileRepository
}

// NewStoreResolver creates a StoreResolver
func NewStoreResolver(posts repositories.PostRepository, comments repositories.CommentRepository, profiles repositories.ProfileRepository) *StoreResolver {
	return &StoreResolver{posts: posts, comments: comments, profiles: profiles}
}

// Resolve never fails: a missing row, an unknown tag or a lookup error all
// report false
func (r *StoreResolver) Resolve(ref models.TargetRef) (Target, bool) {
	var (
		target = Target{Type: ref.Type}
		err    error
	)
	switch ref.Type {
	case models.TargetPost:
		target.Post, err = r.posts.GetPostByID(ref.ID, repositories.IncludeInactive)
	case models.TargetComment:
		target.Comment, err = r.comments.GetCommentByID(ref.ID, repositories.IncludeInactive)
	case models.TargetProfile:
		target.Profile, err = r.profiles.GetByID(ref.ID)
	default:
		return Target{}, false
	}

	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("Target lookup failed", err, zap.Stringer("target", ref))
		}
		return Target{}, false
	}
	return target, true
}
