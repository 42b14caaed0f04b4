package services

import (
	"errors"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
)

// lookupErr maps a repository read failure onto the client-facing taxonomy
func lookupErr(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return apperrors.Internal(err)
}

// canModify reports whether actor may edit or delete something owned by ownerID
func canModify(actor *models.User, ownerID uint) bool {
	return actor != nil && (actor.ID == ownerID || actor.IsStaff)
}

// runeLen counts characters after trimming surrounding whitespace
func runeLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

// views enriches posts and comments with counters for a viewer (0 = anonymous)
type views struct {
	likes    repositories.LikeRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
}

func (v views) post(p *models.Post, viewerID uint) (models.PostView, error) {
	ref := models.TargetRef{Type: models.TargetPost, ID: p.ID}
	view := models.PostView{Post: *p}
	if p.Author != nil {
		view.Author = p.Author.ToCompact()
	}

	var err error
	if view.LikesCount, err = v.likes.CountLikes(ref); err != nil {
		return view, err
	}
	if view.CommentsCount, err = v.posts.CountComments(p.ID); err != nil {
		return view, err
	}
	if viewerID != 0 {
		if view.IsLiked, err = v.likes.HasUserLiked(viewerID, ref); err != nil {
			return view, err
		}
	}
	return view, nil
}

func (v views) postList(posts []models.Post, viewerID uint) ([]models.PostView, error) {
	out := make([]models.PostView, 0, len(posts))
	for i := range posts {
		view, err := v.post(&posts[i], viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (v views) comment(c *models.Comment, viewerID uint, withReplies bool) (models.CommentView, error) {
	ref := models.TargetRef{Type: models.TargetComment, ID: c.ID}
	view := models.CommentView{Comment: *c}
	if c.Author != nil {
		view.Author = c.Author.ToCompact()
	}

	var err error
	if view.LikesCount, err = v.likes.CountLikes(ref); err != nil {
		return view, err
	}
	if view.RepliesCount, err = v.comments.CountReplies(c.ID, repositories.ActiveOnly); err != nil {
		return view, err
	}
	if viewerID != 0 {
		if view.IsLiked, err = v.likes.HasUserLiked(viewerID, ref); err != nil {
			return view, err
		}
	}

	if withReplies && !c.IsReply() {
		replies, err := v.comments.GetReplies(c.ID, repositories.ActiveOnly)
		if err != nil {
			return view, err
		}
		if view.Replies, err = v.commentList(replies, viewerID, false); err != nil {
			return view, err
		}
	}
	return view, nil
}

func (v views) commentList(comments []models.Comment, viewerID uint, withReplies bool) ([]models.CommentView, error) {
	out := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		view, err := v.comment(&comments[i], viewerID, withReplies)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}
