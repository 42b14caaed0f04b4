package notifications

import (
	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"go.uber.org/zap"
)

// Dispatcher fans committed mutations out to the engine. Callers invoke it
// after the triggering row is persisted, outside any transaction, and it
// never reports an error back.
type Dispatcher struct {
	engine   *Engine
	settings repositories.NotificationSettingsRepository
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(engine *Engine, settings repositories.NotificationSettingsRepository) *Dispatcher {
	return &Dispatcher{engine: engine, settings: settings}
}

// LikeVerb returns the notification verb for a like on targetType
func LikeVerb(targetType models.TargetType) (models.Verb, bool) {
	switch targetType {
	case models.TargetPost:
		return models.VerbLikedPost, true
	case models.TargetComment:
		return models.VerbLikedComment, true
	}
	return "", false
}

// FollowCreated notifies the followed profile's user
func (d *Dispatcher) FollowCreated(followerID uint, following *models.Profile) *models.Notification {
	ref := models.TargetRef{Type: models.TargetProfile, ID: following.ID}
	return d.engine.Create(following.UserID, followerID, models.VerbFollowed, ref)
}

// FollowDeleted removes the matching "followed" notification
func (d *Dispatcher) FollowDeleted(followerID uint, following *models.Profile) {
	ref := models.TargetRef{Type: models.TargetProfile, ID: following.ID}
	d.engine.Remove(following.UserID, followerID, models.VerbFollowed, ref)
}

// LikeCreated notifies the owner of the liked post or comment
func (d *Dispatcher) LikeCreated(like *models.Like, ownerID uint) *models.Notification {
	verb, ok := LikeVerb(like.TargetType)
	if !ok {
		return nil
	}
	return d.engine.Create(ownerID, like.UserID, verb, like.Target())
}

// LikeDeleted removes the exact notification the like produced
func (d *Dispatcher) LikeDeleted(like *models.Like, ownerID uint) {
	verb, ok := LikeVerb(like.TargetType)
	if !ok {
		return
	}
	d.engine.Remove(ownerID, like.UserID, verb, like.Target())
}

// CommentCreated notifies the parent comment's author for a reply, and the
// post's author otherwise. parent must be set when comment is a reply.
func (d *Dispatcher) CommentCreated(comment *models.Comment, post *models.Post, parent *models.Comment) *models.Notification {
	if comment.IsReply() {
		if parent == nil {
			return nil
		}
		ref := models.TargetRef{Type: models.TargetComment, ID: parent.ID}
		return d.engine.Create(parent.AuthorID, comment.AuthorID, models.VerbReplied, ref)
	}
	ref := models.TargetRef{Type: models.TargetPost, ID: post.ID}
	return d.engine.Create(post.AuthorID, comment.AuthorID, models.VerbCommented, ref)
}

// UserCreated provisions default notification settings
func (d *Dispatcher) UserCreated(user *models.User) {
	if d.settings == nil {
		return
	}
	if _, err := d.settings.GetOrCreate(user.ID); err != nil {
		logger.Warn("Notification settings provisioning failed", err, zap.Uint("user_id", user.ID))
	}
}
