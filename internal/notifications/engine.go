package notifications

import (
	"errors"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/metrics"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"go.uber.org/zap"
)

// DedupWindow is how far back an identical notification is refreshed
// instead of duplicated
const DedupWindow = 24 * time.Hour

// Engine creates, collapses and removes notifications. Every failure is
// logged and swallowed: callers never see an error.
type Engine struct {
	notifications repositories.NotificationRepository
	now           func() time.Time
}

// NewEngine creates an Engine
func NewEngine(notifications repositories.NotificationRepository) *Engine {
	return &Engine{
		notifications: notifications,
		now:           time.Now,
	}
}

// WithClock replaces the engine's time source
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Create notifies recipient that actor did verb on target. It returns the
// new or refreshed notification, or nil when nothing was written.
func (e *Engine) Create(recipientID, actorID uint, verb models.Verb, target models.TargetRef) *models.Notification {
	if recipientID == actorID {
		metrics.Notification(string(verb), metrics.OutcomeSkippedSelf)
		return nil
	}

	log := logger.Log.With(
		zap.Uint("recipient_id", recipientID),
		zap.Uint("actor_id", actorID),
		zap.String("verb", string(verb)),
		zap.Stringer("target", target),
	)

	now := e.now()
	key := repositories.NotificationKey{RecipientID: recipientID, ActorID: actorID, Verb: verb, Target: target}

	recent, err := e.notifications.FindLatestSince(key, now.Add(-DedupWindow))
	switch {
	case err == nil:
		if err := e.notifications.Refresh(recent, now); err != nil {
			log.Warn("Notification refresh failed", zap.Error(err))
			metrics.Notification(string(verb), metrics.OutcomeFailed)
			return nil
		}
		metrics.Notification(string(verb), metrics.OutcomeRefreshed)
		return recent
	case !errors.Is(err, repositories.ErrNotFound):
		log.Warn("Notification lookup failed", zap.Error(err))
		metrics.Notification(string(verb), metrics.OutcomeFailed)
		return nil
	}

	n := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Verb:        verb,
		TargetType:  target.Type,
		TargetID:    target.ID,
		CreatedAt:   now,
	}
	if err := e.notifications.CreateNotification(n); err != nil {
		log.Warn("Notification create failed", zap.Error(err))
		metrics.Notification(string(verb), metrics.OutcomeFailed)
		return nil
	}
	metrics.Notification(string(verb), metrics.OutcomeCreated)
	return n
}

// Remove deletes every notification with the exact tuple, with no time
// window, and returns how many were removed
func (e *Engine) Remove(recipientID, actorID uint, verb models.Verb, target models.TargetRef) int64 {
	key := repositories.NotificationKey{RecipientID: recipientID, ActorID: actorID, Verb: verb, Target: target}
	n, err := e.notifications.DeleteByKey(key)
	if err != nil {
		logger.Warn("Notification delete failed", err,
			zap.Uint("recipient_id", recipientID),
			zap.Uint("actor_id", actorID),
			zap.String("verb", string(verb)),
			zap.Stringer("target", target),
		)
		metrics.Notification(string(verb), metrics.OutcomeFailed)
		return 0
	}
	if n > 0 {
		metrics.Notification(string(verb), metrics.OutcomeDeleted)
	}
	return n
}
