package notifications

import (
	"fmt"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
)

const (
	titlePreviewLen   = 30
	commentPreviewLen = 100
)

// Message renders the text of a notification. ok reports whether the target
// resolved; only "followed" renders without one.
func Message(actor string, verb models.Verb, target Target, ok bool) string {
	if verb == models.VerbFollowed {
		return fmt.Sprintf("%s started following you", actor)
	}
	if ok {
		switch {
		case verb == models.VerbLikedPost && target.Post != nil:
			return fmt.Sprintf("%s liked your post '%s...'", actor, truncate(target.Post.Title, titlePreviewLen))
		case verb == models.VerbLikedComment && target.Comment != nil:
			return fmt.Sprintf("%s liked your comment", actor)
		case verb == models.VerbCommented && target.Post != nil:
			return fmt.Sprintf("%s commented on your post '%s...'", actor, truncate(target.Post.Title, titlePreviewLen))
		case verb == models.VerbReplied && target.Comment != nil:
			return fmt.Sprintf("%s replied to your comment", actor)
		}
	}
	return fmt.Sprintf("%s %s", actor, verb)
}

// TimeSince renders how long ago created was, relative to now
func TimeSince(created, now time.Time) string {
	diff := now.Sub(created)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return created.Format("Jan 02")
}

// Summary is the compact payload describing a resolved target, or nil
func Summary(target Target, ok bool) map[string]any {
	if !ok {
		return nil
	}
	switch target.Type {
	case models.TargetPost:
		return map[string]any{
			"id":    target.Post.ID,
			"title": target.Post.Title,
			"type":  string(models.TargetPost),
		}
	case models.TargetComment:
		content := target.Comment.Content
		if len([]rune(content)) > commentPreviewLen {
			content = truncate(content, commentPreviewLen) + "..."
		}
		postTitle := ""
		if target.Comment.Post != nil {
			postTitle = target.Comment.Post.Title
		}
		return map[string]any{
			"id":         target.Comment.ID,
			"content":    content,
			"post_title": postTitle,
			"type":       string(models.TargetComment),
		}
	case models.TargetProfile:
		username := ""
		if target.Profile.User != nil {
			username = target.Profile.User.Username
		}
		return map[string]any{
			"id":       target.Profile.ID,
			"username": username,
			"type":     string(models.TargetProfile),
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Renderer turns stored notifications into client views
type Renderer struct {
	resolver Resolver
	now      func() time.Time
}

// NewRenderer creates a Renderer
func NewRenderer(resolver Resolver) *Renderer {
	return &Renderer{resolver: resolver, now: time.Now}
}

// WithClock replaces the renderer's time source
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// View renders n. The notification's Actor must be loaded.
func (r *Renderer) View(n *models.Notification) models.NotificationView {
	target, ok := r.resolver.Resolve(n.Target())

	var actor models.UserCompact
	if n.Actor != nil {
		actor = n.Actor.ToCompact()
	} else {
		actor = models.UserCompact{ID: n.ActorID}
	}

	return models.NotificationView{
		ID:           n.ID,
		Actor:        actor,
		Verb:         n.Verb,
		TargetType:   n.TargetType,
		TargetID:     n.TargetID,
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt,
		Message:      Message(actor.Username, n.Verb, target, ok),
		TargetObject: Summary(target, ok),
		TimeSince:    TimeSince(n.CreatedAt, r.now()),
	}
}

// Views renders a slice of notifications
func (r *Renderer) Views(ns []models.Notification) []models.NotificationView {
	views := make([]models.NotificationView, 0, len(ns))
	for i := range ns {
		views = append(views, r.View(&ns[i]))
	}
	return views
}
