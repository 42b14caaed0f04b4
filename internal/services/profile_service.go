package services

import (
	"errors"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/metrics"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/notifications"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
)

// ProfileService serves profiles and the follow graph
type ProfileService struct {
	users      repositories.UserRepository
	profiles   repositories.ProfileRepository
	follows    repositories.FollowRepository
	dispatcher *notifications.Dispatcher
}

// NewProfileService creates a ProfileService
func NewProfileService(users repositories.UserRepository, profiles repositories.ProfileRepository, follows repositories.FollowRepository, dispatcher *notifications.Dispatcher) *ProfileService {
	return &ProfileService{users: users, profiles: profiles, follows: follows, dispatcher: dispatcher}
}

func (s *ProfileService) withCounts(p *models.Profile) (*models.Profile, error) {
	var err error
	if p.FollowersCount, err = s.follows.GetFollowersCount(p.ID); err != nil {
		return nil, apperrors.Internal(err)
	}
	if p.FollowingCount, err = s.follows.GetFollowingCount(p.UserID); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// GetByUsername returns a public profile with follow counts
func (s *ProfileService) GetByUsername(username string) (*models.Profile, error) {
	p, err := s.profiles.GetByUsername(username)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}
	return s.withCounts(p)
}

// GetOwn returns the caller's profile
func (s *ProfileService) GetOwn(userID uint) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(userID)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}
	return s.withCounts(p)
}

// UpdateOwn updates the caller's bio and image
func (s *ProfileService) UpdateOwn(userID uint, req *models.UpdateProfileRequest) (*models.Profile, error) {
	p, err := s.profiles.GetByUserID(userID)
	if err != nil {
		return nil, lookupErr(err, "profile")
	}
	if req.Bio != nil {
		if len([]rune(*req.Bio)) > 500 {
			return nil, apperrors.FieldError("bio", "Bio cannot exceed 500 characters.")
		}
		p.Bio = *req.Bio
	}
	if req.Image != nil {
		p.Image = strings.TrimSpace(*req.Image)
	}
	if err := s.profiles.Update(p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.withCounts(p)
}

// Follow makes followerID follow username's profile and notifies its owner
func (s *ProfileService) Follow(followerID uint, username string) (*models.Profile, error) {
	target, err := s.profiles.GetByUsername(username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if target.UserID == followerID {
		return nil, apperrors.FieldError("username", "Cannot follow yourself")
	}

	following, err := s.follows.IsFollowing(followerID, target.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if following {
		return nil, apperrors.Conflict("Already following")
	}
	if err := s.follows.CreateFollow(&models.Follow{FollowerID: followerID, FollowingID: target.ID}); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("Already following")
		}
		return nil, apperrors.Internal(err)
	}
	metrics.Follow("create")

	s.dispatcher.FollowCreated(followerID, target)

	return s.withCounts(target)
}

// Unfollow removes the follow edge and its notification
func (s *ProfileService) Unfollow(followerID uint, username string) (*models.Profile, error) {
	target, err := s.profiles.GetByUsername(username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	if target.UserID == followerID {
		return nil, apperrors.FieldError("username", "Cannot unfollow yourself")
	}

	if err := s.follows.DeleteFollow(followerID, target.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("follow")
		}
		return nil, apperrors.Internal(err)
	}
	metrics.Follow("delete")

	s.dispatcher.FollowDeleted(followerID, target)

	return s.withCounts(target)
}

// Followers lists the profiles of the users following username
func (s *ProfileService) Followers(username string) ([]models.Profile, error) {
	target, err := s.profiles.GetByUsername(username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	users, err := s.follows.GetFollowers(target.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	out := make([]models.Profile, 0, len(users))
	for i := range users {
		if users[i].Profile == nil {
			continue
		}
		p := *users[i].Profile
		p.User = &users[i]
		p.User.Profile = nil
		if _, err := s.withCounts(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Following lists the profiles username follows
func (s *ProfileService) Following(username string) ([]models.Profile, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	profiles, err := s.follows.GetFollowing(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	for i := range profiles {
		if _, err := s.withCounts(&profiles[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}
