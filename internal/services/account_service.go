package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/auth"
	"github.com/anonto42/nano-blog/backend/internal/email"
	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/notifications"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// IDTokenVerifier verifies federated ID tokens. *firebase.App satisfies it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*firebase.Identity, error)
}

// LoginResult is returned by every successful login
type LoginResult struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *models.User `json:"user"`
}

// AccountService registers and authenticates users
type AccountService struct {
	users      repositories.UserRepository
	tokens     *auth.Issuer
	mailer     email.Mailer
	dispatcher *notifications.Dispatcher
	firebase   IDTokenVerifier
	bcryptCost int
}

// NewAccountService creates an AccountService. verifier may be nil.
func NewAccountService(users repositories.UserRepository, tokens *auth.Issuer, mailer email.Mailer, dispatcher *notifications.Dispatcher, verifier IDTokenVerifier) *AccountService {
	return &AccountService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		dispatcher: dispatcher,
		firebase:   verifier,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost
func (s *AccountService) WithBcryptCost(cost int) *AccountService {
	s.bcryptCost = cost
	return s
}

const (
	msgEmailTaken    = "A user with this email already exists."
	msgUsernameTaken = "A user with this username already exists."
)

// Register creates an unverified user with its profile and sends the
// verification email
func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	fields := map[string]string{}
	if req.Password != req.PasswordConfirm {
		fields["password_confirm"] = "Passwords do not match."
	}
	if len([]rune(username)) < 3 {
		fields["username"] = "Username must be at least 3 characters."
	}
	if exists, err := s.users.EmailExists(emailAddr); err != nil {
		return nil, apperrors.Internal(err)
	} else if exists {
		fields["email"] = msgEmailTaken
	}
	if _, taken := fields["username"]; !taken {
		if exists, err := s.users.UsernameExists(username); err != nil {
			return nil, apperrors.Internal(err)
		} else if exists {
			fields["username"] = msgUsernameTaken
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	token := uuid.NewString()
	user := &models.User{
		Email:             emailAddr,
		Username:          username,
		Password:          string(hash),
		IsActive:          true,
		Role:              models.RoleUser,
		VerificationToken: &token,
	}
	if err := s.users.CreateWithProfile(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, s.duplicateUserErr(emailAddr)
		}
		return nil, apperrors.Internal(err)
	}

	s.dispatcher.UserCreated(user)

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Username, token); err != nil {
		logger.Warn("Verification email failed", err, zap.Uint("user_id", user.ID))
	}
	return user, nil
}

// duplicateUserErr works out which unique field a racing insert collided on
func (s *AccountService) duplicateUserErr(emailAddr string) error {
	if exists, err := s.users.EmailExists(emailAddr); err == nil && exists {
		return apperrors.FieldError("email", msgEmailTaken)
	}
	return apperrors.FieldError("username", msgUsernameTaken)
}

// VerifyEmail marks the owner of token as verified
func (s *AccountService) VerifyEmail(token string) error {
	user, err := s.users.GetByVerificationToken(token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.BadRequest("Invalid token")
		}
		return apperrors.Internal(err)
	}
	user.IsVerified = true
	user.VerificationToken = nil
	if err := s.users.Update(user); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Login checks credentials and issues tokens. Unverified and inactive
// accounts are refused.
func (s *AccountService) Login(req *models.LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.FieldError("email", "No user found with this email address.")
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsVerified {
		return nil, apperrors.FieldError("email", "Please verify your email address first.")
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, apperrors.FieldError("password", "Incorrect password.")
	}
	if !user.IsActive {
		return nil, apperrors.FieldError("non_field_errors", "User account is disabled.")
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new token pair
func (s *AccountService) Refresh(refresh string) (*LoginResult, error) {
	claims, err := s.tokens.Parse(refresh, auth.TokenRefresh)
	if err != nil {
		return nil, apperrors.Unauthorized("Token is invalid or expired")
	}
	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthorized("User not found")
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("User account is disabled.")
	}
	return s.issue(user)
}

// Logout validates the refresh token. Tokens are stateless, so there is
// nothing to revoke server side.
func (s *AccountService) Logout(userID uint, refresh string) error {
	claims, err := s.tokens.Parse(refresh, auth.TokenRefresh)
	if err != nil || claims.UserID != userID {
		return apperrors.BadRequest("Invalid token")
	}
	return nil
}

// RequestPasswordReset issues a reset token when the email is known. The
// outcome is not revealed to the caller.
func (s *AccountService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return apperrors.Internal(err)
	}

	token := uuid.NewString()
	user.ResetToken = &token
	if err := s.users.Update(user); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Username, token); err != nil {
		logger.Warn("Password reset email failed", err, zap.Uint("user_id", user.ID))
	}
	return nil
}

// ConfirmPasswordReset sets a new password for the owner of the reset token
func (s *AccountService) ConfirmPasswordReset(req *models.PasswordResetConfirmRequest) error {
	if req.Password != req.PasswordConfirm {
		return apperrors.FieldError("password_confirm", "Passwords do not match.")
	}
	user, err := s.users.GetByResetToken(req.Token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.BadRequest("Invalid token")
		}
		return apperrors.Internal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}
	user.Password = string(hash)
	user.ResetToken = nil
	if err := s.users.Update(user); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Me returns the user behind userID
func (s *AccountService) Me(userID uint) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return user, nil
}

// FirebaseLogin verifies a Firebase ID token, links or creates the local
// account, and issues local tokens
func (s *AccountService) FirebaseLogin(ctx context.Context, idToken string) (*LoginResult, error) {
	if s.firebase == nil {
		return nil, apperrors.Unavailable("Firebase login")
	}
	identity, err := s.firebase.Verify(ctx, idToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid Firebase ID token")
	}
	emailAddr := identity.Email

	user, err := s.users.GetByFirebaseUID(identity.UID)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}
	if emailAddr == "" {
		return nil, apperrors.BadRequest("Firebase account has no email address")
	}

	uid := identity.UID
	user, err = s.users.GetByEmail(emailAddr)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		user.IsVerified = true
		if err := s.users.Update(user); err != nil {
			return nil, apperrors.Internal(err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		user, err = s.createFederatedUser(emailAddr, identity.Name, uid)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.Internal(err)
	}
	return s.issue(user)
}

func (s *AccountService) createFederatedUser(emailAddr, displayName, uid string) (*models.User, error) {
	base := usernameBase(displayName, emailAddr)
	username := base
	for i := 1; ; i++ {
		exists, err := s.users.UsernameExists(username)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if !exists {
			break
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	user := &models.User{
		Email:       emailAddr,
		Username:    username,
		IsVerified:  true,
		IsActive:    true,
		Role:        models.RoleUser,
		FirebaseUID: &uid,
	}
	if err := s.users.CreateWithProfile(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("Account is being created by another request")
		}
		return nil, apperrors.Internal(err)
	}
	s.dispatcher.UserCreated(user)
	return user, nil
}

func usernameBase(displayName, emailAddr string) string {
	var b strings.Builder
	source := displayName
	if source == "" {
		source, _, _ = strings.Cut(emailAddr, "@")
	}
	for _, r := range strings.ToLower(source) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	for len(name) < 3 {
		name += "_"
	}
	if len(name) > 140 {
		name = name[:140]
	}
	return name
}

func (s *AccountService) issue(user *models.User) (*LoginResult, error) {
	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &LoginResult{Access: tokens.Access, Refresh: tokens.Refresh, User: user}, nil
}
