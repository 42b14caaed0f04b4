package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, email, username string) *models.User {
	t.Helper()
	user, err := f.accounts.Register(context.Background(), &models.RegisterRequest{
		Email:           email,
		Username:        username,
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterVerifyLogin(t *testing.T) {
	f := newFixture(t)

	user := register(t, f, "Dana@Example.com", "dana")
	assert.Equal(t, "dana@example.com", user.Email)
	assert.False(t, user.IsVerified)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "verify", f.mailer.sent[0].kind)

	_, err := f.accounts.Login(&models.LoginRequest{Email: "dana@example.com", Password: "password123"})
	assert.Equal(t, "Please verify your email address first.", apperrors.As(err).Fields["email"])

	require.NoError(t, f.accounts.VerifyEmail(f.mailer.sent[0].token))
	assert.True(t, apperrors.Is(f.accounts.VerifyEmail(f.mailer.sent[0].token), apperrors.CodeBadRequest))

	_, err = f.accounts.Login(&models.LoginRequest{Email: "dana@example.com", Password: "wrong-password"})
	assert.Equal(t, "Incorrect password.", apperrors.As(err).Fields["password"])

	result, err := f.accounts.Login(&models.LoginRequest{Email: "DANA@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Access)
	assert.NotEmpty(t, result.Refresh)

	refreshed, err := f.accounts.Refresh(result.Refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.User.ID)

	_, err = f.accounts.Refresh(result.Access)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))

	require.NoError(t, f.accounts.Logout(user.ID, result.Refresh))
	assert.True(t, apperrors.Is(f.accounts.Logout(user.ID+1, result.Refresh), apperrors.CodeBadRequest))
}

func TestRegisterProvisionsProfileAndSettings(t *testing.T) {
	f := newFixture(t)
	user := register(t, f, "erin@example.com", "erin")

	profile, err := f.profiles.GetOwn(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin", profile.User.Username)

	var count int64
	require.NoError(t, f.db.Model(&models.NotificationSettings{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterRejectsDuplicatesAndMismatch(t *testing.T) {
	f := newFixture(t)
	register(t, f, "erin@example.com", "erin")

	_, err := f.accounts.Register(context.Background(), &models.RegisterRequest{
		Email:           "ERIN@example.com",
		Username:        "erin",
		Password:        "password123",
		PasswordConfirm: "password124",
	})
	appErr := apperrors.As(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Equal(t, "A user with this email already exists.", appErr.Fields["email"])
	assert.Equal(t, "A user with this username already exists.", appErr.Fields["username"])
	assert.Equal(t, "Passwords do not match.", appErr.Fields["password_confirm"])
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	f.user(t, "frank")

	require.NoError(t, f.accounts.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.mailer.sent)

	require.NoError(t, f.accounts.RequestPasswordReset(context.Background(), "frank@example.com"))
	require.Len(t, f.mailer.sent, 1)
	token := f.mailer.sent[0].token

	err := f.accounts.ConfirmPasswordReset(&models.PasswordResetConfirmRequest{Token: token, Password: "new-password", PasswordConfirm: "new-password"})
	require.NoError(t, err)

	_, err = f.accounts.Login(&models.LoginRequest{Email: "frank@example.com", Password: "new-password"})
	require.NoError(t, err)

	err = f.accounts.ConfirmPasswordReset(&models.PasswordResetConfirmRequest{Token: token, Password: "again-pass", PasswordConfirm: "again-pass"})
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
}

func TestFirebaseLoginUnavailableWithoutVerifier(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.FirebaseLogin(context.Background(), "token")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnavailable))
}

type stubVerifier map[string]*firebase.Identity

func (v stubVerifier) Verify(_ context.Context, idToken string) (*firebase.Identity, error) {
	if id, ok := v[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("token rejected")
}

func TestFirebaseLoginLinksAndCreatesAccounts(t *testing.T) {
	f := newFixture(t)
	existing := f.user(t, "nina")
	f.accounts.firebase = stubVerifier{
		"nina-token": {UID: "uid-nina", Email: "nina@example.com", Name: "Nina"},
		"new-token":  {UID: "uid-nina2", Email: "other@example.com", Name: "Nina"},
	}
	ctx := context.Background()

	linked, err := f.accounts.FirebaseLogin(ctx, "nina-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.User.ID)
	require.NotNil(t, linked.User.FirebaseUID)
	assert.Equal(t, "uid-nina", *linked.User.FirebaseUID)

	again, err := f.accounts.FirebaseLogin(ctx, "nina-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, again.User.ID)

	created, err := f.accounts.FirebaseLogin(ctx, "new-token")
	require.NoError(t, err)
	assert.Equal(t, "nina1", created.User.Username)
	assert.True(t, created.User.IsVerified)

	_, err = f.accounts.FirebaseLogin(ctx, "forged")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}
