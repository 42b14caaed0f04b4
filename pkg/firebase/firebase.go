package firebase

import (
	"context"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-blog/backend/internal/logger"
	"google.golang.org/api/option"
)

// Identity is the subset of a verified ID token the accounts layer needs
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

// App verifies Firebase ID tokens
type App struct {
	auth *auth.Client
}

// InitFirebase loads the service account and creates the auth client.
// An empty credentialsPath disables Firebase and returns a nil App.
func InitFirebase(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		logger.Log.Info("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled")
		return nil, nil
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	logger.Log.Info("Firebase auth client ready")
	return &App{auth: client}, nil
}

// Verify checks idToken's signature and expiry and extracts the identity
func (a *App) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := a.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(token.UID, token.Claims), nil
}

func identityFromClaims(uid string, claims map[string]interface{}) *Identity {
	id := &Identity{UID: uid}
	if email, ok := claims["email"].(string); ok {
		id.Email = strings.ToLower(email)
	}
	id.EmailVerified, _ = claims["email_verified"].(bool)
	id.Name, _ = claims["name"].(string)
	return id
}
