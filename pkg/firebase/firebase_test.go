package firebase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFirebaseDisabledWithoutCredentials(t *testing.T) {
	app, err := InitFirebase(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, app)

	_, err = InitFirebase(context.Background(), "/nonexistent/service-account.json")
	assert.Error(t, err)
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("uid-1", map[string]interface{}{
		"email":          "Mia@Example.com",
		"email_verified": true,
		"name":           "Mia",
	})
	assert.Equal(t, &Identity{UID: "uid-1", Email: "mia@example.com", EmailVerified: true, Name: "Mia"}, id)

	bare := identityFromClaims("uid-2", map[string]interface{}{})
	assert.Equal(t, "uid-2", bare.UID)
	assert.Empty(t, bare.Email)
}
