package service_test

import (
	"testing"

	"github.com/accounts-service/internal/config"
	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/internal/service"
	"github.com/accounts-service/internal/validation"
	"github.com/accounts-service/pkg/crypto"
	"github.com/accounts-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(store *fakeUserStore, secret string) *service.AuthService {
	resolver := service.NewIdentityResolver(store, logger.NewNop())
	return service.NewAuthService(resolver, config.JWTConfig{Secret: secret, ExpireHours: 1}, logger.NewNop())
}

func seedCredentials(t *testing.T, store *fakeUserStore, username, email, password string) *models.User {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	require.NoError(t, store.Create(user))
	store.calls = nil
	return user
}

func loginInput(identifier, password string) map[string]interface{} {
	return map[string]interface{}{
		"username_or_email": identifier,
		"password":          password,
	}
}

// TestAuthenticate tests successful logins through both identifier forms
func TestAuthenticate(t *testing.T) {
	store := newFakeStore()
	seedCredentials(t, store, "alice", "alice@example.com", "correct-horse")
	svc := newAuthService(store, "test-secret")

	user, err := svc.Authenticate(loginInput("alice", "correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	user, err = svc.Authenticate(loginInput("alice@example.com", "correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

// TestAuthenticateGenericRejection tests that an unknown account and a wrong
// password are indistinguishable to the caller
func TestAuthenticateGenericRejection(t *testing.T) {
	store := newFakeStore()
	seedCredentials(t, store, "alice", "alice@example.com", "correct-horse")
	svc := newAuthService(store, "test-secret")

	_, unknownErr := svc.Authenticate(loginInput("nobody", "whatever"))
	_, badPassErr := svc.Authenticate(loginInput("alice", "wrong-password"))

	assert.ErrorIs(t, unknownErr, service.ErrInvalidCredentials)
	assert.ErrorIs(t, badPassErr, service.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), badPassErr.Error(), "Both failure modes must carry the same message")
}

// TestAuthenticateShapeErrors tests that a malformed submission fails the
// login schema before any lookup
func TestAuthenticateShapeErrors(t *testing.T) {
	store := newFakeStore()
	svc := newAuthService(store, "test-secret")

	_, err := svc.Authenticate(map[string]interface{}{})
	require.Error(t, err)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs["username_or_email"], "this field is required")
	assert.Contains(t, verrs["password"], "this field is required")
	assert.Empty(t, store.calls, "Shape errors must not hit the store")
}

// TestLoginTokenRoundTrip tests that a login token carries the user identity
// and validates with the issuing service
func TestLoginTokenRoundTrip(t *testing.T) {
	store := newFakeStore()
	seeded := seedCredentials(t, store, "alice", "alice@example.com", "correct-horse")
	svc := newAuthService(store, "test-secret")

	token, err := svc.Login(loginInput("alice", "correct-horse"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, 3600, token.ExpiresIn)
	assert.NotEmpty(t, token.AccessToken)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

// TestValidateTokenRejectsForged tests signature and format checks
func TestValidateTokenRejectsForged(t *testing.T) {
	store := newFakeStore()
	seedCredentials(t, store, "alice", "alice@example.com", "correct-horse")

	issuer := newAuthService(store, "test-secret")
	verifier := newAuthService(store, "other-secret")

	token, err := issuer.Login(loginInput("alice", "correct-horse"))
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token.AccessToken)
	assert.Error(t, err, "A token signed with another secret must not validate")

	_, err = issuer.ValidateToken("not-a-token")
	assert.Error(t, err)
}
