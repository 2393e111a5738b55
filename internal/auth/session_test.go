package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	verifier := NewSessionVerifier("test-secret")

	actor := ActorContext{
		UserID:        uuid.New(),
		Email:         "reviewer@example.com",
		EmailVerified: true,
	}

	token, err := verifier.MintToken(actor)
	require.NoError(t, err)

	parsed, err := verifier.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, parsed.UserID)
	assert.Equal(t, actor.Email, parsed.Email)
	assert.True(t, parsed.EmailVerified)
	assert.False(t, parsed.Anonymous())
}

func TestParseTokenStripsBearerPrefix(t *testing.T) {
	verifier := NewSessionVerifier("test-secret")

	actor := ActorContext{UserID: uuid.New(), Email: "a@example.com"}
	token, err := verifier.MintToken(actor)
	require.NoError(t, err)

	parsed, err := verifier.ParseToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, actor.UserID, parsed.UserID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	minter := NewSessionVerifier("secret-a")
	verifier := NewSessionVerifier("secret-b")

	token, err := minter.MintToken(ActorContext{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestEmptySecretNeverVerifies(t *testing.T) {
	unconfigured := NewSessionVerifier("")

	// An empty HMAC key would let anyone mint a token claiming an
	// allow-listed admin email; verification must refuse outright.
	token, err := unconfigured.MintToken(ActorContext{
		UserID:        uuid.New(),
		Email:         "admin@example.com",
		EmailVerified: true,
	})
	require.NoError(t, err)

	_, err = unconfigured.ParseToken(token)
	assert.Error(t, err)
	assert.True(t, unconfigured.Actor(token).Anonymous())
}

func TestActorFallsBackToAnonymous(t *testing.T) {
	verifier := NewSessionVerifier("test-secret")

	assert.True(t, verifier.Actor("").Anonymous())
	assert.True(t, verifier.Actor("Bearer not-a-token").Anonymous())
}
