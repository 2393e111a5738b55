// Package auth turns session tokens from the external auth provider into an
// explicit ActorContext and decides who may moderate.
package auth

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ActorContext is the identity attached to a request. It is passed explicitly
// into every operation instead of being read from ambient request state, so
// services stay testable without a request fixture.
type ActorContext struct {
	UserID        uuid.UUID
	Email         string
	EmailVerified bool
}

// Anonymous reports whether no session is present.
func (a ActorContext) Anonymous() bool {
	return a.UserID == uuid.Nil
}

// SessionVerifier validates session JWTs minted by the auth provider. Tokens
// are HS256-signed with a shared secret and carry the user id, email, and
// email-verification status as claims.
type SessionVerifier struct {
	secret []byte
}

// NewSessionVerifier creates a verifier using the given shared secret.
func NewSessionVerifier(secret string) *SessionVerifier {
	return &SessionVerifier{secret: []byte(secret)}
}

// NewSessionVerifierFromEnv reads the shared secret from SESSION_SECRET.
// A missing secret is fatal: an empty HMAC key would verify anyone's tokens.
func NewSessionVerifierFromEnv() *SessionVerifier {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET must be set")
	}
	return NewSessionVerifier(secret)
}

// ParseToken verifies a session token and extracts the actor it identifies.
func (v *SessionVerifier) ParseToken(tokenString string) (ActorContext, error) {
	if len(v.secret) == 0 {
		return ActorContext{}, fmt.Errorf("session secret is not configured")
	}

	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return ActorContext{}, fmt.Errorf("failed to verify token: %w", err)
	}
	if !token.Valid {
		return ActorContext{}, fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ActorContext{}, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return ActorContext{}, fmt.Errorf("no sub claim in token")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ActorContext{}, fmt.Errorf("sub is not a valid user id: %w", err)
	}

	actor := ActorContext{UserID: userID}
	if email, ok := claims["email"].(string); ok {
		actor.Email = email
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		actor.EmailVerified = verified
	}

	return actor, nil
}

// Actor is a middleware-friendly helper: it returns the actor for an
// Authorization header, or an anonymous actor when the header is missing or
// the token does not verify.
func (v *SessionVerifier) Actor(authHeader string) ActorContext {
	if authHeader == "" {
		return ActorContext{}
	}
	actor, err := v.ParseToken(authHeader)
	if err != nil {
		return ActorContext{}
	}
	return actor
}

// MintToken signs a session token for the given actor. Used by tests; in
// production tokens come from the auth provider.
func (v *SessionVerifier) MintToken(actor ActorContext) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            actor.UserID.String(),
		"email":          actor.Email,
		"email_verified": actor.EmailVerified,
	})
	return token.SignedString(v.secret)
}
