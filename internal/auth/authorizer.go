package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"linkdir/internal/models"

	"gorm.io/gorm"
)

// Authorizer decides whether an actor may perform moderation actions. Every
// moderation mutation goes through this single capability; there is no
// per-call choice of mechanism.
type Authorizer interface {
	IsAdmin(ctx context.Context, actor ActorContext) (bool, error)
}

// AllowListAuthorizer is the canonical Authorizer: an actor is an admin iff
// their email appears in the admin_emails table. Profiles carry no role flag.
type AllowListAuthorizer struct {
	db *gorm.DB
}

// NewAllowListAuthorizer creates an authorizer backed by the admin_emails
// allow-list.
func NewAllowListAuthorizer(db *gorm.DB) *AllowListAuthorizer {
	return &AllowListAuthorizer{db: db}
}

// IsAdmin reports whether the actor's email is on the allow-list. Anonymous
// and unverified sessions are never admins, regardless of the list.
func (a *AllowListAuthorizer) IsAdmin(ctx context.Context, actor ActorContext) (bool, error) {
	if actor.Anonymous() || !actor.EmailVerified || actor.Email == "" {
		return false, nil
	}

	var entry models.AdminEmail
	err := a.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(actor.Email)).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("admin lookup failed: %w", err)
	}
	return true, nil
}
