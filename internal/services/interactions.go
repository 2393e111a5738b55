package services

import (
	"context"
	"errors"
	"fmt"

	"linkdir/internal/auth"
	"linkdir/internal/models"
	"linkdir/internal/ratelimit"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Toggle kinds.
const (
	ToggleVote     = "vote"
	ToggleFavorite = "favorite"
	ToggleFlag     = "flag"
)

// ToggleResult reports the relation state after a toggle.
type ToggleResult struct {
	Active bool `json:"active"`
}

// InteractionsService owns the vote/save/flag toggle relations. A relation is
// a presence set keyed by (user, target): toggling inserts or deletes the
// row, never both.
type InteractionsService struct {
	db      *gorm.DB
	limiter *ratelimit.Limiter
}

// NewInteractionsService creates a new interactions service
func NewInteractionsService(db *gorm.DB, limiter *ratelimit.Limiter) *InteractionsService {
	return &InteractionsService{db: db, limiter: limiter}
}

// Toggle flips the relation of the given kind between the actor and target.
// Requires a verified-email session; unverified sessions get a distinct error
// so the UI can prompt for verification. Exceeding the rolling window fails
// with ErrRateLimited and performs no toggle.
func (s *InteractionsService) Toggle(ctx context.Context, actor auth.ActorContext, targetID uuid.UUID, kind string) (*ToggleResult, error) {
	if actor.Anonymous() {
		return nil, ErrNotAuthorized
	}
	if !actor.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	allowed, err := s.limiter.Allow(ctx, "toggle:"+actor.UserID.String())
	if err != nil {
		return nil, fmt.Errorf("toggle rate check failed: %w", err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	switch kind {
	case ToggleVote:
		if err := s.requireApprovedResource(ctx, targetID); err != nil {
			return nil, err
		}
		return s.toggleRow(ctx,
			&models.Vote{UserID: actor.UserID, ResourceID: targetID},
			"user_id = ? AND resource_id = ?", actor.UserID, targetID)
	case ToggleFavorite:
		if err := s.requireApprovedResource(ctx, targetID); err != nil {
			return nil, err
		}
		return s.toggleRow(ctx,
			&models.Favorite{UserID: actor.UserID, ResourceID: targetID},
			"user_id = ? AND resource_id = ?", actor.UserID, targetID)
	case ToggleFlag:
		if err := s.requireComment(ctx, targetID); err != nil {
			return nil, err
		}
		return s.toggleRow(ctx,
			&models.CommentFlag{UserID: actor.UserID, CommentID: targetID},
			"user_id = ? AND comment_id = ?", actor.UserID, targetID)
	default:
		return nil, fmt.Errorf("unknown toggle kind %q", kind)
	}
}

// toggleRow deletes the relation if present, otherwise inserts it. A
// duplicate-key failure on insert means a racing toggle already activated the
// relation; that is reported as active, not as an error.
func (s *InteractionsService) toggleRow(ctx context.Context, row interface{}, query string, args ...interface{}) (*ToggleResult, error) {
	res := s.db.WithContext(ctx).Where(query, args...).Delete(row)
	if res.Error != nil {
		return nil, fmt.Errorf("toggle delete failed: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return &ToggleResult{Active: false}, nil
	}

	err := s.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ToggleResult{Active: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("toggle insert failed: %w", err)
	}
	return &ToggleResult{Active: true}, nil
}

func (s *InteractionsService) requireApprovedResource(ctx context.Context, resourceID uuid.UUID) error {
	var resource models.Resource
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_approved = ?", resourceID, true).
		First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load resource: %w", err)
	}
	return nil
}

func (s *InteractionsService) requireComment(ctx context.Context, commentID uuid.UUID) error {
	var comment models.Comment
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", commentID, false).
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load comment: %w", err)
	}
	return nil
}
