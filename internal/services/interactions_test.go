package services

import (
	"context"
	"testing"
	"time"

	"linkdir/internal/auth"
	"linkdir/internal/models"
	"linkdir/internal/ratelimit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func verifiedActor() auth.ActorContext {
	return auth.ActorContext{
		UserID:        uuid.New(),
		Email:         "voter@linkdir.test",
		EmailVerified: true,
	}
}

func approvedResource(t *testing.T, db *gorm.DB) models.Resource {
	t.Helper()
	resource := models.Resource{
		Slug:       "tool-" + uuid.NewString()[:8],
		Title:      "Tool",
		URL:        "https://tool.example",
		IsApproved: true,
	}
	assert.NoError(t, db.Create(&resource).Error)
	return resource
}

func TestToggleRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	service := NewInteractionsService(db, ratelimit.NewToggleLimiter())
	ctx := context.Background()

	actor := verifiedActor()
	resource := approvedResource(t, db)

	first, err := service.Toggle(ctx, actor, resource.ID, ToggleVote)
	assert.NoError(t, err)
	assert.True(t, first.Active)

	second, err := service.Toggle(ctx, actor, resource.ID, ToggleVote)
	assert.NoError(t, err)
	assert.False(t, second.Active)

	// The relation set is empty again after the round trip.
	var count int64
	db.Model(&models.Vote{}).
		Where("user_id = ? AND resource_id = ?", actor.UserID, resource.ID).
		Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestToggleFavoriteIndependentOfVote(t *testing.T) {
	db := setupTestDB(t)
	service := NewInteractionsService(db, ratelimit.NewToggleLimiter())
	ctx := context.Background()

	actor := verifiedActor()
	resource := approvedResource(t, db)

	_, err := service.Toggle(ctx, actor, resource.ID, ToggleVote)
	assert.NoError(t, err)
	result, err := service.Toggle(ctx, actor, resource.ID, ToggleFavorite)
	assert.NoError(t, err)
	assert.True(t, result.Active)

	var votes, favorites int64
	db.Model(&models.Vote{}).Where("user_id = ?", actor.UserID).Count(&votes)
	db.Model(&models.Favorite{}).Where("user_id = ?", actor.UserID).Count(&favorites)
	assert.EqualValues(t, 1, votes)
	assert.EqualValues(t, 1, favorites)
}

func TestToggleCommentFlag(t *testing.T) {
	db := setupTestDB(t)
	service := NewInteractionsService(db, ratelimit.NewToggleLimiter())
	ctx := context.Background()

	actor := verifiedActor()
	resource := approvedResource(t, db)
	comment := models.Comment{
		UserID:     uuid.New(),
		ResourceID: resource.ID,
		Body:       "questionable take",
	}
	assert.NoError(t, db.Create(&comment).Error)

	result, err := service.Toggle(ctx, actor, comment.ID, ToggleFlag)
	assert.NoError(t, err)
	assert.True(t, result.Active)

	result, err = service.Toggle(ctx, actor, comment.ID, ToggleFlag)
	assert.NoError(t, err)
	assert.False(t, result.Active)
}

func TestToggleGuards(t *testing.T) {
	db := setupTestDB(t)
	service := NewInteractionsService(db, ratelimit.NewToggleLimiter())
	ctx := context.Background()
	resource := approvedResource(t, db)

	t.Run("anonymous actor", func(t *testing.T) {
		_, err := service.Toggle(ctx, auth.ActorContext{}, resource.ID, ToggleVote)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("unverified email is its own error", func(t *testing.T) {
		unverified := auth.ActorContext{UserID: uuid.New(), Email: "new@linkdir.test"}
		_, err := service.Toggle(ctx, unverified, resource.ID, ToggleVote)
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := service.Toggle(ctx, verifiedActor(), uuid.New(), ToggleVote)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unapproved resource cannot be voted on", func(t *testing.T) {
		draft := models.Resource{
			Slug:       "draft-" + uuid.NewString()[:8],
			Title:      "Draft",
			URL:        "https://draft.example",
			IsApproved: false,
		}
		assert.NoError(t, db.Create(&draft).Error)

		_, err := service.Toggle(ctx, verifiedActor(), draft.ID, ToggleVote)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestToggleRateLimited(t *testing.T) {
	db := setupTestDB(t)
	service := NewInteractionsService(db, ratelimit.New(3, 10*time.Second))
	ctx := context.Background()

	actor := verifiedActor()
	resource := approvedResource(t, db)

	for i := 0; i < 3; i++ {
		_, err := service.Toggle(ctx, actor, resource.ID, ToggleVote)
		assert.NoError(t, err)
	}

	_, err := service.Toggle(ctx, actor, resource.ID, ToggleVote)
	assert.ErrorIs(t, err, ErrRateLimited)

	// The refused toggle performed no mutation: three toggles left the vote
	// active.
	var count int64
	db.Model(&models.Vote{}).
		Where("user_id = ? AND resource_id = ?", actor.UserID, resource.ID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}
