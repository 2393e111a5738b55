package services

import (
	"context"
	"sync"
	"testing"

	"linkdir/internal/auth"
	"linkdir/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func adminActor(t *testing.T, db *gorm.DB) auth.ActorContext {
	t.Helper()
	actor := auth.ActorContext{
		UserID:        uuid.New(),
		Email:         "reviewer@linkdir.test",
		EmailVerified: true,
	}
	db.Exec("INSERT INTO admin_emails (email) VALUES (?) ON CONFLICT DO NOTHING", actor.Email)
	return actor
}

func pendingSubmission(t *testing.T, db *gorm.DB, title, url string) models.Submission {
	t.Helper()
	submission := models.Submission{
		Title:    title,
		URL:      url,
		Status:   models.SubmissionPending,
		TagSlugs: []string{"developer-tools", "testing"},
	}
	assert.NoError(t, db.Create(&submission).Error)
	return submission
}

func newModerationService(db *gorm.DB) *ModerationService {
	return NewModerationService(db, auth.NewAllowListAuthorizer(db), nil)
}

func TestApprove(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	submission := pendingSubmission(t, db, "CoolTool", "https://cooltool.io")

	result, err := service.Approve(ctx, submission.ID, admin)
	assert.NoError(t, err)
	assert.Equal(t, "cooltool", result.Slug)

	// Resource exists, is approved, and points back at the submission.
	var resource models.Resource
	assert.NoError(t, db.First(&resource, "id = ?", result.ResourceID).Error)
	assert.True(t, resource.IsApproved)
	assert.Equal(t, "CoolTool", resource.Title)
	assert.Equal(t, "cooltool.io", resource.HostKey)
	assert.Equal(t, submission.ID, *resource.SubmissionID)

	// Submission flipped to approved with reviewer audit fields.
	var updated models.Submission
	assert.NoError(t, db.First(&updated, "id = ?", submission.ID).Error)
	assert.Equal(t, models.SubmissionApproved, updated.Status)
	assert.Equal(t, admin.UserID, *updated.ReviewedBy)
	assert.NotNil(t, updated.ReviewedAt)

	// Tags were materialized and linked.
	var links int64
	db.Model(&models.ResourceTag{}).Where("resource_id = ?", resource.ID).Count(&links)
	assert.EqualValues(t, 2, links)
}

func TestApproveIdempotence(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	submission := pendingSubmission(t, db, "CoolTool", "https://cooltool.io")

	_, err := service.Approve(ctx, submission.ID, admin)
	assert.NoError(t, err)

	_, err = service.Approve(ctx, submission.ID, admin)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	var count int64
	db.Model(&models.Resource{}).Where("submission_id = ?", submission.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestApproveSameSubmissionRace(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	submission := pendingSubmission(t, db, "CoolTool", "https://cooltool.io")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Approve(ctx, submission.ID, admin)
		}(i)
	}
	wg.Wait()

	// Exactly one winner, exactly one AlreadyProcessed, exactly one resource.
	var successes, noops int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrAlreadyProcessed):
			noops++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, noops)

	var count int64
	db.Model(&models.Resource{}).Where("submission_id = ?", submission.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestApproveRetryAdoptsStrandedResource(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	submission := pendingSubmission(t, db, "CoolTool", "https://cooltool.io")

	// A previous approval inserted the resource and then died before the
	// status flip, leaving the submission pending.
	submissionID := submission.ID
	stranded := models.Resource{
		Slug:         "cooltool",
		Title:        "CoolTool",
		URL:          "https://cooltool.io",
		HostKey:      "cooltool.io",
		IsApproved:   true,
		SubmissionID: &submissionID,
	}
	assert.NoError(t, db.Create(&stranded).Error)

	// The retry adopts the existing row instead of publishing a second one
	// under a suffixed slug.
	result, err := service.Approve(ctx, submission.ID, admin)
	assert.NoError(t, err)
	assert.Equal(t, stranded.ID, result.ResourceID)
	assert.Equal(t, "cooltool", result.Slug)

	var count int64
	db.Model(&models.Resource{}).Where("submission_id = ?", submission.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	var updated models.Submission
	assert.NoError(t, db.First(&updated, "id = ?", submission.ID).Error)
	assert.Equal(t, models.SubmissionApproved, updated.Status)
}

func TestApproveSlugCollision(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	first := pendingSubmission(t, db, "CoolTool", "https://cooltool.io")
	second := pendingSubmission(t, db, "CoolTool", "https://cooltool.dev")

	r1, err := service.Approve(ctx, first.ID, admin)
	assert.NoError(t, err)
	r2, err := service.Approve(ctx, second.ID, admin)
	assert.NoError(t, err)

	assert.Equal(t, "cooltool", r1.Slug)
	assert.Equal(t, "cooltool-2", r2.Slug)
}

func TestApproveSlugCollisionRace(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	// Two distinct submissions sharing a slug base, approved simultaneously.
	// Whichever interleaving happens, the unique index plus the bounded
	// insert retry must hand each one its own slug.
	first := pendingSubmission(t, db, "CoolTool", "https://cooltool.io")
	second := pendingSubmission(t, db, "CoolTool", "https://cooltool.dev")

	var wg sync.WaitGroup
	results := make([]*ApprovalResult, 2)
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			results[i], errs[i] = service.Approve(ctx, id, admin)
		}(i, id)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.NotEqual(t, results[0].Slug, results[1].Slug)
	assert.ElementsMatch(t,
		[]string{"cooltool", "cooltool-2"},
		[]string{results[0].Slug, results[1].Slug})

	var count int64
	db.Model(&models.Resource{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestApproveUpsertsCategory(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	submission := models.Submission{
		Title:        "CoolTool",
		URL:          "https://cooltool.io",
		Status:       models.SubmissionPending,
		CategorySlug: "developer-tools",
	}
	assert.NoError(t, db.Create(&submission).Error)

	result, err := service.Approve(ctx, submission.ID, admin)
	assert.NoError(t, err)

	var category models.Category
	assert.NoError(t, db.First(&category, "slug = ?", "developer-tools").Error)
	assert.Equal(t, "Developer Tools", category.Name)

	var resource models.Resource
	assert.NoError(t, db.First(&resource, "id = ?", result.ResourceID).Error)
	assert.Equal(t, category.ID, *resource.CategoryID)

	// A second submission naming the same category reuses the row.
	another := models.Submission{
		Title:        "Other Tool",
		URL:          "https://other.io",
		Status:       models.SubmissionPending,
		CategorySlug: "developer-tools",
	}
	assert.NoError(t, db.Create(&another).Error)
	_, err = service.Approve(ctx, another.ID, admin)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Category{}).Where("slug = ?", "developer-tools").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestApproveNotAdmin(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()

	submission := pendingSubmission(t, db, "CoolTool", "https://cooltool.io")

	visitor := auth.ActorContext{
		UserID:        uuid.New(),
		Email:         "visitor@linkdir.test",
		EmailVerified: true,
	}
	_, err := service.Approve(ctx, submission.ID, visitor)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// No side effects: still pending, no resource.
	var unchanged models.Submission
	assert.NoError(t, db.First(&unchanged, "id = ?", submission.ID).Error)
	assert.Equal(t, models.SubmissionPending, unchanged.Status)

	var count int64
	db.Model(&models.Resource{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestApproveNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	admin := adminActor(t, db)

	_, err := service.Approve(context.Background(), uuid.New(), admin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReject(t *testing.T) {
	db := setupTestDB(t)
	service := newModerationService(db)
	ctx := context.Background()
	admin := adminActor(t, db)

	submission := pendingSubmission(t, db, "Spammy Tool", "https://spam.example")

	err := service.Reject(ctx, submission.ID, admin, "spam")
	assert.NoError(t, err)

	var updated models.Submission
	assert.NoError(t, db.First(&updated, "id = ?", submission.ID).Error)
	assert.Equal(t, models.SubmissionRejected, updated.Status)
	assert.Equal(t, "spam", updated.Notes)
	assert.Equal(t, admin.UserID, *updated.ReviewedBy)

	// No resource was created and approval now fails.
	var count int64
	db.Model(&models.Resource{}).Count(&count)
	assert.EqualValues(t, 0, count)

	_, err = service.Approve(ctx, submission.ID, admin)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// Rejecting twice is a clean no-op failure.
	err = service.Reject(ctx, submission.ID, admin, "again")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}
