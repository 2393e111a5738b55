package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"linkdir/internal/auth"
	"linkdir/internal/models"
	"linkdir/internal/slug"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingsInvalidator is notified after a successful approval so cached
// public listings pick up the new resource.
type ListingsInvalidator interface {
	InvalidateListings(ctx context.Context)
}

// ApprovalResult reports the outcome of a successful approval.
type ApprovalResult struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Slug       string    `json:"slug"`
}

// ModerationService owns the pending -> approved/rejected state machine.
type ModerationService struct {
	db         *gorm.DB
	authorizer auth.Authorizer
	listings   ListingsInvalidator
}

// NewModerationService creates a new moderation service. listings may be nil
// when no cache is configured.
func NewModerationService(db *gorm.DB, authorizer auth.Authorizer, listings ListingsInvalidator) *ModerationService {
	return &ModerationService{db: db, authorizer: authorizer, listings: listings}
}

// assertAdmin runs the moderation gate. Nothing below it may have side
// effects when it fails.
func (s *ModerationService) assertAdmin(ctx context.Context, actor auth.ActorContext) error {
	ok, err := s.authorizer.IsAdmin(ctx, actor)
	if err != nil {
		return fmt.Errorf("authorization check failed: %w", err)
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// Approve promotes a pending submission into the public catalog: resolves the
// category, assigns a unique slug, creates the resource, materializes tags,
// and flips the submission status. The status flip is a conditional update on
// status still being pending, so two racing approvals of the same submission
// produce exactly one resource and one ErrAlreadyProcessed.
func (s *ModerationService) Approve(ctx context.Context, submissionID uuid.UUID, actor auth.ActorContext) (*ApprovalResult, error) {
	if err := s.assertAdmin(ctx, actor); err != nil {
		return nil, err
	}

	var submission models.Submission
	err := s.db.WithContext(ctx).First(&submission, "id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission.Status != models.SubmissionPending {
		return nil, ErrAlreadyProcessed
	}

	categoryID, err := s.resolveCategory(ctx, &submission)
	if err != nil {
		return nil, err
	}

	resource, created, err := s.createResource(ctx, &submission, categoryID)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, resource.ID, submission.TagSlugs); err != nil {
		return nil, err
	}

	// The conditional update is the concurrency guard: zero rows affected
	// means another reviewer won the race after our pending check, and this
	// call must undo its own resource before reporting the no-op.
	now := time.Now()
	reviewer := actor.UserID
	flip := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", submission.ID, models.SubmissionPending).
		Updates(map[string]interface{}{
			"status":      models.SubmissionApproved,
			"reviewed_by": reviewer,
			"reviewed_at": now,
		})
	if flip.Error != nil {
		return nil, fmt.Errorf("failed to update submission status: %w", flip.Error)
	}
	if flip.RowsAffected == 0 {
		// Undo only a row this call inserted. An adopted row belongs to the
		// approval that won the race and must stay published.
		if created {
			if derr := s.db.WithContext(ctx).Delete(&models.Resource{}, "id = ?", resource.ID).Error; derr != nil {
				log.Printf("Failed to remove resource %s after losing approval race: %v", resource.ID, derr)
			}
		}
		return nil, ErrAlreadyProcessed
	}

	if s.listings != nil {
		s.listings.InvalidateListings(ctx)
	}

	log.Printf("Approved submission %s as resource %s (%s)", submission.ID, resource.ID, resource.Slug)
	return &ApprovalResult{ResourceID: resource.ID, Slug: resource.Slug}, nil
}

// Reject moves a pending submission to the rejected terminal state, recording
// the reviewer and optional notes. No resource is created. Idempotent against
// double clicks: the second call fails with ErrAlreadyProcessed.
func (s *ModerationService) Reject(ctx context.Context, submissionID uuid.UUID, actor auth.ActorContext, notes string) error {
	if err := s.assertAdmin(ctx, actor); err != nil {
		return err
	}

	var submission models.Submission
	err := s.db.WithContext(ctx).First(&submission, "id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load submission: %w", err)
	}
	if submission.Status != models.SubmissionPending {
		return ErrAlreadyProcessed
	}

	now := time.Now()
	reviewer := actor.UserID
	flip := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", submission.ID, models.SubmissionPending).
		Updates(map[string]interface{}{
			"status":      models.SubmissionRejected,
			"notes":       strings.TrimSpace(notes),
			"reviewed_by": reviewer,
			"reviewed_at": now,
		})
	if flip.Error != nil {
		return fmt.Errorf("failed to update submission status: %w", flip.Error)
	}
	if flip.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}

	log.Printf("Rejected submission %s", submission.ID)
	return nil
}

// resolveCategory returns the category id for a submission, upserting a new
// vocabulary entry when the submission references a free-text slug. The
// insert is conflict-on-slug, not read-then-insert, so concurrent approvals
// naming the same new category converge on one row.
func (s *ModerationService) resolveCategory(ctx context.Context, submission *models.Submission) (*uuid.UUID, error) {
	if submission.CategoryID != nil {
		return submission.CategoryID, nil
	}
	if submission.CategorySlug == "" {
		return nil, nil
	}

	category := models.Category{
		Slug: submission.CategorySlug,
		Name: displayName(submission.CategorySlug),
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).
		Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}

	// On conflict the insert returns no id; read the winner back.
	var existing models.Category
	if err := s.db.WithContext(ctx).
		Where("slug = ?", submission.CategorySlug).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &existing.ID, nil
}

// createResource returns the published row for a submission, inserting it with
// a freshly probed slug if no earlier attempt already did. created reports
// whether this call inserted the row, as opposed to adopting one left by an
// earlier attempt; only an inserted row may be undone by the caller. The slug
// probe is advisory; the unique index is authoritative, and one collision
// triggers a single retry with a new probe before giving up.
func (s *ModerationService) createResource(ctx context.Context, submission *models.Submission, categoryID *uuid.UUID) (resource *models.Resource, created bool, err error) {
	// A caller retrying after a failure between the resource insert and the
	// status flip must adopt the row the earlier attempt left behind, not
	// publish a second one. The provenance column makes that row findable.
	var existing models.Resource
	err = s.db.WithContext(ctx).First(&existing, "submission_id = ?", submission.ID).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check for an existing resource: %w", err)
	}

	base := submission.Title
	if slug.Make(base) == slug.Fallback {
		if parsed, err := NormalizeURL(submission.URL); err == nil {
			base = HostKey(parsed)
		}
	}

	exists := func(candidate string) (bool, error) {
		var count int64
		err := s.db.WithContext(ctx).
			Model(&models.Resource{}).
			Where("slug = ?", candidate).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("slug existence check failed: %w", err)
		}
		return count > 0, nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		assigned, err := slug.EnsureUnique(base, exists)
		if errors.Is(err, slug.ErrExhausted) {
			return nil, false, ErrSlugExhausted
		}
		if err != nil {
			return nil, false, err
		}

		submissionID := submission.ID
		row := models.Resource{
			Slug:         assigned,
			Title:        strings.TrimSpace(submission.Title),
			Description:  submission.Description,
			URL:          submission.URL,
			HostKey:      hostKeyOf(submission.URL),
			LogoURL:      submission.LogoURL,
			Pricing:      submission.Pricing,
			CategoryID:   categoryID,
			IsApproved:   true,
			SubmissionID: &submissionID,
		}
		err = s.db.WithContext(ctx).Create(&row).Error
		if err == nil {
			return &row, true, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Probe-then-insert window raced with another approval; probe
			// again once.
			continue
		}
		return nil, false, fmt.Errorf("failed to create resource: %w", err)
	}

	return nil, false, ErrSlugExhausted
}

// attachTags upserts each tag slug into the vocabulary and links it to the
// resource. Both inserts are conflict-safe so retries and concurrent
// approvals never duplicate rows.
func (s *ModerationService) attachTags(ctx context.Context, resourceID uuid.UUID, tagSlugs []string) error {
	for _, tagSlug := range tagSlugs {
		tag := models.Tag{Slug: tagSlug, Name: displayName(tagSlug)}
		if err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).
			Create(&tag).Error; err != nil {
			return fmt.Errorf("failed to upsert tag %q: %w", tagSlug, err)
		}

		var existing models.Tag
		if err := s.db.WithContext(ctx).
			Where("slug = ?", tagSlug).
			First(&existing).Error; err != nil {
			return fmt.Errorf("failed to load tag %q: %w", tagSlug, err)
		}

		link := models.ResourceTag{ResourceID: resourceID, TagID: existing.ID}
		if err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link tag %q: %w", tagSlug, err)
		}
	}
	return nil
}

// displayName turns a slug into a human-readable vocabulary name.
func displayName(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
