package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"linkdir/internal/auth"
	"linkdir/internal/models"
	"linkdir/internal/ratelimit"
	"linkdir/internal/slug"

	"gorm.io/gorm"
)

// Validation bounds for submitted candidates.
const (
	titleMinLen       = 3
	titleMaxLen       = 200
	descriptionMaxLen = 2000
	maxTagCount       = 10
)

// SubmissionCandidate is the typed form payload, validated once at the intake
// boundary and never re-validated piecemeal downstream.
type SubmissionCandidate struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Description  string   `json:"description"`
	LogoURL      string   `json:"logo_url"`
	Pricing      string   `json:"pricing"`
	CategorySlug string   `json:"category"`
	TagSlugs     []string `json:"tags"`
	Email        string   `json:"email"`

	// Website is the honeypot field: humans never see it, bots fill it in.
	Website string `json:"website"`
}

// SubmissionsService handles intake of new candidates into the review queue.
type SubmissionsService struct {
	db      *gorm.DB
	limiter *ratelimit.Limiter
}

// NewSubmissionsService creates a new submissions service
func NewSubmissionsService(db *gorm.DB, limiter *ratelimit.Limiter) *SubmissionsService {
	return &SubmissionsService{db: db, limiter: limiter}
}

// Fingerprint hashes a rate-limiting signal (IP, user agent) one-way. It is
// never used as identity and cannot be reversed.
func Fingerprint(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// Submit validates a candidate and inserts exactly one pending submission.
// Duplicate detection is advisory and happens elsewhere; intake never blocks
// on it because near-duplicates are legitimate and admins make the final
// call. A tripped honeypot reports success without persisting anything.
func (s *SubmissionsService) Submit(ctx context.Context, candidate SubmissionCandidate, actor auth.ActorContext, clientIP, userAgent string) (*models.Submission, error) {
	if candidate.Website != "" {
		// Bot bait: pretend everything worked.
		log.Printf("Honeypot tripped for %q, dropping submission", candidate.Title)
		return &models.Submission{Status: models.SubmissionPending}, nil
	}

	if err := validateCandidate(candidate, actor); err != nil {
		return nil, err
	}

	ipHash := Fingerprint(clientIP)
	allowed, err := s.limiter.Allow(ctx, "submit:"+ipHash)
	if err != nil {
		return nil, fmt.Errorf("submit rate check failed: %w", err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	normalized, err := NormalizeURL(candidate.URL)
	if err != nil {
		// Unreachable after validation, kept as a guard.
		return nil, &ValidationError{Fields: map[string]string{"url": "must be a valid URL"}}
	}

	submission := models.Submission{
		Title:        strings.TrimSpace(candidate.Title),
		URL:          normalized.String(),
		HostKey:      HostKey(normalized),
		Description:  strings.TrimSpace(candidate.Description),
		LogoURL:      strings.TrimSpace(candidate.LogoURL),
		Pricing:      pricingOrUnknown(candidate.Pricing),
		CategorySlug: slugOrEmpty(candidate.CategorySlug),
		TagSlugs:     normalizeTagSlugs(candidate.TagSlugs),
		Status:       models.SubmissionPending,
		IPHash:       ipHash,
		UAHash:       Fingerprint(userAgent),
	}
	if !actor.Anonymous() {
		id := actor.UserID
		submission.SubmitterID = &id
		submission.Email = actor.Email
	} else {
		submission.Email = strings.TrimSpace(candidate.Email)
	}

	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	return &submission, nil
}

// PendingQueue returns pending submissions for the moderation dashboard,
// oldest first.
func (s *SubmissionsService) PendingQueue(ctx context.Context, limit, offset int) ([]models.Submission, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("status = ?", models.SubmissionPending).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count queue: %w", err)
	}

	var queue []models.Submission
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.SubmissionPending).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&queue).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load queue: %w", err)
	}

	return queue, total, nil
}

func validateCandidate(candidate SubmissionCandidate, actor auth.ActorContext) error {
	verr := newValidationError()

	// Bounds count characters, not bytes, so multibyte titles near the
	// limits are judged the way the submitter sees them.
	title := strings.TrimSpace(candidate.Title)
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		verr.Fields["title"] = fmt.Sprintf("must be between %d and %d characters", titleMinLen, titleMaxLen)
	}

	if _, err := NormalizeURL(candidate.URL); err != nil {
		verr.Fields["url"] = "must be a valid URL"
	}

	if utf8.RuneCountInString(candidate.Description) > descriptionMaxLen {
		verr.Fields["description"] = fmt.Sprintf("must be at most %d characters", descriptionMaxLen)
	}

	if candidate.LogoURL != "" {
		if _, err := NormalizeURL(candidate.LogoURL); err != nil {
			verr.Fields["logo_url"] = "must be a valid URL"
		}
	}

	if candidate.Pricing != "" && !validPricing(candidate.Pricing) {
		verr.Fields["pricing"] = "must be one of unknown, free, freemium, trial, paid"
	}

	if len(candidate.TagSlugs) > maxTagCount {
		verr.Fields["tags"] = fmt.Sprintf("at most %d tags", maxTagCount)
	}

	if actor.Anonymous() && !strings.Contains(candidate.Email, "@") {
		verr.Fields["email"] = "guest submissions need a contact email"
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func validPricing(pricing string) bool {
	switch pricing {
	case models.PricingUnknown, models.PricingFree, models.PricingFreemium,
		models.PricingTrial, models.PricingPaid:
		return true
	}
	return false
}

func pricingOrUnknown(pricing string) string {
	if pricing == "" {
		return models.PricingUnknown
	}
	return pricing
}

func slugOrEmpty(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return slug.Make(raw)
}

func normalizeTagSlugs(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range raw {
		if strings.TrimSpace(t) == "" {
			continue
		}
		normalized := slug.Make(t)
		if !seen[normalized] {
			seen[normalized] = true
			out = append(out, normalized)
		}
	}
	return out
}
