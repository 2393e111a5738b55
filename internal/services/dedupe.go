package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"linkdir/internal/models"

	"gorm.io/gorm"
)

// DuplicateMatch describes an existing entry that covers the same site as a
// candidate URL. Kind is "resource" for an already-published match and
// "submission" for one still in the review queue; the submitter's next step
// differs between the two.
type DuplicateMatch struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
	URL   string `json:"url"`
}

// DedupeService checks candidate URLs against the published catalog and the
// pending queue.
type DedupeService struct {
	db *gorm.DB
}

// NewDedupeService creates a new dedupe service
func NewDedupeService(db *gorm.DB) *DedupeService {
	return &DedupeService{db: db}
}

// NormalizeURL fills in a missing https:// scheme and validates the result.
// Input that still fails to parse, or parses without a host, is reported as
// invalid rather than coerced further.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid URL: %q", raw)
	}
	return parsed, nil
}

// HostKey reduces a URL to its comparison key: the lowercased host with a
// leading "www." stripped, so http://www.Example.com and https://example.com
// compare equal.
func HostKey(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// hostKeyOf parses a stored URL and returns its host key, or "" when the
// stored value does not parse (it then never matches anything).
func hostKeyOf(raw string) string {
	parsed, err := NormalizeURL(raw)
	if err != nil {
		return ""
	}
	return HostKey(parsed)
}

// FindDuplicate looks for an existing entry on the same host as raw, matching
// the indexed host_key column exactly. Approved resources are checked before
// pending submissions, so an already-published duplicate wins. The check is
// advisory: unparseable input yields no match and no error.
func (s *DedupeService) FindDuplicate(ctx context.Context, raw string) (*DuplicateMatch, error) {
	parsed, err := NormalizeURL(raw)
	if err != nil {
		return nil, nil
	}
	key := HostKey(parsed)

	var resource models.Resource
	err = s.db.WithContext(ctx).
		Where("is_approved = ? AND host_key = ?", true, key).
		Order("created_at ASC").
		First(&resource).Error
	if err == nil {
		return &DuplicateMatch{
			Kind:  "resource",
			ID:    resource.ID.String(),
			Title: resource.Title,
			Slug:  resource.Slug,
			URL:   resource.URL,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("duplicate lookup failed: %w", err)
	}

	var submission models.Submission
	err = s.db.WithContext(ctx).
		Where("status = ? AND host_key = ?", models.SubmissionPending, key).
		Order("created_at ASC").
		First(&submission).Error
	if err == nil {
		return &DuplicateMatch{
			Kind:  "submission",
			ID:    submission.ID.String(),
			Title: submission.Title,
			URL:   submission.URL,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("duplicate lookup failed: %w", err)
	}

	return nil, nil
}
