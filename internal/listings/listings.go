// Package listings serves the public read side of the catalog: filtered,
// paginated resource pages behind a small redis cache.
package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"linkdir/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ResourceEntry is one row of a public listing, with derived counters as read
// projections.
type ResourceEntry struct {
	models.Resource
	VoteCount    int64        `json:"vote_count"`
	CommentCount int64        `json:"comment_count"`
	Tags         []models.Tag `json:"tags"`
}

// Page is a cached listing page.
type Page struct {
	Resources []ResourceEntry `json:"resources"`
	Total     int64           `json:"total"`
	Limit     int             `json:"limit"`
	Offset    int             `json:"offset"`
}

// Service reads the published catalog. When a redis client is configured,
// listing pages are cached under a generation counter; invalidation bumps the
// generation so stale pages simply age out via TTL. Cache failures always
// degrade to direct database reads.
type Service struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewService creates a listings service. cache may be nil to disable caching.
func NewService(db *gorm.DB, cache *redis.Client) *Service {
	return &Service{db: db, cache: cache, ttl: 5 * time.Minute}
}

const generationKey = "listings:gen"

// InvalidateListings bumps the cache generation after an approval so the next
// read rebuilds from the database.
func (s *Service) InvalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, generationKey).Err(); err != nil {
		log.Printf("Failed to invalidate listings cache: %v", err)
	}
}

// Resources returns a page of approved resources, optionally filtered by
// category and tag slugs.
func (s *Service) Resources(ctx context.Context, categorySlug, tagSlug string, limit, offset int) (*Page, error) {
	key, ok := s.pageKey(ctx, categorySlug, tagSlug, limit, offset)
	if ok {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var page Page
			if err := json.Unmarshal(cached, &page); err == nil {
				return &page, nil
			}
		} else if err != redis.Nil {
			log.Printf("Listings cache read failed: %v", err)
		}
	}

	// Collapse concurrent rebuilds of the same page into one query.
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		page, err := s.loadPage(ctx, categorySlug, tagSlug, limit, offset)
		if err != nil {
			return nil, err
		}
		if ok {
			if encoded, err := json.Marshal(page); err == nil {
				if err := s.cache.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
					log.Printf("Listings cache write failed: %v", err)
				}
			}
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Page), nil
}

// pageKey builds the generation-scoped cache key. ok is false when caching is
// disabled or redis is unreachable.
func (s *Service) pageKey(ctx context.Context, categorySlug, tagSlug string, limit, offset int) (string, bool) {
	key := fmt.Sprintf("listings:0:%s:%s:%d:%d", categorySlug, tagSlug, limit, offset)
	if s.cache == nil {
		return key, false
	}
	gen, err := s.cache.Get(ctx, generationKey).Int64()
	if err != nil && err != redis.Nil {
		log.Printf("Listings cache unavailable: %v", err)
		return key, false
	}
	return fmt.Sprintf("listings:%d:%s:%s:%d:%d", gen, categorySlug, tagSlug, limit, offset), true
}

func (s *Service) loadPage(ctx context.Context, categorySlug, tagSlug string, limit, offset int) (*Page, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Resource{}).
		Where("resources.is_approved = ?", true)

	if categorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = resources.category_id").
			Where("categories.slug = ?", categorySlug)
	}
	if tagSlug != "" {
		query = query.
			Joins("JOIN resource_tags ON resource_tags.resource_id = resources.id").
			Joins("JOIN tags ON tags.id = resource_tags.tag_id").
			Where("tags.slug = ?", tagSlug)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count resources: %w", err)
	}

	var resources []models.Resource
	if err := query.
		Order("resources.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}

	page := &Page{Total: total, Limit: limit, Offset: offset}
	for _, resource := range resources {
		entry, err := s.decorate(ctx, resource)
		if err != nil {
			return nil, err
		}
		page.Resources = append(page.Resources, entry)
	}
	return page, nil
}

// ResourceBySlug loads one published resource with its read projections.
func (s *Service) ResourceBySlug(ctx context.Context, resourceSlug string) (*ResourceEntry, error) {
	var resource models.Resource
	err := s.db.WithContext(ctx).
		Where("slug = ? AND is_approved = ?", resourceSlug, true).
		First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load resource: %w", err)
	}

	entry, err := s.decorate(ctx, resource)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecordClick resolves an outbound redirect target and appends to the click
// log. The log write is best-effort; a failed append never blocks the
// redirect.
func (s *Service) RecordClick(ctx context.Context, resourceSlug, clientIPHash string) (string, error) {
	var resource models.Resource
	err := s.db.WithContext(ctx).
		Where("slug = ? AND is_approved = ?", resourceSlug, true).
		First(&resource).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load resource: %w", err)
	}

	click := models.Click{ResourceID: resource.ID, IPHash: clientIPHash}
	if err := s.db.WithContext(ctx).Create(&click).Error; err != nil {
		log.Printf("Failed to log click for %s: %v", resourceSlug, err)
	}

	return resource.URL, nil
}

func (s *Service) decorate(ctx context.Context, resource models.Resource) (ResourceEntry, error) {
	entry := ResourceEntry{Resource: resource}

	if err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("resource_id = ?", resource.ID).
		Count(&entry.VoteCount).Error; err != nil {
		return entry, fmt.Errorf("failed to count votes: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("resource_id = ? AND is_deleted = ?", resource.ID, false).
		Count(&entry.CommentCount).Error; err != nil {
		return entry, fmt.Errorf("failed to count comments: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Joins("JOIN resource_tags ON resource_tags.tag_id = tags.id").
		Where("resource_tags.resource_id = ?", resource.ID).
		Order("tags.slug ASC").
		Find(&entry.Tags).Error; err != nil {
		return entry, fmt.Errorf("failed to load tags: %w", err)
	}

	return entry, nil
}
