package services

import (
	"context"
	"testing"

	"linkdir/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Run("adds https scheme when missing", func(t *testing.T) {
		u, err := NormalizeURL("coolTool.io")
		assert.NoError(t, err)
		assert.Equal(t, "https://coolTool.io", u.String())
	})

	t.Run("keeps an existing scheme", func(t *testing.T) {
		u, err := NormalizeURL("http://example.com/path")
		assert.NoError(t, err)
		assert.Equal(t, "http", u.Scheme)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "ht!tp://%%%", "ftp://example.com"} {
			_, err := NormalizeURL(raw)
			assert.Error(t, err, "input %q", raw)
		}
	})
}

func TestHostKey(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"http://www.Example.com", "example.com"},
		{"https://example.com", "example.com"},
		{"https://EXAMPLE.COM/tool?x=1", "example.com"},
		{"https://www.sub.example.com", "sub.example.com"},
		{"example.com:8080", "example.com"},
	}

	for _, tc := range cases {
		u, err := NormalizeURL(tc.raw)
		assert.NoError(t, err, "input %q", tc.raw)
		assert.Equal(t, tc.expected, HostKey(u), "input %q", tc.raw)
	}
}

func TestFindDuplicate(t *testing.T) {
	db := setupTestDB(t)
	service := NewDedupeService(db)
	ctx := context.Background()

	// Published resource and a pending submission on different hosts, with
	// host keys written the way approval and intake write them.
	resource := models.Resource{
		Slug:       "cool-tool",
		Title:      "Cool Tool",
		URL:        "https://example.com/tool",
		HostKey:    "example.com",
		IsApproved: true,
	}
	assert.NoError(t, db.Create(&resource).Error)

	pending := models.Submission{
		Title:   "Queued Tool",
		URL:     "https://queued.dev",
		HostKey: "queued.dev",
		Status:  models.SubmissionPending,
	}
	assert.NoError(t, db.Create(&pending).Error)

	t.Run("approved resource matches across scheme and www", func(t *testing.T) {
		match, err := service.FindDuplicate(ctx, "http://www.example.com/tool")
		assert.NoError(t, err)
		assert.NotNil(t, match)
		assert.Equal(t, "resource", match.Kind)
		assert.Equal(t, "cool-tool", match.Slug)
	})

	t.Run("pending submission matches as submission", func(t *testing.T) {
		match, err := service.FindDuplicate(ctx, "www.queued.dev")
		assert.NoError(t, err)
		assert.NotNil(t, match)
		assert.Equal(t, "submission", match.Kind)
		assert.Equal(t, "Queued Tool", match.Title)
	})

	t.Run("resource wins over pending submission", func(t *testing.T) {
		both := models.Submission{
			Title:   "Also Cool Tool",
			URL:     "https://example.com/other-page",
			HostKey: "example.com",
			Status:  models.SubmissionPending,
		}
		assert.NoError(t, db.Create(&both).Error)

		match, err := service.FindDuplicate(ctx, "example.com")
		assert.NoError(t, err)
		assert.NotNil(t, match)
		assert.Equal(t, "resource", match.Kind)
	})

	t.Run("substring lookalike hosts do not match", func(t *testing.T) {
		lookalike := models.Resource{
			Slug:       "not-that-tool",
			Title:      "Not That Tool",
			URL:        "https://notexample.com",
			HostKey:    "notexample.com",
			IsApproved: true,
		}
		assert.NoError(t, db.Create(&lookalike).Error)

		// Exact host-key matching: a host containing the queried one, or
		// contained in it, is a different site.
		match, err := service.FindDuplicate(ctx, "https://example.com")
		assert.NoError(t, err)
		assert.NotNil(t, match)
		assert.Equal(t, "cool-tool", match.Slug)

		match, err = service.FindDuplicate(ctx, "https://ample.com")
		assert.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("unknown host matches nothing", func(t *testing.T) {
		match, err := service.FindDuplicate(ctx, "https://unrelated.org")
		assert.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("unparseable input is advisory none", func(t *testing.T) {
		match, err := service.FindDuplicate(ctx, "")
		assert.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("rejected submissions do not match", func(t *testing.T) {
		rejected := models.Submission{
			Title:   "Old Tool",
			URL:     "https://rejected.io",
			HostKey: "rejected.io",
			Status:  models.SubmissionRejected,
		}
		assert.NoError(t, db.Create(&rejected).Error)

		match, err := service.FindDuplicate(ctx, "rejected.io")
		assert.NoError(t, err)
		assert.Nil(t, match)
	})
}
