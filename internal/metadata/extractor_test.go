package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("prefers open graph tags", func(t *testing.T) {
		page := `<!DOCTYPE html>
<html>
<head>
	<title>Fallback Title</title>
	<meta name="description" content="Fallback description">
	<meta property="og:title" content="CoolTool — ship faster">
	<meta property="og:description" content="A tool for shipping faster.">
	<meta property="og:image" content="https://cooltool.io/og.png">
	<meta property="og:site_name" content="CoolTool">
</head>
<body></body>
</html>`

		suggestion, err := Parse(page)
		assert.NoError(t, err)
		assert.Equal(t, "CoolTool — ship faster", suggestion.Title)
		assert.Equal(t, "A tool for shipping faster.", suggestion.Description)
		assert.Equal(t, "https://cooltool.io/og.png", suggestion.ImageURL)
		assert.Equal(t, "CoolTool", suggestion.SiteName)
	})

	t.Run("falls back to title tag and meta description", func(t *testing.T) {
		page := `<html><head>
	<title>  Plain Page  </title>
	<meta name="description" content="Just a plain page.">
</head><body></body></html>`

		suggestion, err := Parse(page)
		assert.NoError(t, err)
		assert.Equal(t, "Plain Page", suggestion.Title)
		assert.Equal(t, "Just a plain page.", suggestion.Description)
		assert.Empty(t, suggestion.ImageURL)
	})

	t.Run("empty page yields empty suggestion", func(t *testing.T) {
		suggestion, err := Parse("<html><body>no metadata here</body></html>")
		assert.NoError(t, err)
		assert.Empty(t, suggestion.Title)
		assert.Empty(t, suggestion.Description)
	})
}
