// Package metadata suggests submit-form values by fetching a candidate URL
// and reading its page metadata.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Suggestion holds the prefill values extracted from a candidate page.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SiteName    string `json:"site_name"`
}

// Extractor fetches candidate pages and extracts prefill metadata
type Extractor struct {
	httpClient *http.Client
}

// NewExtractor creates a new metadata extractor
func NewExtractor() *Extractor {
	return &Extractor{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
	}
}

// maxBodyBytes caps how much of a page is read for prefill.
const maxBodyBytes = 1 << 20

// Extract fetches the URL and pulls title, description, and image
// suggestions from Open Graph tags, falling back to plain HTML tags.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Suggestion, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "linkdir/1.0 (+https://linkdir.example)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return Parse(string(body))
}

// Parse extracts a suggestion from raw HTML. Split out from Extract so tests
// can run without a network.
func Parse(htmlContent string) (*Suggestion, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	suggestion := &Suggestion{}
	extractOGData(doc, suggestion)
	extractTitleTag(doc, suggestion)
	extractMetaDescription(doc, suggestion)

	suggestion.Title = strings.TrimSpace(suggestion.Title)
	suggestion.Description = strings.TrimSpace(suggestion.Description)
	return suggestion, nil
}

func extractOGData(doc *html.Node, suggestion *Suggestion) {
	var findMeta func(*html.Node)
	findMeta = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string
			for _, attr := range n.Attr {
				if attr.Key == "property" && strings.HasPrefix(attr.Val, "og:") {
					property = attr.Val
				} else if attr.Key == "content" {
					content = attr.Val
				}
			}
			if property != "" && content != "" {
				switch property {
				case "og:title":
					if suggestion.Title == "" {
						suggestion.Title = content
					}
				case "og:description":
					if suggestion.Description == "" {
						suggestion.Description = content
					}
				case "og:image":
					if suggestion.ImageURL == "" {
						suggestion.ImageURL = content
					}
				case "og:site_name":
					if suggestion.SiteName == "" {
						suggestion.SiteName = content
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findMeta(c)
		}
	}
	findMeta(doc)
}

func extractTitleTag(doc *html.Node, suggestion *Suggestion) {
	if suggestion.Title != "" {
		return
	}
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if suggestion.Title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			suggestion.Title = n.FirstChild.Data
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
		}
	}
	findTitle(doc)
}

func extractMetaDescription(doc *html.Node, suggestion *Suggestion) {
	if suggestion.Description != "" {
		return
	}
	var findMeta func(*html.Node)
	findMeta = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, attr := range n.Attr {
				if attr.Key == "name" && attr.Val == "description" {
					name = attr.Val
				} else if attr.Key == "content" {
					content = attr.Val
				}
			}
			if name != "" && content != "" && suggestion.Description == "" {
				suggestion.Description = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findMeta(c)
		}
	}
	findMeta(doc)
}
