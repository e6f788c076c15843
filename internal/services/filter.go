package services

import (
	"strings"

	"blog-enhancer/internal/config"
)

// URLFilter decides which discovered links are article pages
type URLFilter struct {
	Root            string
	RequireSegments []string // a link must contain at least one of these
	ExcludeSegments []string // a link must contain none of these
}

// NewURLFilter builds the filter for a source site
func NewURLFilter(site config.SourceSite) URLFilter {
	return URLFilter{
		Root:            site.ListingURL,
		RequireSegments: site.RequireSegments,
		ExcludeSegments: site.ExcludeSegments,
	}
}

// Allow reports whether link names an article page. A fragment is ignored,
// so a fragment-only link is rejected.
func (f URLFilter) Allow(link string) bool {
	link = pageURL(link)
	if link == "" {
		return false
	}

	root := strings.TrimRight(f.Root, "/")
	if root != "" && strings.TrimRight(link, "/") == root {
		return false
	}

	if len(f.RequireSegments) > 0 {
		matched := false
		for _, seg := range f.RequireSegments {
			if strings.Contains(link, seg) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, seg := range f.ExcludeSegments {
		if strings.Contains(link, seg) {
			return false
		}
	}
	return true
}

// Apply returns the allowed links without fragments, in their original
// order. Links that name the same page are kept once.
func (f URLFilter) Apply(links []string) []string {
	kept := make([]string, 0, len(links))
	seen := make(map[string]bool, len(links))
	for _, link := range links {
		if !f.Allow(link) {
			continue
		}
		page := pageURL(link)
		if seen[page] {
			continue
		}
		seen[page] = true
		kept = append(kept, page)
	}
	return kept
}

// pageURL trims link and drops its fragment
func pageURL(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.IndexByte(link, '#'); i >= 0 {
		link = link[:i]
	}
	return link
}

// lastN returns the trailing n entries of links, or all of them when fewer
func lastN(links []string, n int) []string {
	if n <= 0 || len(links) <= n {
		return links
	}
	return links[len(links)-n:]
}
