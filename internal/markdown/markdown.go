// Package markdown renders article markdown to HTML and derives plain-text
// statistics from it.
package markdown

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"
)

var whitespace = regexp.MustCompile(`\s+`)

// Render converts markdown to an HTML fragment
func Render(source string) string {
	extensions := blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	out := blackfriday.Run([]byte(source), blackfriday.WithRenderer(renderer), blackfriday.WithExtensions(extensions))
	return string(out)
}

// PlainText returns the visible text of rendered markdown with whitespace
// collapsed to single spaces
func PlainText(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(Render(source)))
	if err != nil {
		// Parse only fails on reader errors; fall back to the raw source
		return whitespace.ReplaceAllString(strings.TrimSpace(source), " ")
	}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return whitespace.ReplaceAllString(strings.TrimSpace(text.String()), " ")
}

// WordCount counts the words of the visible text
func WordCount(source string) int {
	return len(strings.Fields(PlainText(source)))
}
