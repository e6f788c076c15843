package services

import (
	"fmt"
	"strings"

	"blog-enhancer/internal/models"
)

// MaxReferenceExcerpt bounds how much of each reference page reaches the model
const MaxReferenceExcerpt = 2000

const systemPrompt = `You are an expert content editor. Your task is to enhance and improve the given article by:
1. Improving clarity and readability
2. Adding depth and insights from the reference articles provided
3. Maintaining the original tone and style
4. Adding proper citations at the bottom of the article

IMPORTANT: At the end of the enhanced article, add a "References" section with properly formatted citations for each reference article used.`

// Reference is one piece of outside material handed to the rewrite step
type Reference struct {
	URL     string
	Title   string
	Content string
}

// BuildPrompts returns the system and user messages for rewriting article
func BuildPrompts(article *models.Article, refs []Reference) (string, string) {
	var b strings.Builder

	b.WriteString("Please enhance the following article:\n\n")
	b.WriteString("ORIGINAL ARTICLE:\n")
	fmt.Fprintf(&b, "Title: %s\n", article.Title)
	b.WriteString("Content:\n")
	b.WriteString(article.OriginalContent)
	b.WriteString("\n\n")

	if len(refs) == 0 {
		b.WriteString("No reference articles available.")
	} else {
		b.WriteString("\nREFERENCE ARTICLES FOR CONTEXT:\n")
		for i, ref := range refs {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "\n--- Reference %d ---\n", i+1)
			fmt.Fprintf(&b, "URL: %s\n", ref.URL)
			fmt.Fprintf(&b, "Title: %s\n", ref.Title)
			fmt.Fprintf(&b, "Content: %s\n", truncateRunes(ref.Content, MaxReferenceExcerpt))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n\nPlease provide the enhanced version of the article with a References section at the bottom.")
	return systemPrompt, b.String()
}

// truncateRunes cuts s to at most n characters without splitting a rune
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
