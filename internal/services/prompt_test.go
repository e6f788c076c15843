package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"blog-enhancer/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptsWithoutReferences(t *testing.T) {
	article := &models.Article{Title: "Chatbots 101", OriginalContent: "Bots answer questions."}

	system, user := BuildPrompts(article, nil)

	assert.Contains(t, system, "expert content editor")
	assert.Contains(t, system, `"References" section`)
	assert.Contains(t, user, "ORIGINAL ARTICLE:\nTitle: Chatbots 101\nContent:\nBots answer questions.")
	assert.Contains(t, user, "No reference articles available.")
	assert.NotContains(t, user, "REFERENCE ARTICLES FOR CONTEXT")
	assert.True(t, strings.HasSuffix(user, "with a References section at the bottom."))
}

func TestBuildPromptsWithReferences(t *testing.T) {
	article := &models.Article{Title: "Chatbots 101", OriginalContent: "Bots."}
	long := strings.Repeat("x", MaxReferenceExcerpt+500)

	_, user := BuildPrompts(article, []Reference{
		{URL: "https://a.example/1", Title: "First", Content: "alpha"},
		{URL: "https://b.example/2", Title: "Second", Content: long},
	})

	assert.Contains(t, user, "REFERENCE ARTICLES FOR CONTEXT:")
	assert.Contains(t, user, "--- Reference 1 ---\nURL: https://a.example/1\nTitle: First\nContent: alpha\n")
	assert.Contains(t, user, "--- Reference 2 ---\nURL: https://b.example/2\nTitle: Second\n")
	assert.Contains(t, user, strings.Repeat("x", MaxReferenceExcerpt)+"\n")
	assert.NotContains(t, user, strings.Repeat("x", MaxReferenceExcerpt+1))
	assert.NotContains(t, user, "No reference articles available.")
}

func TestBuildPromptsLayout(t *testing.T) {
	article := &models.Article{Title: "T", OriginalContent: "Body."}

	_, user := BuildPrompts(article, []Reference{
		{URL: "https://a.example/1", Title: "A", Content: "one"},
		{URL: "https://b.example/2", Title: "B", Content: "two"},
	})

	expected := "Please enhance the following article:\n\n" +
		"ORIGINAL ARTICLE:\nTitle: T\nContent:\nBody.\n\n" +
		"\nREFERENCE ARTICLES FOR CONTEXT:\n" +
		"\n--- Reference 1 ---\nURL: https://a.example/1\nTitle: A\nContent: one\n" +
		"\n" +
		"\n--- Reference 2 ---\nURL: https://b.example/2\nTitle: B\nContent: two\n" +
		"\n" +
		"\n\nPlease provide the enhanced version of the article with a References section at the bottom."
	assert.Equal(t, expected, user)

	_, bare := BuildPrompts(article, nil)
	assert.Equal(t, "Please enhance the following article:\n\n"+
		"ORIGINAL ARTICLE:\nTitle: T\nContent:\nBody.\n\n"+
		"No reference articles available."+
		"\n\nPlease provide the enhanced version of the article with a References section at the bottom.", bare)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", truncateRunes("hello", 10))
	assert.Equal(t, "hel", truncateRunes("hello", 3))
	assert.Equal(t, "", truncateRunes("hello", 0))

	multi := strings.Repeat("é", 10)
	cut := truncateRunes(multi, 4)
	assert.Equal(t, 4, utf8.RuneCountInString(cut))
	assert.True(t, utf8.ValidString(cut))
}
