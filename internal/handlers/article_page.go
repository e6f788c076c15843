package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"blog-enhancer/internal/markdown"
	"blog-enhancer/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ArticlePageHandler renders a stored article as a standalone HTML page
type ArticlePageHandler struct {
	articles ArticleRepository
	logger   *zap.Logger
}

// NewArticlePageHandler creates a new article page handler
func NewArticlePageHandler(articles ArticleRepository, logger *zap.Logger) *ArticlePageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArticlePageHandler{articles: articles, logger: logger}
}

type articlePage struct {
	Title      string
	Status     models.Status
	SourceURL  string
	Author     string
	Published  string
	Version    string
	ReadingMin int
	Body       template.HTML
	References []string
	Error      string
}

// ServeArticleHTML handles GET /api/articles/:id/html. The enhanced version is
// shown when one exists; ?version=original forces the scraped text.
func (h *ArticlePageHandler) ServeArticleHTML(c *gin.Context) {
	id, err := parseArticleID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page := buildArticlePage(article, c.Query("version") == "original")

	var buf bytes.Buffer
	if err := articlePageTemplate.Execute(&buf, page); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func buildArticlePage(article *models.Article, forceOriginal bool) articlePage {
	page := articlePage{
		Title:      article.Title,
		Status:     article.Status,
		SourceURL:  article.SourceURL,
		ReadingMin: article.ReadingTime,
		Version:    "original",
	}

	source := article.OriginalContent
	if article.EnhancedContent != nil && !forceOriginal {
		source = *article.EnhancedContent
		page.Version = "enhanced"
		page.References = article.ReferenceURLs
	}
	// blackfriday output is trusted the same way the stored markdown is
	page.Body = template.HTML(markdown.Render(source))

	if article.Author != nil {
		page.Author = *article.Author
	}
	if article.PublishedAt != nil {
		page.Published = article.PublishedAt.Format("January 2, 2006")
	}
	if article.ErrorMessage != nil {
		page.Error = *article.ErrorMessage
	}
	return page
}

var articlePageTemplate = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f8f9fa;
            padding: 20px;
        }
        .container { max-width: 1000px; margin: 0 auto; }
        .header {
            background: linear-gradient(135deg, #2563eb 0%, #3b82f6 100%);
            color: white;
            padding: 2rem;
            margin-bottom: 2rem;
            border-radius: 12px;
            text-align: center;
            box-shadow: 0 4px 20px rgba(37, 99, 235, 0.3);
        }
        .header h1 { font-size: 2.2rem; margin-bottom: 0.5rem; font-weight: 700; }
        .header .meta { font-size: 1rem; opacity: 0.9; }
        .header .meta a { color: white; opacity: 0.8; }
        .badge {
            display: inline-block;
            padding: 0.1rem 0.6rem;
            border-radius: 999px;
            background: rgba(255, 255, 255, 0.2);
            font-size: 0.85rem;
        }
        .error {
            background: #fef2f2;
            border: 1px solid #fecaca;
            color: #b91c1c;
            padding: 1rem;
            border-radius: 8px;
            margin-bottom: 1.5rem;
        }
        .content {
            background: white;
            padding: 3rem;
            border-radius: 12px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            border: 1px solid #e5e7eb;
        }
        .content h1, .content h2, .content h3 { color: #1f2937; margin-top: 2rem; margin-bottom: 1rem; font-weight: 600; }
        .content h2 { font-size: 1.5rem; color: #2563eb; }
        .content p, .content li { margin-bottom: 1rem; color: #374151; }
        .content ul, .content ol { padding-left: 2rem; margin-bottom: 1rem; }
        .content pre { background: #f3f4f6; border: 1px solid #d1d5db; border-radius: 8px; padding: 1.5rem; overflow-x: auto; }
        .content blockquote { border-left: 4px solid #2563eb; padding-left: 1rem; margin: 1.5rem 0; color: #6b7280; font-style: italic; }
        .content a { color: #2563eb; text-decoration: none; }
        .content a:hover { text-decoration: underline; }
        .content img { max-width: 100%; height: auto; border-radius: 8px; margin: 1rem 0; }
        .references { margin-top: 2rem; padding-top: 1rem; border-top: 2px solid #e5e7eb; }
        @media (max-width: 768px) {
            body { padding: 10px; }
            .header { padding: 1.5rem 1rem; }
            .content { padding: 2rem 1.5rem; }
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <div class="meta">
                <span class="badge">{{.Status}}</span>
                <span class="badge">{{.Version}}</span>
                {{if .Author}} &middot; {{.Author}}{{end}}
                {{if .Published}} &middot; {{.Published}}{{end}}
                {{if .ReadingMin}} &middot; {{.ReadingMin}} min read{{end}}
                {{if .SourceURL}}<br><a href="{{.SourceURL}}">{{.SourceURL}}</a>{{end}}
            </div>
        </div>
        {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
        <div class="content">
            {{.Body}}
            {{if .References}}
            <div class="references">
                <h3>Reference URLs</h3>
                <ul>{{range .References}}<li><a href="{{.}}">{{.}}</a></li>{{end}}</ul>
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>`))
