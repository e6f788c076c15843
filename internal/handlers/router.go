package handlers

import (
	"net/http"

	"blog-enhancer/internal/changefeed"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps bundles what the HTTP API is built from
type RouterDeps struct {
	Articles ArticleRepository
	Scraper  Scraper
	Enhancer Enhancer
	Hub      *changefeed.Hub
	Workers  StatusReporter
	Auth     gin.HandlerFunc // optional, applied to /api
	Logger   *zap.Logger
}

// CORS allows browser clients from any origin
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// NewRouter wires every route onto engine
func NewRouter(engine *gin.Engine, deps RouterDeps) *gin.Engine {
	engine.Use(CORS())

	articleHandler := NewArticleHandler(deps.Articles, deps.Logger)
	pageHandler := NewArticlePageHandler(deps.Articles, deps.Logger)
	pipelineHandler := NewPipelineHandler(deps.Scraper, deps.Enhancer, deps.Logger)
	streamHandler := NewStreamHandler(deps.Hub, deps.Logger)
	healthHandler := NewHealthHandler(deps.Workers)

	engine.GET("/health", healthHandler.HealthCheck)

	api := engine.Group("/api")
	if deps.Auth != nil {
		api.Use(deps.Auth)
	}
	{
		articles := api.Group("/articles")
		{
			articles.GET("", articleHandler.ListArticles)
			articles.POST("", articleHandler.CreateArticle)
			articles.PUT("", articleHandler.UpdateArticle)
			articles.DELETE("", articleHandler.DeleteArticle)

			articles.GET("/stream", streamHandler.StreamArticles)

			articles.GET("/:id", articleHandler.GetArticle)
			articles.PUT("/:id", articleHandler.UpdateArticle)
			articles.DELETE("/:id", articleHandler.DeleteArticle)
			articles.GET("/:id/html", pageHandler.ServeArticleHTML)
		}

		api.POST("/scrape", pipelineHandler.Scrape)
		api.POST("/enhance", pipelineHandler.Enhance)

		workers := api.Group("/worker")
		{
			workers.GET("/status", healthHandler.WorkerStatus)
		}
	}

	return engine
}
