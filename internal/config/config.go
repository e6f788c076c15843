// Package config assembles runtime settings from environment variables and
// an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"blog-enhancer/internal/database"
	"blog-enhancer/internal/firecrawl"
	"blog-enhancer/internal/llm"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv               = "CONFIG_FILE"
	defaultListingURL           = "https://beyondchats.com/blog"
	defaultBatchSize            = 5
	defaultMapLimit             = 100
	defaultStaleProcessingAfter = 15 * time.Minute
)

// Config holds every setting the commands need
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	Database  database.Config
	Firecrawl firecrawl.Config
	LLM       llm.Config

	Site      SourceSite
	Scheduler Scheduler
	Enhance   Enhance

	AuthJWTSecret string
}

// SourceSite describes the blog that ingestion reads from and how its
// discovered links are filtered
type SourceSite struct {
	Name            string   `yaml:"name"`
	ListingURL      string   `yaml:"listingUrl"`
	RequireSegments []string `yaml:"requireSegments"`
	ExcludeSegments []string `yaml:"excludeSegments"`
	BatchSize       int      `yaml:"batchSize"`
	MapLimit        int      `yaml:"mapLimit"`
	SkipExisting    bool     `yaml:"skipExisting"`
}

// Scheduler configures the background workers. An empty ScrapeSchedule
// disables scheduled ingestion.
type Scheduler struct {
	ScrapeSchedule       string        `yaml:"scrapeSchedule"`
	StaleProcessingAfter time.Duration `yaml:"staleProcessingAfter"`
}

// Enhance holds enhancement pipeline switches
type Enhance struct {
	GuardConcurrent bool `yaml:"guardConcurrent"`
}

type fileConfig struct {
	Site      SourceSite `yaml:"site"`
	Scheduler Scheduler  `yaml:"scheduler"`
	Enhance   Enhance    `yaml:"enhance"`
}

// DefaultSourceSite returns the built-in ingestion target
func DefaultSourceSite() SourceSite {
	return SourceSite{
		Name:            "BeyondChats",
		ListingURL:      defaultListingURL,
		RequireSegments: []string{"/blog/"},
		ExcludeSegments: []string{"/page/", "/tag/", "/category/"},
		BatchSize:       defaultBatchSize,
		MapLimit:        defaultMapLimit,
	}
}

// Load reads the YAML file named by CONFIG_FILE, if any, and then applies
// environment variables on top
func Load() (Config, error) {
	cfg := Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Database:  database.LoadConfig(),
		Site:      DefaultSourceSite(),
		Scheduler: Scheduler{StaleProcessingAfter: defaultStaleProcessingAfter},
	}

	if path := os.Getenv(configPathEnv); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg.merge(fc)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

func (c *Config) merge(fc fileConfig) {
	site := fc.Site
	if site.Name != "" {
		c.Site.Name = site.Name
	}
	if site.ListingURL != "" {
		c.Site.ListingURL = site.ListingURL
	}
	if site.RequireSegments != nil {
		c.Site.RequireSegments = site.RequireSegments
	}
	if site.ExcludeSegments != nil {
		c.Site.ExcludeSegments = site.ExcludeSegments
	}
	if site.BatchSize > 0 {
		c.Site.BatchSize = site.BatchSize
	}
	if site.MapLimit > 0 {
		c.Site.MapLimit = site.MapLimit
	}
	if site.SkipExisting {
		c.Site.SkipExisting = true
	}

	if fc.Scheduler.ScrapeSchedule != "" {
		c.Scheduler.ScrapeSchedule = fc.Scheduler.ScrapeSchedule
	}
	if fc.Scheduler.StaleProcessingAfter > 0 {
		c.Scheduler.StaleProcessingAfter = fc.Scheduler.StaleProcessingAfter
	}
	if fc.Enhance.GuardConcurrent {
		c.Enhance.GuardConcurrent = true
	}
}

func (c *Config) applyEnv() error {
	c.Firecrawl = firecrawl.Config{
		BaseURL: os.Getenv("FIRECRAWL_BASE_URL"),
		APIKey:  os.Getenv("FIRECRAWL_API_KEY"),
	}
	c.LLM = llm.Config{
		Endpoint: os.Getenv("LLM_ENDPOINT"),
		APIKey:   getEnv("LLM_API_KEY", os.Getenv("LOVABLE_API_KEY")),
		Model:    os.Getenv("LLM_MODEL"),
	}
	c.AuthJWTSecret = os.Getenv("AUTH_JWT_SECRET")

	if v := os.Getenv("SCRAPE_SCHEDULE"); v != "" {
		c.Scheduler.ScrapeSchedule = v
	}
	if v := os.Getenv("STALE_PROCESSING_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STALE_PROCESSING_AFTER %q: %w", v, err)
		}
		c.Scheduler.StaleProcessingAfter = d
	}

	for key, target := range map[string]*bool{
		"ENHANCE_GUARD_CONCURRENT": &c.Enhance.GuardConcurrent,
		"SCRAPE_SKIP_EXISTING":     &c.Site.SkipExisting,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*target = b
	}
	return nil
}

// ProvidersConfigured reports whether both provider keys are present
func (c Config) ProvidersConfigured() bool {
	return c.Firecrawl.APIKey != "" && c.LLM.APIKey != ""
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
