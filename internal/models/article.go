package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Status is the lifecycle state of an article
type Status string

const (
	StatusScraped    Status = "scraped"
	StatusProcessing Status = "processing"
	StatusEnhanced   Status = "enhanced"
	StatusError      Status = "error"
)

// Valid reports whether s is one of the four lifecycle states
func (s Status) Valid() bool {
	switch s {
	case StatusScraped, StatusProcessing, StatusEnhanced, StatusError:
		return true
	}
	return false
}

// CanEnhance reports whether a guarded enhancement run may start from s
func (s Status) CanEnhance() bool {
	return s == StatusScraped || s == StatusEnhanced || s == StatusError
}

// Article represents one ingested blog post and its optional AI rewrite
type Article struct {
	ID              uuid.UUID      `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	Title           string         `json:"title" db:"title" gorm:"not null"`
	OriginalContent string         `json:"original_content" db:"original_content" gorm:"type:text"`
	EnhancedContent *string        `json:"enhanced_content" db:"enhanced_content" gorm:"type:text"`
	SourceURL       string         `json:"source_url" db:"source_url" gorm:"index"` // Not unique: repeated scrapes may store the same page twice
	Author          *string        `json:"author" db:"author"`
	PublishedAt     *time.Time     `json:"published_at" db:"published_at"`
	ReferenceURLs   pq.StringArray `json:"reference_urls" db:"reference_urls" gorm:"type:text[]"`
	Status          Status         `json:"status" db:"status" gorm:"type:varchar(16);not null;default:'scraped';index"`
	ErrorMessage    *string        `json:"error_message" db:"error_message" gorm:"type:text"`

	// Derived from the original content when the article is stored
	WordCount   int `json:"word_count" db:"word_count" gorm:"default:0"`
	ReadingTime int `json:"reading_time" db:"reading_time" gorm:"default:0"` // in minutes

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Article model
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate assigns the id and the defaults every new article starts with
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusScraped
	}
	if a.ReferenceURLs == nil {
		a.ReferenceURLs = pq.StringArray{}
	}
	return nil
}

// ProcessingUpdate is the column set written when an enhancement run starts.
// Any earlier error message is cleared; a previous rewrite stays visible.
func ProcessingUpdate() map[string]interface{} {
	return map[string]interface{}{
		"status":        StatusProcessing,
		"error_message": nil,
	}
}

// EnhancedUpdate is the column set committed by a successful enhancement
func EnhancedUpdate(content string, referenceURLs []string) map[string]interface{} {
	refs := pq.StringArray(referenceURLs)
	if refs == nil {
		refs = pq.StringArray{}
	}
	return map[string]interface{}{
		"status":           StatusEnhanced,
		"enhanced_content": content,
		"reference_urls":   refs,
		"error_message":    nil,
	}
}

// ErrorUpdate is the column set committed when an enhancement run fails.
// enhanced_content is left as it was before the run.
func ErrorUpdate(message string) map[string]interface{} {
	return map[string]interface{}{
		"status":        StatusError,
		"error_message": message,
	}
}

// ApplyMetrics sets word count and the reading time derived from it
func (a *Article) ApplyMetrics(wordCount int) {
	a.WordCount = wordCount
	a.ReadingTime = ReadingTimeMinutes(wordCount)
}

// ReadingTimeMinutes estimates reading time based on word count
func ReadingTimeMinutes(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	// Average reading speed is about 200-250 words per minute
	readingTime := wordCount / 225
	if readingTime < 1 {
		readingTime = 1
	}
	return readingTime
}
