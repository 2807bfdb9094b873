package stats

import (
	"time"
)

// History is the on-disk conversion history. One JSON file, rewritten
// atomically after every run.
type History struct {
	Version     string    `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`

	TotalConversions int64         `json:"total_conversions"`
	TotalParagraphs  int64         `json:"total_paragraphs"`
	TotalWarnings    int64         `json:"total_warnings"`
	TotalErrors      int64         `json:"total_errors"`
	TotalDuration    time.Duration `json:"total_duration"`

	// Directions keys are "md-docx" and "docx-md".
	Directions map[string]*DirectionStats `json:"directions"`

	// ClassTotals accumulates paragraph counts by class name across
	// all runs.
	ClassTotals map[string]int64 `json:"class_totals"`

	Recent []*Record `json:"recent"`
}

// DirectionStats aggregates runs of one conversion direction.
type DirectionStats struct {
	Direction       string        `json:"direction"`
	Count           int64         `json:"count"`
	ParagraphCount  int64         `json:"paragraph_count"`
	WarningCount    int64         `json:"warning_count"`
	ErrorCount      int64         `json:"error_count"`
	AverageDuration time.Duration `json:"average_duration"`
	LastUsed        time.Time     `json:"last_used"`
}

// Record is one conversion run.
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	InputFile  string    `json:"input_file"`
	OutputFile string    `json:"output_file"`
	Direction  string    `json:"direction"`

	Paragraphs int            `json:"paragraphs"`
	Classes    map[string]int `json:"classes,omitempty"`
	Warnings   int            `json:"warnings"`
	Duration   time.Duration  `json:"duration"`
	Status     string         `json:"status"`

	ErrorMessage string `json:"error_message,omitempty"`
}
