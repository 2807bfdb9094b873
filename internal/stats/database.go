package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	historyVersion   = "1.0.0"
	maxRecentRecords = 100
)

// Database owns the conversion-history file.
type Database struct {
	filePath string
	data     *History
	mutex    sync.RWMutex
	logger   *zap.Logger
}

func NewDatabase(filePath string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db := &Database{
		filePath: filePath,
		logger:   logger,
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := db.load(); err != nil {
		return nil, fmt.Errorf("failed to load conversion history: %w", err)
	}
	return db, nil
}

func (db *Database) load() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, err := os.Stat(db.filePath); os.IsNotExist(err) {
		db.data = &History{
			Version:     historyVersion,
			CreatedAt:   time.Now(),
			LastUpdated: time.Now(),
			Directions:  make(map[string]*DirectionStats),
			ClassTotals: make(map[string]int64),
			Recent:      make([]*Record, 0),
		}
		return db.saveUnsafe()
	}

	data, err := os.ReadFile(db.filePath)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("failed to parse history file: %w", err)
	}
	if h.Directions == nil {
		h.Directions = make(map[string]*DirectionStats)
	}
	if h.ClassTotals == nil {
		h.ClassTotals = make(map[string]int64)
	}
	if h.Recent == nil {
		h.Recent = make([]*Record, 0)
	}

	db.data = &h
	db.logger.Debug("loaded conversion history",
		zap.String("version", h.Version),
		zap.Int64("total_conversions", h.TotalConversions))
	return nil
}

func (db *Database) Save() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return db.saveUnsafe()
}

func (db *Database) saveUnsafe() error {
	db.data.LastUpdated = time.Now()

	data, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempFile := db.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := os.Rename(tempFile, db.filePath); err != nil {
		return fmt.Errorf("failed to rename history file: %w", err)
	}
	return nil
}

// AddRecord appends one run and folds it into the aggregates.
func (db *Database) AddRecord(record *Record) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	db.data.TotalConversions++
	db.data.TotalParagraphs += int64(record.Paragraphs)
	db.data.TotalWarnings += int64(record.Warnings)
	db.data.TotalDuration += record.Duration
	if record.Status == "failed" {
		db.data.TotalErrors++
	}

	dir, exists := db.data.Directions[record.Direction]
	if !exists {
		dir = &DirectionStats{Direction: record.Direction}
		db.data.Directions[record.Direction] = dir
	}
	dir.Count++
	dir.ParagraphCount += int64(record.Paragraphs)
	dir.WarningCount += int64(record.Warnings)
	dir.LastUsed = record.Timestamp
	if record.Status == "failed" {
		dir.ErrorCount++
	}
	total := time.Duration(int64(dir.AverageDuration) * (dir.Count - 1))
	dir.AverageDuration = (total + record.Duration) / time.Duration(dir.Count)

	for class, n := range record.Classes {
		db.data.ClassTotals[class] += int64(n)
	}

	db.data.Recent = append(db.data.Recent, record)
	if len(db.data.Recent) > maxRecentRecords {
		sort.Slice(db.data.Recent, func(i, j int) bool {
			return db.data.Recent[i].Timestamp.After(db.data.Recent[j].Timestamp)
		})
		db.data.Recent = db.data.Recent[:maxRecentRecords]
	}

	return db.saveUnsafe()
}

// GetHistory returns a deep copy of the history.
func (db *Database) GetHistory() *History {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	data, _ := json.Marshal(db.data)
	var dup History
	_ = json.Unmarshal(data, &dup)
	return &dup
}

// GetRecent returns the most recent records, newest first.
func (db *Database) GetRecent(limit int) []*Record {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if limit <= 0 || limit > len(db.data.Recent) {
		limit = len(db.data.Recent)
	}

	sorted := make([]*Record, len(db.data.Recent))
	copy(sorted, db.data.Recent)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted[:limit]
}
