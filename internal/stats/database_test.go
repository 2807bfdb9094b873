package stats

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	db, err := NewDatabase(path, nil)
	require.NoError(t, err)

	require.NoError(t, db.AddRecord(&Record{
		InputFile:  "contract.md",
		OutputFile: "contract.docx",
		Direction:  "md-docx",
		Paragraphs: 12,
		Classes:    map[string]int{"section": 4, "sentence": 8},
		Warnings:   1,
		Duration:   200 * time.Millisecond,
		Status:     "completed",
	}))
	require.NoError(t, db.AddRecord(&Record{
		InputFile: "契約書.docx",
		Direction: "docx-md",
		Status:    "failed",
		Duration:  50 * time.Millisecond,
	}))

	h := db.GetHistory()
	assert.Equal(t, int64(2), h.TotalConversions)
	assert.Equal(t, int64(12), h.TotalParagraphs)
	assert.Equal(t, int64(1), h.TotalErrors)
	assert.Equal(t, int64(4), h.ClassTotals["section"])

	dir := h.Directions["md-docx"]
	require.NotNil(t, dir)
	assert.Equal(t, int64(1), dir.Count)
	assert.Equal(t, 200*time.Millisecond, dir.AverageDuration)
}

func TestHistoryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	db, err := NewDatabase(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.AddRecord(&Record{Direction: "md-docx", Status: "completed"}))

	// Reopen and check the record survived with a generated ID.
	db2, err := NewDatabase(path, nil)
	require.NoError(t, err)

	recent := db2.GetRecent(10)
	require.Len(t, recent, 1)
	assert.NotEmpty(t, recent[0].ID)
	assert.Equal(t, "md-docx", recent[0].Direction)
}

func TestGetRecentOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	db, err := NewDatabase(path, nil)
	require.NoError(t, err)

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.AddRecord(&Record{
			InputFile: string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Direction: "md-docx",
			Status:    "completed",
		}))
	}

	recent := db.GetRecent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].InputFile)
	assert.Equal(t, "b", recent[1].InputFile)
}
