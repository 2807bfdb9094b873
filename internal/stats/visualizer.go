package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Visualizer prints history summaries to the terminal.
type Visualizer struct {
	db *Database
}

func NewVisualizer(db *Database) *Visualizer {
	return &Visualizer{db: db}
}

// ShowOverview prints the aggregate counters.
func (v *Visualizer) ShowOverview() {
	h := v.db.GetHistory()

	title := color.New(color.FgCyan, color.Bold)
	title.Println("Conversion History Overview")
	title.Println(strings.Repeat("=", 50))

	fmt.Println()
	v.printSection("Totals", [][]string{
		{"Conversions", formatNumber(h.TotalConversions)},
		{"Paragraphs", formatNumber(h.TotalParagraphs)},
		{"Warnings", formatNumber(h.TotalWarnings)},
		{"Failures", formatNumber(h.TotalErrors)},
		{"Total Duration", formatDuration(h.TotalDuration)},
		{"History Started", formatTime(h.CreatedAt)},
		{"Last Updated", formatTime(h.LastUpdated)},
	})
}

// ShowDirections prints per-direction aggregates.
func (v *Visualizer) ShowDirections() {
	h := v.db.GetHistory()

	title := color.New(color.FgGreen, color.Bold)
	title.Println("By Direction")
	title.Println(strings.Repeat("=", 50))

	if len(h.Directions) == 0 {
		fmt.Println("No conversions recorded yet.")
		return
	}

	dirs := make([]*DirectionStats, 0, len(h.Directions))
	for _, d := range h.Directions {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Count > dirs[j].Count })

	fmt.Println()
	for i, d := range dirs {
		if i > 0 {
			fmt.Println()
		}
		successRate := float64(d.Count-d.ErrorCount) / float64(d.Count) * 100
		v.printSection(d.Direction, [][]string{
			{"Conversions", formatNumber(d.Count)},
			{"Paragraphs", formatNumber(d.ParagraphCount)},
			{"Warnings", formatNumber(d.WarningCount)},
			{"Success Rate", fmt.Sprintf("%.1f%%", successRate)},
			{"Avg Duration", formatDuration(d.AverageDuration)},
			{"Last Used", formatTime(d.LastUsed)},
		})
	}
}

// ShowClasses prints the accumulated paragraph-class counts.
func (v *Visualizer) ShowClasses() {
	h := v.db.GetHistory()

	title := color.New(color.FgMagenta, color.Bold)
	title.Println("Paragraph Classes")
	title.Println(strings.Repeat("=", 50))

	if len(h.ClassTotals) == 0 {
		fmt.Println("No paragraph data recorded yet.")
		return
	}

	type pair struct {
		name string
		n    int64
	}
	pairs := make([]pair, 0, len(h.ClassTotals))
	for name, n := range h.ClassTotals {
		pairs = append(pairs, pair{name, n})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].n != pairs[j].n {
			return pairs[i].n > pairs[j].n
		}
		return pairs[i].name < pairs[j].name
	})

	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.name, formatNumber(p.n)})
	}
	fmt.Println()
	v.printSection("Counts", rows)
}

// ShowRecent prints the latest runs, newest first.
func (v *Visualizer) ShowRecent(limit int) {
	records := v.db.GetRecent(limit)

	title := color.New(color.FgBlue, color.Bold)
	title.Printf("Recent Conversions (Last %d)\n", len(records))
	title.Println(strings.Repeat("=", 50))

	if len(records) == 0 {
		fmt.Println("No recent conversions found.")
		return
	}

	for i, record := range records {
		if i > 0 {
			fmt.Println()
		}

		status := "ok"
		if record.Status == "failed" {
			status = "failed"
		}

		head := fmt.Sprintf("[%s] %s", status, record.InputFile)
		if len(head) > 60 {
			head = head[:57] + "..."
		}

		v.printSection(head, [][]string{
			{"Timestamp", formatTime(record.Timestamp)},
			{"Direction", record.Direction},
			{"Output", record.OutputFile},
			{"Paragraphs", strconv.Itoa(record.Paragraphs)},
			{"Warnings", strconv.Itoa(record.Warnings)},
			{"Duration", formatDuration(record.Duration)},
		})

		if record.ErrorMessage != "" {
			color.New(color.FgRed).Printf("  error: %s\n", record.ErrorMessage)
		}
	}
}

func (v *Visualizer) printSection(title string, data [][]string) {
	color.New(color.FgYellow, color.Bold).Printf("%s\n", title)

	maxLabelLen := 0
	for _, row := range data {
		if len(row[0]) > maxLabelLen {
			maxLabelLen = len(row[0])
		}
	}

	labelColor := color.New(color.FgCyan)
	valueColor := color.New(color.FgWhite, color.Bold)
	for _, row := range data {
		labelColor.Printf("  %-*s: ", maxLabelLen, row[0])
		valueColor.Println(row[1])
	}
}

func formatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}
	var result strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(char)
	}
	return result.String()
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	now := time.Now()
	if t.Year() == now.Year() && t.Month() == now.Month() && t.Day() == now.Day() {
		return t.Format("15:04:05")
	}
	if t.Year() == now.Year() {
		return t.Format("Jan 02 15:04")
	}
	return t.Format("2006-01-02 15:04")
}
