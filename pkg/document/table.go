package document

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nerdneilsfield/go-docx-md/pkg/charwidth"
	"github.com/nerdneilsfield/go-docx-md/pkg/length"
)

// RuleStyle is the border style of a table row or column.
type RuleStyle int

const (
	RuleSingle RuleStyle = iota
	RuleDouble
)

// VAlign is the vertical alignment of a table row.
type VAlign int

const (
	VMiddle VAlign = iota
	VTop
	VBottom
)

// ColumnSpec is the configuration of one table column.
type ColumnSpec struct {
	Width float64 // half-width character units; 0 means auto
	Align Align
	Rule  RuleStyle
}

// RowSpec is the configuration of one table row.
type RowSpec struct {
	Height float64 // line units; 0 means auto
	VAlign VAlign
	Rule   RuleStyle
}

// Cell is one table cell. Text holds the logical content with real
// line breaks; the markup form writes them as the inline break token.
type Cell struct {
	Text    string
	Align   Align // AlignNone inherits the column value
	Covered bool  // swallowed by a span from its left, rendered <
	VMerge  bool  // continues the cell above, rendered ^
}

// Table is the grid of a table paragraph plus its per-axis
// configuration. Header counts the rows laid out above the
// configuration row.
type Table struct {
	Rows    [][]Cell
	Columns []ColumnSpec
	Specs   []RowSpec
	Header  int
}

var (
	confCellRe  = regexp.MustCompile(`^ *(?:[wW]([0-9]+(?:\.[0-9]+)?))?(:?)([-=]*)(:?) *$`)
	cellMarkRe  = regexp.MustCompile(`^ *(:[-=]+:|:[-=]+|[-=]+:) ((?s:.*))$`)
	rowJoinRe   = regexp.MustCompile(`^[\s　]*`)
	skipLineRe  = regexp.MustCompile(`^\\?$`)
	trailBackRe = regexp.MustCompile(notEscaped + `\\$`)
)

// parseGrid reads the lines of a markup table paragraph into a Table.
// Lines ending in a lone backslash continue on the next line. The
// first row whose cells are all blank or configuration markers becomes
// the column configuration; the first cell column doing the same
// becomes the row configuration.
func parseGrid(lines []string) (*Table, error) {
	var rows [][]string
	line := ""
	for _, ln := range lines {
		if skipLineRe.MatchString(ln) {
			continue
		}
		if strings.HasSuffix(line, `\`) {
			line = strings.TrimSuffix(line, `\`) + rowJoinRe.ReplaceAllString(ln, "")
		} else {
			line += ln
		}
		if trailBackRe.MatchString(line) {
			continue
		}
		rows = append(rows, splitRow(line))
		line = ""
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table has no rows")
	}
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	t := &Table{Columns: make([]ColumnSpec, width)}

	// Column configuration row: the first all-marker row.
	confRow := -1
	for i, r := range rows {
		if markerRow(r) {
			confRow = i
			break
		}
	}
	if confRow >= 0 {
		for j, s := range rows[confRow] {
			t.Columns[j] = parseColumnMarker(s)
		}
		t.Header = confRow
		rows = append(rows[:confRow], rows[confRow+1:]...)
	}

	// Row configuration column: the first cell of every row.
	if markerColumn(rows) {
		t.Specs = make([]RowSpec, len(rows))
		for i := range rows {
			t.Specs[i] = parseRowMarker(rows[i][0])
			rows[i] = rows[i][1:]
		}
		t.Columns = t.Columns[1:]
	}

	for _, r := range rows {
		cells := make([]Cell, len(r))
		for j, s := range r {
			cells[j] = parseCell(s)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// splitRow cuts one table row at its cell boundaries. A doubled
// delimiter is a literal pipe inside the cell, not a boundary.
func splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	var cells []string
	var cur strings.Builder
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '|' {
			cur.WriteRune(rs[i])
			continue
		}
		if i+1 < len(rs) && rs[i+1] == '|' {
			cur.WriteRune('|')
			i++
			continue
		}
		cells = append(cells, cur.String())
		cur.Reset()
	}
	cells = append(cells, cur.String())
	return cells
}

func markerRow(cells []string) bool {
	marked := false
	for _, s := range cells {
		m := confCellRe.FindStringSubmatch(s)
		if m == nil {
			return false
		}
		if m[1] != "" || m[2] != "" || m[3] != "" || m[4] != "" {
			marked = true
		}
	}
	return marked
}

func markerColumn(rows [][]string) bool {
	if len(rows) == 0 || len(rows[0]) < 2 {
		return false
	}
	marked := false
	for _, r := range rows {
		m := confCellRe.FindStringSubmatch(r[0])
		if m == nil {
			return false
		}
		if m[1] != "" || m[2] != "" || m[3] != "" || m[4] != "" {
			marked = true
		}
	}
	return marked
}

// parseColumnMarker reads one configuration row cell. A short marker
// of up to four glyphs leaves the width automatic; a longer one fixes
// it at half the glyph count, and a w prefix fixes it directly.
func parseColumnMarker(s string) ColumnSpec {
	m := confCellRe.FindStringSubmatch(s)
	if m == nil {
		return ColumnSpec{}
	}
	var spec ColumnSpec
	glyphs := len(m[2]) + len(m[3]) + len(m[4])
	if m[1] != "" {
		spec.Width = parseFloat(m[1])
	} else if glyphs > 4 {
		spec.Width = float64(glyphs) / 2
	}
	switch {
	case m[2] == ":" && m[4] == ":":
		spec.Align = AlignCenter
	case m[4] == ":":
		spec.Align = AlignRight
	case glyphs > 0:
		spec.Align = AlignLeft
	}
	if strings.Contains(m[3], "=") {
		spec.Rule = RuleDouble
	}
	return spec
}

// parseRowMarker reads one configuration column cell the same way,
// with the colon shape giving the vertical alignment.
func parseRowMarker(s string) RowSpec {
	m := confCellRe.FindStringSubmatch(s)
	if m == nil {
		return RowSpec{}
	}
	var spec RowSpec
	glyphs := len(m[2]) + len(m[3]) + len(m[4])
	if m[1] != "" {
		spec.Height = parseFloat(m[1])
	} else if glyphs > 4 {
		spec.Height = float64(glyphs) / 2
	}
	switch {
	case m[2] == ":" && m[4] == ":":
		spec.VAlign = VMiddle
	case m[4] == ":":
		spec.VAlign = VBottom
	case glyphs > 0:
		spec.VAlign = VTop
	}
	if strings.Contains(m[3], "=") {
		spec.Rule = RuleDouble
	}
	return spec
}

func parseCell(s string) Cell {
	switch strings.TrimSpace(s) {
	case "<":
		return Cell{Covered: true}
	case "^":
		return Cell{VMerge: true}
	}
	var c Cell
	if m := cellMarkRe.FindStringSubmatch(s); m != nil {
		switch {
		case strings.HasPrefix(m[1], ":") && strings.HasSuffix(m[1], ":"):
			c.Align = AlignCenter
		case strings.HasSuffix(m[1], ":"):
			c.Align = AlignRight
		default:
			c.Align = AlignLeft
		}
		s = m[2]
	}
	c.Text = collapseBreaks(s)
	return c
}

// AutoWidths measures every column: the widest rendered cell content,
// in half-width units, where no explicit width is configured.
func (t *Table) AutoWidths() []float64 {
	widths := make([]float64, len(t.Columns))
	for j, spec := range t.Columns {
		if spec.Width > 0 {
			widths[j] = spec.Width
			continue
		}
		for _, row := range t.Rows {
			if j >= len(row) || row[j].Covered || row[j].VMerge {
				continue
			}
			for _, ln := range strings.Split(row[j].Text, "\n") {
				if w := charwidth.RealWidth(strings.TrimSpace(ln)) / 2; w > widths[j] {
					widths[j] = w
				}
			}
		}
	}
	return widths
}

// majorityAlign is the most common explicit alignment in a column,
// ties breaking toward the leftmost style.
func (t *Table) majorityAlign(j int) Align {
	var count [4]int
	for _, row := range t.Rows {
		if j < len(row) && !row[j].Covered && !row[j].VMerge {
			count[row[j].Align]++
		}
	}
	best := AlignNone
	for _, a := range []Align{AlignLeft, AlignCenter, AlignRight} {
		if count[a] > count[best] {
			best = a
		}
	}
	return best
}

// effectiveAlign is the alignment the column writes into its marker:
// the configured one, or the majority of its cells.
func (t *Table) effectiveAlign(j int) Align {
	if t.Columns[j].Align != AlignNone {
		return t.Columns[j].Align
	}
	return t.majorityAlign(j)
}

func (t *Table) needsConfigRow() bool {
	for j, spec := range t.Columns {
		if spec.Width > 0 || spec.Rule == RuleDouble {
			return true
		}
		if a := t.effectiveAlign(j); a == AlignCenter || a == AlignRight {
			return true
		}
	}
	return t.Header > 0
}

func (t *Table) needsConfigColumn() bool {
	for _, spec := range t.Specs {
		if spec.Height > 0 || spec.VAlign != VMiddle || spec.Rule == RuleDouble {
			return true
		}
	}
	return false
}

// renderAxisMarker lays out one configuration cell. An automatic size
// uses the minimal four-glyph marker; an exact half-integer size in
// range spells out the glyph count; anything else keeps its decimals
// behind a w prefix.
func renderAxisMarker(size float64, left, right, dash string) string {
	if size == 0 {
		n := 4 - len(left) - len(right)
		return left + strings.Repeat(dash, n) + right
	}
	g := size * 2
	glyphs := int(g + 0.5)
	if float64(glyphs) != g || glyphs < 5 || glyphs > 40 {
		return fmt.Sprintf("w%s%s%s%s", length.Format(size), left, strings.Repeat(dash, 3), right)
	}
	n := glyphs - len(left) - len(right)
	if n < 1 {
		n = 1
	}
	return left + strings.Repeat(dash, n) + right
}

func renderColumnMarker(spec ColumnSpec, align Align) string {
	dash := "-"
	if spec.Rule == RuleDouble {
		dash = "="
	}
	left, right := ":", ""
	switch align {
	case AlignCenter:
		left, right = ":", ":"
	case AlignRight:
		left, right = "", ":"
	}
	return renderAxisMarker(spec.Width, left, right, dash)
}

func renderRowMarker(spec RowSpec) string {
	if spec.Height == 0 && spec.VAlign == VMiddle && spec.Rule == RuleSingle {
		return ""
	}
	dash := "-"
	if spec.Rule == RuleDouble {
		dash = "="
	}
	left, right := "", ""
	switch spec.VAlign {
	case VTop:
		left = ":"
	case VMiddle:
		left, right = ":", ":"
	case VBottom:
		right = ":"
	}
	return renderAxisMarker(spec.Height, left, right, dash)
}

// RenderMarkup lays the table back out as dialect lines: an optional
// configuration row after the header rows, an optional configuration
// column, doubled pipes for literal delimiters, real breaks as the
// inline break token, and deviation markers on cells whose alignment
// differs from their column.
func (t *Table) RenderMarkup() []string {
	withSpecs := t.needsConfigColumn()
	confRow := -1
	if t.needsConfigRow() {
		confRow = t.Header
	}
	var lines []string
	emitRow := func(cells []string) {
		lines = append(lines, "|"+strings.Join(cells, "|")+"|")
	}
	for i := 0; i <= len(t.Rows); i++ {
		if i == confRow {
			var cells []string
			if withSpecs {
				cells = append(cells, "")
			}
			for j, spec := range t.Columns {
				cells = append(cells, renderColumnMarker(spec, t.effectiveAlign(j)))
			}
			emitRow(cells)
		}
		if i == len(t.Rows) {
			break
		}
		var cells []string
		if withSpecs {
			var spec RowSpec
			if i < len(t.Specs) {
				spec = t.Specs[i]
			}
			cells = append(cells, renderRowMarker(spec))
		}
		for j, c := range t.Rows[i] {
			cells = append(cells, t.renderCell(c, j))
		}
		emitRow(cells)
	}
	return foldTable(lines)
}

func (t *Table) renderCell(c Cell, j int) string {
	switch {
	case c.Covered:
		return "<"
	case c.VMerge:
		return "^"
	}
	s := expandBreaks(c.Text)
	s = strings.ReplaceAll(s, "|", "||")
	if c.Align != AlignNone && c.Align != t.effectiveAlign(j) {
		mark := ":--"
		switch c.Align {
		case AlignCenter:
			mark = ":-:"
		case AlignRight:
			mark = "--:"
		}
		s = mark + " " + s
	}
	return s
}

// collapseBreaks turns unescaped inline break tokens into real line
// breaks.
func collapseBreaks(s string) string {
	var b strings.Builder
	esc := false
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		switch {
		case esc:
			b.WriteRune(rs[i])
			esc = false
		case rs[i] == '\\':
			b.WriteRune(rs[i])
			esc = true
		case rs[i] == '<' && strings.HasPrefix(string(rs[i:]), "<br>"):
			b.WriteRune('\n')
			i += 3
		default:
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}

func expandBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

// foldTable breaks rows that overrun the text width at their cell
// boundaries: the broken line ends in a backslash and the continuation
// opens with an indented pipe, which parseGrid joins back.
func foldTable(lines []string) []string {
	over := false
	for _, ln := range lines {
		if charwidth.IdealWidth(ln) > charwidth.TextWidth {
			over = true
			break
		}
	}
	if !over {
		return lines
	}
	var out []string
	for _, ln := range lines {
		cells := splitRow(ln)
		for i, c := range cells {
			folded := strings.ReplaceAll(c, "|", "||")
			head := "  |"
			if i == 0 {
				head = "|"
			}
			tail := `\`
			if i == len(cells)-1 {
				tail = "|"
			}
			parts := splitAtBreaks(folded)
			for k, piece := range parts {
				pre := head
				if k > 0 {
					pre = "    "
					if leadingWhiteRe.MatchString(piece) {
						piece = `\` + piece
					}
				}
				post := `\`
				if k == len(parts)-1 {
					post = tail
				}
				out = append(out, pre+piece+post)
			}
		}
	}
	return out
}

// splitAtBreaks cuts cell text after each inline break token so the
// pieces can continue on their own lines.
func splitAtBreaks(s string) []string {
	var parts []string
	for {
		i := strings.Index(s, "<br>")
		if i < 0 {
			break
		}
		parts = append(parts, s[:i+4])
		s = s[i+4:]
	}
	return append(parts, s)
}
