// Package export flattens cards into a table for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrSnakeDoc/cardshelf/internal/domain"
)

const (
	// MaxColumnWidth caps the display width of any column.
	MaxColumnWidth = 50
	// columnPadding is added to the widest cell of each column.
	columnPadding = 2

	timeLayout = "2006-01-02 15:04:05"
	listSep    = ", "
)

// Headers are the column titles in output order.
var Headers = []string{
	"ID",
	"Webpage name",
	"URL",
	"Summary",
	"Useful subjects",
	"Keywords",
	"Educational meaning",
	"Created",
	"Updated",
	"Sort order",
}

// Table is a shaped export: every row has len(Headers) cells. Widths sizes
// the columns of WriteText.
type Table struct {
	Headers []string
	Rows    [][]string
	Widths  []int
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// JoinField renders a multi-valued field as one display string.
func JoinField(v domain.FieldValue) string {
	switch v := v.(type) {
	case nil, domain.Absent:
		return ""
	case domain.Text:
		return strings.TrimSpace(string(v))
	case domain.TextList:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if item = strings.TrimSpace(item); item != "" {
				parts = append(parts, item)
			}
		}
		return strings.Join(parts, listSep)
	case domain.Other:
		return strings.TrimSpace(v.Raw)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Row shapes a single card.
func Row(c domain.Card) []string {
	return []string{
		strconv.FormatUint(uint64(c.ID), 10),
		c.WebpageName,
		c.URL,
		c.UserSummary,
		JoinField(c.UsefulSubjects),
		JoinField(c.Keyword),
		c.EducationalMeaning,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		strconv.Itoa(c.SortOrder),
	}
}

// Build shapes cards in the order given and computes column widths.
func Build(cards []domain.Card) Table {
	t := Table{
		Headers: append([]string(nil), Headers...),
		Rows:    make([][]string, 0, len(cards)),
	}
	for _, c := range cards {
		t.Rows = append(t.Rows, Row(c))
	}
	t.Widths = ColumnWidths(t.Headers, t.Rows)
	return t
}

// ColumnWidths returns, per column, the longest cell (headers included) in
// runes plus padding, capped at MaxColumnWidth.
func ColumnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	measure := func(i int, cell string) {
		if i >= len(widths) {
			return
		}
		if n := utf8.RuneCountInString(cell); n > widths[i] {
			widths[i] = n
		}
	}
	for i, h := range headers {
		measure(i, h)
	}
	for _, row := range rows {
		for i, cell := range row {
			measure(i, cell)
		}
	}
	for i := range widths {
		widths[i] = min(widths[i]+columnPadding, MaxColumnWidth)
	}
	return widths
}

// WriteCSV encodes the headers and rows.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write export rows: %w", err)
	}
	return nil
}

// WriteText renders the table as aligned columns sized by Widths. A cell
// longer than its column is cut and ends with an ellipsis.
func (t Table) WriteText(w io.Writer) error {
	widths := t.Widths
	if len(widths) < len(t.Headers) {
		widths = ColumnWidths(t.Headers, t.Rows)
	}
	var b strings.Builder
	line := func(cells []string) {
		b.Reset()
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			cell = fit(strings.ReplaceAll(cell, "\n", " "), widths[i]-columnPadding)
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		}
	}
	rows := append([][]string{t.Headers}, t.Rows...)
	for _, row := range rows {
		line(row)
		if _, err := io.WriteString(w, strings.TrimRight(b.String(), " ")+"\n"); err != nil {
			return fmt.Errorf("failed to write export rows: %w", err)
		}
	}
	return nil
}

// fit cuts s to at most n runes.
func fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// Filename names a download produced at the given time.
func Filename(at time.Time) string {
	return "edutech_cards_" + at.Format("20060102") + ".csv"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
