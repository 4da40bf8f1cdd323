// Package table pads rows of cells into aligned columns. Widths are
// terminal cells, not runes, so wide glyphs in torrent names line up.
package table

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const gap = "  "

// Format returns the rows padded according to the widest entry in each
// column.
func Format(rows [][]string, alignments []Alignment) []string {
	return FormatCapped(rows, alignments, nil)
}

// FormatCapped behaves like Format but limits column widths to the given
// caps, ellipsizing longer cells. A zero or negative cap leaves that column
// unlimited; a short caps slice leaves the remaining columns unlimited.
func FormatCapped(rows [][]string, alignments []Alignment, caps []int) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for c, cell := range row {
			if c >= len(widths) {
				break
			}
			if w := runewidth.StringWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	for c := range widths {
		if c < len(caps) && caps[c] > 0 && widths[c] > caps[c] {
			widths[c] = caps[c]
		}
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c >= len(widths) {
				break
			}
			if c > 0 {
				b.WriteString(gap)
			}
			cell = Ellipsize(cell, widths[c])
			if c < len(alignments) && alignments[c] == AlignRight {
				b.WriteString(runewidth.FillLeft(cell, widths[c]))
			} else {
				b.WriteString(runewidth.FillRight(cell, widths[c]))
			}
		}
		out[i] = b.String()
	}
	return out
}

// Ellipsize shortens s to at most width cells, marking the cut with an
// ellipsis. Width below one returns the empty string.
func Ellipsize(s string, width int) string {
	if width < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
