// Package layout reconstructs reading-order text lines from positioned page
// fragments. PDF content streams emit text as absolutely positioned pieces
// with no line structure; this package groups fragments into horizontal bands
// by Y coordinate, orders each band left to right, and repairs table rows that
// were split across nearby baselines.
package layout

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Fragment is one positioned piece of page text. Coordinates follow the PDF
// convention: Y grows upward, so larger Y means higher on the page.
type Fragment struct {
	Text string
	X    float64
	Y    float64
}

// bandTolerance is the maximum Y gap, in PDF units, between consecutive
// baselines that still count as the same visual row. Table cells in the same
// row often sit a few units apart.
const bandTolerance = 8

var (
	reMergeTotalKeyword = regexp.MustCompile(`(?i)Total|סך הכל|סה״כ|סיכום|סכום לתשלום`)
	reMergeDollarAmount = regexp.MustCompile(`^\$?\s*[\d,]+\.\d{1,2}\s*$`)
	reMergeBareAmount   = regexp.MustCompile(`^[\d,]+\.\d{1,2}\s*$`)
	reMergeShekelAmount = regexp.MustCompile(`^₪?\s*[\d,]+\.\d{1,2}\s*$`)
)

// Lines reconstructs one page's fragments into reading-order lines.
//
// Fragments are bucketed by rounded Y, buckets are walked top of page first,
// and a bucket chains into the current band while the gap to the previous
// bucket is within bandTolerance. Each band is flattened left to right into a
// single line. A trailing merge pass joins a line containing a total keyword
// with a following line that is nothing but an amount; the amount line is
// consumed and gains a "$ " prefix when it carries no currency symbol of its
// own.
func Lines(fragments []Fragment) []string {
	if len(fragments) == 0 {
		return nil
	}

	byRow := make(map[int][]Fragment)
	for _, f := range fragments {
		key := int(math.Round(f.Y))
		byRow[key] = append(byRow[key], f)
	}

	keys := make([]int, 0, len(byRow))
	for k := range byRow {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	var bands [][]int
	for i := 0; i < len(keys); i++ {
		band := []int{keys[i]}
		for i+1 < len(keys) && keys[i]-keys[i+1] <= bandTolerance {
			i++
			band = append(band, keys[i])
		}
		bands = append(bands, band)
	}

	lines := make([]string, 0, len(bands))
	for _, band := range bands {
		var row []Fragment
		for _, k := range band {
			row = append(row, byRow[k]...)
		}
		sort.SliceStable(row, func(a, b int) bool { return row[a].X < row[b].X })
		parts := make([]string, len(row))
		for i, f := range row {
			parts[i] = f.Text
		}
		lines = append(lines, strings.Join(parts, " "))
	}

	return mergeSplitTotalRows(lines)
}

// mergeSplitTotalRows repairs the common table artifact where a total label
// and its amount land on adjacent baselines just outside bandTolerance. The
// merge is one-directional: only a keyword line absorbs a following
// amount-only line, never the reverse.
func mergeSplitTotalRows(lines []string) []string {
	merged := make([]string, 0, len(lines))
	for j := 0; j < len(lines); j++ {
		line := strings.TrimSpace(lines[j])
		var next string
		if j+1 < len(lines) {
			next = strings.TrimSpace(lines[j+1])
		}
		nextIsAmount := reMergeDollarAmount.MatchString(next) ||
			reMergeBareAmount.MatchString(next) ||
			reMergeShekelAmount.MatchString(next)
		if nextIsAmount && reMergeTotalKeyword.MatchString(line) {
			amountPart := next
			if !strings.HasPrefix(next, "$") && !strings.HasPrefix(next, "₪") {
				amountPart = "$ " + next
			}
			merged = append(merged, line+" "+amountPart)
			j++
			continue
		}
		merged = append(merged, lines[j])
	}
	return merged
}

// Document is the assembled text of a multi-page document.
type Document struct {
	// Text is the line-reconstructed form: one reconstructed line per row,
	// pages separated by newlines. Field extraction runs against this.
	Text string
	// RawText is every fragment in content-stream order joined by spaces,
	// with no layout reconstruction. Kept as a second extraction source for
	// layouts the band pass scrambles.
	RawText string
	// NumPages is the page count of the source document.
	NumPages int
}

// Assemble reconstructs a whole document from per-page fragment slices.
func Assemble(pages [][]Fragment) Document {
	var text strings.Builder
	rawParts := make([]string, 0, len(pages))
	for _, page := range pages {
		parts := make([]string, len(page))
		for i, f := range page {
			parts[i] = f.Text
		}
		rawParts = append(rawParts, strings.Join(parts, " "))
		for _, line := range Lines(page) {
			text.WriteString(line)
			text.WriteString("\n")
		}
	}
	return Document{
		Text:     text.String(),
		RawText:  strings.TrimSpace(strings.Join(rawParts, " ")),
		NumPages: len(pages),
	}
}
