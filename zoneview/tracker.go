package zoneview

import "github.com/bits-and-blooms/bitset"

// Glyphs used by the zone map.
const (
	glyphRead    = '█'
	glyphPartial = '▒'
	glyphUnread  = '░'
	glyphOutside = '■'
)

// Tracker records which sectors of the readable range have been
// transferred. It feeds the zone map rendering; the read loop reports
// into it through its observer callback.
type Tracker struct {
	set      *bitset.BitSet
	readable int64
	total    int64
	cursor   int64
}

// NewTracker tracks a zone of total sectors of which the first readable
// sectors hold defined data.
func NewTracker(readable, total int64) *Tracker {
	if readable < 0 {
		readable = 0
	}
	if total < readable {
		total = readable
	}
	return &Tracker{
		set:      bitset.New(uint(readable)),
		readable: readable,
		total:    total,
	}
}

// MarkRange marks count sectors starting at the zone-relative offset.
func (t *Tracker) MarkRange(start, count int64) {
	end := start + count
	if end > t.readable {
		end = t.readable
	}
	for i := start; i >= 0 && i < end; i++ {
		t.set.Set(uint(i))
	}
	if end > 0 {
		t.cursor = end - 1
	}
}

// ReadCount is the number of sectors marked so far.
func (t *Tracker) ReadCount() int64 { return int64(t.set.Count()) }

// Cursor is the last marked sector offset.
func (t *Tracker) Cursor() int64 { return t.cursor }

// Readable is the tracked readable range in sectors.
func (t *Tracker) Readable() int64 { return t.readable }

// MapLines renders the zone as rows of glyphs, one cell per bucket of
// sectors: read, partially read, unread, or beyond the readable range.
func (t *Tracker) MapLines(width, rows int) []string {
	if width <= 0 || rows <= 0 || t.total == 0 {
		return nil
	}
	cells := int64(width * rows)
	perCell := (t.total + cells - 1) / cells
	if perCell < 1 {
		perCell = 1
	}

	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		runes := make([]rune, 0, width)
		for col := 0; col < width; col++ {
			lo := (int64(row)*int64(width) + int64(col)) * perCell
			if lo >= t.total {
				break
			}
			hi := lo + perCell
			if hi > t.total {
				hi = t.total
			}
			runes = append(runes, t.cellGlyph(lo, hi))
		}
		if len(runes) == 0 {
			break
		}
		lines = append(lines, string(runes))
	}
	return lines
}

func (t *Tracker) cellGlyph(lo, hi int64) rune {
	if lo >= t.readable {
		return glyphOutside
	}
	if hi > t.readable {
		hi = t.readable
	}
	marked := int64(0)
	for i := lo; i < hi; i++ {
		if t.set.Test(uint(i)) {
			marked++
		}
	}
	switch {
	case marked == hi-lo:
		return glyphRead
	case marked > 0:
		return glyphPartial
	}
	return glyphUnread
}
