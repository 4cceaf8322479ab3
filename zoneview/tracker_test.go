package zoneview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerMarkRange(t *testing.T) {
	tr := NewTracker(60, 100)

	tr.MarkRange(0, 8)
	tr.MarkRange(8, 8)
	assert.Equal(t, int64(16), tr.ReadCount())
	assert.Equal(t, int64(15), tr.Cursor())

	// Marks past the readable bound are clipped.
	tr.MarkRange(56, 8)
	assert.Equal(t, int64(20), tr.ReadCount())
	assert.Equal(t, int64(59), tr.Cursor())
}

func TestTrackerMapLines(t *testing.T) {
	// 10 cells over 100 sectors, 60 readable: one glyph per 10 sectors.
	tr := NewTracker(60, 100)
	tr.MarkRange(0, 20)
	tr.MarkRange(20, 5)

	lines := tr.MapLines(10, 1)
	require.Len(t, lines, 1)
	runes := []rune(lines[0])
	require.Len(t, runes, 10)

	assert.Equal(t, glyphRead, runes[0])
	assert.Equal(t, glyphRead, runes[1])
	assert.Equal(t, glyphPartial, runes[2])
	assert.Equal(t, glyphUnread, runes[3])
	assert.Equal(t, glyphUnread, runes[5])
	assert.Equal(t, glyphOutside, runes[6])
	assert.Equal(t, glyphOutside, runes[9])
}

func TestTrackerEmptyRange(t *testing.T) {
	tr := NewTracker(0, 100)
	tr.MarkRange(0, 10)
	assert.Zero(t, tr.ReadCount())

	lines := tr.MapLines(10, 1)
	require.Len(t, lines, 1)
	for _, r := range lines[0] {
		assert.Equal(t, glyphOutside, r)
	}
}

func TestTrackerMapLinesDegenerate(t *testing.T) {
	tr := NewTracker(10, 10)
	assert.Nil(t, tr.MapLines(0, 1))
	assert.Nil(t, tr.MapLines(10, 0))
	assert.Nil(t, NewTracker(0, 0).MapLines(10, 2))
}
