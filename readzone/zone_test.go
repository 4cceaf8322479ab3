package readzone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TweakySolution/libzbc/zbd"
)

func TestTargetZone(t *testing.T) {
	zones := []zbd.Zone{
		{Start: 0, Length: 100},
		{Start: 100, Length: 100},
	}

	z, err := TargetZone(zones, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), z.Start)

	_, err = TargetZone(zones, 2)
	require.ErrorIs(t, err, ErrZoneNotFound)

	_, err = TargetZone(zones, -1)
	require.ErrorIs(t, err, ErrZoneNotFound)

	_, err = TargetZone(nil, 0)
	require.ErrorIs(t, err, ErrZoneNotFound)
}

func TestReadableSectors(t *testing.T) {
	// Sequential-required and not full: only up to the write pointer.
	z := zbd.Zone{
		Start:        1000,
		Length:       100,
		WritePointer: 1060,
		Type:         zbd.ZoneTypeSeqRequired,
		Condition:    zbd.ZoneCondImpOpen,
	}
	assert.Equal(t, int64(60), ReadableSectors(z))

	// Empty sequential zone: nothing defined.
	z.WritePointer = 1000
	z.Condition = zbd.ZoneCondEmpty
	assert.Zero(t, ReadableSectors(z))

	// A full zone is readable over its whole length.
	z.Condition = zbd.ZoneCondFull
	assert.Equal(t, int64(100), ReadableSectors(z))

	// Conventional zones have no write pointer.
	conv := zbd.Zone{Start: 0, Length: 100, Type: zbd.ZoneTypeConventional}
	assert.Equal(t, int64(100), ReadableSectors(conv))

	// Sequential-preferred zones are readable everywhere too.
	pref := zbd.Zone{Start: 0, Length: 100, WritePointer: 40, Type: zbd.ZoneTypeSeqPreferred}
	assert.Equal(t, int64(100), ReadableSectors(pref))
}
