package zbd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZonePredicates(t *testing.T) {
	conv := Zone{Type: ZoneTypeConventional, Condition: ZoneCondNotWP}
	assert.True(t, conv.Conventional())
	assert.False(t, conv.SequentialRequired())

	seq := Zone{Type: ZoneTypeSeqRequired, Condition: ZoneCondEmpty}
	assert.True(t, seq.SequentialRequired())
	assert.True(t, seq.Empty())
	assert.False(t, seq.Full())

	seq.Condition = ZoneCondFull
	assert.True(t, seq.Full())
}

func TestInfoLogicalBlockSectors(t *testing.T) {
	assert.Equal(t, int64(1), Info{LogicalBlockSize: 512}.LogicalBlockSectors())
	assert.Equal(t, int64(8), Info{LogicalBlockSize: 4096}.LogicalBlockSectors())
}

func memZones() []Zone {
	return []Zone{
		{Start: 0, Length: 128, Type: ZoneTypeConventional, Condition: ZoneCondNotWP},
		{Start: 128, Length: 128, WritePointer: 192, Type: ZoneTypeSeqRequired, Condition: ZoneCondImpOpen},
	}
}

func TestMemDeviceRead(t *testing.T) {
	dev := NewMemDevice(512, memZones())
	for i := range dev.Data {
		dev.Data[i] = byte(i)
	}

	buf := make([]byte, 4*512)
	n, err := dev.ReadSectors(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, dev.Data[2<<SectorShift:6<<SectorShift], buf)
}

func TestMemDeviceShortRead(t *testing.T) {
	dev := NewMemDevice(512, memZones())
	dev.MaxTransfer = 3

	buf := make([]byte, 8*512)
	n, err := dev.ReadSectors(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemDeviceReadPastEnd(t *testing.T) {
	dev := NewMemDevice(512, memZones())

	// 256 sectors total; a read at 254 can move only 2.
	buf := make([]byte, 8*512)
	n, err := dev.ReadSectors(buf, 254)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = dev.ReadSectors(buf, 256)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemDeviceFailSector(t *testing.T) {
	dev := NewMemDevice(512, memZones())
	dev.FailSector = 10

	buf := make([]byte, 512)
	_, err := dev.ReadSectors(buf, 10)
	require.Error(t, err)

	_, err = dev.ReadSectors(buf, 9)
	require.NoError(t, err)
}

func TestMemDeviceReadVectored(t *testing.T) {
	dev := NewMemDevice(512, memZones())
	for i := range dev.Data {
		dev.Data[i] = byte(i / 512)
	}

	a := make([]byte, 2*512)
	b := make([]byte, 2*512)
	n, err := dev.ReadVectored([][]byte{a, b}, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, byte(8), a[0])
	assert.Equal(t, byte(10), b[0])
}

func TestMemDeviceReportZonesCopies(t *testing.T) {
	dev := NewMemDevice(512, memZones())
	zones, err := dev.ReportZones()
	require.NoError(t, err)
	require.Len(t, zones, 2)

	zones[0].Start = 999
	again, err := dev.ReportZones()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), again[0].Start)
}
