package readzone

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkKeepOnSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.bin")

	sink, err := OpenSink(path)
	require.NoError(t, err)
	assert.False(t, sink.Stdout())

	_, err = sink.Write([]byte("zone data"))
	require.NoError(t, err)
	require.NoError(t, sink.Close(true))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("zone data"), b)
}

func TestSinkFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "zone.bin")

	sink, err := OpenSink(path)
	require.NoError(t, err)
	defer sink.Close(true)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())
}

func TestSinkRemoveOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.bin")

	sink, err := OpenSink(path)
	require.NoError(t, err)
	_, err = sink.Write([]byte("partial"))
	require.NoError(t, err)

	require.NoError(t, sink.Close(false))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "failed run must not leave a partial file")
}

func TestSinkStdout(t *testing.T) {
	sink, err := OpenSink(StdoutDest)
	require.NoError(t, err)
	assert.True(t, sink.Stdout())

	// Closing must not touch the process stdout, keep or not.
	require.NoError(t, sink.Close(false))
	_, err = os.Stdout.Stat()
	require.NoError(t, err)
}
