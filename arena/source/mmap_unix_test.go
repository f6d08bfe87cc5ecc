//go:build unix

package source

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func Test_MmapAcquireRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	var m Mmap
	require.Nil(t, m.Base())

	base, err := m.Acquire(10_000)
	require.NoError(t, err)
	require.NotNil(t, base)
	require.Equal(t, base, m.Base())

	// Pages arrive zeroed; touch the first and last requested byte.
	b := unsafe.Slice((*byte)(base), 10_000)
	require.Zero(t, b[0])
	require.Zero(t, b[9_999])
	b[0] = 1
	b[9_999] = 2

	require.NoError(t, m.Release())
	require.Nil(t, m.Base())

	// Double release is a no-op.
	require.NoError(t, m.Release())
}
