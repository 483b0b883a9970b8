package heapfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMmapProviderSmoke(t *testing.T) {
	p, err := NewMmapProvider(1 << 20)
	require.NoError(t, err)
	defer p.Close()

	lo := p.Lo()
	brk, err := p.Extend(4096)
	require.NoError(t, err)
	require.Equal(t, lo, brk)
	require.Equal(t, lo+4096, p.Hi())
}
