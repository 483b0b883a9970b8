package mem

import (
	"testing"

	"github.com/go-heaplab/heaplab/heapfile"
	"github.com/stretchr/testify/require"
)

const testQuota = 1 << 20 // 1MiB, plenty for these tests

func newAllocator(t *testing.T) *Allocator {
	t.Helper()
	p := heapfile.NewMemProvider(testQuota)
	a := New(p)
	require.NoError(t, a.Init())
	return a
}
