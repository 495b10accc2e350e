package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferRefillsInBatches(t *testing.T) {
	draws := 0
	refills := 0
	buf := NewBuffer(4, func() int {
		draws++
		return draws
	}, func(n int) {
		refills++
		assert.Equal(t, 4, n)
	})

	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 4, buf.Size())

	// First value triggers one refill of exactly 4 draws
	v := buf.Next()
	assert.Equal(t, 4, draws)
	assert.Equal(t, 1, refills)
	assert.Equal(t, 4, v)
	assert.Equal(t, 3, buf.Len())

	for i := 0; i < 3; i++ {
		buf.Next()
	}
	assert.Equal(t, 4, draws)
	assert.Equal(t, 0, buf.Len())

	// Empty again: the next request draws another batch
	buf.Next()
	assert.Equal(t, 8, draws)
	assert.Equal(t, 2, refills)
}

func TestBufferFillAppends(t *testing.T) {
	buf := NewBuffer(3, func() string { return "x" }, nil)

	buf.Fill()
	buf.Fill()
	require.Equal(t, 6, buf.Len())
	assert.Equal(t, "x", buf.Next())
	assert.Equal(t, 5, buf.Len())
}

func TestBufferNonPositiveSize(t *testing.T) {
	buf := NewBuffer(0, func() int { return 1 }, nil)
	assert.Equal(t, 1, buf.Size())
	assert.Equal(t, 1, buf.Next())
}
