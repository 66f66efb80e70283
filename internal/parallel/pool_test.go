package parallel

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEach_RunsEveryIndexExactlyOnce(t *testing.T) {
	const n = 500
	counts := make([]int64, n)

	err := ForEach(context.Background(), 8, n, func(i int) {
		atomic.AddInt64(&counts[i], 1)
	})
	require.NoError(t, err)

	for i, c := range counts {
		assert.EqualValues(t, 1, c, "index %d", i)
	}
}

func TestForEach_MoreWorkersThanTasks(t *testing.T) {
	var done int64
	err := ForEach(context.Background(), 64, 3, func(i int) {
		atomic.AddInt64(&done, 1)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, done)
}

func TestForEach_ZeroTasks(t *testing.T) {
	assert.NoError(t, ForEach(context.Background(), 4, 0, func(i int) {
		t.Fatal("must not be called")
	}))
}

func TestForEach_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var started int64
	err := ForEach(ctx, 4, 100, func(i int) {
		atomic.AddInt64(&started, 1)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt64(&started), "no iteration starts after cancellation")
}
