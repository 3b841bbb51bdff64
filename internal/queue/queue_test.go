package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQueue_TryEnqueue(t *testing.T) {
	t.Run("accepts_until_capacity", func(t *testing.T) {
		q := New[int]("test", 3, zap.NewNop())

		assert.True(t, q.TryEnqueue(1))
		assert.True(t, q.TryEnqueue(2))
		assert.True(t, q.TryEnqueue(3))
		assert.Equal(t, 3, q.Len())
	})

	t.Run("rejects_when_full_without_blocking", func(t *testing.T) {
		q := New[int]("test", 1, zap.NewNop())

		require.True(t, q.TryEnqueue(1))

		// Must return immediately with false, never block
		done := make(chan bool, 1)
		go func() {
			done <- q.TryEnqueue(2)
		}()

		assert.False(t, <-done)
		assert.Equal(t, 1, q.Len())
	})

	t.Run("accepts_again_after_drain", func(t *testing.T) {
		q := New[int]("test", 1, zap.NewNop())

		require.True(t, q.TryEnqueue(1))
		require.False(t, q.TryEnqueue(2))

		<-q.Receive()

		assert.True(t, q.TryEnqueue(3))
	})
}

func TestQueue_FIFO(t *testing.T) {
	q := New[string]("test", 10, zap.NewNop())

	require.True(t, q.TryEnqueue("a"))
	require.True(t, q.TryEnqueue("b"))
	require.True(t, q.TryEnqueue("c"))

	assert.Equal(t, "a", <-q.Receive())
	assert.Equal(t, "b", <-q.Receive())
	assert.Equal(t, "c", <-q.Receive())
}

func TestQueue_CloseDrains(t *testing.T) {
	q := New[int]("test", 10, zap.NewNop())

	require.True(t, q.TryEnqueue(1))
	require.True(t, q.TryEnqueue(2))
	q.Close()

	// In-flight items remain receivable after close
	assert.Equal(t, 1, <-q.Receive())
	assert.Equal(t, 2, <-q.Receive())

	_, ok := <-q.Receive()
	assert.False(t, ok)
}

func TestQueue_Cap(t *testing.T) {
	q := New[int]("test", 42, zap.NewNop())
	assert.Equal(t, 42, q.Cap())
	assert.Equal(t, 0, q.Len())
}
