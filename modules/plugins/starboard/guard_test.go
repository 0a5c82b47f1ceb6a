package starboard

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromotionGuard(t *testing.T) {
	guard := NewPromotionGuard()

	assert.True(t, guard.TryBegin("m1"))
	assert.False(t, guard.TryBegin("m1"))
	assert.True(t, guard.TryBegin("m2"))

	guard.End("m1")
	assert.True(t, guard.TryBegin("m1"))
}

func TestPromotionGuardRetry(t *testing.T) {
	guard := NewPromotionGuard()

	assert.True(t, guard.TryBegin("m1"))
	assert.False(t, guard.Retry("m1"))

	assert.False(t, guard.TryBegin("m1"))
	assert.False(t, guard.TryBegin("m1"))
	assert.True(t, guard.Retry("m1"))
	assert.False(t, guard.Retry("m1"))

	guard.End("m1")
	assert.False(t, guard.Retry("m1"))
	assert.True(t, guard.TryBegin("m1"))
	assert.False(t, guard.Retry("m1"))
}

func TestPromotionGuardSingleWinner(t *testing.T) {
	guard := NewPromotionGuard()

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.TryBegin("m1") {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}
