package stream

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmission(t *testing.T) {
	t.Run("acquire up to the ceiling", func(t *testing.T) {
		a := NewAdmission(2)

		assert.True(t, a.TryAcquire())
		assert.True(t, a.TryAcquire())
		assert.False(t, a.TryAcquire())
		assert.Equal(t, 2, a.Count())
	})

	t.Run("rejected acquire has no side effect", func(t *testing.T) {
		a := NewAdmission(1)

		assert.True(t, a.TryAcquire())
		assert.False(t, a.TryAcquire())
		assert.False(t, a.TryAcquire())
		assert.Equal(t, 1, a.Count())

		a.Release()
		assert.Equal(t, 0, a.Count())
		assert.True(t, a.TryAcquire())
	})

	t.Run("count never goes negative", func(t *testing.T) {
		a := NewAdmission(1)

		a.Release()
		a.Release()
		assert.Equal(t, 0, a.Count())
	})

	t.Run("ceiling holds under concurrency", func(t *testing.T) {
		const limit = 5
		const workers = 64

		a := NewAdmission(limit)

		var wg sync.WaitGroup
		var violations sync.Map

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()

				for j := 0; j < 100; j++ {
					if !a.TryAcquire() {
						continue
					}

					if count := a.Count(); count > limit || count < 1 {
						violations.Store(n, count)
					}

					a.Release()
				}
			}(i)
		}

		wg.Wait()

		violations.Range(func(key, value any) bool {
			t.Errorf("count %v observed outside invariant", value)
			return true
		})
		assert.Equal(t, 0, a.Count())
	})
}
