package relay_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/relay"
	"github.com/stretchr/testify/assert"
)

func TestSeen(t *testing.T) {
	t.Parallel()

	t.Run("empty set has nothing", func(t *testing.T) {
		t.Parallel()
		s := relay.NewSeen()
		assert.False(t, s.Has("hi"))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("add reports novelty", func(t *testing.T) {
		t.Parallel()
		s := relay.NewSeen()
		assert.True(t, s.Add("hi"))
		assert.False(t, s.Add("hi"))
		assert.True(t, s.Has("hi"))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("grows without eviction", func(t *testing.T) {
		t.Parallel()
		s := relay.NewSeen()
		for i := range 1000 {
			s.Add(string(rune('a'+i%26)) + string(rune(i)))
		}
		assert.Equal(t, 1000, s.Len())
		assert.True(t, s.Has("a"+string(rune(0))))
	})

	t.Run("texts are compared raw", func(t *testing.T) {
		t.Parallel()
		s := relay.NewSeen()
		s.Add("Hi")
		assert.False(t, s.Has("hi"))
		assert.False(t, s.Has("Hi "))
	})

	t.Run("concurrent add and len", func(t *testing.T) {
		t.Parallel()
		s := relay.NewSeen()
		var wg sync.WaitGroup
		for w := range 4 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for i := range 250 {
					s.Add(fmt.Sprintf("%d-%d", w, i))
				}
			}()
			go func() {
				defer wg.Done()
				for range 250 {
					_ = s.Len()
					_ = s.Has("0-0")
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1000, s.Len())
	})
}
