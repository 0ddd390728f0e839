package signal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsetByDefault(t *testing.T) {
	s := New()
	assert.False(t, s.IsSet())
}

func TestSetIsObservable(t *testing.T) {
	s := New()
	s.Set()
	assert.True(t, s.IsSet())
}

func TestSetIsIdempotentAndConcurrencySafe(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set()
		}()
	}
	wg.Wait()
	assert.True(t, s.IsSet())
}
