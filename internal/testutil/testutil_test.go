package testutil

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunID_ReturnsSameID(t *testing.T) {
	gen := NewFixedRunID("run-7")
	assert.Equal(t, "run-7", gen.Generate())
	assert.Equal(t, "run-7", gen.Generate())
}

func TestFixedRunID_DefaultID(t *testing.T) {
	gen := NewFixedRunID("")
	assert.Equal(t, "test-run-default", gen.Generate())
}

func TestFixedRunID_ThreadSafe(t *testing.T) {
	gen := NewFixedRunID("shared")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "shared", gen.Generate())
		}()
	}
	wg.Wait()
}

func TestImpulse(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 2, 0}, Impulse(4, 2, 2))
	assert.Equal(t, []float32{0, 0}, Impulse(2, 5, 1), "out of range index leaves zeros")
}

func TestStep(t *testing.T) {
	assert.Equal(t, []float32{0, 1, 1, 1}, Step(4, 1, 1))
	assert.Equal(t, []float32{3, 3}, Step(2, -1, 3))
}

func TestRamp(t *testing.T) {
	assert.Equal(t, []float32{0, 0.5, 1, 1.5}, Ramp(4, 0.5))
}

func TestTicks_Wrap(t *testing.T) {
	assert.Equal(t, []uint32{math.MaxUint32 - 1, math.MaxUint32, 0, 1}, Ticks(math.MaxUint32-1, 4))
}
