package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_Monotonic(t *testing.T) {
	c := NewSystem()

	first := c.Now()
	time.Sleep(5 * time.Millisecond)
	second := c.Now()

	assert.GreaterOrEqual(t, first, 0.0)
	assert.Greater(t, second, first)
}

func TestManual(t *testing.T) {
	c := NewManual()
	assert.Equal(t, 0.0, c.Now())

	c.Advance(1.5)
	assert.InDelta(t, 1.5, c.Now(), 1e-9)

	c.Advance(-1)
	assert.InDelta(t, 1.5, c.Now(), 1e-9, "negative steps are ignored")

	c.Set(3)
	assert.InDelta(t, 3.0, c.Now(), 1e-9)

	c.Set(2)
	assert.InDelta(t, 3.0, c.Now(), 1e-9, "clock never moves backwards")
}
