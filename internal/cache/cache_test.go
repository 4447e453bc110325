package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSetExpiry(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	c := NewWithClock[string](time.Minute, func() time.Time { return now })

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "alpha")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "alpha", v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry expires exactly at ttl")
	assert.Equal(t, 0, c.Len())
}

func TestCache_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	c := NewWithClock[int](time.Minute, func() time.Time { return now })

	c.Set("old", 1)
	now = now.Add(30 * time.Second)
	c.Set("new", 2)
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())

	v, ok := c.Get("new")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	c.Delete("new")
	assert.Equal(t, 0, c.Len())
}

func TestCache_DefaultTTL(t *testing.T) {
	c := New[bool](0)
	assert.Equal(t, 5*time.Second, c.ttl)
}
