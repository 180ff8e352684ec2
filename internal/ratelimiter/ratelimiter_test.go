package ratelimiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyed_BurstThenDeny(t *testing.T) {
	k := NewKeyed(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, k.Allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, k.Allow("10.0.0.1"), "burst exhausted")
}

func TestKeyed_IndependentKeys(t *testing.T) {
	k := NewKeyed(1, 1)

	assert.True(t, k.Allow("10.0.0.1"))
	assert.False(t, k.Allow("10.0.0.1"))

	// A different client is unaffected
	assert.True(t, k.Allow("10.0.0.2"))
	assert.Equal(t, 2, k.Len())
}

func TestKeyed_ZeroRateIsUnlimited(t *testing.T) {
	k := NewKeyed(0, 0)

	for i := 0; i < 100; i++ {
		assert.True(t, k.Allow("10.0.0.1"))
	}
	assert.Equal(t, 0, k.Len())
}
