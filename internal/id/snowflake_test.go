package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Increasing(t *testing.T) {
	g, err := NewGenerator(7)
	require.NoError(t, err)

	last := g.Next()
	for i := 0; i < 1000; i++ {
		next := g.Next()
		assert.Greater(t, next, last)
		last = next
	}
}

func TestNewGenerator_RejectsOutOfRangeNode(t *testing.T) {
	_, err := NewGenerator(4096)
	assert.Error(t, err)
}
