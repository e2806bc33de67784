package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffsetsCheckpoint_ComparesByOffsetSum(t *testing.T) {
	a := OffsetsCheckpoint{Offsets: map[int]int64{0: 5, 1: 3}}
	b := OffsetsCheckpoint{Offsets: map[int]int64{0: 10, 1: 0}}
	assert.Equal(t, 0, a.Compare(b))

	c := OffsetsCheckpoint{Offsets: map[int]int64{0: 1}}
	assert.Equal(t, 1, a.Compare(c))
	assert.Equal(t, -1, c.Compare(a))
}

func TestOffsetsCheckpoint_IsZeroWhenEmpty(t *testing.T) {
	assert.True(t, OffsetsCheckpoint{}.IsZero())
	assert.False(t, OffsetsCheckpoint{Offsets: map[int]int64{0: 1}}.IsZero())
}

func TestOffsetsCheckpoint_WithAdvancedDoesNotMutateOriginal(t *testing.T) {
	orig := OffsetsCheckpoint{Offsets: map[int]int64{0: 1}}
	next := orig.withAdvanced(1, 9)

	assert.Equal(t, int64(1), orig.Offsets[0])
	_, hasOne := orig.Offsets[1]
	assert.False(t, hasOne)

	assert.Equal(t, int64(1), next.Offsets[0])
	assert.Equal(t, int64(9), next.Offsets[1])
}
