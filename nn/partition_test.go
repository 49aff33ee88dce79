package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPartitions(t *testing.T) {
	segs, err := SplitPartitions(10, []int{3, 7})
	require.NoError(t, err)
	assert.Equal(t, []Segment{{0, 3}, {3, 7}, {7, 10}}, segs)

	total := 0
	for _, s := range segs {
		total += s.Len()
	}
	assert.Equal(t, 10, total)
}

func TestSplitPartitionsNoBoundaries(t *testing.T) {
	segs, err := SplitPartitions(5, nil)
	require.NoError(t, err)
	assert.Equal(t, []Segment{{0, 5}}, segs)
}

func TestSplitPartitionsInvalid(t *testing.T) {
	for _, boundaries := range [][]int{{0}, {10}, {11}, {5, 3}, {3, 3}} {
		_, err := SplitPartitions(10, boundaries)
		assert.Error(t, err, "boundaries %v", boundaries)
	}
}

func TestShardIndexes(t *testing.T) {
	segs := ShardIndexes(10, 3)
	assert.Equal(t, []Segment{{0, 4}, {4, 7}, {7, 10}}, segs)

	segs = ShardIndexes(2, 5)
	assert.Equal(t, []Segment{{0, 1}, {1, 2}}, segs)
}
