package bench

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileSamplerDeterministic(t *testing.T) {
	tiles := []string{"t001", "t002", "t003"}
	versions := []int64{100, 200, 300}

	a := NewTileSampler(tiles, versions, 42)
	b := NewTileSampler(tiles, versions, 42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Next(), b.Next(), "same seed must replay the same sequence")
	}
}

func TestTileSamplerDrawsFromCandidates(t *testing.T) {
	tiles := []string{"t001", "t002"}
	versions := []int64{100, 200}
	s := NewTileSampler(tiles, versions, 7)
	for i := 0; i < 100; i++ {
		p := s.Next()
		assert.Contains(t, tiles, p.Key)
		assert.Contains(t, versions, p.Version)
	}
}

func TestTileSamplersIndependentPerWorker(t *testing.T) {
	factory := TileSamplers([]string{"t001", "t002", "t003", "t004"}, []int64{1, 2, 3, 4}, 1)
	s0, s1 := factory(0), factory(1)

	same := true
	for i := 0; i < 20; i++ {
		if s0.Next() != s1.Next() {
			same = false
		}
	}
	assert.False(t, same, "workers should not replay each other's sequences")
}

func TestKeySamplerRange(t *testing.T) {
	s := NewKeySampler(1000, 3)
	for i := 0; i < 200; i++ {
		p := s.Next()
		id, err := strconv.ParseInt(p.Key, 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, id, int64(1))
		assert.LessOrEqual(t, id, int64(1000))
	}
}

func TestSequenceSamplerWraps(t *testing.T) {
	s := NewSequenceSampler(
		QueryParams{Key: "a", Version: 1},
		QueryParams{Key: "b", Version: 2},
	)
	assert.Equal(t, "a", s.Next().Key)
	assert.Equal(t, "b", s.Next().Key)
	assert.Equal(t, "a", s.Next().Key)
}
