package bench

import (
	"math/rand"
	"strconv"
)

// Sampler picks the parameters for each invocation. Every worker owns its
// own instance, so no RNG state is shared across goroutines and samples stay
// independent.
type Sampler interface {
	Next() QueryParams
}

// SamplerFactory builds the Sampler for one worker. Worker ids are distinct
// within a run; -1 is used for the warmup phase.
type SamplerFactory func(worker int) Sampler

// TileSampler draws uniformly from fixed candidate tiles and version bounds,
// mirroring realistic snapshot reads against the seeded dataset.
type TileSampler struct {
	tiles    []string
	versions []int64
	rng      *rand.Rand
}

func NewTileSampler(tiles []string, versions []int64, seed int64) *TileSampler {
	return &TileSampler{
		tiles:    tiles,
		versions: versions,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *TileSampler) Next() QueryParams {
	return QueryParams{
		Key:     s.tiles[s.rng.Intn(len(s.tiles))],
		Version: s.versions[s.rng.Intn(len(s.versions))],
	}
}

// TileSamplers derives an independent per-worker sampler from one base seed.
func TileSamplers(tiles []string, versions []int64, seed int64) SamplerFactory {
	return func(worker int) Sampler {
		return NewTileSampler(tiles, versions, seed+int64(worker)+1)
	}
}

// KeySampler picks a uniform row id in [1, maxID] plus a random payload
// seed, for write workloads keyed by primary key.
type KeySampler struct {
	maxID int64
	rng   *rand.Rand
}

func NewKeySampler(maxID, seed int64) *KeySampler {
	return &KeySampler{maxID: maxID, rng: rand.New(rand.NewSource(seed))}
}

func (s *KeySampler) Next() QueryParams {
	return QueryParams{
		Key:     strconv.FormatInt(s.rng.Int63n(s.maxID)+1, 10),
		Version: s.rng.Int63(),
	}
}

// KeySamplers derives an independent per-worker key sampler from one seed.
func KeySamplers(maxID, seed int64) SamplerFactory {
	return func(worker int) Sampler {
		return NewKeySampler(maxID, seed+int64(worker)+1)
	}
}

// SequenceSampler replays a fixed parameter list, wrapping around. Tests use
// it to swap uncontrolled randomness for a deterministic sequence.
type SequenceSampler struct {
	params []QueryParams
	next   int
}

func NewSequenceSampler(params ...QueryParams) *SequenceSampler {
	return &SequenceSampler{params: params}
}

func (s *SequenceSampler) Next() QueryParams {
	p := s.params[s.next%len(s.params)]
	s.next++
	return p
}
