// Package datagen produces the synthetic map rows used to seed benchmark
// databases: five branches, twenty tiles, prefixed element ids, and versions
// spread over a trailing thirty-day millisecond window.
package datagen

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"
)

var (
	// Branches partition the map the same way the production store does.
	Branches = []string{"north", "south", "east", "west", "central"}

	elementPrefixes = []string{"rd", "bld", "poi", "trf", "ter"}

	elementValues = []string{
		"active", "inactive", "pending", "damaged", "new",
		"residential", "commercial", "industrial", "public", "private",
	}
)

const (
	tilesPerBranch  = 20
	elementsPerKind = 10
	windowDays      = 30
)

// Row is one map record: an element version inside a tile.
type Row struct {
	Branch  string
	Tile    string
	Element string
	Tsver   int64
	Value   string
	MD5     string
}

// Generator draws rows from its own RNG, so concurrent producers can each
// own one without sharing state.
type Generator struct {
	rng      *rand.Rand
	tiles    []string
	elements []string
	start    int64
	end      int64
}

func New(seed int64, now time.Time) *Generator {
	end := now.UnixMilli()
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		tiles:    Tiles(),
		elements: elementIDs(),
		start:    end - windowDays*24*60*60*1000,
		end:      end,
	}
}

// Tiles returns the full candidate tile set, t001 through t020. Samplers use
// the same set so benchmark reads hit seeded data.
func Tiles() []string {
	tiles := make([]string, 0, tilesPerBranch)
	for i := 1; i <= tilesPerBranch; i++ {
		tiles = append(tiles, fmt.Sprintf("t%03d", i))
	}
	return tiles
}

// VersionBounds samples n version upper bounds inside the seeded window,
// deterministically from seed.
func VersionBounds(n int, seed int64, now time.Time) []int64 {
	rng := rand.New(rand.NewSource(seed))
	end := now.UnixMilli()
	start := end - windowDays*24*60*60*1000
	bounds := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		bounds = append(bounds, start+rng.Int63n(end-start+1))
	}
	return bounds
}

func elementIDs() []string {
	ids := make([]string, 0, len(elementPrefixes)*elementsPerKind)
	for _, prefix := range elementPrefixes {
		for i := 1; i <= elementsPerKind; i++ {
			ids = append(ids, fmt.Sprintf("%s%03d", prefix, i))
		}
	}
	return ids
}

// Row generates one random record.
func (g *Generator) Row() Row {
	value := elementValues[g.rng.Intn(len(elementValues))]
	return Row{
		Branch:  Branches[g.rng.Intn(len(Branches))],
		Tile:    g.tiles[g.rng.Intn(len(g.tiles))],
		Element: g.elements[g.rng.Intn(len(g.elements))],
		Tsver:   g.start + g.rng.Int63n(g.end-g.start+1),
		Value:   value,
		MD5:     md5Short(value),
	}
}

// Batch generates n records.
func (g *Generator) Batch(n int) []Row {
	batch := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, g.Row())
	}
	return batch
}

// md5Short is the first 16 hex characters of the value digest, matching the
// element_md5 CHAR(16) column.
func md5Short(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
