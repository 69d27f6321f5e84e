package simutil

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// DefaultSeed is used when no map seed is configured.
const DefaultSeed = "village"

// SeedValue derives a stable int64 seed for label under rootSeed.
func SeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewRNG returns a generator seeded from rootSeed and label. Each consumer
// uses its own label so adding one does not shift the others.
func NewRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(SeedValue(rootSeed, label)))
}

// RandomAngle returns an angle in [0, 2π).
func RandomAngle(rng *rand.Rand) float64 {
	return rng.Float64() * 2 * math.Pi
}

// RandomDistance returns a value in [min, max).
func RandomDistance(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}
