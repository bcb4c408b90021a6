package charts

import (
	"math/rand"
	"sync"
	"time"
)

// NoiseSource supplies the uniform jitter added to the risk proxy in the
// risk/return dataset. It is injectable so tests (and the seeded API
// variant) get reproducible values.
type NoiseSource interface {
	// Uniform returns a value drawn uniformly from [min, max).
	Uniform(min, max float64) float64
}

type randNoise struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNoiseSource returns a time-seeded noise source.
func NewNoiseSource() NoiseSource {
	return NewSeededNoiseSource(time.Now().UnixNano())
}

// NewSeededNoiseSource returns a noise source with a fixed seed, producing
// the same jitter sequence on every run.
func NewSeededNoiseSource(seed int64) NoiseSource {
	return &randNoise{rng: rand.New(rand.NewSource(seed))}
}

func (n *randNoise) Uniform(min, max float64) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return min + n.rng.Float64()*(max-min)
}
