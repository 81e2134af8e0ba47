package match

import (
	"math/rand"
	"sync"
	"time"

	"github.com/troxeldj/greek-god-arena/internal/domain/roster"
)

// Sampler picks the attribute compared in a round.
type Sampler interface {
	// Pick returns one of keys. keys is never empty.
	Pick(keys []string) string
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(keys []string) string

// Pick calls f.
func (f SamplerFunc) Pick(keys []string) string { return f(keys) }

// RandomSampler picks uniformly. It is safe for concurrent use.
type RandomSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSampler returns a uniform sampler. A zero seed seeds from the clock.
func NewRandomSampler(seed int64) *RandomSampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSampler{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns a uniformly chosen key.
func (s *RandomSampler) Pick(keys []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return keys[s.rng.Intn(len(keys))]
}

// Controller drives one match, drawing round attributes from a Sampler.
// It is not safe for concurrent use.
type Controller struct {
	state   State
	sampler Sampler
	keys    []string
}

// NewController starts a match between a and b.
func NewController(a, b roster.Contestant, threshold int, sampler Sampler) *Controller {
	s := New(a, b, threshold)
	return &Controller{state: s, sampler: sampler, keys: s.SharedAttributes()}
}

// PlayRound samples an attribute and resolves one round.
func (c *Controller) PlayRound() Outcome {
	if c.state.IsOver() || len(c.keys) == 0 {
		return Outcome{Kind: OutcomeIgnored}
	}
	return c.apply(PlayRound(c.sampler.Pick(c.keys)))
}

// Reset discards the match progress.
func (c *Controller) Reset() Outcome {
	return c.apply(Reset())
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) apply(e Event) Outcome {
	var out Outcome
	c.state, out = Reduce(c.state, e)
	return out
}
