package quantum

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync/atomic"
)

// Counts maps a measured basis-state index to the number of shots that produced it.
type Counts map[int]int

// Outcomes returns the measured indices in ascending order.
func (c Counts) Outcomes() []int {
	out := make([]int, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Total returns the number of shots recorded.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// SimulatorStats tracks execution counters.
type SimulatorStats struct {
	Executions int64
	Shots      int64
}

// Simulator executes circuits on an ideal state vector and samples
// measurements from a PRNG keyed by the caller's seed bytes.
// The same circuit, shot count and seed always produce the same counts.
type Simulator struct {
	executions atomic.Int64
	shots      atomic.Int64
}

// NewSimulator creates a simulator.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Execute measures every qubit of the circuit shots times.
func (s *Simulator) Execute(c *Circuit, shots int, seed []byte) (Counts, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}

	probs, err := c.Probabilities()
	if err != nil {
		return nil, fmt.Errorf("simulate circuit: %w", err)
	}

	cumulative := make([]float64, len(probs))
	sum := 0.0
	for i, p := range probs {
		sum += p
		cumulative[i] = sum
	}

	rng := newRand(seed)
	counts := make(Counts)
	for i := 0; i < shots; i++ {
		r := rng.Float64() * sum
		idx := sort.SearchFloat64s(cumulative, r)
		// SearchFloat64s returns the first index with cumulative >= r; skip
		// zero-probability states that share the same cumulative value.
		for idx < len(probs)-1 && probs[idx] == 0 {
			idx++
		}
		if idx >= len(probs) {
			idx = len(probs) - 1
		}
		counts[idx]++
	}

	s.executions.Add(1)
	s.shots.Add(int64(shots))

	return counts, nil
}

// Stats returns a snapshot of the execution counters.
func (s *Simulator) Stats() SimulatorStats {
	return SimulatorStats{
		Executions: s.executions.Load(),
		Shots:      s.shots.Load(),
	}
}

func newRand(seed []byte) *rand.Rand {
	sum := sha256.Sum256(seed)
	return rand.New(rand.NewPCG(
		binary.BigEndian.Uint64(sum[0:8]),
		binary.BigEndian.Uint64(sum[8:16]),
	))
}
