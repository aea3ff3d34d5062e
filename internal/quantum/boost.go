package quantum

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// BoostShots is the number of measurements sampled per boost.
	BoostShots = 100

	// MaxSeed is the largest value a wallet seed can take.
	MaxSeed = 1<<seedQubits - 1

	durationHorizonDays = 365
)

// Booster turns a holding duration and wallet seed into a multiplier in
// [1.0, 1.5]. Longer holdings and larger seeds raise the chance of a
// favourable measurement.
type Booster struct {
	sim   *Simulator
	shots int
}

// NewBooster creates a booster backed by sim.
func NewBooster(sim *Simulator) *Booster {
	if sim == nil {
		sim = NewSimulator()
	}
	return &Booster{sim: sim, shots: BoostShots}
}

// BoostCircuit encodes the duration as an X rotation on qubit 0 and the seed as
// a Y rotation on qubit 1, both entangled into qubit 2.
// Durations past one year saturate at a half turn.
func BoostCircuit(days, seed int) *Circuit {
	if days < 0 {
		days = 0
	}
	if days > durationHorizonDays {
		days = durationHorizonDays
	}
	seed = ((seed % (MaxSeed + 1)) + MaxSeed + 1) % (MaxSeed + 1)

	theta := math.Pi * float64(days) / durationHorizonDays
	phi := math.Pi * float64(seed) / float64(MaxSeed+1)

	return NewCircuit(3).
		RX(0, theta).
		RY(1, phi).
		CX(0, 2).
		CX(1, 2)
}

// Boost samples the boost circuit and returns 1 + 0.5 * (favourable shots / shots).
// A shot is favourable when qubit 0 or qubit 1 reads 1.
func (b *Booster) Boost(days, seed int) (float64, error) {
	key := "boost|" + strconv.Itoa(days) + "|" + strconv.Itoa(seed)
	counts, err := b.sim.Execute(BoostCircuit(days, seed), b.shots, []byte(key))
	if err != nil {
		return 0, fmt.Errorf("boost: %w", err)
	}

	hits := 0
	for outcome, n := range counts {
		if favourable(outcome) {
			hits += n
		}
	}
	return 1 + 0.5*float64(hits)/float64(b.shots), nil
}

// ExpectedBoost returns the boost without sampling noise.
func ExpectedBoost(days, seed int) (float64, error) {
	probs, err := BoostCircuit(days, seed).Probabilities()
	if err != nil {
		return 0, err
	}
	p := 0.0
	for outcome, pr := range probs {
		if favourable(outcome) {
			p += pr
		}
	}
	return 1 + 0.5*p, nil
}

func favourable(outcome int) bool {
	return outcome&0b011 != 0
}
