package quantum

import "fmt"

const seedQubits = 4

// SeedGenerator derives a per-wallet seed in [0, 15] from a 4-qubit circuit
// shaped by the first characters of the address.
type SeedGenerator struct {
	sim *Simulator
}

// NewSeedGenerator creates a seed generator backed by sim.
func NewSeedGenerator(sim *Simulator) *SeedGenerator {
	if sim == nil {
		sim = NewSimulator()
	}
	return &SeedGenerator{sim: sim}
}

// SeedCircuit builds the seed circuit for an address: H on qubit i when the
// i-th character code is even, X otherwise, followed by a CX chain.
func SeedCircuit(address string) *Circuit {
	c := NewCircuit(seedQubits)
	i := 0
	for _, ch := range address {
		if i == seedQubits {
			break
		}
		if ch%2 == 0 {
			c.H(i)
		} else {
			c.X(i)
		}
		i++
	}
	for q := 0; q < seedQubits-1; q++ {
		c.CX(q, q+1)
	}
	return c
}

// Generate returns the seed for address. The result is stable per address.
func (g *SeedGenerator) Generate(address string) (int, error) {
	counts, err := g.sim.Execute(SeedCircuit(address), 1, []byte("seed|"+address))
	if err != nil {
		return 0, fmt.Errorf("generate seed: %w", err)
	}
	outcomes := counts.Outcomes()
	if len(outcomes) != 1 {
		return 0, fmt.Errorf("generate seed: expected one outcome, got %d", len(outcomes))
	}
	return outcomes[0], nil
}
