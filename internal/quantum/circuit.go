// Package quantum provides a small deterministic state-vector simulator and the
// seed and boost circuits built on it.
package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// MaxQubits bounds circuit width; the state vector holds 2^n amplitudes.
const MaxQubits = 16

var (
	// ErrInvalidQubit is returned when a gate addresses a qubit outside the register.
	ErrInvalidQubit = errors.New("invalid qubit index")

	// ErrTooManyQubits is returned when a circuit exceeds MaxQubits.
	ErrTooManyQubits = errors.New("too many qubits")
)

type gateKind int

const (
	gateH gateKind = iota
	gateX
	gateRX
	gateRY
	gateCX
)

func (k gateKind) String() string {
	switch k {
	case gateH:
		return "H"
	case gateX:
		return "X"
	case gateRX:
		return "RX"
	case gateRY:
		return "RY"
	case gateCX:
		return "CX"
	}
	return "?"
}

type gate struct {
	kind    gateKind
	target  int
	control int
	theta   float64
}

// Circuit is an ordered list of gates over a fixed register.
// Qubit q maps to bit q of a basis-state index.
type Circuit struct {
	qubits int
	gates  []gate
}

// NewCircuit creates an empty circuit over n qubits.
func NewCircuit(n int) *Circuit {
	return &Circuit{qubits: n}
}

// Qubits returns the register width.
func (c *Circuit) Qubits() int { return c.qubits }

// Depth returns the number of gates.
func (c *Circuit) Depth() int { return len(c.gates) }

// H appends a Hadamard gate.
func (c *Circuit) H(q int) *Circuit {
	c.gates = append(c.gates, gate{kind: gateH, target: q})
	return c
}

// X appends a NOT gate.
func (c *Circuit) X(q int) *Circuit {
	c.gates = append(c.gates, gate{kind: gateX, target: q})
	return c
}

// RX appends an X-axis rotation by theta radians.
func (c *Circuit) RX(q int, theta float64) *Circuit {
	c.gates = append(c.gates, gate{kind: gateRX, target: q, theta: theta})
	return c
}

// RY appends a Y-axis rotation by theta radians.
func (c *Circuit) RY(q int, theta float64) *Circuit {
	c.gates = append(c.gates, gate{kind: gateRY, target: q, theta: theta})
	return c
}

// CX appends a controlled NOT gate.
func (c *Circuit) CX(control, target int) *Circuit {
	c.gates = append(c.gates, gate{kind: gateCX, target: target, control: control})
	return c
}

// Validate checks register width and gate operands.
func (c *Circuit) Validate() error {
	if c.qubits <= 0 || c.qubits > MaxQubits {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyQubits, c.qubits, MaxQubits)
	}
	for i, g := range c.gates {
		if g.target < 0 || g.target >= c.qubits {
			return fmt.Errorf("gate %d (%s): %w %d", i, g.kind, ErrInvalidQubit, g.target)
		}
		if g.kind == gateCX {
			if g.control < 0 || g.control >= c.qubits || g.control == g.target {
				return fmt.Errorf("gate %d (%s): %w control %d", i, g.kind, ErrInvalidQubit, g.control)
			}
		}
	}
	return nil
}

// Statevector runs the circuit from |0...0> and returns the final amplitudes.
func (c *Circuit) Statevector() ([]complex128, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	psi := make([]complex128, 1<<c.qubits)
	psi[0] = 1

	for _, g := range c.gates {
		switch g.kind {
		case gateH:
			s := complex(1/math.Sqrt2, 0)
			applySingle(psi, g.target, s, s, s, -s)
		case gateX:
			applySingle(psi, g.target, 0, 1, 1, 0)
		case gateRX:
			cos := complex(math.Cos(g.theta/2), 0)
			isin := complex(0, -math.Sin(g.theta/2))
			applySingle(psi, g.target, cos, isin, isin, cos)
		case gateRY:
			cos := complex(math.Cos(g.theta/2), 0)
			sin := complex(math.Sin(g.theta/2), 0)
			applySingle(psi, g.target, cos, -sin, sin, cos)
		case gateCX:
			applyCX(psi, g.control, g.target)
		}
	}

	return psi, nil
}

// Probabilities returns the measurement distribution over basis states.
func (c *Circuit) Probabilities() ([]float64, error) {
	psi, err := c.Statevector()
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(psi))
	for i, amp := range psi {
		a := cmplx.Abs(amp)
		probs[i] = a * a
	}
	return probs, nil
}

// applySingle applies the 2x2 unitary [[u00 u01] [u10 u11]] to qubit q.
func applySingle(psi []complex128, q int, u00, u01, u10, u11 complex128) {
	bit := 1 << q
	for i := range psi {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a, b := psi[i], psi[j]
		psi[i] = u00*a + u01*b
		psi[j] = u10*a + u11*b
	}
}

func applyCX(psi []complex128, control, target int) {
	cbit, tbit := 1<<control, 1<<target
	for i := range psi {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			psi[i], psi[j] = psi[j], psi[i]
		}
	}
}
