package reward

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daio-rewards/internal/domain"
)

type fixedSeeds struct {
	seed int
	err  error
}

func (f fixedSeeds) Generate(string) (int, error) { return f.seed, f.err }

// linearBooster grows with both inputs and stays inside the boost range.
type linearBooster struct{}

func (linearBooster) Boost(days, seed int) (float64, error) {
	return 1.0 + 0.25*float64(days%365)/365 + 0.25*float64(seed%16)/16, nil
}

type rawBooster struct {
	value float64
	err   error
}

func (r rawBooster) Boost(int, int) (float64, error) { return r.value, r.err }

func TestCalculator_DiamondScenario(t *testing.T) {
	calc := NewCalculator(fixedSeeds{seed: 9}, linearBooster{})

	r, err := calc.Calculate(400, "wallet1")
	require.NoError(t, err)

	assert.Equal(t, domain.TierDiamond, r.Tier)
	assert.Equal(t, 2.0, r.BaseMultiplier)
	assert.GreaterOrEqual(t, r.FinalMultiplier, 2.0)
	assert.LessOrEqual(t, r.FinalMultiplier, 3.0)
	assert.Equal(t, 400, r.HoldingDays)
	assert.Equal(t, 9, r.Seed)
}

func TestCalculator_BronzeScenario(t *testing.T) {
	calc := NewCalculator(fixedSeeds{seed: 15}, linearBooster{})

	r, err := calc.Calculate(0, "wallet1")
	require.NoError(t, err)

	assert.Equal(t, domain.TierBronze, r.Tier)
	assert.Equal(t, 1.0, r.BaseMultiplier)
	assert.GreaterOrEqual(t, r.FinalMultiplier, 1.0)
	assert.LessOrEqual(t, r.FinalMultiplier, 1.5)
}

func TestCalculator_FinalIsBaseTimesBoost(t *testing.T) {
	calc := NewCalculator(fixedSeeds{}, linearBooster{})

	for seed := 0; seed <= 15; seed++ {
		for days := 0; days <= 800; days += 7 {
			r, err := calc.CalculateWithSeed(days, seed)
			require.NoError(t, err)
			assert.InDelta(t, r.BaseMultiplier*r.Boost, r.FinalMultiplier, 1e-12)
			assert.GreaterOrEqual(t, r.Boost, MinBoost)
			assert.LessOrEqual(t, r.Boost, MaxBoost)
		}
	}
}

func TestCalculator_ClampsOutOfRangeBoost(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want float64
	}{
		{"too high", 7.0, MaxBoost},
		{"too low", 0.2, MinBoost},
		{"nan", math.NaN(), MinBoost},
		{"in range", 1.2, 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(fixedSeeds{}, rawBooster{value: tt.raw})
			r, err := calc.CalculateWithSeed(100, 3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Boost)
		})
	}
}

func TestCalculator_NegativeDays(t *testing.T) {
	calc := NewCalculator(fixedSeeds{}, rawBooster{value: 1.0})

	r, err := calc.CalculateWithSeed(-10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.HoldingDays)
	assert.Equal(t, domain.TierBronze, r.Tier)
}

func TestCalculator_PropagatesErrors(t *testing.T) {
	seedErr := errors.New("seed backend down")
	calc := NewCalculator(fixedSeeds{err: seedErr}, linearBooster{})
	_, err := calc.Calculate(10, "wallet1")
	assert.ErrorIs(t, err, seedErr)

	boostErr := errors.New("boost backend down")
	calc = NewCalculator(fixedSeeds{}, rawBooster{err: boostErr})
	_, err = calc.Calculate(10, "wallet1")
	assert.ErrorIs(t, err, boostErr)
}
