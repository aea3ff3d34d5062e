package domain

// Analysis is a free-text assessment of a wallet's holding pattern.
type Analysis struct {
	Text       string
	Confidence float64 // in [0, 1]
	Model      string
}
