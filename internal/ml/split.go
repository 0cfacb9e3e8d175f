package ml

import (
	"fmt"
	"math"
	"math/rand/v2"

	"safetyhub/domain/core"
)

const (
	// Seed drives every split and bootstrap so identical input yields identical models.
	Seed = 42
	// DefaultTestFraction is the held-out share used when callers do not choose one.
	DefaultTestFraction = 0.2
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// SplitIndices shuffles 0..n-1 with the fixed seed and returns the train and
// test partitions. The test partition holds ceil(n*testFraction) rows and both
// partitions are non-empty.
func SplitIndices(n int, testFraction float64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, core.NewConfigurationError("test_fraction", fmt.Sprintf("must be in (0, 1), got %v", testFraction))
	}
	nTest := int(math.Ceil(float64(n) * testFraction))
	if n < 2 || nTest >= n {
		return nil, nil, fmt.Errorf("%w: need at least one training and one test row, got %d rows", core.ErrInsufficientRows, n)
	}
	perm := newRand(Seed).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

func pickRows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}

func pickFloats(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
