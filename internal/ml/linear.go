package ml

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rankTolerance is the relative singular-value cutoff for least squares.
const rankTolerance = 1e-12

type linearModel struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// fitLinear solves ordinary least squares with an intercept by centring the
// inputs and taking the minimum-norm SVD solution.
func fitLinear(x [][]float64, y []float64) (*linearModel, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("linear fit needs matching non-empty inputs, got %d rows and %d targets", n, len(y))
	}
	p := len(x[0])

	xMean := make([]float64, p)
	for _, row := range x {
		floats.Add(xMean, row)
	}
	floats.Scale(1/float64(n), xMean)
	yMean := floats.Sum(y) / float64(n)

	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range x {
		for j, v := range row {
			a.Set(i, j, v-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("least squares factorization failed")
	}
	var coef mat.VecDense
	svd.SolveVecTo(&coef, b, svd.Rank(rankTolerance))

	m := &linearModel{Coef: make([]float64, p)}
	for j := 0; j < p; j++ {
		m.Coef[j] = coef.AtVec(j)
	}
	m.Intercept = yMean - floats.Dot(xMean, m.Coef)
	return m, nil
}

func (m *linearModel) predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = m.Intercept + floats.Dot(m.Coef, row)
	}
	return out
}

func (m *linearModel) validate(p int) error {
	if len(m.Coef) != p {
		return fmt.Errorf("linear model has %d coefficients, expected %d", len(m.Coef), p)
	}
	return nil
}
