package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const (
	logisticC       = 1.0
	logisticMaxIter = 1000
)

// logisticModel is a multinomial logistic regression; row k of Weights and
// Intercepts score class k.
type logisticModel struct {
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// fitLogistic minimizes the L2-penalized softmax cross-entropy with L-BFGS.
// Intercepts are not penalized.
func fitLogistic(x [][]float64, classes []int, numClasses int) (*logisticModel, error) {
	n := len(x)
	if n == 0 || n != len(classes) {
		return nil, fmt.Errorf("logistic fit needs matching non-empty inputs, got %d rows and %d targets", n, len(classes))
	}
	if numClasses < 2 {
		return nil, fmt.Errorf("logistic regression needs at least two classes in the training partition")
	}
	p := len(x[0])
	width := p + 1
	k := numClasses

	// parameters are laid out class-major: w[c*width : c*width+p], bias at c*width+p
	scores := make([]float64, k)
	objective := func(w, grad []float64) float64 {
		if grad != nil {
			for i := range grad {
				grad[i] = 0
			}
		}
		loss := 0.0
		for i, row := range x {
			for c := 0; c < k; c++ {
				off := c * width
				scores[c] = w[off+p] + floats.Dot(w[off:off+p], row)
			}
			lse := floats.LogSumExp(scores)
			loss += lse - scores[classes[i]]
			if grad == nil {
				continue
			}
			for c := 0; c < k; c++ {
				g := math.Exp(scores[c] - lse)
				if c == classes[i] {
					g--
				}
				off := c * width
				floats.AddScaled(grad[off:off+p], g, row)
				grad[off+p] += g
			}
		}
		for c := 0; c < k; c++ {
			off := c * width
			wc := w[off : off+p]
			loss += floats.Dot(wc, wc) / (2 * logisticC)
			if grad != nil {
				floats.AddScaled(grad[off:off+p], 1/logisticC, wc)
			}
		}
		return loss
	}

	problem := optimize.Problem{
		Func: func(w []float64) float64 { return objective(w, nil) },
		Grad: func(grad, w []float64) { objective(w, grad) },
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-6,
		MajorIterations:   logisticMaxIter,
	}
	result, err := optimize.Minimize(problem, make([]float64, k*width), settings, &optimize.LBFGS{})
	if result == nil {
		return nil, fmt.Errorf("logistic optimization failed: %w", err)
	}
	if err != nil {
		// iteration limits still leave a usable estimate
		logger.Debug("Logistic optimization stopped early: %v", err)
	}

	m := &logisticModel{Weights: make([][]float64, k), Intercepts: make([]float64, k)}
	for c := 0; c < k; c++ {
		off := c * width
		m.Weights[c] = append([]float64(nil), result.X[off:off+p]...)
		m.Intercepts[c] = result.X[off+p]
	}
	return m, nil
}

func (m *logisticModel) predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	scores := make([]float64, len(m.Weights))
	for i, row := range x {
		for c := range m.Weights {
			scores[c] = m.Intercepts[c] + floats.Dot(m.Weights[c], row)
		}
		out[i] = float64(argmax(scores))
	}
	return out
}

func (m *logisticModel) validate(p, numClasses int) error {
	if len(m.Weights) != numClasses || len(m.Intercepts) != numClasses {
		return fmt.Errorf("logistic model has %d class rows, expected %d", len(m.Weights), numClasses)
	}
	for c, w := range m.Weights {
		if len(w) != p {
			return fmt.Errorf("logistic class %d has %d weights, expected %d", c, len(w), p)
		}
	}
	return nil
}
