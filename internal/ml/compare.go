package ml

import (
	"math"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
)

// CandidateScore is one algorithm's held-out score. Score is nil when undefined.
type CandidateScore struct {
	Algorithm string   `json:"algorithm"`
	Score     *float64 `json:"score"`
}

// Comparison lists candidate scores in declared order with the winner.
type Comparison struct {
	Scores    []CandidateScore `json:"scores"`
	BestModel string           `json:"best_model"`
	BestScore *float64         `json:"best_score"`
}

// Compare trains the fixed candidate set for modelType on one seeded split and
// reports the best by R² (regression) or accuracy (classification).
func Compare(data *table.Table, target, modelType string) (*Comparison, error) {
	mt, err := ParseModelType(modelType)
	if err != nil {
		return nil, err
	}
	ds, err := prepare(data, target, mt)
	if err != nil {
		return nil, err
	}
	sp, err := ds.split(DefaultTestFraction)
	if err != nil {
		return nil, err
	}

	var scores []CandidateScore
	for _, alg := range candidates(mt) {
		est, err := fitEstimator(alg, mt, sp.xTrain, sp.yTrain, len(ds.classes))
		if err != nil {
			return nil, core.NewDataError("compare", alg.String(), err)
		}
		metrics, err := ds.score(est, sp)
		if err != nil {
			return nil, core.NewDataError("compare", alg.String(), err)
		}
		cs := CandidateScore{Algorithm: alg.String()}
		if v, ok := metrics.Primary(mt); ok {
			cs.Score = ptr(v)
		}
		scores = append(scores, cs)
		logger.Debug("Candidate %s scored %v", cs.Algorithm, scoreValue(cs.Score))
	}

	best := selectBest(scores)
	return &Comparison{Scores: scores, BestModel: best.Algorithm, BestScore: best.Score}, nil
}

// selectBest keeps the first candidate unless a later one scores strictly higher.
// Undefined scores rank below every defined score.
func selectBest(scores []CandidateScore) CandidateScore {
	if len(scores) == 0 {
		return CandidateScore{}
	}
	best := scores[0]
	for _, cs := range scores[1:] {
		if scoreValue(cs.Score) > scoreValue(best.Score) {
			best = cs
		}
	}
	return best
}

func scoreValue(s *float64) float64 {
	if s == nil {
		return math.Inf(-1)
	}
	return *s
}
