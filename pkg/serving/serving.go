// Package serving holds the combining policies for the per-algorithm
// prediction results of one query. The result slice arrives in algorithm
// registration order and may be shorter than the number of registered
// algorithms when some failed for this query.
package serving

import (
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/ranking"
)

// first returns the first surviving result, the single-algorithm default
type first struct{}

var _ engine.Serving = &first{}

func (s *first) Serve(query engine.Query, results []engine.PredictionResult) (engine.PredictionResult, error) {
	if len(results) == 0 {
		return engine.PredictionResult{}, errorutils.NewNoPredictionAvailableError(query.User)
	}
	return results[0], nil
}

// merge sums the scores of every surviving result per item, deduplicating
// across algorithms, and re-ranks the union
type merge struct{}

var _ engine.Serving = &merge{}

func (s *merge) Serve(query engine.Query, results []engine.PredictionResult) (engine.PredictionResult, error) {
	if len(results) == 0 {
		return engine.PredictionResult{}, errorutils.NewNoPredictionAvailableError(query.User)
	}
	scores := map[string]float64{}
	for _, res := range results {
		for _, is := range res.ItemScores {
			scores[is.Item] += is.Score
		}
	}
	return engine.PredictionResult{
		Algorithm:  "merge",
		ItemScores: ranking.Rank(scores, query.Num),
	}, nil
}

func init() {
	engine.RegisterServing("first", func(params engine.Params) (engine.Serving, error) {
		return &first{}, nil
	})
	engine.RegisterServing("merge", func(params engine.Params) (engine.Serving, error) {
		return &merge{}, nil
	})
}
