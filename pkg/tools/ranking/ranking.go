package ranking

import (
	"sort"

	"github.com/pawel-madurski/PredictionIO/pkg/engine"
)

// Rank orders item scores by descending score and truncates to num.
// Exact ties break on ascending item id, so repeated identical inputs
// always produce identical ordering.
func Rank(scores map[string]float64, num int) []engine.ItemScore {
	ranked := make([]engine.ItemScore, 0, len(scores))
	for item, score := range scores {
		ranked = append(ranked, engine.ItemScore{Item: item, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Item < ranked[j].Item
	})
	if num > 0 && len(ranked) > num {
		ranked = ranked[:num]
	}
	return ranked
}
