// Package itemsim is the built-in recommendation algorithm: it scores a
// user's known items by their ratings and pulls in co-occurring items with
// a configurable weight. It is deliberately simple and fully deterministic,
// any other algorithm can replace it behind the same capability.
package itemsim

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/preparator"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/common"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/ranking"
)

const (
	Name = "itemsim"

	// bump when the marshalled schema changes shape
	modelVersion = 1

	defaultWeight = 0.5
)

// Model is the trained artifact: every user's rated items and the global
// item co-occurrence counts. Never mutated after Train returns.
type Model struct {
	UserItems map[string]map[string]float64
	Cooccur   map[string]map[string]float64
	Weight    float64
}

// modelSchema is the versioned persistence format, owned by this package
type modelSchema struct {
	Version   int                           `json:"version"`
	UserItems map[string]map[string]float64 `json:"userItems"`
	Cooccur   map[string]map[string]float64 `json:"cooccur"`
	Weight    float64                       `json:"weight"`
}

type algorithm struct{}

var _ engine.Algorithm = &algorithm{}

func (a *algorithm) Train(ctx context.Context, data engine.PreparedData, params engine.Params) (engine.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ratings, err := preparator.Ratings(data.Payload)
	if err != nil {
		return nil, errorutils.NewTrainFailureError(Name, err)
	}
	if len(ratings) == 0 {
		return nil, errorutils.NewTrainFailureError(Name, fmt.Errorf("no ratings to train from"))
	}
	model := &Model{
		UserItems: map[string]map[string]float64{},
		Cooccur:   map[string]map[string]float64{},
		Weight:    common.ParamFloat(params, "similarityWeight", defaultWeight),
	}
	for _, r := range ratings {
		items, existed := model.UserItems[r.User]
		if !existed {
			items = map[string]float64{}
			model.UserItems[r.User] = items
		}
		items[r.Item] = r.Score
	}
	for _, items := range model.UserItems {
		for a := range items {
			for b := range items {
				if a == b {
					continue
				}
				pairs, existed := model.Cooccur[a]
				if !existed {
					pairs = map[string]float64{}
					model.Cooccur[a] = pairs
				}
				pairs[b]++
			}
		}
	}
	return model, nil
}

func (a *algorithm) Predict(model engine.Model, query engine.Query) (engine.PredictionResult, error) {
	m, ok := model.(*Model)
	if !ok {
		return engine.PredictionResult{}, errorutils.NewPredictionFailureError(Name, "model type mismatch")
	}
	items, existed := m.UserItems[query.User]
	if !existed {
		return engine.PredictionResult{}, errorutils.NewPredictionFailureError(Name,
			"unknown user "+query.User)
	}
	scores := map[string]float64{}
	for item, rating := range items {
		scores[item] += rating
		for other, count := range m.Cooccur[item] {
			scores[other] += m.Weight * count
		}
	}
	return engine.PredictionResult{
		Algorithm:  Name,
		ItemScores: ranking.Rank(scores, query.Num),
	}, nil
}

func (a *algorithm) MarshalModel(model engine.Model) ([]byte, error) {
	m, ok := model.(*Model)
	if !ok {
		return nil, fmt.Errorf("itemsim cannot marshal %T", model)
	}
	return json.Marshal(&modelSchema{
		Version:   modelVersion,
		UserItems: m.UserItems,
		Cooccur:   m.Cooccur,
		Weight:    m.Weight,
	})
}

func (a *algorithm) UnmarshalModel(raw []byte) (engine.Model, error) {
	schema := modelSchema{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	if schema.Version != modelVersion {
		return nil, fmt.Errorf("unsupported itemsim model schema version %d", schema.Version)
	}
	return &Model{
		UserItems: schema.UserItems,
		Cooccur:   schema.Cooccur,
		Weight:    schema.Weight,
	}, nil
}

func init() {
	engine.RegisterAlgorithm(Name, func() engine.Algorithm {
		return &algorithm{}
	})
}
