// Package popular ranks items by their accumulated rating mass.
// It ignores the querying user, which makes it a useful fallback member of
// a multi-algorithm engine.
package popular

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/preparator"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/ranking"
)

const (
	Name = "popular"

	modelVersion = 1
)

// Model holds the summed rating per item
type Model struct {
	Totals map[string]float64
}

type modelSchema struct {
	Version int                `json:"version"`
	Totals  map[string]float64 `json:"totals"`
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
	totals := map[string]float64{}
	for _, r := range ratings {
		totals[r.Item] += r.Score
	}
	return &Model{Totals: totals}, nil
}

func (a *algorithm) Predict(model engine.Model, query engine.Query) (engine.PredictionResult, error) {
	m, ok := model.(*Model)
	if !ok {
		return engine.PredictionResult{}, errorutils.NewPredictionFailureError(Name, "model type mismatch")
	}
	return engine.PredictionResult{
		Algorithm:  Name,
		ItemScores: ranking.Rank(m.Totals, query.Num),
	}, nil
}

func (a *algorithm) MarshalModel(model engine.Model) ([]byte, error) {
	m, ok := model.(*Model)
	if !ok {
		return nil, fmt.Errorf("popular cannot marshal %T", model)
	}
	return json.Marshal(&modelSchema{Version: modelVersion, Totals: m.Totals})
}

func (a *algorithm) UnmarshalModel(raw []byte) (engine.Model, error) {
	schema := modelSchema{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	if schema.Version != modelVersion {
		return nil, fmt.Errorf("unsupported popular model schema version %d", schema.Version)
	}
	return &Model{Totals: schema.Totals}, nil
}

func init() {
	engine.RegisterAlgorithm(Name, func() engine.Algorithm {
		return &algorithm{}
	})
}
