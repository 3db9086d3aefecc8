// Package preparator holds the feature engineering boundary between the
// raw training data and the algorithms. Prepare implementations are pure,
// running one twice on the same input yields equivalent prepared data.
package preparator

import (
	"github.com/pawel-madurski/PredictionIO/pkg/datasource"
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/common"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
)

// Ratings pulls the rating rows out of a dataset container,
// rejecting payloads that are not rating shaped
func Ratings(payload interface{}) ([]datasource.Rating, error) {
	ratings, ok := payload.([]datasource.Rating)
	if !ok {
		return nil, errorutils.NewInvalidTrainingDataError("payload is not a rating set")
	}
	for _, r := range ratings {
		if r.User == "" || r.Item == "" {
			return nil, errorutils.NewInvalidTrainingDataError("rating row with empty user or item")
		}
	}
	return ratings, nil
}

// identity re-wraps the training data unchanged, the default preparator
type identity struct{}

var _ engine.Preparator = &identity{}

func (p *identity) Prepare(data engine.TrainingData) (engine.PreparedData, error) {
	ratings, err := Ratings(data.Payload)
	if err != nil {
		return engine.PreparedData{}, err
	}
	return engine.PreparedData{Payload: ratings}, nil
}

// threshold drops rating rows below a score bound, a minimal example of a
// feature selecting preparator
type threshold struct {
	minScore float64
}

var _ engine.Preparator = &threshold{}

func (p *threshold) Prepare(data engine.TrainingData) (engine.PreparedData, error) {
	ratings, err := Ratings(data.Payload)
	if err != nil {
		return engine.PreparedData{}, err
	}
	kept := make([]datasource.Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.Score >= p.minScore {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return engine.PreparedData{}, errorutils.NewInvalidTrainingDataError("threshold dropped every rating")
	}
	return engine.PreparedData{Payload: kept}, nil
}

func init() {
	engine.RegisterPreparator("identity", func(params engine.Params) (engine.Preparator, error) {
		return &identity{}, nil
	})
	engine.RegisterPreparator("threshold", func(params engine.Params) (engine.Preparator, error) {
		return &threshold{
			minScore: common.ParamFloat(params, "minScore", 1.0),
		}, nil
	})
}
