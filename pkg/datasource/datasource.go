// Package datasource carries the rating domain types shared by the
// concrete sources and algorithms, plus an in-memory source used by tests
// and demos. The file-backed source lives in the file subpackage.
package datasource

import (
	"context"
	"errors"
	"sync"

	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
)

var ErrEmptyDataset = errors.New("no ratings set")

// Rating is one observed (user, item, score) row
type Rating struct {
	User  string
	Item  string
	Score float64
}

var (
	mu      sync.RWMutex
	dataset []Rating
)

// Set replaces the dataset the memory source emits
func Set(ratings []Rating) {
	mu.Lock()
	defer mu.Unlock()
	dataset = ratings
}

// memorySource emits a copy of the in-process dataset
type memorySource struct{}

var _ engine.DataSource = &memorySource{}

func (s *memorySource) ReadTraining(ctx context.Context, params engine.Params) (engine.TrainingData, error) {
	mu.RLock()
	defer mu.RUnlock()
	if len(dataset) == 0 {
		return engine.TrainingData{}, errorutils.NewDataUnavailableError("memory", ErrEmptyDataset)
	}
	// hand out a copy, the dataset may be swapped between train runs
	ratings := make([]Rating, len(dataset))
	copy(ratings, dataset)
	return engine.TrainingData{Payload: ratings}, nil
}

func init() {
	engine.RegisterDataSource("memory", func() engine.DataSource {
		return &memorySource{}
	})
}
