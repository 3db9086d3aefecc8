package deployment

import (
	"context"

	"github.com/pawel-madurski/PredictionIO/pkg/engine"
)

// predictFunc answers one query against one loaded model
type predictFunc func(algorithm engine.Algorithm, model engine.Model, query engine.Query) (engine.PredictionResult, error)

// PredictPromise is an abstraction like javascript Promise, with a done
// channel instead of a WaitGroup so the join can give up on the query
// deadline while the predict goroutine runs to completion in the background
type PredictPromise struct {
	name string
	done chan struct{}
	res  engine.PredictionResult
	err  error
}

// NewPredictPromise initializes a new PredictPromise
func NewPredictPromise(name string) *PredictPromise {
	return &PredictPromise{
		name: name,
		done: make(chan struct{}),
	}
}

// Run runs the function in PredictPromise and the result is recorded in res
func (p *PredictPromise) Run(f predictFunc, algorithm engine.Algorithm, model engine.Model, query engine.Query) {
	go func() {
		defer close(p.done)
		p.res, p.err = f(algorithm, model, query)
	}()
}

// GetResult waits for the Run function or the query deadline,
// a deadline hit counts as a failed prediction for this query
func (p *PredictPromise) GetResult(ctx context.Context) (engine.PredictionResult, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return engine.PredictionResult{}, ctx.Err()
	}
}
