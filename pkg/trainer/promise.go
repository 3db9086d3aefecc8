package trainer

import (
	"context"
	"sync"

	"github.com/pawel-madurski/PredictionIO/pkg/engine"
)

// trainFunc runs one algorithm's training against the shared prepared data
type trainFunc func(ctx context.Context, named engine.NamedAlgorithm, data engine.PreparedData) (engine.Model, error)

// TrainPromise is an abstraction like javascript Promise
type TrainPromise struct {
	wg    sync.WaitGroup
	name  string
	f     trainFunc
	model engine.Model
	err   error
}

// NewTrainPromise initializes a new TrainPromise
func NewTrainPromise(f trainFunc, name string) *TrainPromise {
	p := &TrainPromise{
		f:    f,
		name: name,
	}
	return p
}

// Run runs the function in TrainPromise and the result is recorded in model
func (p *TrainPromise) Run(ctx context.Context, named engine.NamedAlgorithm, data engine.PreparedData) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.model, p.err = p.f(ctx, named, data)
	}()
}

// GetResult waits for the Run function
func (p *TrainPromise) GetResult() (engine.Model, error) {
	p.wg.Wait()
	return p.model, p.err
}
