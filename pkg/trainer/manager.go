// Package trainer runs the offline train pipeline: datasource, preparator,
// then every named algorithm fanned out against the shared prepared data,
// and finally the atomic persist of the new engine instance.
package trainer

import (
	"context"
	"sync"
	"time"

	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/pawel-madurski/PredictionIO/pkg/prom"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"go.uber.org/zap"
)

var manager *Manager

// ManagerInit creates the trainer manager singleton
func ManagerInit(store modelstore.Store, eng *engine.Engine) {
	manager = NewManager(store, eng)
}

// GetManagerIns returns the trainer manager singleton
func GetManagerIns() *Manager {
	return manager
}

// Manager drives train runs for one wired engine.
// The mutex serializes Train calls inside one process: a second trigger
// while a run is in flight waits instead of racing it. Instance ids stay
// unique across processes because the store assigns them atomically.
type Manager struct {
	mu    sync.Mutex
	store modelstore.Store
	eng   *engine.Engine
}

func NewManager(store modelstore.Store, eng *engine.Engine) *Manager {
	return &Manager{
		store: store,
		eng:   eng,
	}
}

// Train runs the whole train pipeline and returns the new instance id.
// Training has no implicit deadline, it runs until done or the caller
// cancels the context. On any stage failure the instance is marked failed,
// which is terminal: a failed instance is never deployable.
func (m *Manager) Train(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.store.NextInstanceID()
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(m.eng.Algorithms))
	for _, named := range m.eng.Algorithms {
		names = append(names, named.Name)
	}
	instance := &modelstore.Instance{
		ID:         id,
		CreatedAt:  time.Now(),
		Status:     modelstore.StatusTraining,
		Algorithms: names,
	}
	if err := m.store.SaveInstance(instance); err != nil {
		return "", err
	}
	zap.S().Infow("train run started", "instance", id, "algorithms", names)

	models, err := m.runPipeline(ctx)
	if err != nil {
		m.markFailed(instance, err)
		prom.TrainTotal.WithLabelValues("failed").Inc()
		return id, err
	}
	instance.Status = modelstore.StatusTrained
	instance.Models = models
	if err := m.store.SaveInstance(instance); err != nil {
		m.markFailed(instance, err)
		prom.TrainTotal.WithLabelValues("failed").Inc()
		return id, err
	}
	prom.TrainTotal.WithLabelValues("trained").Inc()
	zap.S().Infow("train run finished", "instance", id)
	return id, nil
}

func (m *Manager) runPipeline(ctx context.Context) (map[string][]byte, error) {
	trainingData, err := m.eng.DataSource.ReadTraining(ctx, m.eng.DataSourceParams)
	if err != nil {
		zap.S().Errorw("datasource read error", "err", err)
		return nil, err
	}
	preparedData, err := m.eng.Preparator.Prepare(trainingData)
	if err != nil {
		zap.S().Errorw("preparator error", "err", err)
		return nil, err
	}

	// fan out one training per named algorithm against the shared
	// prepared data, the data is read-only so no locking is needed
	promises := []*TrainPromise{}
	for _, named := range m.eng.Algorithms {
		p := NewTrainPromise(m.trainOne, named.Name)
		p.Run(ctx, named, preparedData)
		promises = append(promises, p)
	}

	// join in registration order. The first failure fails the instance,
	// sibling trainings run to completion and their models are discarded.
	models := make(map[string][]byte, len(promises))
	var firstErr error
	for i, p := range promises {
		model, err := p.GetResult()
		if err != nil {
			zap.S().Errorw("get error from train promise", "algorithm", p.name, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		raw, err := m.eng.Algorithms[i].Algorithm.MarshalModel(model)
		if err != nil {
			zap.S().Errorw("marshal model error", "algorithm", p.name, "err", err)
			if firstErr == nil {
				firstErr = errorutils.NewTrainFailureError(p.name, err)
			}
			continue
		}
		models[p.name] = raw
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return models, nil
}

func (m *Manager) trainOne(ctx context.Context, named engine.NamedAlgorithm, data engine.PreparedData) (engine.Model, error) {
	start := time.Now()
	model, err := named.Algorithm.Train(ctx, data, named.Params)
	if err != nil {
		if _, ok := err.(*errorutils.TrainFailureError); ok {
			return nil, err
		}
		return nil, errorutils.NewTrainFailureError(named.Name, err)
	}
	zap.S().Infow("algorithm trained", "algorithm", named.Name, "cost", time.Since(start))
	return model, nil
}

func (m *Manager) markFailed(instance *modelstore.Instance, cause error) {
	instance.Status = modelstore.StatusFailed
	instance.Models = nil
	if err := m.store.SaveInstance(instance); err != nil {
		zap.S().Errorw("mark instance failed error", "instance", instance.ID, "err", err)
	}
	zap.S().Warnw("train run failed", "instance", instance.ID, "cause", cause)
}
