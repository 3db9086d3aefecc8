// Package deployment is the online half of the pipeline: it keeps the
// models of the current engine instance loaded and answers queries against
// them until the operator repoints the store at a newer instance.
package deployment

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/pawel-madurski/PredictionIO/pkg/engine"
	"github.com/pawel-madurski/PredictionIO/pkg/env"
	"github.com/pawel-madurski/PredictionIO/pkg/modelstore"
	"github.com/pawel-madurski/PredictionIO/pkg/prom"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/register"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultQueryTimeout = time.Second

// loadedAlgorithm is one algorithm with its model from the loaded instance
type loadedAlgorithm struct {
	name      string
	algorithm engine.Algorithm
	model     engine.Model
}

// snapshot is everything one query needs, captured together. Queries read
// the whole snapshot once, so a reload can never pair a model of instance
// N with a model of instance N+1 inside one request.
type snapshot struct {
	instanceID string
	algorithms []loadedAlgorithm
}

var manager *Manager

// ManagerInit creates the deployment manager singleton, registers the
// reload trigger for deploy events and starts the poller
func ManagerInit(store modelstore.Store, eng *engine.Engine) {
	manager = NewManager(store, eng)
	register.Register(manager.Reload)
	manager.startPoller()
}

// GetManagerIns returns the deployment manager singleton
func GetManagerIns() *Manager {
	return manager
}

// Manager holds the only mutable shared state of the serving runtime, the
// atomically swapped snapshot of the current instance. Models inside a
// snapshot are never mutated, which keeps the query path lock free.
type Manager struct {
	store   modelstore.Store
	eng     *engine.Engine
	current atomic.Value // *snapshot
	stopCh  chan struct{}
}

func NewManager(store modelstore.Store, eng *engine.Engine) *Manager {
	return &Manager{
		store:  store,
		eng:    eng,
		stopCh: make(chan struct{}),
	}
}

func (m *Manager) snapshot() *snapshot {
	snap, _ := m.current.Load().(*snapshot)
	return snap
}

// CurrentInstanceID returns the id of the loaded instance, "" before the
// first successful reload
func (m *Manager) CurrentInstanceID() string {
	snap := m.snapshot()
	if snap == nil {
		return ""
	}
	return snap.instanceID
}

// Reload reads the current pointer and swaps in the pointed instance's
// models. Requests in flight keep the snapshot they already read and
// complete against the previous instance.
func (m *Manager) Reload() error {
	var id string
	err := retry.Do(
		func() error {
			var err error
			id, err = m.store.GetCurrent()
			return err
		},
		retry.Attempts(3),
	)
	if err != nil {
		return err
	}
	if id == "" {
		zap.S().Debug("no instance deployed yet")
		return nil
	}
	if snap := m.snapshot(); snap != nil && snap.instanceID == id {
		return nil
	}
	instance, err := m.store.GetInstance(id)
	if err != nil {
		return err
	}
	loaded := make([]loadedAlgorithm, 0, len(m.eng.Algorithms))
	for _, named := range m.eng.Algorithms {
		raw, existed := instance.Models[named.Name]
		if !existed {
			return fmt.Errorf("instance %s has no model for algorithm %s", id, named.Name)
		}
		model, err := named.Algorithm.UnmarshalModel(raw)
		if err != nil {
			return err
		}
		loaded = append(loaded, loadedAlgorithm{
			name:      named.Name,
			algorithm: named.Algorithm,
			model:     model,
		})
	}
	m.current.Store(&snapshot{
		instanceID: id,
		algorithms: loaded,
	})
	if n, err := strconv.ParseFloat(id, 64); err == nil {
		prom.CurrentInstance.Set(n)
	}
	zap.S().Infow("instance loaded", "instance", id, "models", len(loaded))
	return nil
}

// startPoller reloads on an interval so a deploy done by another process
// is picked up without a restart
func (m *Manager) startPoller() {
	interval := viper.GetDuration(env.ReloadInterval)
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				if err := m.Reload(); err != nil {
					zap.S().Errorw("poll reload error", "err", err)
				}
			}
		}
	}()
}

// Stop stops the poller
func (m *Manager) Stop() {
	close(m.stopCh)
}

// Query fans one query out to every loaded model, joins the answers in
// registration order and hands them to the serving policy. One algorithm
// failing for this query only drops its entry from the join, the request
// fails with NoPredictionAvailable only when every algorithm failed.
func (m *Manager) Query(ctx context.Context, query engine.Query) (engine.PredictionResult, error) {
	snap := m.snapshot()
	if snap == nil {
		return engine.PredictionResult{}, errorutils.NewNoPredictionAvailableError(query.User)
	}
	timeout := viper.GetDuration(env.QueryTimeout)
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	promises := make([]*PredictPromise, 0, len(snap.algorithms))
	for _, la := range snap.algorithms {
		p := NewPredictPromise(la.name)
		p.Run(m.predictOne, la.algorithm, la.model, query)
		promises = append(promises, p)
	}

	results := make([]engine.PredictionResult, 0, len(promises))
	for _, p := range promises {
		res, err := p.GetResult(ctx)
		if err != nil {
			// recovered per algorithm per query, the rest of the
			// join goes on
			prom.PredictFailures.WithLabelValues(p.name).Inc()
			zap.S().Warnw("prediction dropped from join",
				"algorithm", p.name, "user", query.User, "err", err)
			continue
		}
		results = append(results, res)
	}
	prom.QueryDuration.Observe(time.Since(start).Seconds())
	prom.QueryTotal.Inc()
	return m.eng.Serving.Serve(query, results)
}

func (m *Manager) predictOne(algorithm engine.Algorithm, model engine.Model, query engine.Query) (engine.PredictionResult, error) {
	return algorithm.Predict(model, query)
}
