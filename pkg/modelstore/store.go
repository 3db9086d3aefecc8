// Package modelstore persists engine instances, one record per completed
// train run, plus a single "current" pointer that names the instance live
// queries are answered from.
package modelstore

import (
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pawel-madurski/PredictionIO/pkg/env"
	"github.com/spf13/viper"
)

var ErrInstanceNotFound = errors.New("instance not found")

// Status is the lifecycle state of an engine instance.
// A status only ever moves forward, a failed instance is terminal and must
// never become deployable.
type Status string

const (
	StatusTraining Status = "training"
	StatusTrained  Status = "trained"
	StatusDeployed Status = "deployed"
	StatusFailed   Status = "failed"
)

// CanTransition reports whether a status may move to next
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusTraining:
		return next == StatusTrained || next == StatusFailed
	case StatusTrained:
		return next == StatusDeployed
	default:
		return false
	}
}

// Instance is one versioned outcome of a training run. The algorithm list
// keeps the registration order of the engine wiring, the model map holds
// each algorithm's marshalled model. The map is fixed at train time, it is
// never partially updated: either every named algorithm trained and is
// present, or the instance is failed and carries no models.
type Instance struct {
	ID         string            `yaml:"id"`
	CreatedAt  time.Time         `yaml:"createdAt"`
	Status     Status            `yaml:"status"`
	Algorithms []string          `yaml:"algorithms,flow"`
	Models     map[string][]byte `yaml:"models,omitempty"`
}

type Store interface {
	// NextInstanceID atomically assigns a new monotonic instance id
	NextInstanceID() (string, error)
	// SaveInstance persists the whole record atomically: all models of the
	// instance become retrievable together or not at all. Rewriting an
	// existing record is only allowed along a forward status transition.
	SaveInstance(instance *Instance) error
	// GetInstance returns the record for id, ErrInstanceNotFound otherwise
	GetInstance(id string) (*Instance, error)
	// ListInstances returns every persisted record, newest last
	ListInstances() ([]*Instance, error)
	// UpdateStatus moves an instance along the status machine,
	// invalid transitions are rejected
	UpdateStatus(id string, status Status) error
	// SetCurrent atomically repoints the current marker at id.
	// It rejects with errorutils.DeployInconsistencyError unless the
	// instance is in the trained state, and marks it deployed.
	SetCurrent(id string) error
	// GetCurrent returns the current instance id, "" when nothing is
	// deployed yet
	GetCurrent() (string, error)
}

// sortByID orders instance records by their numeric id, oldest first.
// Storage keys sort lexically, ids are numeric.
func sortByID(instances []*Instance) {
	sort.Slice(instances, func(i, j int) bool {
		a, _ := strconv.ParseInt(instances[i].ID, 10, 64)
		b, _ := strconv.ParseInt(instances[j].ID, 10, 64)
		return a < b
	})
}

var (
	store Store
	once  = &sync.Once{}
)

// StoreInit creates the store singleton for the configured backend
func StoreInit() {
	once.Do(func() {
		switch viper.GetString(env.ModelStoreBackend) {
		case env.RedisBackend:
			store = NewRedisstore()
		default:
			store = NewLocalstore()
		}
	})
}

// GetStoreIns returns the store singleton
func GetStoreIns() Store {
	StoreInit()
	return store
}
