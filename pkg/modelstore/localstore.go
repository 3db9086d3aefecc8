package modelstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pawel-madurski/PredictionIO/pkg/env"
	"github.com/pawel-madurski/PredictionIO/pkg/tools/errorutils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	yamlSuffix     = ".yaml"
	tmpSuffix      = ".tmp"
	instancePrefix = "instance-"
	sequenceFile   = "sequence" + yamlSuffix
	currentFile    = "current" + yamlSuffix
)

// localstore keeps instance records as yaml files in a local directory.
// Every write goes to a temp file first and is renamed into place, so a
// record either exists completely or not at all: an interrupted save never
// leaves a retrievable half-written instance.
type localstore struct {
	mu   sync.Mutex
	path string
}

type sequence struct {
	Last int64 `yaml:"last"`
}

type pointer struct {
	ID string `yaml:"id"`
}

// NewLocalstore returns a local store rooted at the configured path
func NewLocalstore() Store {
	return NewLocalstoreAt(viper.GetString(env.ModelStorePath))
}

// NewLocalstoreAt returns a local store rooted at path
func NewLocalstoreAt(path string) Store {
	return &localstore{path: path}
}

var _ Store = &localstore{}

func (s *localstore) NextInstanceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := sequence{}
	filename := filepath.Join(s.path, sequenceFile)
	buf, err := ioutil.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(buf, &seq); err != nil {
			return "", err
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}
	seq.Last++
	if err := s.writeAtomic(filename, &seq); err != nil {
		return "", err
	}
	return strconv.FormatInt(seq.Last, 10), nil
}

func (s *localstore) SaveInstance(instance *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.readInstance(instance.ID)
	if err != nil && err != ErrInstanceNotFound {
		return err
	}
	if existing != nil && existing.Status != instance.Status &&
		!existing.Status.CanTransition(instance.Status) {
		return errorutils.NewDeployInconsistencyError(instance.ID, string(existing.Status))
	}
	return s.writeAtomic(s.instanceFile(instance.ID), instance)
}

func (s *localstore) GetInstance(id string) (*Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readInstance(id)
}

func (s *localstore) ListInstances() ([]*Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := ioutil.ReadDir(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	instances := []*Instance{}
	for _, entry := range entries {
		name := entry.Name()
		// temp files are in-flight writes, never records
		if !strings.HasPrefix(name, instancePrefix) || !strings.HasSuffix(name, yamlSuffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, instancePrefix), yamlSuffix)
		instance, err := s.readInstance(id)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	sortByID(instances)
	return instances, nil
}

func (s *localstore) UpdateStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateStatus(id, status)
}

func (s *localstore) updateStatus(id string, status Status) error {
	instance, err := s.readInstance(id)
	if err != nil {
		return err
	}
	if !instance.Status.CanTransition(status) {
		return errorutils.NewDeployInconsistencyError(id, string(instance.Status))
	}
	instance.Status = status
	return s.writeAtomic(s.instanceFile(id), instance)
}

func (s *localstore) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, err := s.readInstance(id)
	if err != nil {
		return err
	}
	if instance.Status != StatusTrained {
		return errorutils.NewDeployInconsistencyError(id, string(instance.Status))
	}
	// the pointer rename is the commit point, a crash after it leaves a
	// trained instance current which is still safe to load
	if err := s.writeAtomic(filepath.Join(s.path, currentFile), &pointer{ID: id}); err != nil {
		return err
	}
	return s.updateStatus(id, StatusDeployed)
}

func (s *localstore) GetCurrent() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, err := ioutil.ReadFile(filepath.Join(s.path, currentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	ptr := pointer{}
	if err := yaml.Unmarshal(buf, &ptr); err != nil {
		return "", err
	}
	return ptr.ID, nil
}

func (s *localstore) instanceFile(id string) string {
	return filepath.Join(s.path, instancePrefix+id+yamlSuffix)
}

func (s *localstore) readInstance(id string) (*Instance, error) {
	buf, err := ioutil.ReadFile(s.instanceFile(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	instance := Instance{}
	if err := yaml.Unmarshal(buf, &instance); err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *localstore) writeAtomic(filename string, obj interface{}) error {
	if err := os.MkdirAll(s.path, os.ModePerm); err != nil {
		return err
	}
	data, err := yaml.Marshal(obj)
	if err != nil {
		return err
	}
	tmp := filename + tmpSuffix
	if err := ioutil.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}
