package engine

import (
	"encoding/json"
	"errors"
	"io/ioutil"
)

const (
	// DefaultPreparator re-wraps the training data unchanged
	DefaultPreparator = "identity"
	// DefaultServing returns the first prediction result
	DefaultServing = "first"
)

var ErrNoAlgorithm = errors.New("engine config binds no algorithm")

// ComponentConfig binds one component name to its parameter set
type ComponentConfig struct {
	Name   string `json:"name"`
	Params Params `json:"params,omitempty"`
}

// EngineConfig is the parsed wiring document of one engine: which
// datasource, preparator, algorithms and serving policy to assemble, each
// with its bound params. The document itself is parsed here, the core only
// ever sees the already-bound Params maps.
type EngineConfig struct {
	DataSource ComponentConfig   `json:"datasource"`
	Preparator ComponentConfig   `json:"preparator,omitempty"`
	Algorithms []ComponentConfig `json:"algorithms"`
	Serving    ComponentConfig   `json:"serving,omitempty"`
}

// LoadConfig reads and parses an engine wiring document from path
func LoadConfig(path string) (*EngineConfig, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

// ParseConfig parses an engine wiring document and fills in the defaults
func ParseConfig(raw []byte) (*EngineConfig, error) {
	cfg := &EngineConfig{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Algorithms) == 0 {
		return nil, ErrNoAlgorithm
	}
	if cfg.Preparator.Name == "" {
		cfg.Preparator.Name = DefaultPreparator
	}
	if cfg.Serving.Name == "" {
		cfg.Serving.Name = DefaultServing
	}
	return cfg, nil
}
