package engine

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map"
	"go.uber.org/zap"
)

// The registries map wiring names to component factories. They are
// populated from the plugin packages' init functions at process start,
// there is no runtime reflection involved: an engine config can only name
// what some imported package registered.

type DataSourceFactory func() DataSource

type PreparatorFactory func(params Params) (Preparator, error)

// AlgorithmFactory returns a fresh algorithm instance per wiring entry so
// two entries with the same implementation never share state
type AlgorithmFactory func() Algorithm

type ServingFactory func(params Params) (Serving, error)

var (
	datasources = cmap.New()
	preparators = cmap.New()
	algorithms  = cmap.New()
	servings    = cmap.New()
)

func RegisterDataSource(name string, f DataSourceFactory) {
	datasources.Set(name, f)
}

func RegisterPreparator(name string, f PreparatorFactory) {
	preparators.Set(name, f)
}

func RegisterAlgorithm(name string, f AlgorithmFactory) {
	algorithms.Set(name, f)
}

func RegisterServing(name string, f ServingFactory) {
	servings.Set(name, f)
}

// Build wires one runnable engine from the parsed config. Unknown
// component names are wiring errors, nothing is silently substituted.
func Build(cfg *EngineConfig) (*Engine, error) {
	if len(cfg.Algorithms) == 0 {
		return nil, ErrNoAlgorithm
	}
	dsf, existed := datasources.Get(cfg.DataSource.Name)
	if !existed {
		return nil, fmt.Errorf("datasource %q not registered", cfg.DataSource.Name)
	}
	pf, existed := preparators.Get(cfg.Preparator.Name)
	if !existed {
		return nil, fmt.Errorf("preparator %q not registered", cfg.Preparator.Name)
	}
	preparator, err := pf.(PreparatorFactory)(cfg.Preparator.Params)
	if err != nil {
		return nil, err
	}
	named := make([]NamedAlgorithm, 0, len(cfg.Algorithms))
	seen := map[string]bool{}
	for _, ac := range cfg.Algorithms {
		if seen[ac.Name] {
			return nil, fmt.Errorf("algorithm %q wired twice", ac.Name)
		}
		seen[ac.Name] = true
		af, existed := algorithms.Get(ac.Name)
		if !existed {
			return nil, fmt.Errorf("algorithm %q not registered", ac.Name)
		}
		named = append(named, NamedAlgorithm{
			Name:      ac.Name,
			Algorithm: af.(AlgorithmFactory)(),
			Params:    ac.Params,
		})
	}
	sf, existed := servings.Get(cfg.Serving.Name)
	if !existed {
		return nil, fmt.Errorf("serving %q not registered", cfg.Serving.Name)
	}
	serving, err := sf.(ServingFactory)(cfg.Serving.Params)
	if err != nil {
		return nil, err
	}
	zap.S().Infow("engine wired",
		"datasource", cfg.DataSource.Name,
		"preparator", cfg.Preparator.Name,
		"algorithms", len(named),
		"serving", cfg.Serving.Name)
	return &Engine{
		DataSource:       dsf.(DataSourceFactory)(),
		DataSourceParams: cfg.DataSource.Params,
		Preparator:       preparator,
		Algorithms:       named,
		Serving:          serving,
	}, nil
}
