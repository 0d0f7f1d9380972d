package indicator

import (
	"sync"

	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

// Constructor builds a calculator with the given lookback period.
type Constructor func(period int) (Indicator, error)

// Registry manages all available indicator constructors.
type Registry interface {
	Register(name types.IndicatorType, constructor Constructor) error
	New(name types.IndicatorType, period int) (Indicator, error)
	List() []types.IndicatorType
}

// RegistryV1 manages all available indicator constructors.
type RegistryV1 struct {
	constructors map[types.IndicatorType]Constructor
	mu           sync.RWMutex
}

// NewRegistry creates a registry preloaded with the built-in indicators.
func NewRegistry() Registry {
	registry := &RegistryV1{
		constructors: make(map[types.IndicatorType]Constructor),
		mu:           sync.RWMutex{},
	}

	_ = registry.Register(types.IndicatorTypeEMA, NewEMA)
	_ = registry.Register(types.IndicatorTypeSMA, NewSMA)
	_ = registry.Register(types.IndicatorTypeRSI, NewRSI)
	_ = registry.Register(types.IndicatorTypeChannel, NewChannel)

	return registry
}

// Register adds a constructor to the registry.
func (r *RegistryV1) Register(name types.IndicatorType, constructor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorDuplicate, "indicator %s already registered", name)
	}

	r.constructors[name] = constructor

	return nil
}

// New builds a calculator by name.
func (r *RegistryV1) New(name types.IndicatorType, period int) (Indicator, error) {
	r.mu.RLock()
	constructor, exists := r.constructors[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	return constructor(period)
}

// List returns the names of all registered indicators.
func (r *RegistryV1) List() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}

	return names
}
