package strategy

import (
	"sync"

	"github.com/quantfold/backtest/pkg/errors"
)

// ID identifies a registered strategy.
type ID string

const (
	IDEMACross        ID = "ema_cross"
	IDRSIReversion    ID = "rsi_reversion"
	IDChannelBreakout ID = "channel_breakout"
)

// Constructor builds a strategy from its configuration parameters.
type Constructor func(params map[string]any) (Strategy, error)

// Registry manages all available strategy constructors.
type Registry interface {
	Register(id ID, constructor Constructor) error
	New(id ID, params map[string]any) (Strategy, error)
	List() []ID
}

// RegistryV1 manages all available strategy constructors.
type RegistryV1 struct {
	constructors map[ID]Constructor
	mu           sync.RWMutex
}

// NewRegistry creates a registry preloaded with the built-in strategies.
func NewRegistry() Registry {
	registry := &RegistryV1{
		constructors: make(map[ID]Constructor),
		mu:           sync.RWMutex{},
	}

	_ = registry.Register(IDEMACross, NewEMACross)
	_ = registry.Register(IDRSIReversion, NewRSIReversion)
	_ = registry.Register(IDChannelBreakout, NewChannelBreakout)

	return registry
}

// Register adds a constructor to the registry.
func (r *RegistryV1) Register(id ID, constructor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[id]; exists {
		return errors.Newf(errors.ErrCodeStrategyDuplicate, "strategy %s already registered", id)
	}

	r.constructors[id] = constructor

	return nil
}

// New builds a strategy by ID.
func (r *RegistryV1) New(id ID, params map[string]any) (Strategy, error) {
	r.mu.RLock()
	constructor, exists := r.constructors[id]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", id)
	}

	return constructor(params)
}

// List returns the IDs of all registered strategies.
func (r *RegistryV1) List() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ID, 0, len(r.constructors))
	for id := range r.constructors {
		ids = append(ids, id)
	}

	return ids
}
