package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/types"
	"github.com/quantfold/backtest/pkg/errors"
)

// Indicator is an incremental calculator. Update is called exactly once per
// candle in timestamp order and returns a read-only snapshot of the derived
// value. Calculators keep a fixed-size rolling state and never retain
// unbounded history. Constructing a fresh instance with the same parameters
// and replaying the same candles reproduces bit-identical output.
type Indicator interface {
	// Name returns the type of the indicator.
	Name() types.IndicatorType
	// Update consumes one candle and returns the updated snapshot.
	Update(candle types.MarketData) types.IndicatorSnapshot
	// Reset restores the calculator to its freshly constructed state.
	Reset()
}

// Spec names one calculator instance a strategy needs the runner to
// maintain, keyed so a strategy can use two instances of the same type
// (e.g. a fast and a slow EMA).
type Spec struct {
	Key    string
	Type   types.IndicatorType
	Period int
}

// Set owns the calculators of one run together with their latest and
// previous snapshots. Each run constructs its own Set; nothing is shared
// across runs.
type Set struct {
	specs      []Spec
	indicators map[string]Indicator
	current    map[string]types.IndicatorSnapshot
	previous   map[string]types.IndicatorSnapshot
}

// NewSet builds the calculators for the given specs using the registry.
func NewSet(registry Registry, specs []Spec) (*Set, error) {
	indicators := make(map[string]Indicator, len(specs))

	for _, spec := range specs {
		if spec.Key == "" {
			return nil, errors.New(errors.ErrCodeMissingParameter, "indicator spec has empty key")
		}

		if _, exists := indicators[spec.Key]; exists {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "duplicate indicator key %q", spec.Key)
		}

		ind, err := registry.New(spec.Type, spec.Period)
		if err != nil {
			return nil, err
		}

		indicators[spec.Key] = ind
	}

	return &Set{
		specs:      specs,
		indicators: indicators,
		current:    make(map[string]types.IndicatorSnapshot, len(specs)),
		previous:   make(map[string]types.IndicatorSnapshot, len(specs)),
	}, nil
}

// Update feeds the candle to every calculator and returns the view the
// strategy evaluates against.
func (s *Set) Update(candle types.MarketData) View {
	previous := s.current
	current := make(map[string]types.IndicatorSnapshot, len(s.indicators))

	for _, spec := range s.specs {
		current[spec.Key] = s.indicators[spec.Key].Update(candle)
	}

	s.previous = previous
	s.current = current

	return View{current: current, previous: previous}
}

// View is the read-only indicator state handed to a strategy for one
// candle. Previous values let strategies detect crossings without keeping
// hidden state of their own.
type View struct {
	current  map[string]types.IndicatorSnapshot
	previous map[string]types.IndicatorSnapshot
}

// Current returns the latest value for the key, or None while the
// calculator is warming up.
func (v View) Current(key string) optional.Option[float64] {
	return snapshotValue(v.current, key)
}

// Previous returns the value from the prior candle, or None.
func (v View) Previous(key string) optional.Option[float64] {
	return snapshotValue(v.previous, key)
}

// CurrentSnapshot returns the full snapshot for the key.
func (v View) CurrentSnapshot(key string) (types.IndicatorSnapshot, bool) {
	snapshot, ok := v.current[key]

	return snapshot, ok
}

// PreviousSnapshot returns the prior candle's full snapshot for the key.
func (v View) PreviousSnapshot(key string) (types.IndicatorSnapshot, bool) {
	snapshot, ok := v.previous[key]

	return snapshot, ok
}

func snapshotValue(snapshots map[string]types.IndicatorSnapshot, key string) optional.Option[float64] {
	snapshot, ok := snapshots[key]
	if !ok || !snapshot.Valid {
		return optional.None[float64]()
	}

	return optional.Some(snapshot.Value)
}
