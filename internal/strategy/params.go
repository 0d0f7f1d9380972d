package strategy

import (
	"github.com/quantfold/backtest/pkg/errors"
)

// intParam reads an integer strategy parameter, falling back to the default
// when the key is absent. YAML decodes numbers as int or float64 depending
// on the source, so both are accepted.
func intParam(params map[string]any, key string, fallback int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}

	switch value := raw.(type) {
	case int:
		return value, nil
	case int64:
		return int(value), nil
	case float64:
		return int(value), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "parameter %q must be an integer, got %T", key, raw)
	}
}

// floatParam reads a float strategy parameter, falling back to the default
// when the key is absent.
func floatParam(params map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return fallback, nil
	}

	switch value := raw.(type) {
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case float64:
		return value, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "parameter %q must be a number, got %T", key, raw)
	}
}
