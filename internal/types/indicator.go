package types

type IndicatorType string

const (
	IndicatorTypeEMA     IndicatorType = "ema"
	IndicatorTypeSMA     IndicatorType = "sma"
	IndicatorTypeRSI     IndicatorType = "rsi"
	IndicatorTypeChannel IndicatorType = "channel"
)

// IndicatorSnapshot is the read-only view of a calculator after an update.
// While the calculator is warming up Valid is false and Value must be
// ignored; strategies treat a warming-up indicator as "no signal".
type IndicatorSnapshot struct {
	Valid bool    `yaml:"valid"`
	Value float64 `yaml:"value"`
	// Aux carries secondary scalars for indicators that produce more than
	// one (e.g. the channel low next to the channel high).
	Aux map[string]float64 `yaml:"aux,omitempty"`
}
