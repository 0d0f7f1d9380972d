package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/quantfold/backtest/internal/strategy"
	"github.com/quantfold/backtest/pkg/errors"
)

// StrategyConfig selects and parameterizes the strategy for a run.
type StrategyConfig struct {
	ID     strategy.ID    `yaml:"id" json:"id" validate:"required" jsonschema:"title=Strategy ID,description=Identifier of a registered strategy"`
	Params map[string]any `yaml:"params" json:"params" jsonschema:"title=Strategy Parameters"`
}

// BacktestConfig is the immutable configuration of a single run. It is
// validated once before the loop starts; validation failures are fatal and
// produce no partial result.
type BacktestConfig struct {
	Symbol    string `yaml:"symbol" json:"symbol" validate:"required" jsonschema:"title=Symbol"`
	Timeframe string `yaml:"timeframe" json:"timeframe" jsonschema:"title=Timeframe,description=Candle interval label such as 1h or 1d"`

	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time"`

	InitialBalance float64        `yaml:"initial_balance" json:"initial_balance" validate:"required,gt=0" jsonschema:"title=Initial Balance,minimum=0"`
	Strategy       StrategyConfig `yaml:"strategy" json:"strategy" validate:"required" jsonschema:"title=Strategy"`

	// Percent fields are on a 0-100 scale: 5 means 5%.
	PositionSizePercent float64 `yaml:"position_size_percent" json:"position_size_percent" validate:"required,gt=0,lte=100" jsonschema:"title=Position Size Percent"`
	StopLossPercent     float64 `yaml:"stop_loss_percent" json:"stop_loss_percent" validate:"required,gt=0,lt=100" jsonschema:"title=Stop Loss Percent"`
	TakeProfitPercent   float64 `yaml:"take_profit_percent" json:"take_profit_percent" validate:"required,gt=0,lt=100" jsonschema:"title=Take Profit Percent"`

	// ForceCloseAtEnd closes a position still open at the final candle with
	// exit reason end_of_data, for callers that need a closed ledger. When
	// false the open position stays out of the ledger and is only valued
	// inside the final balance.
	ForceCloseAtEnd bool `yaml:"force_close_at_end" json:"force_close_at_end" jsonschema:"title=Force Close At End"`
}

// UnmarshalYAML implements custom unmarshaling so the optional time bounds
// round-trip through plain YAML timestamps.
func (c *BacktestConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		Symbol              string         `yaml:"symbol"`
		Timeframe           string         `yaml:"timeframe"`
		StartTime           *time.Time     `yaml:"start_time"`
		EndTime             *time.Time     `yaml:"end_time"`
		InitialBalance      float64        `yaml:"initial_balance"`
		Strategy            StrategyConfig `yaml:"strategy"`
		PositionSizePercent float64        `yaml:"position_size_percent"`
		StopLossPercent     float64        `yaml:"stop_loss_percent"`
		TakeProfitPercent   float64        `yaml:"take_profit_percent"`
		ForceCloseAtEnd     bool           `yaml:"force_close_at_end"`
	}

	var config plainConfig
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.Symbol = config.Symbol
	c.Timeframe = config.Timeframe
	c.InitialBalance = config.InitialBalance
	c.Strategy = config.Strategy
	c.PositionSizePercent = config.PositionSizePercent
	c.StopLossPercent = config.StopLossPercent
	c.TakeProfitPercent = config.TakeProfitPercent
	c.ForceCloseAtEnd = config.ForceCloseAtEnd

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the configuration once at run start.
func (c *BacktestConfig) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && !c.StartTime.Unwrap().Before(c.EndTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidDateRange,
			"start time %s is not before end time %s", c.StartTime.Unwrap(), c.EndTime.Unwrap())
	}

	return nil
}

// GenerateSchemaJSON returns the JSON schema of the configuration for
// external form UIs.
func (c *BacktestConfig) GenerateSchemaJSON() (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for a backtest run"

	data, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
