package marketdata

import "github.com/polygon-io/client-go/rest/models"

// Timespan is the candle interval label used across the download tooling.
type Timespan string

const (
	TimespanOneMinute      Timespan = "1m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanFourHours      Timespan = "4h"
	TimespanOneDay         Timespan = "1d"
	TimespanOneWeek        Timespan = "1w"
)

// AllTimespans lists the supported interval labels for validation.
var AllTimespans = []Timespan{
	TimespanOneMinute,
	TimespanFiveMinutes,
	TimespanFifteenMinutes,
	TimespanThirtyMinutes,
	TimespanOneHour,
	TimespanFourHours,
	TimespanOneDay,
	TimespanOneWeek,
}

// Multiplier returns the aggregate multiplier for the Polygon API.
func (t Timespan) Multiplier() int {
	switch t {
	case TimespanFiveMinutes:
		return 5
	case TimespanFifteenMinutes:
		return 15
	case TimespanThirtyMinutes:
		return 30
	case TimespanFourHours:
		return 4
	default:
		return 1
	}
}

// Timespan returns the base Polygon timespan unit.
func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneMinute, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes:
		return models.Minute
	case TimespanOneHour, TimespanFourHours:
		return models.Hour
	case TimespanOneWeek:
		return models.Week
	default:
		return models.Day
	}
}
