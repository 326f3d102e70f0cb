package types

import (
	"time"

	"github.com/rxtech-lab/ema-cross/pkg/errors"
)

// Timeframe is the width of one candle, in exchange notation.
type Timeframe string

const (
	TimeframeOneMinute      Timeframe = "1m"
	TimeframeFiveMinutes    Timeframe = "5m"
	TimeframeFifteenMinutes Timeframe = "15m"
	TimeframeThirtyMinutes  Timeframe = "30m"
	TimeframeOneHour        Timeframe = "1h"
	TimeframeFourHours      Timeframe = "4h"
	TimeframeOneDay         Timeframe = "1d"
	TimeframeOneWeek        Timeframe = "1w"
)

var timeframeDurations = map[Timeframe]time.Duration{
	TimeframeOneMinute:      time.Minute,
	TimeframeFiveMinutes:    5 * time.Minute,
	TimeframeFifteenMinutes: 15 * time.Minute,
	TimeframeThirtyMinutes:  30 * time.Minute,
	TimeframeOneHour:        time.Hour,
	TimeframeFourHours:      4 * time.Hour,
	TimeframeOneDay:         24 * time.Hour,
	TimeframeOneWeek:        7 * 24 * time.Hour,
}

// ParseTimeframe validates a timeframe string. MetaTrader style names
// (M1, M5, M15, M30, H1, H4, D1, W1, daily, weekly) are accepted as aliases.
func ParseTimeframe(s string) (Timeframe, error) {
	aliases := map[string]Timeframe{
		"M1": TimeframeOneMinute, "M5": TimeframeFiveMinutes, "M15": TimeframeFifteenMinutes,
		"M30": TimeframeThirtyMinutes, "H1": TimeframeOneHour, "H4": TimeframeFourHours,
		"D1": TimeframeOneDay, "W1": TimeframeOneWeek, "daily": TimeframeOneDay, "weekly": TimeframeOneWeek,
	}
	if tf, ok := aliases[s]; ok {
		return tf, nil
	}

	tf := Timeframe(s)
	if _, ok := timeframeDurations[tf]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", s)
	}

	return tf, nil
}

// Duration returns the candle width, or 0 for an unknown timeframe.
func (t Timeframe) Duration() time.Duration {
	return timeframeDurations[t]
}

func (t Timeframe) String() string {
	return string(t)
}
