package classify

import (
	"math"
	"time"
)

// BillingUnit is the fixed rounding granularity applied to all durations:
// 0.2 hours (12 minutes), which is also the minimum billable amount.
const BillingUnit = 0.2

// Quantize rounds the duration between start and end to the billing
// increment, with a floor of one unit. Halves round up (30 minutes bills as
// 0.6, not 0.4). The result is computed in whole tenths to keep it an exact
// multiple of 0.2.
//
// Behavior for end before start is undefined; callers filter such events.
func Quantize(start, end time.Time) float64 {
	hours := end.Sub(start).Hours()

	tenths := int(math.Round(hours / BillingUnit))
	if tenths < 1 {
		tenths = 1
	}
	return float64(tenths) / 5
}
