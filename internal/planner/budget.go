package planner

import "math"

// UsageSource reports minutes already spent in a month.
type UsageSource interface {
	UsedMinutes(month MonthKey) int
}

// Budget enforces the specialist's monthly hour limit. Arithmetic runs in whole
// minutes so half-hour sessions add up exactly. A non-positive limit admits nothing.
type Budget struct {
	limitMinutes int
}

// NewBudget builds a budget from an hour limit.
func NewBudget(limitHours float64) Budget {
	if limitHours <= 0 || math.IsNaN(limitHours) {
		return Budget{}
	}
	return Budget{limitMinutes: int(math.Round(limitHours * 60))}
}

// LimitHours returns the configured limit.
func (b Budget) LimitHours() float64 {
	return float64(b.limitMinutes) / 60
}

// TotalHours sums committed and selected hours for month.
func (b Budget) TotalHours(src UsageSource, month MonthKey) float64 {
	return float64(src.UsedMinutes(month)) / 60
}

// RemainingMinutes is the limit minus usage; negative only when usage was seeded over the limit.
func (b Budget) RemainingMinutes(src UsageSource, month MonthKey) int {
	return b.limitMinutes - src.UsedMinutes(month)
}

// Remaining returns the hours left in month.
func (b Budget) Remaining(src UsageSource, month MonthKey) float64 {
	return float64(b.RemainingMinutes(src, month)) / 60
}

// AtLimit reports whether no time is left in month.
func (b Budget) AtLimit(src UsageSource, month MonthKey) bool {
	return b.RemainingMinutes(src, month) <= 0
}

// Fits reports whether minutes more can be spent in month.
func (b Budget) Fits(src UsageSource, month MonthKey, minutes int) bool {
	return b.RemainingMinutes(src, month)-minutes >= 0
}
