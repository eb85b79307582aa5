package resolve

import "github.com/2beens/fitcoach/internal/coaching/day"

// Performance picks the date whose logged sets are shown as reference values on target.
// The search never goes below templateOrigin: older sets belong to a different plan.
func Performance(target day.Date, templateOrigin *day.Date, h *History) *day.Date {
	if templateOrigin == nil {
		return nil
	}
	if r, ok := h.Record(target); ok && r.IsPerformanceBearing() {
		return target.Ptr()
	}
	origin, ok := h.latestBefore(target, performanceBearing)
	if !ok || origin < *templateOrigin {
		return nil
	}
	return origin.Ptr()
}
