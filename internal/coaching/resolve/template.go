package resolve

import "github.com/2beens/fitcoach/internal/coaching/day"

// Template finds which date's exercises apply on target: the target itself when it names
// at least one exercise, otherwise the most recent earlier date that does. With no such date
// the origin is nil and the 8 empty slots of target are returned.
func Template(target day.Date, h *History) (*day.Date, []day.Workout) {
	if r, ok := h.Record(target); ok && r.IsTemplateBearing() {
		return target.Ptr(), r.Workouts
	}
	if origin, ok := h.latestBefore(target, templateBearing); ok {
		r, _ := h.Record(origin)
		return origin.Ptr(), r.Workouts
	}
	return nil, day.EmptyWorkouts(target)
}
