package resolve

import "github.com/2beens/fitcoach/internal/coaching/day"

type PlanResult struct {
	Nutrition       day.Nutrition
	Steps           int
	NutritionOrigin *day.Date
	StepsOrigin     *day.Date
}

// Plan resolves planned nutrition and planned steps independently. Each comes from the target
// when set there, else from the most recent earlier date that set it, else from targets.
// An explicit plannedSteps of 0 counts as set.
func Plan(target day.Date, h *History, targets day.Targets) PlanResult {
	res := PlanResult{
		Nutrition: targets.Nutrition(),
		Steps:     targets.Steps,
	}

	if r, ok := h.Record(target); ok && r.PlannedNutrition != nil {
		res.Nutrition = *r.PlannedNutrition
		res.NutritionOrigin = target.Ptr()
	} else if origin, ok := h.latestBefore(target, plannedNutritionBearing); ok {
		r, _ := h.Record(origin)
		res.Nutrition = *r.PlannedNutrition
		res.NutritionOrigin = origin.Ptr()
	}

	if r, ok := h.Record(target); ok && r.PlannedSteps != nil {
		res.Steps = *r.PlannedSteps
		res.StepsOrigin = target.Ptr()
	} else if origin, ok := h.latestBefore(target, plannedStepsBearing); ok {
		r, _ := h.Record(origin)
		res.Steps = *r.PlannedSteps
		res.StepsOrigin = origin.Ptr()
	}

	return res
}

// Origin is the most recent of the two plan origins, nil when both fell back to targets.
func (p PlanResult) Origin() *day.Date {
	switch {
	case p.NutritionOrigin == nil:
		return p.StepsOrigin
	case p.StepsOrigin == nil:
		return p.NutritionOrigin
	case *p.StepsOrigin > *p.NutritionOrigin:
		return p.StepsOrigin
	default:
		return p.NutritionOrigin
	}
}
