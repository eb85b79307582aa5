package resolve

import "github.com/2beens/fitcoach/internal/coaching/day"

// EffectiveView is everything needed to render and edit one date of a client.
type EffectiveView struct {
	Date             day.Date      `json:"date"`
	Workouts         []day.Workout `json:"workouts"`
	PlannedNutrition day.Nutrition `json:"plannedNutrition"`
	PlannedSteps     int           `json:"plannedSteps"`

	PlanOriginDate      *day.Date `json:"planOriginDate"`
	TemplateOriginDate  *day.Date `json:"templateOriginDate"`
	NutritionOriginDate *day.Date `json:"nutritionOriginDate"`
	StepsOriginDate     *day.Date `json:"stepsOriginDate"`
	PerfOriginDate      *day.Date `json:"perfOriginDate"`

	// ReferenceWorkouts are the sets logged on PerfOriginDate, set only when that is not Date.
	ReferenceWorkouts []day.Workout `json:"referenceWorkouts,omitempty"`

	Record day.DayRecord `json:"record"`
	Stored bool          `json:"stored"`
}

// Effective composes the template, plan and performance resolvers for target. It only reads h.
func Effective(target day.Date, h *History, targets day.Targets) EffectiveView {
	templateOrigin, workouts := Template(target, h)
	plan := Plan(target, h, targets)
	perfOrigin := Performance(target, templateOrigin, h)

	view := EffectiveView{
		Date:                target,
		Workouts:            workouts,
		PlannedNutrition:    plan.Nutrition,
		PlannedSteps:        plan.Steps,
		PlanOriginDate:      plan.Origin(),
		TemplateOriginDate:  templateOrigin,
		NutritionOriginDate: plan.NutritionOrigin,
		StepsOriginDate:     plan.StepsOrigin,
		PerfOriginDate:      perfOrigin,
	}

	if perfOrigin != nil && *perfOrigin != target {
		if ref, ok := h.Record(*perfOrigin); ok {
			view.ReferenceWorkouts = ref.Workouts
		}
	}

	if stored, ok := h.Record(target); ok {
		view.Record = stored
		view.Stored = true
		return view
	}

	record := day.EmptyRecord(target)
	record.Workouts = day.RekeyedWorkouts(workouts, target)
	view.Record = record

	return view
}
