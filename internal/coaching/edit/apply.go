package edit

import (
	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/resolve"
)

// Apply takes the effective record of view, applies exactly one change and returns the whole
// record to be persisted. view is not modified.
func Apply(view resolve.EffectiveView, c Change) (day.DayRecord, error) {
	if err := c.Validate(); err != nil {
		return day.DayRecord{}, err
	}

	r := view.Record.Clone()
	if r.ID == "" {
		r.ID = string(view.Date)
	}
	r.Date = view.Date

	switch c.Kind {
	case KindBodyWeight:
		r.BodyWeight = c.Value
	case KindSteps:
		r.Steps = int(c.Value)
	case KindMacro:
		n, err := r.Nutrition.With(c.Macro, c.Value)
		if err != nil {
			return day.DayRecord{}, invalid("%s", err)
		}
		r.Nutrition = n
	case KindPlannedMacro:
		base := view.PlannedNutrition
		if r.PlannedNutrition != nil {
			base = *r.PlannedNutrition
		}
		n, err := base.Rekey(day.NutritionID(view.Date), string(view.Date)).With(c.Macro, c.Value)
		if err != nil {
			return day.DayRecord{}, invalid("%s", err)
		}
		r.PlannedNutrition = &n
	case KindPlannedSteps:
		steps := int(c.Value)
		r.PlannedSteps = &steps
	case KindSet:
		seedTemplate(&r, view)
		set := &r.Workouts[c.Order-1].Sets[c.SetNumber-1]
		set.Weight = c.Weight
		set.Reps = c.Reps
	case KindExerciseName:
		seedTemplate(&r, view)
		r.Workouts[c.Order-1].ExerciseName = c.Name
	case KindExerciseNames:
		seedTemplate(&r, view)
		for i, name := range c.Names {
			r.Workouts[i].ExerciseName = name
		}
	case KindPhoto:
		for len(r.Photos) < day.PhotoSlots {
			r.Photos = append(r.Photos, "")
		}
		r.Photos[c.Slot] = c.Data
		r.Photos = trimPhotos(r.Photos)
	case KindNote:
		r.Note = c.Text
	}

	return r, nil
}

// seedTemplate gives a record that names no exercise of its own the inherited exercise names,
// so that a set logged on it is tied to the exercise the client actually saw.
func seedTemplate(r *day.DayRecord, view resolve.EffectiveView) {
	if len(r.Workouts) != day.WorkoutSlots {
		*r = day.Normalize(*r, view.Date)
	}
	if r.IsTemplateBearing() || view.TemplateOriginDate == nil {
		return
	}
	for _, tw := range view.Workouts {
		if tw.Order >= 1 && tw.Order <= day.WorkoutSlots {
			r.Workouts[tw.Order-1].ExerciseName = tw.ExerciseName
		}
	}
}

func trimPhotos(photos []string) []string {
	end := len(photos)
	for end > 0 && photos[end-1] == "" {
		end--
	}
	return photos[:end]
}
