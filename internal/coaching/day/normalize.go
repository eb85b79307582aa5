package day

// Normalize forces a record read from storage into the structural shape every reader relies on:
// 8 slots ordered 1..8, 3 sets per slot, non-negative values, at most 4 photos and calories
// derived from macros. Anything missing falls back to the EmptyRecord shape.
func Normalize(r DayRecord, date Date) DayRecord {
	out := EmptyRecord(date)
	if r.ID != "" {
		out.ID = r.ID
	}
	out.BodyWeight = nonNegative(r.BodyWeight)
	if r.Steps > 0 {
		out.Steps = r.Steps
	}
	out.Note = r.Note

	nutritionID := r.Nutrition.ID()
	if nutritionID == "" {
		nutritionID = NutritionID(date)
	}
	out.Nutrition = NewNutrition(nutritionID, string(date), r.Nutrition.Protein(), r.Nutrition.Carbs(), r.Nutrition.Fat())

	for i, w := range r.Workouts {
		order := w.Order
		if order == 0 {
			// rows written without an order field keep their position
			order = i + 1
		}
		if order < 1 || order > WorkoutSlots {
			continue
		}

		slot := &out.Workouts[order-1]
		if w.ID != "" {
			slot.ID = w.ID
		}
		slot.ExerciseName = w.ExerciseName
		for si, s := range w.Sets {
			setNumber := s.SetNumber
			if setNumber == 0 {
				setNumber = si + 1
			}
			if setNumber < 1 || setNumber > SetsPerWorkout {
				continue
			}
			set := &slot.Sets[setNumber-1]
			if s.ID != "" {
				set.ID = s.ID
			}
			set.WorkoutID = slot.ID
			set.Weight = nonNegative(s.Weight)
			if s.Reps > 0 {
				set.Reps = s.Reps
			}
		}
		for si := range slot.Sets {
			slot.Sets[si].WorkoutID = slot.ID
		}
	}

	for i, p := range r.Photos {
		if i >= PhotoSlots {
			break
		}
		out.Photos = append(out.Photos, p)
	}

	if r.PlannedNutrition != nil {
		pn := *r.PlannedNutrition
		out.PlannedNutrition = &pn
	}
	if r.PlannedSteps != nil {
		steps := *r.PlannedSteps
		if steps < 0 {
			steps = 0
		}
		out.PlannedSteps = &steps
	}

	return out
}
