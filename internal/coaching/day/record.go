package day

import (
	"fmt"
	"strings"
)

const (
	WorkoutSlots   = 8
	SetsPerWorkout = 3
	PhotoSlots     = 4
)

type PhotoSlot int

const (
	PhotoLeft PhotoSlot = iota
	PhotoRight
	PhotoFront
	PhotoBack
)

var photoLabels = [PhotoSlots]string{"left view", "right view", "front", "back"}

func (p PhotoSlot) Valid() bool {
	return p >= 0 && int(p) < PhotoSlots
}

func (p PhotoSlot) Label() string {
	if !p.Valid() {
		return ""
	}
	return photoLabels[p]
}

type Set struct {
	ID        string  `json:"id"`
	WorkoutID string  `json:"workoutId"`
	SetNumber int     `json:"setNumber"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
}

func (s Set) Performed() bool {
	return s.Weight > 0 || s.Reps > 0
}

type Workout struct {
	ID           string `json:"id"`
	DayID        string `json:"dayId"`
	ExerciseName string `json:"exerciseName"`
	Order        int    `json:"order"`
	Sets         []Set  `json:"sets"`
}

func (w Workout) Named() bool {
	return strings.TrimSpace(w.ExerciseName) != ""
}

type DayRecord struct {
	ID               string     `json:"id"`
	Date             Date       `json:"date"`
	BodyWeight       float64    `json:"bodyWeight"`
	Steps            int        `json:"steps"`
	Nutrition        Nutrition  `json:"nutrition"`
	Workouts         []Workout  `json:"workouts"`
	Note             string     `json:"note,omitempty"`
	Photos           []string   `json:"photos"`
	PlannedNutrition *Nutrition `json:"plannedNutrition,omitempty"`
	PlannedSteps     *int       `json:"plannedSteps,omitempty"`
}

func WorkoutID(date Date, order int) string {
	return fmt.Sprintf("w-%s-%d", date, order)
}

func SetID(date Date, order, setNumber int) string {
	return fmt.Sprintf("s-%s-%d-%d", date, order, setNumber)
}

func NutritionID(date Date) string {
	return "nut-" + string(date)
}

// EmptyWorkouts returns the 8 unset slots of a date, each with 3 unperformed sets.
// Identifiers are derived from date and position only, so repeated calls are identical.
func EmptyWorkouts(date Date) []Workout {
	workouts := make([]Workout, WorkoutSlots)
	for i := range workouts {
		workouts[i] = emptyWorkout(date, i+1)
	}
	return workouts
}

func emptyWorkout(date Date, order int) Workout {
	w := Workout{
		ID:    WorkoutID(date, order),
		DayID: string(date),
		Order: order,
		Sets:  make([]Set, SetsPerWorkout),
	}
	for s := range w.Sets {
		w.Sets[s] = Set{
			ID:        SetID(date, order, s+1),
			WorkoutID: w.ID,
			SetNumber: s + 1,
		}
	}
	return w
}

// EmptyRecord is the one "nothing logged" shape of a day. Both the synthesizer and the
// store read path build on it.
func EmptyRecord(date Date) DayRecord {
	return DayRecord{
		ID:        string(date),
		Date:      date,
		Nutrition: ZeroNutrition(date),
		Workouts:  EmptyWorkouts(date),
		Photos:    []string{},
	}
}

// RekeyedWorkouts copies template workouts onto date: names and order are kept, identifiers
// are rebuilt for date and every set is reset to 0/0.
func RekeyedWorkouts(template []Workout, date Date) []Workout {
	workouts := EmptyWorkouts(date)
	for _, tw := range template {
		if tw.Order < 1 || tw.Order > WorkoutSlots {
			continue
		}
		workouts[tw.Order-1].ExerciseName = tw.ExerciseName
	}
	return workouts
}

func (r DayRecord) IsTemplateBearing() bool {
	for _, w := range r.Workouts {
		if w.Named() {
			return true
		}
	}
	return false
}

func (r DayRecord) IsPerformanceBearing() bool {
	for _, w := range r.Workouts {
		for _, s := range w.Sets {
			if s.Performed() {
				return true
			}
		}
	}
	return false
}

func (r DayRecord) HasPhotos() bool {
	for _, p := range r.Photos {
		if p != "" {
			return true
		}
	}
	return false
}

func (r DayRecord) Photo(slot PhotoSlot) string {
	if !slot.Valid() || int(slot) >= len(r.Photos) {
		return ""
	}
	return r.Photos[slot]
}

// Clone deep copies the record so the copy can be changed without touching cached state.
func (r DayRecord) Clone() DayRecord {
	c := r
	c.Workouts = make([]Workout, len(r.Workouts))
	for i, w := range r.Workouts {
		cw := w
		cw.Sets = append([]Set(nil), w.Sets...)
		c.Workouts[i] = cw
	}
	c.Photos = append([]string{}, r.Photos...)
	if r.PlannedNutrition != nil {
		pn := *r.PlannedNutrition
		c.PlannedNutrition = &pn
	}
	if r.PlannedSteps != nil {
		ps := *r.PlannedSteps
		c.PlannedSteps = &ps
	}
	return c
}
