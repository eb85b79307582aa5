package edit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/2beens/fitcoach/internal/coaching/day"
)

var ErrInvalidChange = errors.New("invalid change")

// MaxSteps bounds a day's step count, logged or planned.
const MaxSteps = 1_000_000

type Kind string

const (
	KindBodyWeight    Kind = "bodyWeight"
	KindSteps         Kind = "steps"
	KindMacro         Kind = "macro"
	KindPlannedMacro  Kind = "plannedMacro"
	KindPlannedSteps  Kind = "plannedSteps"
	KindSet           Kind = "set"
	KindExerciseName  Kind = "exerciseName"
	KindExerciseNames Kind = "exerciseNames"
	KindPhoto         Kind = "photo"
	KindNote          Kind = "note"
)

// Change is exactly one field-level edit of a day record.
type Change struct {
	Kind Kind `json:"kind"`

	Value float64   `json:"value,omitempty"`
	Macro day.Macro `json:"macro,omitempty"`

	Order     int     `json:"order,omitempty"`
	SetNumber int     `json:"setNumber,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	Reps      int     `json:"reps,omitempty"`

	Name  string   `json:"name,omitempty"`
	Names []string `json:"names,omitempty"`

	Slot day.PhotoSlot `json:"slot,omitempty"`
	Data string        `json:"data,omitempty"`

	Text string `json:"text,omitempty"`
}

// IsPlanned reports whether the change touches coach-owned planned values.
func (c Change) IsPlanned() bool {
	switch c.Kind {
	case KindPlannedMacro, KindPlannedSteps, KindExerciseNames:
		return true
	default:
		return false
	}
}

func (c Change) Validate() error {
	switch c.Kind {
	case KindBodyWeight:
		if c.Value < 0 {
			return invalid("%s must not be negative", c.Kind)
		}
	case KindSteps, KindPlannedSteps:
		if c.Value < 0 || c.Value > MaxSteps {
			return invalid("%s must be within 0..%d", c.Kind, MaxSteps)
		}
		if c.Value != math.Trunc(c.Value) {
			return invalid("%s must be a whole number", c.Kind)
		}
	case KindMacro, KindPlannedMacro:
		if !c.Macro.IsValid() {
			return invalid("unknown macro %q", c.Macro)
		}
		if c.Value < 0 {
			return invalid("%s must not be negative", c.Macro)
		}
	case KindSet:
		if err := validOrder(c.Order); err != nil {
			return err
		}
		if c.SetNumber < 1 || c.SetNumber > day.SetsPerWorkout {
			return invalid("set number %d out of range", c.SetNumber)
		}
		if c.Weight < 0 || c.Reps < 0 {
			return invalid("weight and reps must not be negative")
		}
	case KindExerciseName:
		if err := validOrder(c.Order); err != nil {
			return err
		}
	case KindExerciseNames:
		if len(c.Names) > day.WorkoutSlots {
			return invalid("at most %d exercises per day", day.WorkoutSlots)
		}
	case KindPhoto:
		if !c.Slot.Valid() {
			return invalid("photo slot %d out of range", c.Slot)
		}
	case KindNote:
	default:
		return invalid("unknown change kind %q", c.Kind)
	}
	return nil
}

func validOrder(order int) error {
	if order < 1 || order > day.WorkoutSlots {
		return invalid("workout order %d out of range", order)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidChange, fmt.Sprintf(format, args...))
}

func BodyWeight(kg float64) Change {
	return Change{Kind: KindBodyWeight, Value: kg}
}

func Steps(steps int) Change {
	return Change{Kind: KindSteps, Value: float64(steps)}
}

func SetMacro(m day.Macro, grams float64) Change {
	return Change{Kind: KindMacro, Macro: m, Value: grams}
}

func PlannedMacro(m day.Macro, grams float64) Change {
	return Change{Kind: KindPlannedMacro, Macro: m, Value: grams}
}

func PlannedSteps(steps int) Change {
	return Change{Kind: KindPlannedSteps, Value: float64(steps)}
}

func LogSet(order, setNumber int, weight float64, reps int) Change {
	return Change{Kind: KindSet, Order: order, SetNumber: setNumber, Weight: weight, Reps: reps}
}

func ExerciseName(order int, name string) Change {
	return Change{Kind: KindExerciseName, Order: order, Name: name}
}

// ExerciseNames fills slots 1..len(names) in order, leaving the remaining slots untouched.
func ExerciseNames(names []string) Change {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		cleaned = append(cleaned, strings.TrimSpace(n))
	}
	return Change{Kind: KindExerciseNames, Names: cleaned}
}

func Photo(slot day.PhotoSlot, data string) Change {
	return Change{Kind: KindPhoto, Slot: slot, Data: data}
}

func Note(text string) Change {
	return Change{Kind: KindNote, Text: text}
}
