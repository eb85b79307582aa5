package day

import (
	"encoding/json"
	"fmt"
)

type Macro string

const (
	MacroProtein Macro = "protein"
	MacroCarbs   Macro = "carbs"
	MacroFat     Macro = "fat"
)

func (m Macro) IsValid() bool {
	switch m {
	case MacroProtein, MacroCarbs, MacroFat:
		return true
	default:
		return false
	}
}

// Calories derives kcal from macro grams.
func Calories(protein, carbs, fat float64) float64 {
	return protein*4 + carbs*4 + fat*9
}

// Nutrition holds macro grams and the calories derived from them. Fields are unexported so that
// calories can only ever come out of NewNutrition or With.
type Nutrition struct {
	id       string
	dayID    string
	protein  float64
	carbs    float64
	fat      float64
	calories float64
}

func NewNutrition(id, dayID string, protein, carbs, fat float64) Nutrition {
	return Nutrition{
		id:       id,
		dayID:    dayID,
		protein:  nonNegative(protein),
		carbs:    nonNegative(carbs),
		fat:      nonNegative(fat),
		calories: Calories(nonNegative(protein), nonNegative(carbs), nonNegative(fat)),
	}
}

func ZeroNutrition(date Date) Nutrition {
	return NewNutrition(NutritionID(date), string(date), 0, 0, 0)
}

func (n Nutrition) ID() string { return n.id }
func (n Nutrition) DayID() string { return n.dayID }
func (n Nutrition) Protein() float64 { return n.protein }
func (n Nutrition) Carbs() float64 { return n.carbs }
func (n Nutrition) Fat() float64 { return n.fat }
func (n Nutrition) Calories() float64 { return n.calories }
func (n Nutrition) IsZero() bool { return n.protein == 0 && n.carbs == 0 && n.fat == 0 }

func (n Nutrition) Macro(m Macro) float64 {
	switch m {
	case MacroProtein:
		return n.protein
	case MacroCarbs:
		return n.carbs
	case MacroFat:
		return n.fat
	default:
		return 0
	}
}

// With returns a copy with one macro replaced and calories recomputed.
func (n Nutrition) With(m Macro, value float64) (Nutrition, error) {
	if !m.IsValid() {
		return n, fmt.Errorf("unknown macro: %q", m)
	}
	protein, carbs, fat := n.protein, n.carbs, n.fat
	switch m {
	case MacroProtein:
		protein = value
	case MacroCarbs:
		carbs = value
	case MacroFat:
		fat = value
	}
	return NewNutrition(n.id, n.dayID, protein, carbs, fat), nil
}

// Rekey returns a copy bound to another id/day.
func (n Nutrition) Rekey(id, dayID string) Nutrition {
	return NewNutrition(id, dayID, n.protein, n.carbs, n.fat)
}

type nutritionJSON struct {
	ID       string  `json:"id"`
	DayID    string  `json:"dayId"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Calories float64 `json:"calories"`
}

func (n Nutrition) MarshalJSON() ([]byte, error) {
	return json.Marshal(nutritionJSON{
		ID:       n.id,
		DayID:    n.dayID,
		Protein:  n.protein,
		Carbs:    n.carbs,
		Fat:      n.fat,
		Calories: n.calories,
	})
}

// UnmarshalJSON ignores any stored calories value and derives it again.
func (n *Nutrition) UnmarshalJSON(data []byte) error {
	var raw nutritionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = NewNutrition(raw.ID, raw.DayID, raw.Protein, raw.Carbs, raw.Fat)
	return nil
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
