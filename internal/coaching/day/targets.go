package day

import "encoding/json"

const GlobalPlanID = "global"

// Targets are the client-wide fallback goals used when no planned override is found.
type Targets struct {
	Protein float64
	Carbs   float64
	Fat     float64
	Steps   int
}

var InitialTargets = Targets{
	Protein: 160,
	Carbs:   250,
	Fat:     70,
	Steps:   10000,
}

func (t Targets) Calories() float64 {
	return Calories(t.Protein, t.Carbs, t.Fat)
}

// Nutrition builds the synthetic plan used when no date carries planned nutrition.
func (t Targets) Nutrition() Nutrition {
	return NewNutrition(GlobalPlanID, GlobalPlanID, t.Protein, t.Carbs, t.Fat)
}

func (t Targets) Valid() bool {
	return t.Protein >= 0 && t.Carbs >= 0 && t.Fat >= 0 && t.Steps >= 0
}

type targetsJSON struct {
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Calories float64 `json:"calories"`
	Steps    int     `json:"steps"`
}

func (t Targets) MarshalJSON() ([]byte, error) {
	return json.Marshal(targetsJSON{
		Protein:  t.Protein,
		Carbs:    t.Carbs,
		Fat:      t.Fat,
		Calories: t.Calories(),
		Steps:    t.Steps,
	})
}

func (t *Targets) UnmarshalJSON(data []byte) error {
	var raw targetsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Targets{
		Protein: raw.Protein,
		Carbs:   raw.Carbs,
		Fat:     raw.Fat,
		Steps:   raw.Steps,
	}
	return nil
}
