package coaching

import (
	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/resolve"
)

type WeightPoint struct {
	Date   day.Date `json:"date"`
	Weight float64  `json:"weight"`
}

// Progression is the body weight curve and the photo dates of one client.
// CompareFrom and CompareTo are the default photo comparison pair: first and last photo date.
type Progression struct {
	Weights     []WeightPoint `json:"weights"`
	PhotoDates  []day.Date    `json:"photoDates"`
	CompareFrom *day.Date     `json:"compareFrom"`
	CompareTo   *day.Date     `json:"compareTo"`
}

func BuildProgression(h *resolve.History) Progression {
	p := Progression{
		Weights:    []WeightPoint{},
		PhotoDates: []day.Date{},
	}

	for _, r := range h.Records() {
		if r.BodyWeight > 0 {
			p.Weights = append(p.Weights, WeightPoint{Date: r.Date, Weight: r.BodyWeight})
		}
		if r.HasPhotos() {
			p.PhotoDates = append(p.PhotoDates, r.Date)
		}
	}

	if n := len(p.PhotoDates); n > 0 {
		p.CompareFrom = p.PhotoDates[0].Ptr()
		p.CompareTo = p.PhotoDates[n-1].Ptr()
	}

	return p
}
