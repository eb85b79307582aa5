package resolve

import (
	"sort"

	"github.com/2beens/fitcoach/internal/coaching/day"
)

// History is an immutable, date-sorted snapshot of one client's records. Besides the sorted
// dates it keeps, per position, the index of the latest record at or before that position
// carrying each kind of data the resolvers look for. A backward search is then one binary
// search plus a table read.
type History struct {
	records map[day.Date]day.DayRecord
	dates   []day.Date

	lastTemplate         []int
	lastPlannedNutrition []int
	lastPlannedSteps     []int
	lastPerformance      []int
}

func NewHistory(records []day.DayRecord) *History {
	byDate := make(map[day.Date]day.DayRecord, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}
	return newHistory(byDate)
}

func newHistory(byDate map[day.Date]day.DayRecord) *History {
	h := &History{
		records: byDate,
		dates:   make([]day.Date, 0, len(byDate)),
	}
	for d := range byDate {
		h.dates = append(h.dates, d)
	}
	sort.Slice(h.dates, func(i, j int) bool {
		return h.dates[i] < h.dates[j]
	})

	h.lastTemplate = h.latestWhere(day.DayRecord.IsTemplateBearing)
	h.lastPlannedNutrition = h.latestWhere(func(r day.DayRecord) bool {
		return r.PlannedNutrition != nil
	})
	h.lastPlannedSteps = h.latestWhere(func(r day.DayRecord) bool {
		return r.PlannedSteps != nil
	})
	h.lastPerformance = h.latestWhere(day.DayRecord.IsPerformanceBearing)

	return h
}

func (h *History) latestWhere(bearing func(day.DayRecord) bool) []int {
	latest := make([]int, len(h.dates))
	last := -1
	for i, d := range h.dates {
		if bearing(h.records[d]) {
			last = i
		}
		latest[i] = last
	}
	return latest
}

// With returns a new History with record stored under its date, replacing any previous one.
func (h *History) With(record day.DayRecord) *History {
	byDate := make(map[day.Date]day.DayRecord, len(h.records)+1)
	for d, r := range h.records {
		byDate[d] = r
	}
	byDate[record.Date] = record
	return newHistory(byDate)
}

// Without returns a new History lacking the record of date.
func (h *History) Without(date day.Date) *History {
	byDate := make(map[day.Date]day.DayRecord, len(h.records))
	for d, r := range h.records {
		if d != date {
			byDate[d] = r
		}
	}
	return newHistory(byDate)
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.dates)
}

func (h *History) Record(date day.Date) (day.DayRecord, bool) {
	if h == nil {
		return day.DayRecord{}, false
	}
	r, ok := h.records[date]
	return r, ok
}

// Records returns all records in ascending date order.
func (h *History) Records() []day.DayRecord {
	if h == nil {
		return nil
	}
	out := make([]day.DayRecord, 0, len(h.dates))
	for _, d := range h.dates {
		out = append(out, h.records[d])
	}
	return out
}

// before returns the position of the latest date strictly before date, or -1.
func (h *History) before(date day.Date) int {
	return sort.Search(len(h.dates), func(i int) bool {
		return h.dates[i] >= date
	}) - 1
}

type bearing int

const (
	templateBearing bearing = iota
	plannedNutritionBearing
	plannedStepsBearing
	performanceBearing
)

// latestBefore returns the latest date strictly before date carrying the given kind of data.
func (h *History) latestBefore(date day.Date, kind bearing) (day.Date, bool) {
	if h == nil {
		return "", false
	}
	pos := h.before(date)
	if pos < 0 {
		return "", false
	}

	var latest []int
	switch kind {
	case templateBearing:
		latest = h.lastTemplate
	case plannedNutritionBearing:
		latest = h.lastPlannedNutrition
	case plannedStepsBearing:
		latest = h.lastPlannedSteps
	default:
		latest = h.lastPerformance
	}
	if latest[pos] < 0 {
		return "", false
	}
	return h.dates[latest[pos]], true
}
