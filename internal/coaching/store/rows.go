package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/day"

	log "github.com/sirupsen/logrus"
)

// dayRow mirrors a daily_logs row. The record blob is authoritative; flat columns are kept in
// sync on every write for reporting and for rows that predate the blob.
type dayRow struct {
	ClientID     string   `db:"client_id"`
	Date         string   `db:"date"`
	Record       []byte   `db:"record"`
	Planned      []byte   `db:"planned"`
	ProteinG     *float64 `db:"protein_g"`
	CarbsG       *float64 `db:"carbs_g"`
	FatG         *float64 `db:"fat_g"`
	CaloriesKcal *float64 `db:"calories_kcal"`
	BodyWeightKg *float64 `db:"body_weight_kg"`
	Steps        *int64   `db:"steps"`
	Training     []byte   `db:"training"`
}

type plannedColumn struct {
	PlannedSteps     *int           `json:"plannedSteps,omitempty"`
	PlannedNutrition *day.Nutrition `json:"plannedNutrition,omitempty"`
}

func hasJSON(b []byte) bool {
	return len(b) > 0 && string(b) != "null"
}

// decodeDayRow never fails: whatever cannot be read is replaced by the empty record shape.
func decodeDayRow(row dayRow) day.DayRecord {
	date := day.Date(row.Date)

	var record day.DayRecord
	fromBlob := false
	if hasJSON(row.Record) {
		if err := json.Unmarshal(row.Record, &record); err != nil {
			log.Warnf("daily log [%s/%s]: malformed record blob, using flat columns: %s", row.ClientID, row.Date, err)
			record = day.DayRecord{}
		} else {
			fromBlob = true
		}
	}

	if !fromBlob {
		record = day.EmptyRecord(date)
		record.BodyWeight = deref(row.BodyWeightKg)
		if row.Steps != nil {
			record.Steps = int(*row.Steps)
		}
		record.Nutrition = day.NewNutrition(
			day.NutritionID(date), string(date),
			deref(row.ProteinG), deref(row.CarbsG), deref(row.FatG),
		)
		if hasJSON(row.Training) {
			var workouts []day.Workout
			if err := json.Unmarshal(row.Training, &workouts); err != nil {
				log.Warnf("daily log [%s/%s]: malformed training column: %s", row.ClientID, row.Date, err)
			} else {
				record.Workouts = workouts
			}
		}
	}

	if hasJSON(row.Planned) {
		var planned plannedColumn
		if err := json.Unmarshal(row.Planned, &planned); err != nil {
			log.Warnf("daily log [%s/%s]: malformed planned column: %s", row.ClientID, row.Date, err)
		} else {
			if planned.PlannedNutrition != nil {
				record.PlannedNutrition = planned.PlannedNutrition
			}
			if planned.PlannedSteps != nil {
				record.PlannedSteps = planned.PlannedSteps
			}
		}
	}

	return day.Normalize(record, date)
}

func encodeDayRow(clientID string, date day.Date, record day.DayRecord) (dayRow, error) {
	record = day.Normalize(record, date)

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return dayRow{}, fmt.Errorf("marshal record: %w", err)
	}
	plannedJSON, err := json.Marshal(plannedColumn{
		PlannedSteps:     record.PlannedSteps,
		PlannedNutrition: record.PlannedNutrition,
	})
	if err != nil {
		return dayRow{}, fmt.Errorf("marshal planned: %w", err)
	}
	trainingJSON, err := json.Marshal(record.Workouts)
	if err != nil {
		return dayRow{}, fmt.Errorf("marshal training: %w", err)
	}

	protein := record.Nutrition.Protein()
	carbs := record.Nutrition.Carbs()
	fat := record.Nutrition.Fat()
	calories := record.Nutrition.Calories()
	bodyWeight := record.BodyWeight
	steps := int64(record.Steps)

	return dayRow{
		ClientID:     clientID,
		Date:         string(date),
		Record:       recordJSON,
		Planned:      plannedJSON,
		ProteinG:     &protein,
		CarbsG:       &carbs,
		FatG:         &fat,
		CaloriesKcal: &calories,
		BodyWeightKg: &bodyWeight,
		Steps:        &steps,
		Training:     trainingJSON,
	}, nil
}

func decodeTargets(raw []byte) (day.Targets, bool) {
	if !hasJSON(raw) {
		return day.Targets{}, false
	}
	var t day.Targets
	if err := json.Unmarshal(raw, &t); err != nil {
		log.Warnf("malformed client targets: %s", err)
		return day.Targets{}, false
	}
	return t, true
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func unixMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromUnixMilli(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
