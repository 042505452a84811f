// Package status computes the watering state of a plant from its cadence and
// last-watered instant. All functions are pure and take an explicit reference
// time; days are a fixed 24 hours with no timezone or DST handling.
package status

import (
	"fmt"
	"math"
	"sort"
	"time"

	"sprout/internal/database"
)

type State string

const (
	StateNever    State = "never"
	StateOverdue  State = "overdue"
	StateDueToday State = "due-today"
	StateDueSoon  State = "due-soon"
	StateGood     State = "good"
)

const dayMillis = 24 * 60 * 60 * 1000

func floorDays(d time.Duration) int {
	return int(math.Floor(float64(d.Milliseconds()) / dayMillis))
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d.Milliseconds()) / dayMillis))
}

// PlantStatus is the computed view returned by the listing and detail
// endpoints alongside the raw plant fields.
type PlantStatus struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Species               *string    `json:"species,omitempty"`
	LastWatered           *time.Time `json:"lastWatered,omitempty"`
	WateringFrequencyDays int        `json:"wateringFrequencyDays"`
	ProfileImageURL       *string    `json:"profileImageUrl,omitempty"`
	DaysUntilNextWatering int        `json:"daysUntilNextWatering"`
	IsOverdue             bool       `json:"isOverdue"`
	DaysSinceWatered      *int       `json:"daysSinceWatered,omitempty"`
}

// Calculate derives the status fields served with plant rows.
//
// daysUntilNextWatering = frequency - floor(daysSince); overdue when that goes
// negative. A plant that was never watered counts as overdue with
// daysUntilNextWatering pinned to 0 and no daysSinceWatered value.
func Calculate(plant *database.Plant, now time.Time) PlantStatus {
	s := PlantStatus{
		ID:                    plant.ID,
		Name:                  plant.Name,
		Species:               plant.Species,
		LastWatered:           plant.LastWatered,
		WateringFrequencyDays: plant.WateringFrequencyDays,
		ProfileImageURL:       plant.ProfileImageURL,
		DaysUntilNextWatering: plant.WateringFrequencyDays,
	}

	if plant.LastWatered != nil {
		daysSince := floorDays(now.Sub(*plant.LastWatered))
		s.DaysSinceWatered = &daysSince
		s.DaysUntilNextWatering = plant.WateringFrequencyDays - daysSince
		s.IsOverdue = s.DaysUntilNextWatering < 0
	} else {
		// Never watered - consider overdue
		s.IsOverdue = true
		s.DaysUntilNextWatering = 0
	}

	return s
}

// Classify buckets a plant into its display state.
//
// The due-soon branch checks <= 1, but 0 is already taken by due-today, so
// only exactly 1 lands there. That boundary is intentional.
func Classify(plant *database.Plant, now time.Time) State {
	if plant.LastWatered == nil {
		return StateNever
	}

	next := plant.LastWatered.Add(time.Duration(plant.WateringFrequencyDays) * 24 * time.Hour)
	daysUntil := ceilDays(next.Sub(now))

	switch {
	case now.After(next):
		return StateOverdue
	case daysUntil == 0:
		return StateDueToday
	case daysUntil <= 1:
		return StateDueSoon
	default:
		return StateGood
	}
}

// Label is the short urgency badge for a state.
func Label(s State) string {
	switch s {
	case StateOverdue:
		return "Urgent"
	case StateNever:
		return "New"
	case StateDueToday:
		return "Due Today"
	case StateDueSoon:
		return "Due Soon"
	default:
		return "Healthy"
	}
}

// DaysSinceWateredText renders the "last watered" counter. 0 means today and
// is shown specially; no history at all reads "Never".
func DaysSinceWateredText(plant *database.Plant, now time.Time) string {
	if plant.LastWatered == nil {
		return "Never"
	}

	diffDays := floorDays(now.Sub(*plant.LastWatered))
	if diffDays == 0 {
		return "Today"
	}
	return fmt.Sprintf("%d", diffDays)
}

// DaysUntilNextWatering returns the ceiling-rounded day count until the next
// scheduled watering. Negative means overdue by that many days. The second
// return is false when the plant has no watering history, which is distinct
// from a numeric 0.
func DaysUntilNextWatering(plant *database.Plant, now time.Time) (int, bool) {
	if plant.LastWatered == nil {
		return 0, false
	}

	next := plant.LastWatered.Add(time.Duration(plant.WateringFrequencyDays) * 24 * time.Hour)
	return ceilDays(next.Sub(now)), true
}

// ScheduleText is the one-line schedule summary used by list rows.
func ScheduleText(plant *database.Plant, now time.Time) string {
	daysUntil, ok := DaysUntilNextWatering(plant, now)

	switch {
	case !ok:
		return "No watering history"
	case daysUntil < 0:
		return fmt.Sprintf("%d days overdue", -daysUntil)
	case daysUntil == 0:
		return "Due today"
	case daysUntil == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", daysUntil)
	}
}

// UrgencyMessage is the title/subtitle pair shown on the plant detail card.
type UrgencyMessage struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	State    State  `json:"state"`
}

// Urgency derives the detail-card message for a plant.
func Urgency(plant *database.Plant, now time.Time) UrgencyMessage {
	state := Classify(plant, now)

	switch state {
	case StateNever:
		return UrgencyMessage{
			Title:    "Track first watering",
			Subtitle: "Record when you water this plant",
			State:    state,
		}
	case StateOverdue:
		daysSince := floorDays(now.Sub(*plant.LastWatered))
		daysOverdue := daysSince - plant.WateringFrequencyDays
		plural := "s"
		if daysOverdue == 1 {
			plural = ""
		}
		return UrgencyMessage{
			Title:    "Watering overdue!",
			Subtitle: fmt.Sprintf("%d day%s past schedule", daysOverdue, plural),
			State:    state,
		}
	case StateDueToday:
		return UrgencyMessage{
			Title:    "Watering due today",
			Subtitle: "Perfect time to water your plant",
			State:    state,
		}
	case StateDueSoon:
		return UrgencyMessage{
			Title:    "Watering due soon",
			Subtitle: "Due within the next day",
			State:    state,
		}
	}

	daysUntil, _ := DaysUntilNextWatering(plant, now)
	subtitle := fmt.Sprintf("Next watering in %d days", daysUntil)
	if daysUntil == 1 {
		subtitle = "Next watering due tomorrow"
	}
	return UrgencyMessage{Title: "On schedule", Subtitle: subtitle, State: state}
}

// NeedingWater filters to plants due now or overdue, most urgent first.
func NeedingWater(plants []database.Plant, now time.Time) []PlantStatus {
	out := make([]PlantStatus, 0, len(plants))
	for i := range plants {
		s := Calculate(&plants[i], now)
		if s.IsOverdue || s.DaysUntilNextWatering <= 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilNextWatering < out[j].DaysUntilNextWatering
	})
	return out
}

// Overdue filters to overdue plants only, most urgent first.
func Overdue(plants []database.Plant, now time.Time) []PlantStatus {
	out := make([]PlantStatus, 0, len(plants))
	for i := range plants {
		s := Calculate(&plants[i], now)
		if s.IsOverdue {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilNextWatering < out[j].DaysUntilNextWatering
	})
	return out
}
