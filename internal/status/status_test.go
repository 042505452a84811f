package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprout/internal/database"
)

var baseTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func plantWateredDaysAgo(freq int, daysAgo int) *database.Plant {
	lw := baseTime.Add(-time.Duration(daysAgo) * 24 * time.Hour)
	return &database.Plant{
		ID:                    "p1",
		Name:                  "Monstera",
		WateringFrequencyDays: freq,
		LastWatered:           &lw,
	}
}

func neverWatered(freq int) *database.Plant {
	return &database.Plant{
		ID:                    "p2",
		Name:                  "Pothos",
		WateringFrequencyDays: freq,
	}
}

func TestCalculateNeverWatered(t *testing.T) {
	for _, freq := range []int{1, 3, 7, 14, 30} {
		s := Calculate(neverWatered(freq), baseTime)

		assert.True(t, s.IsOverdue, "freq %d", freq)
		assert.Equal(t, 0, s.DaysUntilNextWatering)
		assert.Nil(t, s.DaysSinceWatered)
	}
}

func TestCalculateScenarios(t *testing.T) {
	// 7-day cadence, watered 5 days ago: 2 days of slack left.
	s := Calculate(plantWateredDaysAgo(7, 5), baseTime)
	assert.Equal(t, 2, s.DaysUntilNextWatering)
	assert.False(t, s.IsOverdue)
	require.NotNil(t, s.DaysSinceWatered)
	assert.Equal(t, 5, *s.DaysSinceWatered)

	// 14-day cadence, watered 16 days ago: 2 days overdue.
	s = Calculate(plantWateredDaysAgo(14, 16), baseTime)
	assert.Equal(t, -2, s.DaysUntilNextWatering)
	assert.True(t, s.IsOverdue)
}

func TestCalculateBoundaryDay(t *testing.T) {
	// Exactly on the due day the count reaches zero but the plant is not
	// yet overdue; overdue starts a full day past schedule.
	s := Calculate(plantWateredDaysAgo(7, 7), baseTime)
	assert.Equal(t, 0, s.DaysUntilNextWatering)
	assert.False(t, s.IsOverdue)

	s = Calculate(plantWateredDaysAgo(7, 8), baseTime)
	assert.Equal(t, -1, s.DaysUntilNextWatering)
	assert.True(t, s.IsOverdue)
}

func TestCalculateIsPure(t *testing.T) {
	p := plantWateredDaysAgo(7, 3)
	first := Calculate(p, baseTime)
	second := Calculate(p, baseTime)
	assert.Equal(t, first, second)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		plant *database.Plant
		want  State
	}{
		{"never watered", neverWatered(7), StateNever},
		{"well within schedule", plantWateredDaysAgo(7, 2), StateGood},
		{"one day before due", plantWateredDaysAgo(7, 6), StateDueSoon},
		{"exactly due", plantWateredDaysAgo(7, 7), StateDueToday},
		{"past due", plantWateredDaysAgo(7, 9), StateOverdue},
		{"freq one, watered yesterday", plantWateredDaysAgo(1, 1), StateDueToday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.plant, baseTime))
		})
	}
}

func TestClassifyOverdueJustPast(t *testing.T) {
	// One hour past the due instant is already overdue even though the
	// ceiling-rounded day count still reads 0.
	p := plantWateredDaysAgo(7, 7)
	now := baseTime.Add(time.Hour)
	assert.Equal(t, StateOverdue, Classify(p, now))

	daysUntil, ok := DaysUntilNextWatering(p, now)
	require.True(t, ok)
	assert.Equal(t, 0, daysUntil)
}

func TestDaysUntilNextWatering(t *testing.T) {
	_, ok := DaysUntilNextWatering(neverWatered(7), baseTime)
	assert.False(t, ok, "no history must be a distinct sentinel, not 0")

	daysUntil, ok := DaysUntilNextWatering(plantWateredDaysAgo(14, 16), baseTime)
	require.True(t, ok)
	assert.Equal(t, -2, daysUntil)

	daysUntil, ok = DaysUntilNextWatering(plantWateredDaysAgo(7, 5), baseTime)
	require.True(t, ok)
	assert.Equal(t, 2, daysUntil)
}

func TestDaysSinceWateredText(t *testing.T) {
	assert.Equal(t, "Never", DaysSinceWateredText(neverWatered(7), baseTime))
	assert.Equal(t, "Today", DaysSinceWateredText(plantWateredDaysAgo(7, 0), baseTime))
	assert.Equal(t, "3", DaysSinceWateredText(plantWateredDaysAgo(7, 3), baseTime))
}

func TestScheduleText(t *testing.T) {
	assert.Equal(t, "No watering history", ScheduleText(neverWatered(7), baseTime))
	assert.Equal(t, "2 days overdue", ScheduleText(plantWateredDaysAgo(14, 16), baseTime))
	assert.Equal(t, "Due today", ScheduleText(plantWateredDaysAgo(7, 7), baseTime))
	assert.Equal(t, "Due tomorrow", ScheduleText(plantWateredDaysAgo(7, 6), baseTime))
	assert.Equal(t, "Due in 2 days", ScheduleText(plantWateredDaysAgo(7, 5), baseTime))
}

func TestUrgencyMessages(t *testing.T) {
	m := Urgency(neverWatered(7), baseTime)
	assert.Equal(t, "Track first watering", m.Title)

	m = Urgency(plantWateredDaysAgo(7, 8), baseTime)
	assert.Equal(t, "Watering overdue!", m.Title)
	assert.Equal(t, "1 day past schedule", m.Subtitle, "singular day must not be pluralized")

	m = Urgency(plantWateredDaysAgo(7, 9), baseTime)
	assert.Equal(t, "2 days past schedule", m.Subtitle)

	m = Urgency(plantWateredDaysAgo(7, 7), baseTime)
	assert.Equal(t, "Watering due today", m.Title)

	m = Urgency(plantWateredDaysAgo(7, 6), baseTime)
	assert.Equal(t, "Watering due soon", m.Title)

	m = Urgency(plantWateredDaysAgo(7, 5), baseTime)
	assert.Equal(t, "On schedule", m.Title)
	assert.Equal(t, "Next watering in 2 days", m.Subtitle)

	// daysUntil == 1 always classifies as due-soon, so the healthy branch
	// never renders its "due tomorrow" wording.
	m = Urgency(plantWateredDaysAgo(8, 7), baseTime)
	assert.Equal(t, "Watering due soon", m.Title)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Urgent", Label(StateOverdue))
	assert.Equal(t, "New", Label(StateNever))
	assert.Equal(t, "Due Today", Label(StateDueToday))
	assert.Equal(t, "Due Soon", Label(StateDueSoon))
	assert.Equal(t, "Healthy", Label(StateGood))
}

func TestNeedingWaterAndOverdueFilters(t *testing.T) {
	plants := []database.Plant{
		*plantWateredDaysAgo(7, 5),   // good
		*plantWateredDaysAgo(14, 16), // overdue by 2
		*plantWateredDaysAgo(7, 7),   // due today
		*neverWatered(7),             // never -> overdue
		*plantWateredDaysAgo(10, 12), // overdue by 2
	}

	needing := NeedingWater(plants, baseTime)
	require.Len(t, needing, 4)
	assert.Equal(t, -2, needing[0].DaysUntilNextWatering)

	overdue := Overdue(plants, baseTime)
	require.Len(t, overdue, 3)
	for _, s := range overdue {
		assert.True(t, s.IsOverdue)
	}
}
