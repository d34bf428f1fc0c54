package services

import (
	"testing"
	"time"

	"classquiz/models"

	"github.com/stretchr/testify/assert"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestResolveStatusUnscheduled(t *testing.T) {
	// Stored status passes through verbatim regardless of now.
	for _, stored := range []string{
		models.QuizStatusDraft,
		models.QuizStatusClosed,
		models.QuizStatusActive,
	} {
		quiz := &models.Quiz{Status: stored, IsScheduled: false}
		for _, now := range []time.Time{
			at(2020, time.January, 1, 0, 0),
			at(2025, time.March, 10, 12, 0),
			at(2099, time.December, 31, 23, 59),
		} {
			window := ResolveStatus(quiz, now)
			assert.Equal(t, stored, window.Status)
			assert.False(t, window.IsUpcoming)
			assert.False(t, window.IsCurrentlyActive)
			assert.False(t, window.IsExpired)
		}
	}
}

func TestResolveStatusDayWindow(t *testing.T) {
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "09:00",
		EndTime:      "17:00",
	}

	tests := []struct {
		name       string
		now        time.Time
		wantStatus string
	}{
		{"before start", at(2025, time.March, 10, 8, 59), models.QuizStatusScheduled},
		{"at start", at(2025, time.March, 10, 9, 0), models.QuizStatusActive},
		{"midday", at(2025, time.March, 10, 12, 0), models.QuizStatusActive},
		{"just before end", at(2025, time.March, 10, 16, 59), models.QuizStatusActive},
		{"at end", at(2025, time.March, 10, 17, 0), models.QuizStatusClosed},
		{"after end", at(2025, time.March, 11, 0, 0), models.QuizStatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := ResolveStatus(quiz, tt.now)
			assert.Equal(t, tt.wantStatus, window.Status)
		})
	}
}

func TestResolveStatusExhaustive(t *testing.T) {
	// Exactly one of upcoming/active/expired holds for any now.
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "09:00",
		EndTime:      "17:00",
	}

	for hour := 0; hour < 24; hour++ {
		for _, min := range []int{0, 30, 59} {
			window := ResolveStatus(quiz, at(2025, time.March, 10, hour, min))
			flags := 0
			for _, f := range []bool{window.IsUpcoming, window.IsCurrentlyActive, window.IsExpired} {
				if f {
					flags++
				}
			}
			assert.Equal(t, 1, flags, "at %02d:%02d", hour, min)
		}
	}
}

func TestResolveStatusMidnightCrossing(t *testing.T) {
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "22:00",
		EndTime:      "02:00",
	}

	window := ResolveStatus(quiz, at(2025, time.March, 11, 1, 0))
	assert.True(t, window.IsCurrentlyActive)
	assert.Equal(t, models.QuizStatusActive, window.Status)
	assert.Equal(t, 11, window.EndsAt.Day())

	window = ResolveStatus(quiz, at(2025, time.March, 11, 2, 0))
	assert.True(t, window.IsExpired)
}

func TestResolveStatusEndEqualsStartRollsOver(t *testing.T) {
	// An end time equal to the start time crosses midnight too: the
	// rollover comparison is inclusive.
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "09:30",
		EndTime:      "09:30",
	}

	window := ResolveStatus(quiz, at(2025, time.March, 10, 12, 0))
	assert.True(t, window.IsCurrentlyActive)
	assert.Equal(t, 11, window.EndsAt.Day())
}

func TestResolveStatusDueDateOnly(t *testing.T) {
	// Without an end time, the due date closes at the end of that day.
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "09:00",
		DueDate:      datePtr(2025, time.March, 12),
	}

	window := ResolveStatus(quiz, at(2025, time.March, 12, 23, 59))
	assert.True(t, window.IsCurrentlyActive)

	window = ResolveStatus(quiz, at(2025, time.March, 13, 0, 0))
	assert.True(t, window.IsExpired)
}

func TestResolveStatusDueDateWithEndTime(t *testing.T) {
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "09:00",
		EndTime:      "15:00",
		DueDate:      datePtr(2025, time.March, 12),
	}

	window := ResolveStatus(quiz, at(2025, time.March, 12, 14, 59))
	assert.True(t, window.IsCurrentlyActive)

	window = ResolveStatus(quiz, at(2025, time.March, 12, 15, 0))
	assert.True(t, window.IsExpired)
}

func TestResolveStatusNoEndStaysActive(t *testing.T) {
	// Neither due date nor end time: active indefinitely once started.
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "09:00",
	}

	window := ResolveStatus(quiz, at(2090, time.June, 1, 12, 0))
	assert.True(t, window.IsCurrentlyActive)
	assert.Equal(t, models.QuizStatusActive, window.Status)
}

func TestResolveStatusIncompleteScheduleFallsBack(t *testing.T) {
	quiz := &models.Quiz{
		IsScheduled: true,
		Status:      models.QuizStatusDraft,
		StartTime:   "09:00",
		// ScheduleDate missing
	}

	window := ResolveStatus(quiz, at(2025, time.March, 10, 12, 0))
	assert.Equal(t, models.QuizStatusDraft, window.Status)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		min     int
		wantErr bool
	}{
		{in: "09:00", hour: 9, min: 0},
		{in: "23:59", hour: 23, min: 59},
		{in: "0:5", hour: 0, min: 5},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		hour, min, err := parseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.hour, hour, tt.in)
		assert.Equal(t, tt.min, min, tt.in)
	}
}

func TestFormatWindow(t *testing.T) {
	quiz := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "14:00",
		EndTime:      "17:30",
	}
	window := ResolveStatus(quiz, at(2025, time.March, 10, 8, 0))
	assert.Equal(t, "available from March 10, 2025 at 2:00 PM until March 10, 2025 at 5:30 PM", formatWindow(window))

	open := &models.Quiz{
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "14:00",
	}
	window = ResolveStatus(open, at(2025, time.March, 10, 8, 0))
	assert.Equal(t, "available from March 10, 2025 at 2:00 PM", formatWindow(window))
}
