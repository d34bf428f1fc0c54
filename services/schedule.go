package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"classquiz/models"
)

// nowFunc is swapped out in tests for deterministic time travel.
var nowFunc = time.Now

// farFuture is the end sentinel for scheduled quizzes with neither a
// due date nor an end time: once started they stay active indefinitely.
var farFuture = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// QuizWindow is the resolved lifecycle view of a quiz at a given
// instant. Exactly one of IsUpcoming/IsCurrentlyActive/IsExpired is
// true for a scheduled quiz; all are false for unscheduled ones.
type QuizWindow struct {
	Status            string    `json:"status"`
	IsUpcoming        bool      `json:"is_upcoming"`
	IsCurrentlyActive bool      `json:"is_currently_active"`
	IsExpired         bool      `json:"is_expired"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
}

// ResolveStatus maps a quiz's persisted scheduling fields plus "now" to
// its effective status. It never writes anything back; the stored
// status of a scheduled quiz is advisory only and is superseded by the
// result of this function on every read path.
func ResolveStatus(quiz *models.Quiz, now time.Time) QuizWindow {
	if !quiz.IsScheduled {
		return QuizWindow{Status: quiz.Status}
	}

	startHour, startMin, err := parseClock(quiz.StartTime)
	if err != nil || quiz.ScheduleDate == nil {
		// Scheduling fields are incomplete; fall back to the stored status.
		return QuizWindow{Status: quiz.Status}
	}

	start := atClock(*quiz.ScheduleDate, startHour, startMin)
	end := resolveEnd(quiz, start, startHour, startMin)

	w := QuizWindow{StartsAt: start, EndsAt: end}
	switch {
	case now.Before(start):
		w.IsUpcoming = true
		w.Status = models.QuizStatusScheduled
	case now.Before(end):
		w.IsCurrentlyActive = true
		w.Status = models.QuizStatusActive
	default:
		w.IsExpired = true
		w.Status = models.QuizStatusClosed
	}
	return w
}

func resolveEnd(quiz *models.Quiz, start time.Time, startHour, startMin int) time.Time {
	endHour, endMin, endErr := parseClock(quiz.EndTime)

	switch {
	case quiz.DueDate != nil && endErr == nil:
		return atClock(*quiz.DueDate, endHour, endMin)
	case quiz.DueDate != nil:
		return endOfDay(*quiz.DueDate)
	case endErr == nil:
		end := atClock(*quiz.ScheduleDate, endHour, endMin)
		// An end time at or before the start time means the window
		// crosses midnight, so the end date rolls to the next day.
		if endHour < startHour || (endHour == startHour && endMin <= startMin) {
			end = end.AddDate(0, 0, 1)
		}
		return end
	default:
		return farFuture
	}
}

// parseClock parses a local wall-clock time in "HH:MM" form.
func parseClock(s string) (hour, min int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, errors.New("time out of range")
	}
	return hour, min, nil
}

// atClock composes the date portion of d with the given wall-clock time.
func atClock(d time.Time, hour, min int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, d.Location())
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999_000_000, d.Location())
}

// formatWindow renders the availability window the way it appears in
// notification descriptions: 12-hour clock, month-name dates.
func formatWindow(w QuizWindow) string {
	const layout = "January 2, 2006 at 3:04 PM"
	if w.EndsAt.Equal(farFuture) {
		return fmt.Sprintf("available from %s", w.StartsAt.Format(layout))
	}
	return fmt.Sprintf("available from %s until %s", w.StartsAt.Format(layout), w.EndsAt.Format(layout))
}
