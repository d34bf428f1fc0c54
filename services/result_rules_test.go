package services

import (
	"testing"
	"time"

	"classquiz/models"

	"github.com/stretchr/testify/assert"
)

func TestAttemptBudget(t *testing.T) {
	tests := []struct {
		in      string
		limit   int
		bounded bool
	}{
		{"1", 1, true},
		{"2", 2, true},
		{"3", 3, true},
		{"unlimited", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		limit, bounded := attemptBudget(tt.in)
		assert.Equal(t, tt.limit, limit, tt.in)
		assert.Equal(t, tt.bounded, bounded, tt.in)
	}
}

func TestDuplicateSubmission(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 10, 0, time.UTC)

	prior := []models.QuizResult{
		{ID: 2, SubmittedAt: now.Add(-3 * time.Second)},
		{ID: 1, SubmittedAt: now.Add(-time.Minute)},
	}
	dup := duplicateSubmission(prior, now)
	assert.NotNil(t, dup)
	assert.Equal(t, uint(2), dup.ID)

	// Outside the window: a real new attempt.
	prior[0].SubmittedAt = now.Add(-5 * time.Second)
	assert.Nil(t, duplicateSubmission(prior, now))

	assert.Nil(t, duplicateSubmission(nil, now))
}

func TestScoreAttempt(t *testing.T) {
	questions := []models.Question{
		{Options: []models.Option{{IsCorrect: true}, {}, {}}},
		{Options: []models.Option{{}, {IsCorrect: true}, {}}},
		{Options: []models.Option{{}, {}, {IsCorrect: true}}},
	}

	tests := []struct {
		name    string
		answers []int
		correct int
		score   int
	}{
		{"all correct", []int{0, 1, 2}, 3, 100},
		{"two of three", []int{0, 1, 0}, 2, 67},
		{"one of three", []int{0, 0, 0}, 1, 33},
		{"none", []int{2, 0, 1}, 0, 0},
		{"short answer list", []int{0}, 1, 33},
		{"out of range", []int{0, 5, -1}, 1, 33},
		{"empty", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, total, score := scoreAttempt(questions, tt.answers)
			assert.Equal(t, tt.correct, correct)
			assert.Equal(t, 3, total)
			assert.Equal(t, tt.score, score)
		})
	}
}

func TestScoreAttemptNoQuestions(t *testing.T) {
	correct, total, score := scoreAttempt(nil, []int{0, 1})
	assert.Zero(t, correct)
	assert.Zero(t, total)
	assert.Zero(t, score)
}

func TestMajorityCrossed(t *testing.T) {
	tests := []struct {
		name       string
		before     int
		after      int
		population int
		want       bool
	}{
		{"crossing at exactly half", 4, 5, 10, true},
		{"already past", 5, 6, 10, false},
		{"still below", 3, 4, 10, false},
		{"empty population", 0, 1, 0, false},
		{"single student", 0, 1, 1, true},
		{"odd population crossing", 2, 3, 5, true},
		{"odd population below", 1, 2, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, majorityCrossed(tt.before, tt.after, tt.population))
		})
	}
}

func TestHasCompleted(t *testing.T) {
	assert.False(t, hasCompleted(nil))
	assert.False(t, hasCompleted([]models.QuizResult{{Abandoned: true}}))
	assert.False(t, hasCompleted([]models.QuizResult{{Abandoned: true}, {Abandoned: true}}))
	assert.True(t, hasCompleted([]models.QuizResult{{Abandoned: true}, {}}))
	assert.True(t, hasCompleted([]models.QuizResult{{}}))
}

func TestMajorityIgnoresAbandonedAttempts(t *testing.T) {
	// Four students; student 3 abandons before the crossing point, then
	// students 3 and 4 submit for real. The abandonment never counts as
	// a completion, so the notice still fires exactly once, on the
	// second real completion.
	population := 4

	type event struct {
		prior     []models.QuizResult
		abandoned bool
	}
	events := []event{
		{nil, false}, // student 1 completes
		{nil, true},  // student 3 abandons
		{nil, false}, // student 2 completes
		{[]models.QuizResult{{Abandoned: true}}, false}, // student 3 completes for real
		{nil, false}, // student 4 completes
	}

	completions := 0
	crossings := 0
	for _, ev := range events {
		if ev.abandoned {
			continue
		}
		if hasCompleted(ev.prior) {
			continue
		}
		completions++
		if majorityCrossed(completions-1, completions, population) {
			crossings++
		}
	}
	assert.Equal(t, 4, completions)
	assert.Equal(t, 1, crossings)
}

func TestMajorityCrossedFiresOnce(t *testing.T) {
	// Walking completions from 0 to the full population crosses the
	// threshold exactly once.
	population := 8
	crossings := 0
	for after := 1; after <= population; after++ {
		if majorityCrossed(after-1, after, population) {
			crossings++
		}
	}
	assert.Equal(t, 1, crossings)
}

func TestAttemptLimitError(t *testing.T) {
	err := &AttemptLimitError{Used: 2, Limit: 2}
	assert.Equal(t, "attempt limit reached: 2 of 2 attempts used", err.Error())
}
