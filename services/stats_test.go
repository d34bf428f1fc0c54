package services

import (
	"testing"
	"time"

	"classquiz/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeQuizStats(t *testing.T) {
	quiz := &models.Quiz{
		ID:           1,
		IsScheduled:  true,
		ScheduleDate: datePtr(2025, time.March, 10),
		StartTime:    "09:00",
		EndTime:      "17:00",
	}
	results := []models.QuizResult{
		{UserID: 1, Score: 80},
		{UserID: 1, Score: 90},
		{UserID: 2, Score: 50},
		{UserID: 3, Score: 0, Abandoned: true},
	}

	stats := ComputeQuizStats(quiz, results, 6, at(2025, time.March, 10, 12, 0))

	assert.Equal(t, models.QuizStatusActive, stats.EffectiveStatus)
	assert.Equal(t, 4, stats.Attempts)
	assert.Equal(t, 3, stats.DistinctStudents)
	assert.Equal(t, 55.0, stats.AverageScore)
	assert.Equal(t, 90, stats.BestScore)
	assert.Equal(t, 1, stats.AbandonedCount)
	assert.Equal(t, 50.0, stats.CompletionRate)
}

func TestComputeQuizStatsEmpty(t *testing.T) {
	quiz := &models.Quiz{ID: 1, Status: models.QuizStatusDraft}

	stats := ComputeQuizStats(quiz, nil, 0, at(2025, time.March, 10, 12, 0))

	assert.Zero(t, stats.Attempts)
	assert.Zero(t, stats.AverageScore)
	assert.Zero(t, stats.BestScore)
	assert.Zero(t, stats.CompletionRate)
}

func TestComputeStudentOverview(t *testing.T) {
	now := at(2025, time.March, 10, 12, 0)
	quizzes := []models.Quiz{
		{IsScheduled: true, ScheduleDate: datePtr(2025, time.March, 11), StartTime: "09:00", EndTime: "17:00"}, // upcoming
		{IsScheduled: true, ScheduleDate: datePtr(2025, time.March, 10), StartTime: "09:00", EndTime: "17:00"}, // active
		{IsScheduled: true, ScheduleDate: datePtr(2025, time.March, 9), StartTime: "09:00", EndTime: "17:00"},  // closed
	}
	results := []models.QuizResult{
		{QuizID: 2, Score: 70},
		{QuizID: 2, Score: 90},
		{QuizID: 3, Score: 50},
	}

	overview := ComputeStudentOverview(quizzes, results, now)

	assert.Equal(t, 3, overview.TotalAvailable)
	assert.Equal(t, 1, overview.Upcoming)
	assert.Equal(t, 1, overview.Active)
	assert.Equal(t, 1, overview.Closed)
	assert.Equal(t, 2, overview.QuizzesTaken)
	assert.Equal(t, 70.0, overview.AverageScore)
}

func TestComputeStudentOverviewEmpty(t *testing.T) {
	overview := ComputeStudentOverview(nil, nil, at(2025, time.March, 10, 12, 0))
	assert.Zero(t, overview.TotalAvailable)
	assert.Zero(t, overview.QuizzesTaken)
	assert.Zero(t, overview.AverageScore)
}

func TestComputeEngagementTrend(t *testing.T) {
	now := at(2025, time.March, 10, 18, 0)
	results := []models.QuizResult{
		{SubmittedAt: at(2025, time.March, 10, 9, 0)},
		{SubmittedAt: at(2025, time.March, 10, 14, 0)},
		{SubmittedAt: at(2025, time.March, 9, 9, 0)},
		{SubmittedAt: at(2025, time.March, 1, 9, 0)}, // outside the window
	}

	trend := ComputeEngagementTrend(results, 3, now)

	assert.Len(t, trend, 3)
	assert.Equal(t, TrendPoint{Date: "2025-03-08", Submissions: 0}, trend[0])
	assert.Equal(t, TrendPoint{Date: "2025-03-09", Submissions: 1}, trend[1])
	assert.Equal(t, TrendPoint{Date: "2025-03-10", Submissions: 2}, trend[2])
}

func TestComputeEngagementTrendNoDays(t *testing.T) {
	assert.Nil(t, ComputeEngagementTrend(nil, 0, at(2025, time.March, 10, 12, 0)))
}
