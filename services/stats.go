package services

import (
	"math"
	"time"

	"classquiz/models"
)

type QuizStats struct {
	QuizID           uint    `json:"quiz_id"`
	EffectiveStatus  string  `json:"effective_status"`
	Attempts         int     `json:"attempts"`
	DistinctStudents int     `json:"distinct_students"`
	AverageScore     float64 `json:"average_score"`
	BestScore        int     `json:"best_score"`
	AbandonedCount   int     `json:"abandoned_count"`
	CompletionRate   float64 `json:"completion_rate"` // percent of cohort with at least one attempt
}

type StudentOverview struct {
	TotalAvailable int     `json:"total_available"`
	Upcoming       int     `json:"upcoming"`
	Active         int     `json:"active"`
	Closed         int     `json:"closed"`
	QuizzesTaken   int     `json:"quizzes_taken"`
	AverageScore   float64 `json:"average_score"`
}

type TrendPoint struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Submissions int    `json:"submissions"`
}

// ComputeQuizStats folds a quiz's result set into per-quiz aggregates.
// Completion rate is relative to cohortSize and returns 0 when the
// cohort is empty.
func ComputeQuizStats(quiz *models.Quiz, results []models.QuizResult, cohortSize int, now time.Time) QuizStats {
	stats := QuizStats{
		QuizID:          quiz.ID,
		EffectiveStatus: ResolveStatus(quiz, now).Status,
		Attempts:        len(results),
	}

	students := make(map[uint]bool)
	scoreSum := 0
	for i := range results {
		r := &results[i]
		students[r.UserID] = true
		scoreSum += r.Score
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
		if r.Abandoned {
			stats.AbandonedCount++
		}
	}
	stats.DistinctStudents = len(students)

	if len(results) > 0 {
		stats.AverageScore = round2(float64(scoreSum) / float64(len(results)))
	}
	if cohortSize > 0 {
		stats.CompletionRate = round2(float64(stats.DistinctStudents) / float64(cohortSize) * 100)
	}
	return stats
}

// ComputeStudentOverview buckets a student's visible quizzes by their
// effective status and averages the student's scores.
func ComputeStudentOverview(quizzes []models.Quiz, results []models.QuizResult, now time.Time) StudentOverview {
	overview := StudentOverview{TotalAvailable: len(quizzes)}

	for i := range quizzes {
		switch ResolveStatus(&quizzes[i], now).Status {
		case models.QuizStatusScheduled:
			overview.Upcoming++
		case models.QuizStatusActive:
			overview.Active++
		case models.QuizStatusClosed:
			overview.Closed++
		}
	}

	taken := make(map[uint]bool)
	scoreSum := 0
	for i := range results {
		taken[results[i].QuizID] = true
		scoreSum += results[i].Score
	}
	overview.QuizzesTaken = len(taken)
	if len(results) > 0 {
		overview.AverageScore = round2(float64(scoreSum) / float64(len(results)))
	}
	return overview
}

// ComputeEngagementTrend counts submissions per calendar day over the
// trailing window ending at now, oldest day first. Days with no
// submissions appear with a zero count.
func ComputeEngagementTrend(results []models.QuizResult, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		return nil
	}

	counts := make(map[string]int, days)
	cutoff := now.AddDate(0, 0, -(days - 1))
	cutoffDay := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, cutoff.Location())
	for i := range results {
		submitted := results[i].SubmittedAt
		if submitted.Before(cutoffDay) || submitted.After(now) {
			continue
		}
		counts[submitted.Format("2006-01-02")]++
	}

	trend := make([]TrendPoint, 0, days)
	for d := 0; d < days; d++ {
		day := cutoffDay.AddDate(0, 0, d).Format("2006-01-02")
		trend = append(trend, TrendPoint{Date: day, Submissions: counts[day]})
	}
	return trend
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
