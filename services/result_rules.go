package services

import (
	"fmt"
	"math"
	"time"

	"classquiz/models"
)

// duplicateSubmissionWindow is the trailing window inside which a
// repeated submission for the same (user, quiz) is treated as a
// duplicate click rather than a new attempt.
const duplicateSubmissionWindow = 5 * time.Second

// majorityThresholdPct is the share of the student population whose
// submissions trigger the one-time majority-completion notice.
const majorityThresholdPct = 50.0

// AttemptLimitError reports an exhausted attempt budget along with the
// current usage so callers can surface it.
type AttemptLimitError struct {
	Used  int
	Limit int
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("attempt limit reached: %d of %d attempts used", e.Used, e.Limit)
}

// attemptBudget maps the quiz MaxAttempts setting to a numeric limit.
// The second return is false for "unlimited".
func attemptBudget(maxAttempts string) (int, bool) {
	switch maxAttempts {
	case "1":
		return 1, true
	case "2":
		return 2, true
	case "3":
		return 3, true
	default:
		return 0, false
	}
}

// duplicateSubmission returns the most recent prior result when it was
// recorded within the duplicate window of now, nil otherwise. prior is
// expected most-recent-first.
func duplicateSubmission(prior []models.QuizResult, now time.Time) *models.QuizResult {
	if len(prior) == 0 {
		return nil
	}
	latest := &prior[0]
	if now.Sub(latest.SubmittedAt) < duplicateSubmissionWindow {
		return latest
	}
	return nil
}

// scoreAttempt grades by exact positional match: answers[i] is the
// index of the selected option for questions[i], compared against the
// option flagged correct. Missing or out-of-range answers count as
// incorrect. Questions and options are assumed ordered by their Order
// columns.
func scoreAttempt(questions []models.Question, answers []int) (correct, total, score int) {
	total = len(questions)
	for i, q := range questions {
		if i >= len(answers) {
			continue
		}
		selected := answers[i]
		if selected < 0 || selected >= len(q.Options) {
			continue
		}
		if q.Options[selected].IsCorrect {
			correct++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	score = int(math.Round(float64(correct) / float64(total) * 100))
	return correct, total, score
}

// hasCompleted reports whether any prior result is a real completion.
// Abandoned attempts consume the budget but do not complete the quiz.
func hasCompleted(prior []models.QuizResult) bool {
	for i := range prior {
		if !prior[i].Abandoned {
			return true
		}
	}
	return false
}

// majorityCrossed reports whether this submission moved the completion
// share of the population across the majority threshold. It is true
// only on the crossing submission, so the resulting notification fires
// exactly once per quiz.
func majorityCrossed(completedBefore, completedAfter, population int) bool {
	if population == 0 {
		return false
	}
	before := float64(completedBefore) / float64(population) * 100
	after := float64(completedAfter) / float64(population) * 100
	return before < majorityThresholdPct && after >= majorityThresholdPct
}
