package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"classquiz/models"

	"gorm.io/gorm"
)

var (
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrQuizNotStarted = errors.New("quiz has not started yet")
	ErrQuizClosed     = errors.New("quiz has closed")
	ErrQuizNotOpen    = errors.New("quiz is not open for submissions")
)

type ResultService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewResultService(db *gorm.DB, notifications *NotificationService) *ResultService {
	return &ResultService{
		db:            db,
		notifications: notifications,
	}
}

type SubmitAttemptRequest struct {
	Answers   []int `json:"answers"`
	Abandoned bool  `json:"abandoned"`
}

// RecordAttempt runs the submission state machine for one (user, quiz)
// pair. Guards are evaluated in order: duplicate click, attempt budget,
// abandonment, active window, then grading. A duplicate click returns
// the prior result as an idempotent success rather than an error.
func (s *ResultService) RecordAttempt(student *models.User, quizID uint, req *SubmitAttemptRequest) (*models.QuizResult, error) {
	var quiz models.Quiz
	if err := s.db.Where("id = ? AND is_deleted = ?", quizID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order")
		}).
		Preload("Teacher").
		First(&quiz).Error; err != nil {
		return nil, ErrQuizNotFound
	}

	var prior []models.QuizResult
	if err := s.db.Where("user_id = ? AND quiz_id = ?", student.ID, quizID).
		Order("submitted_at DESC").
		Find(&prior).Error; err != nil {
		return nil, err
	}

	now := nowFunc()

	if dup := duplicateSubmission(prior, now); dup != nil {
		log.Printf("Duplicate submission for user %d quiz %d within %s, returning prior result", student.ID, quizID, duplicateSubmissionWindow)
		return dup, nil
	}

	if limit, bounded := attemptBudget(quiz.MaxAttempts); bounded && len(prior) >= limit {
		return nil, &AttemptLimitError{Used: len(prior), Limit: limit}
	}

	if req.Abandoned {
		result := models.QuizResult{
			UserID:         student.ID,
			QuizID:         quiz.ID,
			Score:          0,
			TotalQuestions: len(quiz.Questions),
			Abandoned:      true,
			SubmittedAt:    now,
		}
		if err := s.db.Create(&result).Error; err != nil {
			return nil, err
		}
		s.notifications.NotifyAbandoned(&quiz.Teacher, student, &quiz)
		return &result, nil
	}

	window := ResolveStatus(&quiz, now)
	switch {
	case window.IsUpcoming:
		return nil, ErrQuizNotStarted
	case window.IsExpired:
		return nil, ErrQuizClosed
	case !window.IsCurrentlyActive:
		return nil, ErrQuizNotOpen
	}

	correct, total, score := scoreAttempt(quiz.Questions, req.Answers)

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, err
	}

	result := models.QuizResult{
		UserID:         student.ID,
		QuizID:         quiz.ID,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: total,
		Answers:        string(answersJSON),
		SubmittedAt:    now,
	}
	if err := s.db.Create(&result).Error; err != nil {
		return nil, err
	}

	// In-app notification and email are both best-effort and
	// independent of the persisted result.
	s.notifications.NotifyGraded(student, &quiz, score)

	s.checkMajorityCompletion(&quiz, !hasCompleted(prior))

	return &result, nil
}

// checkMajorityCompletion notifies the teacher on the submission that
// moves quiz completion across half of the entire student population.
// The denominator is intentionally the full population, not the
// assigned cohort. Abandoned attempts are not completions and are
// excluded from the numerator, matching the abandonment path skipping
// this check entirely.
func (s *ResultService) checkMajorityCompletion(quiz *models.Quiz, firstCompletion bool) {
	if !firstCompletion {
		// Repeat completions cannot change the distinct-student count.
		return
	}

	var population int64
	if err := s.db.Model(&models.User{}).Where("role = ?", "student").Count(&population).Error; err != nil {
		log.Printf("Failed to count students for quiz %d: %v", quiz.ID, err)
		return
	}

	var completedAfter int64
	if err := s.db.Model(&models.QuizResult{}).
		Where("quiz_id = ? AND abandoned = ?", quiz.ID, false).
		Distinct("user_id").
		Count(&completedAfter).Error; err != nil {
		log.Printf("Failed to count completions for quiz %d: %v", quiz.ID, err)
		return
	}

	if majorityCrossed(int(completedAfter)-1, int(completedAfter), int(population)) {
		s.notifications.NotifyMajorityComplete(&quiz.Teacher, quiz, int(completedAfter), int(population))
	}
}

// GetQuizStats folds a quiz's result set into per-quiz aggregates for
// its teacher. The completion denominator here is the assigned cohort.
func (s *ResultService) GetQuizStats(quizID, teacherID uint) (*QuizStats, error) {
	var quiz models.Quiz
	if err := s.db.Where("id = ? AND teacher_id = ? AND is_deleted = ?", quizID, teacherID, false).
		First(&quiz).Error; err != nil {
		return nil, ErrQuizNotFound
	}

	var results []models.QuizResult
	if err := s.db.Where("quiz_id = ?", quizID).Find(&results).Error; err != nil {
		return nil, err
	}

	cohort, err := s.notifications.eligibleRecipients(&quiz)
	if err != nil {
		return nil, err
	}

	stats := ComputeQuizStats(&quiz, results, len(cohort), nowFunc())
	return &stats, nil
}

// GetStudentOverview aggregates a student's cohort quizzes and scores.
func (s *ResultService) GetStudentOverview(student *models.User) (*StudentOverview, error) {
	var quizzes []models.Quiz
	if err := s.db.Where("is_scheduled = ? AND is_deleted = ?", true, false).
		Where("semester IS NULL OR semester = ?", student.Semester).
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	visible := quizzes[:0]
	for _, quiz := range quizzes {
		if quiz.AcademicYear != nil && yearLabel(*quiz.AcademicYear) != student.Year {
			continue
		}
		visible = append(visible, quiz)
	}

	var results []models.QuizResult
	if err := s.db.Where("user_id = ?", student.ID).Find(&results).Error; err != nil {
		return nil, err
	}

	overview := ComputeStudentOverview(visible, results, nowFunc())
	return &overview, nil
}

// GetEngagementTrend counts submissions per day across a teacher's
// quizzes over the trailing window.
func (s *ResultService) GetEngagementTrend(teacherID uint, days int) ([]TrendPoint, error) {
	var results []models.QuizResult
	if err := s.db.
		Joins("JOIN quizzes ON quizzes.id = quiz_results.quiz_id").
		Where("quizzes.teacher_id = ? AND quizzes.is_deleted = ?", teacherID, false).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return ComputeEngagementTrend(results, days, nowFunc()), nil
}

// ExportResults renders a quiz's results as CSV and records a
// data_export notification for the teacher.
func (s *ResultService) ExportResults(quizID, teacherID uint) ([]byte, error) {
	var quiz models.Quiz
	if err := s.db.Where("id = ? AND teacher_id = ? AND is_deleted = ?", quizID, teacherID, false).
		Preload("Teacher").
		First(&quiz).Error; err != nil {
		return nil, ErrQuizNotFound
	}

	var results []models.QuizResult
	if err := s.db.Where("quiz_id = ?", quizID).
		Preload("User").
		Order("submitted_at").
		Find(&results).Error; err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"student", "email", "score", "correct", "total", "abandoned", "submitted_at"})
	for i := range results {
		r := &results[i]
		_ = w.Write([]string{
			r.User.Name,
			r.User.Email,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.CorrectAnswers),
			strconv.Itoa(r.TotalQuestions),
			strconv.FormatBool(r.Abandoned),
			r.SubmittedAt.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.notifications.NotifyExportReady(&quiz.Teacher, &quiz)

	return buf.Bytes(), nil
}
