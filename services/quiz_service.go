package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"classquiz/models"

	"gorm.io/gorm"
)

// expiredQuizRetention is how long a closed quiz stays visible before
// the cleanup pass soft-deletes it.
const expiredQuizRetention = 30 * 24 * time.Hour

type QuizService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewQuizService(db *gorm.DB, notifications *NotificationService) *QuizService {
	return &QuizService{db: db, notifications: notifications}
}

type CreateQuizRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Subject     string                  `json:"subject" binding:"required"`
	Description string                  `json:"description"`
	MaxAttempts string                  `json:"max_attempts" binding:"omitempty,oneof=1 2 3 unlimited"`
	Questions   []CreateQuestionRequest `json:"questions" binding:"required,min=1"`
}

type CreateQuestionRequest struct {
	Text    string                `json:"text" binding:"required"`
	Order   int                   `json:"order" binding:"required"`
	Options []CreateOptionRequest `json:"options" binding:"required,min=2,max=6"`
}

type CreateOptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order" binding:"required"`
}

type UpdateQuizRequest struct {
	Title       string                  `json:"title"`
	Subject     string                  `json:"subject"`
	Description string                  `json:"description"`
	MaxAttempts string                  `json:"max_attempts" binding:"omitempty,oneof=1 2 3 unlimited"`
	Questions   []CreateQuestionRequest `json:"questions"`
}

type ScheduleQuizRequest struct {
	ScheduleDate *time.Time `json:"schedule_date" binding:"required"`
	StartTime    string     `json:"start_time" binding:"required"`
	EndTime      string     `json:"end_time"`
	DueDate      *time.Time `json:"due_date"`
	Semester     *string    `json:"semester" binding:"omitempty,oneof=1st 2nd"`
	AcademicYear *int       `json:"academic_year" binding:"omitempty,min=1,max=4"`
}

// QuizView is a quiz annotated with its resolved lifecycle window. All
// read paths return this instead of the raw record so the status the
// client sees is always derived from the clock, never from storage.
type QuizView struct {
	models.Quiz
	EffectiveStatus string     `json:"effective_status"`
	Window          QuizWindow `json:"window"`
}

func viewOf(quiz models.Quiz, now time.Time) QuizView {
	window := ResolveStatus(&quiz, now)
	return QuizView{Quiz: quiz, EffectiveStatus: window.Status, Window: window}
}

func (s *QuizService) CreateQuiz(teacherID uint, req *CreateQuizRequest) (*QuizView, error) {
	maxAttempts := req.MaxAttempts
	if maxAttempts == "" {
		maxAttempts = "1"
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	quiz := models.Quiz{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		TeacherID:   teacherID,
		MaxAttempts: maxAttempts,
		Status:      models.QuizStatusDraft,
	}

	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := createQuestions(tx, quiz.ID, req.Questions); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetQuizByID(quiz.ID, teacherID)
}

func createQuestions(tx *gorm.DB, quizID uint, questions []CreateQuestionRequest) error {
	for _, qReq := range questions {
		question := models.Question{
			QuizID: quizID,
			Text:   qReq.Text,
			Order:  qReq.Order,
		}

		if err := tx.Create(&question).Error; err != nil {
			return err
		}

		// Validate that only one option is correct
		correctCount := 0
		for _, optReq := range qReq.Options {
			if optReq.IsCorrect {
				correctCount++
			}
		}
		if correctCount != 1 {
			return errors.New("each question must have exactly one correct answer")
		}

		for _, optReq := range qReq.Options {
			option := models.Option{
				QuestionID: question.ID,
				Text:       optReq.Text,
				IsCorrect:  optReq.IsCorrect,
				Order:      optReq.Order,
			}

			if err := tx.Create(&option).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *QuizService) GetTeacherQuizzes(teacherID uint) ([]QuizView, error) {
	var quizzes []models.Quiz
	err := s.db.Where("teacher_id = ? AND is_deleted = ?", teacherID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}

	now := nowFunc()
	views := make([]QuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, viewOf(quiz, now))
	}
	return views, nil
}

func (s *QuizService) GetQuizByID(quizID uint, teacherID uint) (*QuizView, error) {
	var quiz models.Quiz
	err := s.db.Where("id = ? AND teacher_id = ? AND is_deleted = ?", quizID, teacherID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order")
		}).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}

	view := viewOf(quiz, nowFunc())
	return &view, nil
}

func (s *QuizService) UpdateQuiz(quizID uint, teacherID uint, req *UpdateQuizRequest) (*QuizView, error) {
	view, err := s.GetQuizByID(quizID, teacherID)
	if err != nil {
		return nil, err
	}
	quiz := view.Quiz

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.Subject != "" {
		quiz.Subject = req.Subject
	}
	if req.Description != "" {
		quiz.Description = req.Description
	}
	if req.MaxAttempts != "" {
		quiz.MaxAttempts = req.MaxAttempts
	}

	if err := tx.Save(&quiz).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// If questions are provided, replace all questions
	if req.Questions != nil {
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		if err := createQuestions(tx, quiz.ID, req.Questions); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetQuizByID(quiz.ID, teacherID)
}

// ScheduleQuiz sets the scheduling block on a draft quiz and fans out
// assignment notifications to the cohort. The quiz's effective status
// from here on is derived from the clock at read time.
func (s *QuizService) ScheduleQuiz(quizID uint, teacherID uint, teacherName string, req *ScheduleQuizRequest) (*QuizView, *DispatchResult, error) {
	view, err := s.GetQuizByID(quizID, teacherID)
	if err != nil {
		return nil, nil, err
	}
	quiz := view.Quiz

	if req.ScheduleDate == nil || req.StartTime == "" {
		return nil, nil, errors.New("schedule date and start time are required")
	}
	if _, _, err := parseClock(req.StartTime); err != nil {
		return nil, nil, fmt.Errorf("invalid start time: %w", err)
	}
	if req.EndTime == "" && req.DueDate == nil {
		return nil, nil, errors.New("either an end time or a due date is required")
	}
	if req.EndTime != "" {
		if _, _, err := parseClock(req.EndTime); err != nil {
			return nil, nil, fmt.Errorf("invalid end time: %w", err)
		}
	}

	quiz.IsScheduled = true
	quiz.ScheduleDate = req.ScheduleDate
	quiz.StartTime = req.StartTime
	quiz.EndTime = req.EndTime
	quiz.DueDate = req.DueDate
	quiz.Semester = req.Semester
	quiz.AcademicYear = req.AcademicYear
	quiz.Status = models.QuizStatusScheduled

	if err := s.db.Save(&quiz).Error; err != nil {
		return nil, nil, err
	}

	dispatch, err := s.notifications.DispatchQuizAssignment(&quiz, teacherName)
	if err != nil {
		// The schedule itself stuck; surface the dispatch failure
		// without rolling it back.
		log.Printf("Dispatch failed for quiz %d: %v", quiz.ID, err)
		dispatch = &DispatchResult{Success: false, Error: err.Error()}
	}

	updated := viewOf(quiz, nowFunc())
	return &updated, dispatch, nil
}

// GetStudentFeed lists quizzes visible to a student: scheduled for
// their cohort, not deleted, and not yet closed.
func (s *QuizService) GetStudentFeed(student *models.User) ([]QuizView, error) {
	query := s.db.Where("is_scheduled = ? AND is_deleted = ?", true, false).
		Where("semester IS NULL OR semester = ?", student.Semester)

	var quizzes []models.Quiz
	if err := query.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}

	now := nowFunc()
	views := make([]QuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		if quiz.AcademicYear != nil && yearLabel(*quiz.AcademicYear) != student.Year {
			continue
		}
		view := viewOf(quiz, now)
		if view.EffectiveStatus != models.QuizStatusScheduled && view.EffectiveStatus != models.QuizStatusActive {
			continue
		}
		// Students never see which option is correct before grading.
		for qi := range view.Questions {
			for oi := range view.Questions[qi].Options {
				view.Questions[qi].Options[oi].IsCorrect = false
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *QuizService) DeleteQuiz(quizID uint, teacherID uint) error {
	if _, err := s.GetQuizByID(quizID, teacherID); err != nil {
		return err
	}

	return s.db.Model(&models.Quiz{}).
		Where("id = ?", quizID).
		Update("is_deleted", true).Error
}

// CleanupExpiredQuizzes soft-deletes quizzes whose window closed longer
// than the retention period ago. Invoked on demand, not by a scheduler.
func (s *QuizService) CleanupExpiredQuizzes() (int, error) {
	var quizzes []models.Quiz
	if err := s.db.Where("is_scheduled = ? AND is_deleted = ?", true, false).
		Find(&quizzes).Error; err != nil {
		return 0, err
	}

	now := nowFunc()
	cleaned := 0
	for i := range quizzes {
		window := ResolveStatus(&quizzes[i], now)
		if !window.IsExpired || now.Sub(window.EndsAt) < expiredQuizRetention {
			continue
		}
		if err := s.db.Model(&models.Quiz{}).
			Where("id = ?", quizzes[i].ID).
			Update("is_deleted", true).Error; err != nil {
			log.Printf("Failed to clean up quiz %d: %v", quizzes[i].ID, err)
			continue
		}
		cleaned++
	}
	return cleaned, nil
}
