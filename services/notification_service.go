package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"classquiz/models"
	"classquiz/services/email"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type NotificationService struct {
	db     *gorm.DB
	redis  *redis.Client
	hub    *Hub
	sender email.Sender
}

func NewNotificationService(db *gorm.DB, redisClient *redis.Client, hub *Hub, sender email.Sender) *NotificationService {
	return &NotificationService{
		db:     db,
		redis:  redisClient,
		hub:    hub,
		sender: sender,
	}
}

type DispatchResult struct {
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// yearLabel maps a numeric academic year to the label stored on student
// records.
func yearLabel(year int) string {
	switch year {
	case 1:
		return "1st year"
	case 2:
		return "2nd year"
	case 3:
		return "3rd year"
	case 4:
		return "4th year"
	default:
		return ""
	}
}

// eligibleRecipients returns the students targeted by the quiz cohort
// filters. A nil filter means no constraint on that dimension.
func (s *NotificationService) eligibleRecipients(quiz *models.Quiz) ([]models.User, error) {
	query := s.db.Where("role = ?", "student")
	if quiz.Semester != nil {
		query = query.Where("semester = ?", *quiz.Semester)
	}
	if quiz.AcademicYear != nil {
		label := yearLabel(*quiz.AcademicYear)
		if label == "" {
			return nil, fmt.Errorf("invalid academic year %d", *quiz.AcademicYear)
		}
		query = query.Where("year = ?", label)
	}

	var students []models.User
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// DispatchQuizAssignment fans out one quiz_assigned notification per
// eligible student and sends a best-effort email to those who opted in.
// Calling it again for the same quiz is a no-op that reports the
// existing count, which makes a client retry of the schedule action
// safe.
func (s *NotificationService) DispatchQuizAssignment(quiz *models.Quiz, teacherName string) (*DispatchResult, error) {
	var existing int64
	if err := s.db.Model(&models.Notification{}).
		Where("quiz_id = ? AND type = ?", quiz.ID, models.NotificationQuizAssigned).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		log.Printf("Quiz %d already dispatched (%d notifications), skipping", quiz.ID, existing)
		return &DispatchResult{Success: true, Skipped: true, Count: int(existing)}, nil
	}

	students, err := s.eligibleRecipients(quiz)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, errors.New("no students match the quiz cohort")
	}

	window := ResolveStatus(quiz, nowFunc())
	title := fmt.Sprintf("New quiz: %s", quiz.Title)
	description := fmt.Sprintf("%s assigned you the quiz %q (%s). It is %s.",
		teacherName, quiz.Title, quiz.Subject, formatWindow(window))

	count := 0
	for i := range students {
		student := &students[i]
		notification := models.Notification{
			RecipientID:   student.ID,
			RecipientRole: student.Role,
			Type:          models.NotificationQuizAssigned,
			Title:         title,
			Description:   description,
			QuizID:        &quiz.ID,
		}
		if err := s.create(&notification); err != nil {
			log.Printf("Failed to create notification for student %d: %v", student.ID, err)
			continue
		}
		count++

		// Email failures must not abort delivery to other recipients.
		s.emailIfEnabled(student, title, description)
	}

	return &DispatchResult{Success: true, Count: count}, nil
}

// ListNotifications returns the deduplicated notification list for a
// recipient, most recent first, along with the unread count computed
// over the unique set. Unread duplicates are marked read in storage as
// part of the read so re-reads stay cheap and counts stay consistent.
func (s *NotificationService) ListNotifications(userID uint) ([]models.Notification, int, error) {
	var notifications []models.Notification
	if err := s.db.Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	unique, unreadDuplicateIDs := partitionNotifications(notifications)
	if len(unreadDuplicateIDs) > 0 {
		if err := s.db.Model(&models.Notification{}).
			Where("id IN ?", unreadDuplicateIDs).
			Update("is_read", true).Error; err != nil {
			log.Printf("Failed to mark %d duplicate notifications read: %v", len(unreadDuplicateIDs), err)
		}
	}

	return unique, countUnread(unique), nil
}

// UnreadCount reports unread notifications over the deduplicated set.
func (s *NotificationService) UnreadCount(userID uint) (int, error) {
	_, unread, err := s.ListNotifications(userID)
	return unread, err
}

func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// CreateAnnouncement broadcasts an announcement to every student.
func (s *NotificationService) CreateAnnouncement(teacher *models.User, title, message string) (int, error) {
	var students []models.User
	if err := s.db.Where("role = ?", "student").Find(&students).Error; err != nil {
		return 0, err
	}

	count := 0
	for i := range students {
		notification := models.Notification{
			RecipientID:   students[i].ID,
			RecipientRole: students[i].Role,
			Type:          models.NotificationAnnouncement,
			Title:         title,
			Description:   fmt.Sprintf("%s: %s", teacher.Name, message),
		}
		if err := s.create(&notification); err != nil {
			log.Printf("Failed to create announcement for student %d: %v", students[i].ID, err)
			continue
		}
		count++
	}
	return count, nil
}

// NotifyGraded records the quiz_graded notification for a student's
// submission and emails them their score. Guarded against duplicate
// creation inside the duplicate-click window.
func (s *NotificationService) NotifyGraded(student *models.User, quiz *models.Quiz, score int) {
	if !s.guardOnce(fmt.Sprintf("notify:graded:%d:%d", student.ID, quiz.ID)) {
		return
	}
	title := fmt.Sprintf("Quiz graded: %s", quiz.Title)
	description := fmt.Sprintf("Your submission for %q was graded. You scored %d%%.", quiz.Title, score)
	notification := models.Notification{
		RecipientID:   student.ID,
		RecipientRole: student.Role,
		Type:          models.NotificationQuizGraded,
		Title:         title,
		Description:   description,
		QuizID:        &quiz.ID,
		Score:         &score,
		Status:        models.NotificationStatusGraded,
	}
	if err := s.create(&notification); err != nil {
		log.Printf("Failed to create graded notification for student %d: %v", student.ID, err)
	}
	// Email goes out regardless of the in-app notification outcome.
	s.emailIfEnabled(student, title, description)
}

// NotifyAbandoned tells the quiz's teacher a student abandoned an
// attempt.
func (s *NotificationService) NotifyAbandoned(teacher, student *models.User, quiz *models.Quiz) {
	if !s.guardOnce(fmt.Sprintf("notify:abandoned:%d:%d", student.ID, quiz.ID)) {
		return
	}
	notification := models.Notification{
		RecipientID:   teacher.ID,
		RecipientRole: teacher.Role,
		Type:          models.NotificationQuizAbandoned,
		Title:         fmt.Sprintf("Attempt abandoned: %s", quiz.Title),
		Description:   fmt.Sprintf("%s abandoned an attempt on %q.", student.Name, quiz.Title),
		QuizID:        &quiz.ID,
	}
	if err := s.create(&notification); err != nil {
		log.Printf("Failed to create abandoned notification for teacher %d: %v", teacher.ID, err)
	}
}

// NotifyMajorityComplete tells the quiz's teacher that half of the
// student population has now submitted. The crossing check in the
// result service makes this fire once per quiz.
func (s *NotificationService) NotifyMajorityComplete(teacher *models.User, quiz *models.Quiz, completed, population int) {
	title := fmt.Sprintf("Majority completion: %s", quiz.Title)
	description := fmt.Sprintf("%d of %d students have completed %q.", completed, population, quiz.Title)
	notification := models.Notification{
		RecipientID:   teacher.ID,
		RecipientRole: teacher.Role,
		Type:          models.NotificationMajorityComplete,
		Title:         title,
		Description:   description,
		QuizID:        &quiz.ID,
	}
	if err := s.create(&notification); err != nil {
		log.Printf("Failed to create majority notification for teacher %d: %v", teacher.ID, err)
		return
	}
	s.emailIfEnabled(teacher, title, description)
}

// NotifyExportReady tells a teacher their results export is ready.
func (s *NotificationService) NotifyExportReady(teacher *models.User, quiz *models.Quiz) {
	notification := models.Notification{
		RecipientID:   teacher.ID,
		RecipientRole: teacher.Role,
		Type:          models.NotificationDataExport,
		Title:         fmt.Sprintf("Export ready: %s", quiz.Title),
		Description:   fmt.Sprintf("The results export for %q is ready to download.", quiz.Title),
		QuizID:        &quiz.ID,
	}
	if err := s.create(&notification); err != nil {
		log.Printf("Failed to create export notification for teacher %d: %v", teacher.ID, err)
	}
}

// GetPreferences returns the stored preferences for a user, defaulting
// every channel to enabled when no row exists.
func (s *NotificationService) GetPreferences(userID uint) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotificationPreference{
			UserID:             userID,
			EmailNotifications: true,
			InAppNotifications: true,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// UpdatePreferences upserts the per-user channel preferences.
func (s *NotificationService) UpdatePreferences(userID uint, emailEnabled, inAppEnabled bool) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.NotificationPreference{
			UserID:             userID,
			EmailNotifications: emailEnabled,
			InAppNotifications: inAppEnabled,
		}
		if err := s.db.Create(&pref).Error; err != nil {
			return nil, err
		}
		return &pref, nil
	}
	if err != nil {
		return nil, err
	}

	pref.EmailNotifications = emailEnabled
	pref.InAppNotifications = inAppEnabled
	if err := s.db.Save(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

// create persists a notification and pushes it to the recipient's open
// websocket connections, if any.
func (s *NotificationService) create(notification *models.Notification) error {
	if err := s.db.Create(notification).Error; err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.SendToUser(notification.RecipientID, "notification", notification)
	}
	return nil
}

// emailIfEnabled sends a best-effort email gated by the recipient's
// stored preference (default enabled). Failures are logged and never
// propagate.
func (s *NotificationService) emailIfEnabled(user *models.User, subject, body string) {
	if s.sender == nil || user.Email == "" {
		return
	}
	pref, err := s.GetPreferences(user.ID)
	if err != nil {
		log.Printf("Failed to load notification preferences for user %d: %v", user.ID, err)
		return
	}
	if !pref.EmailNotifications {
		return
	}
	html := fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", user.Name, body)
	if err := s.sender.Send(user.Email, subject, html); err != nil {
		log.Printf("Failed to send email to %s: %v", user.Email, err)
	}
}

// guardOnce is a best-effort short-window duplicate guard backed by
// redis SETNX. When redis is unavailable the guard allows the event;
// the store-level duplicate checks remain authoritative.
func (s *NotificationService) guardOnce(key string) bool {
	if s.redis == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ok, err := s.redis.SetNX(ctx, key, 1, duplicateSubmissionWindow).Result()
	if err != nil {
		log.Printf("Redis guard failed for %s: %v", key, err)
		return true
	}
	return ok
}
