package services

import (
	"testing"

	"classquiz/models"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func TestPartitionNotificationsAssigned(t *testing.T) {
	// Three assignment notifications for the same quiz: first-seen wins,
	// the unread duplicate is flagged for marking, the read one dropped.
	notifications := []models.Notification{
		{ID: 3, Type: models.NotificationQuizAssigned, QuizID: uintPtr(7), IsRead: false},
		{ID: 2, Type: models.NotificationQuizAssigned, QuizID: uintPtr(7), IsRead: false},
		{ID: 1, Type: models.NotificationQuizAssigned, QuizID: uintPtr(7), IsRead: true},
	}

	unique, dupIDs := partitionNotifications(notifications)

	assert.Len(t, unique, 1)
	assert.Equal(t, uint(3), unique[0].ID)
	assert.Equal(t, []uint{2}, dupIDs)
}

func TestPartitionNotificationsGradedKeyIncludesScore(t *testing.T) {
	// Same quiz but different scores are distinct events.
	notifications := []models.Notification{
		{ID: 1, Type: models.NotificationQuizGraded, QuizID: uintPtr(7), Score: intPtr(80)},
		{ID: 2, Type: models.NotificationQuizGraded, QuizID: uintPtr(7), Score: intPtr(60)},
		{ID: 3, Type: models.NotificationQuizGraded, QuizID: uintPtr(7), Score: intPtr(80), IsRead: false},
	}

	unique, dupIDs := partitionNotifications(notifications)

	assert.Len(t, unique, 2)
	assert.Equal(t, []uint{3}, dupIDs)
}

func TestPartitionNotificationsAssignedGradedStatus(t *testing.T) {
	// A quiz_assigned that has moved to graded status shares the graded
	// key, not the assignment key.
	notifications := []models.Notification{
		{ID: 1, Type: models.NotificationQuizAssigned, QuizID: uintPtr(7), Status: models.NotificationStatusGraded, Score: intPtr(90)},
		{ID: 2, Type: models.NotificationQuizGraded, QuizID: uintPtr(7), Score: intPtr(90)},
		{ID: 3, Type: models.NotificationQuizAssigned, QuizID: uintPtr(7)},
	}

	unique, dupIDs := partitionNotifications(notifications)

	assert.Len(t, unique, 2)
	assert.Equal(t, []uint{2}, dupIDs)
}

func TestPartitionNotificationsNonQuizNeverCollapsed(t *testing.T) {
	notifications := []models.Notification{
		{ID: 1, Type: models.NotificationAnnouncement},
		{ID: 2, Type: models.NotificationAnnouncement},
		{ID: 3, Type: models.NotificationDataExport, QuizID: uintPtr(7)},
		{ID: 4, Type: models.NotificationDataExport, QuizID: uintPtr(7)},
	}

	unique, dupIDs := partitionNotifications(notifications)

	assert.Len(t, unique, 4)
	assert.Empty(t, dupIDs)
}

func TestPartitionNotificationsIdempotent(t *testing.T) {
	notifications := []models.Notification{
		{ID: 5, Type: models.NotificationQuizAssigned, QuizID: uintPtr(1)},
		{ID: 4, Type: models.NotificationQuizAssigned, QuizID: uintPtr(1)},
		{ID: 3, Type: models.NotificationQuizAssigned, QuizID: uintPtr(2)},
		{ID: 2, Type: models.NotificationQuizGraded, QuizID: uintPtr(2), Score: intPtr(50)},
		{ID: 1, Type: models.NotificationAnnouncement},
	}

	unique, dupIDs := partitionNotifications(notifications)
	assert.Len(t, dupIDs, 1)

	// Running the partition on its own output must change nothing.
	again, moreDups := partitionNotifications(unique)
	assert.Equal(t, unique, again)
	assert.Empty(t, moreDups)
}

func TestCountUnread(t *testing.T) {
	notifications := []models.Notification{
		{ID: 1, IsRead: false},
		{ID: 2, IsRead: true},
		{ID: 3, IsRead: false},
	}
	assert.Equal(t, 2, countUnread(notifications))
	assert.Equal(t, 0, countUnread(nil))
}
