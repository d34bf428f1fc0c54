package services

import (
	"fmt"

	"classquiz/models"
)

// dedupKey returns the semantic identity of a quiz notification. Two
// notifications with the same key describe the same event and only the
// first-seen one should survive. Notifications that do not reference a
// quiz (announcements, exports) have no key and are never collapsed.
func dedupKey(n *models.Notification) (string, bool) {
	if n.QuizID == nil {
		return "", false
	}
	graded := n.Type == models.NotificationQuizGraded ||
		(n.Type == models.NotificationQuizAssigned && n.Status == models.NotificationStatusGraded)
	if graded {
		score := 0
		if n.Score != nil {
			score = *n.Score
		}
		return fmt.Sprintf("graded:%d:%d", *n.QuizID, score), true
	}
	if n.Type == models.NotificationQuizAssigned {
		return fmt.Sprintf("assigned:%d", *n.QuizID), true
	}
	return "", false
}

// partitionNotifications splits a caller-ordered notification list
// (typically most-recent-first) into the unique set and the IDs of
// unread duplicates that should be marked read in storage. Duplicates
// that are already read need no storage write and are simply dropped.
func partitionNotifications(notifications []models.Notification) (unique []models.Notification, unreadDuplicateIDs []uint) {
	seen := make(map[string]bool, len(notifications))
	unique = make([]models.Notification, 0, len(notifications))

	for i := range notifications {
		n := notifications[i]
		key, ok := dedupKey(&n)
		if !ok {
			unique = append(unique, n)
			continue
		}
		if seen[key] {
			if !n.IsRead {
				unreadDuplicateIDs = append(unreadDuplicateIDs, n.ID)
			}
			continue
		}
		seen[key] = true
		unique = append(unique, n)
	}
	return unique, unreadDuplicateIDs
}

func countUnread(notifications []models.Notification) int {
	count := 0
	for i := range notifications {
		if !notifications[i].IsRead {
			count++
		}
	}
	return count
}
