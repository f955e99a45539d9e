package models

import "time"

// TaskList is a personal checklist item attached to a Task.
type TaskList struct {
	ID          int64
	Title       string
	Description *string
	TaskID      int64
	UserID      int64
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Task *Task
	User *User
}
