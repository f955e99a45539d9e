package models

import "time"

type Task struct {
	ID          int64
	Title       string
	Description string
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Creator is nil unless the query joined users.
	Creator    *User
	ListsCount int64
}
