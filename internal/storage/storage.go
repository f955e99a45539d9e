// Package storage defines the persistence contract shared by the postgres,
// sqlite and redis backends.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidReference = errors.New("invalid reference")
)

type UserStorage interface {
	// CreateUser inserts the user and sets its ID. It returns
	// ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TaskStorage returns tasks with Creator joined and ListsCount populated.
type TaskStorage interface {
	// CreateTask inserts the task and reads it back in the same transaction.
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	TaskExists(ctx context.Context, id int64) (bool, error)
	// ListTasks returns tasks newest first together with the total count.
	ListTasks(ctx context.Context, offset, limit int) ([]*models.Task, int, error)
	// UpdateTask replaces title and description.
	UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	// DeleteTask removes the task and every list attached to it.
	DeleteTask(ctx context.Context, id int64) error
}

type ListFilter struct {
	UserID int64
	TaskID *int64
	Offset int
	Limit  int
}

// ListStorage returns lists with Task and User joined. The joined Task has
// ListsCount populated but no Creator.
type ListStorage interface {
	// CreateList returns ErrInvalidReference when the task does not exist.
	CreateList(ctx context.Context, list *models.TaskList) (*models.TaskList, error)
	GetListByID(ctx context.Context, id int64) (*models.TaskList, error)
	ListLists(ctx context.Context, filter ListFilter) ([]*models.TaskList, int, error)
	// UpdateList replaces title, description and completed.
	UpdateList(ctx context.Context, list *models.TaskList) (*models.TaskList, error)
	DeleteList(ctx context.Context, id int64) error
}

type SessionStorage interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByID(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
}

type Storage interface {
	UserStorage
	TaskStorage
	ListStorage
	SessionStorage
	Close() error
}
