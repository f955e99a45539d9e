package sqlite

import (
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type userRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) model() *models.User {
	return &models.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// taskRow is a task joined with its creator.
type taskRow struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedBy   int64     `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	ListsCount  int64     `db:"lists_count"`

	CreatorName      string    `db:"creator_name"`
	CreatorEmail     string    `db:"creator_email"`
	CreatorRole      string    `db:"creator_role"`
	CreatorCreatedAt time.Time `db:"creator_created_at"`
	CreatorUpdatedAt time.Time `db:"creator_updated_at"`
}

func (r taskRow) model() *models.Task {
	return &models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ListsCount:  r.ListsCount,
		Creator: &models.User{
			ID:        r.CreatedBy,
			Name:      r.CreatorName,
			Email:     r.CreatorEmail,
			Role:      r.CreatorRole,
			CreatedAt: r.CreatorCreatedAt,
			UpdatedAt: r.CreatorUpdatedAt,
		},
	}
}

// listRow is a list joined with its task (without creator) and owner.
type listRow struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	TaskID      int64     `db:"task_id"`
	UserID      int64     `db:"user_id"`
	Completed   bool      `db:"completed"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	TaskTitle       string    `db:"task_title"`
	TaskDescription string    `db:"task_description"`
	TaskCreatedBy   int64     `db:"task_created_by"`
	TaskCreatedAt   time.Time `db:"task_created_at"`
	TaskUpdatedAt   time.Time `db:"task_updated_at"`
	TaskListsCount  int64     `db:"task_lists_count"`

	UserName      string    `db:"user_name"`
	UserEmail     string    `db:"user_email"`
	UserRole      string    `db:"user_role"`
	UserCreatedAt time.Time `db:"user_created_at"`
	UserUpdatedAt time.Time `db:"user_updated_at"`
}

func (r listRow) model() *models.TaskList {
	return &models.TaskList{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		TaskID:      r.TaskID,
		UserID:      r.UserID,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Task: &models.Task{
			ID:          r.TaskID,
			Title:       r.TaskTitle,
			Description: r.TaskDescription,
			CreatedBy:   r.TaskCreatedBy,
			CreatedAt:   r.TaskCreatedAt,
			UpdatedAt:   r.TaskUpdatedAt,
			ListsCount:  r.TaskListsCount,
		},
		User: &models.User{
			ID:        r.UserID,
			Name:      r.UserName,
			Email:     r.UserEmail,
			Role:      r.UserRole,
			CreatedAt: r.UserCreatedAt,
			UpdatedAt: r.UserUpdatedAt,
		},
	}
}

type sessionRow struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r sessionRow) model() *models.Session {
	return &models.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
