package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrTaskNotFound       = errors.New("task not found")
	ErrListNotFound       = errors.New("list not found")
)

// ValidationError carries field-keyed messages for rules that can only be
// checked against the store, such as email uniqueness.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

type AuthService interface {
	// Register creates a user with a hashed password and opens a session
	// for it.
	//
	// It returns a *ValidationError if the email is already taken.
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)

	// Login verifies the credentials and opens a new session. Other
	// sessions of the user stay valid.
	//
	// It returns ErrInvalidCredentials for an unknown email or a wrong
	// password.
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// Logout closes the principal's current session, or every session of
	// the principal when all is true.
	Logout(ctx context.Context, principal models.Principal, all bool) error

	// Authenticate resolves a bearer token into a principal.
	//
	// It returns ErrInvalidToken, ErrSessionNotFound or ErrSessionExpired.
	Authenticate(ctx context.Context, token string) (models.Principal, error)

	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// TaskService methods run the task policy before touching the store, so a
// non-admin gets policy.ErrForbidden even for a task that does not exist.
type TaskService interface {
	ListTasks(ctx context.Context, principal models.Principal, page int) (models.Page[*models.Task], error)
	CreateTask(ctx context.Context, principal models.Principal, params CreateTaskParams) (*models.Task, error)
	GetTask(ctx context.Context, principal models.Principal, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, principal models.Principal, params UpdateTaskParams) (*models.Task, error)
	DeleteTask(ctx context.Context, principal models.Principal, id int64) error
}

// ListService methods load the list first, so a missing list yields
// ErrListNotFound and a foreign one policy.ErrForbidden.
type ListService interface {
	ListLists(ctx context.Context, principal models.Principal, params ListListsParams) (models.Page[*models.TaskList], error)
	CreateList(ctx context.Context, principal models.Principal, params CreateListParams) (*models.TaskList, error)
	GetList(ctx context.Context, principal models.Principal, id int64) (*models.TaskList, error)
	UpdateList(ctx context.Context, principal models.Principal, params UpdateListParams) (*models.TaskList, error)
	DeleteList(ctx context.Context, principal models.Principal, id int64) error
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User      *models.User
	SessionID string
	Token     string
	ExpiresAt time.Time
}

type CreateTaskParams struct {
	Title       string
	Description string
}

type UpdateTaskParams struct {
	ID          int64
	Title       string
	Description string
}

type ListListsParams struct {
	TaskID *int64
	Page   int
}

type CreateListParams struct {
	Title       string
	Description *string
	TaskID      int64
}

// UpdateListParams replaces every mutable field; a nil Description clears it.
type UpdateListParams struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
}
