package v1

import (
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope wraps every response body. Data is omitted only when nil, so an
// empty page still renders "data": [].
type envelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Meta    *paginationMeta     `json:"meta,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type paginationMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

func newPaginationMeta[T any](page models.Page[T]) *paginationMeta {
	return &paginationMeta{
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
	}
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(user *models.User) *userResponse {
	if user == nil {
		return nil
	}
	return &userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
}

type taskResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CreatedBy   int64         `json:"created_by"`
	Creator     *userResponse `json:"creator"`
	ListsCount  int64         `json:"lists_count"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func newTaskResponse(task *models.Task) *taskResponse {
	if task == nil {
		return nil
	}
	return &taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		CreatedBy:   task.CreatedBy,
		Creator:     newUserResponse(task.Creator),
		ListsCount:  task.ListsCount,
		CreatedAt:   task.CreatedAt.UTC(),
		UpdatedAt:   task.UpdatedAt.UTC(),
	}
}

func newTaskResponses(tasks []*models.Task) []*taskResponse {
	resp := make([]*taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newTaskResponse(task))
	}
	return resp
}

type listResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	TaskID      int64         `json:"task_id"`
	UserID      int64         `json:"user_id"`
	Completed   bool          `json:"completed"`
	Task        *taskResponse `json:"task"`
	User        *userResponse `json:"user"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func newListResponse(list *models.TaskList) *listResponse {
	return &listResponse{
		ID:          list.ID,
		Title:       list.Title,
		Description: list.Description,
		TaskID:      list.TaskID,
		UserID:      list.UserID,
		Completed:   list.Completed,
		Task:        newTaskResponse(list.Task),
		User:        newUserResponse(list.User),
		CreatedAt:   list.CreatedAt.UTC(),
		UpdatedAt:   list.UpdatedAt.UTC(),
	}
}

func newListResponses(lists []*models.TaskList) []*listResponse {
	resp := make([]*listResponse, 0, len(lists))
	for _, list := range lists {
		resp = append(resp, newListResponse(list))
	}
	return resp
}

type authResponse struct {
	User      *userResponse `json:"user"`
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
}
