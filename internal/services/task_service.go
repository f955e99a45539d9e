package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/policy"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskStorage
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskStorage,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
		now:    time.Now,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, principal models.Principal, page int) (models.Page[*models.Task], error) {
	if err := policy.Authorize(principal, policy.ActionIndex, (*models.Task)(nil)); err != nil {
		return models.Page[*models.Task]{}, err
	}

	tasks, total, err := s.tasks.ListTasks(ctx, models.Offset(page), models.PerPage)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("page", page).
			Msg("failed to select tasks")
		return models.Page[*models.Task]{}, err
	}
	s.logger.Debug().
		Int("page", page).
		Int("count", len(tasks)).
		Int("total", total).
		Msg("selected tasks")

	return models.NewPage(tasks, page, total), nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, principal models.Principal, params CreateTaskParams) (*models.Task, error) {
	if err := policy.Authorize(principal, policy.ActionCreate, (*models.Task)(nil)); err != nil {
		s.logger.Error().
			Int64("user_id", principal.ID).
			Msg("non-admin tried to create a task")
		return nil, err
	}

	now := s.now()
	task, err := s.tasks.CreateTask(ctx, &models.Task{
		Title:       params.Title,
		Description: params.Description,
		CreatedBy:   principal.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", principal.ID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", principal.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, principal models.Principal, id int64) (*models.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = policy.Authorize(principal, policy.ActionView, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, principal models.Principal, params UpdateTaskParams) (*models.Task, error) {
	if err := policy.Authorize(principal, policy.ActionUpdate, (*models.Task)(nil)); err != nil {
		s.logger.Error().
			Int64("user_id", principal.ID).
			Int64("task_id", params.ID).
			Msg("non-admin tried to update a task")
		return nil, err
	}

	task, err := s.tasks.UpdateTask(ctx, &models.Task{
		ID:          params.ID,
		Title:       params.Title,
		Description: params.Description,
		UpdatedAt:   s.now(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", principal.ID).
		Msg("updated task")
	return task, nil
}

// DeleteTask removes the task and every list attached to it.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, principal models.Principal, id int64) error {
	if err := policy.Authorize(principal, policy.ActionDelete, (*models.Task)(nil)); err != nil {
		s.logger.Error().
			Int64("user_id", principal.ID).
			Int64("task_id", id).
			Msg("non-admin tried to delete a task")
		return err
	}

	err := s.tasks.DeleteTask(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Int64("task_id", id).
		Int64("user_id", principal.ID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) getTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}
