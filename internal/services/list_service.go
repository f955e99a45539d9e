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

const invalidTaskIDMessage = "The selected task id is invalid."

type listServiceImpl struct {
	logger zerolog.Logger
	lists  storage.ListStorage
	tasks  storage.TaskStorage
	now    func() time.Time
}

func NewListService(
	logger zerolog.Logger,
	lists storage.ListStorage,
	tasks storage.TaskStorage,
) ListService {
	return &listServiceImpl{
		logger: logger,
		lists:  lists,
		tasks:  tasks,
		now:    time.Now,
	}
}

// ListLists only ever returns the principal's own lists.
func (s *listServiceImpl) ListLists(ctx context.Context, principal models.Principal, params ListListsParams) (models.Page[*models.TaskList], error) {
	if err := policy.Authorize(principal, policy.ActionIndex, (*models.TaskList)(nil)); err != nil {
		return models.Page[*models.TaskList]{}, err
	}

	lists, total, err := s.lists.ListLists(ctx, storage.ListFilter{
		UserID: principal.ID,
		TaskID: params.TaskID,
		Offset: models.Offset(params.Page),
		Limit:  models.PerPage,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", principal.ID).
			Msg("failed to select lists")
		return models.Page[*models.TaskList]{}, err
	}
	s.logger.Debug().
		Int64("user_id", principal.ID).
		Int("page", params.Page).
		Int("count", len(lists)).
		Int("total", total).
		Msg("selected lists")

	return models.NewPage(lists, params.Page, total), nil
}

func (s *listServiceImpl) CreateList(ctx context.Context, principal models.Principal, params CreateListParams) (*models.TaskList, error) {
	if err := policy.Authorize(principal, policy.ActionCreate, (*models.TaskList)(nil)); err != nil {
		return nil, err
	}

	exists, err := s.tasks.TaskExists(ctx, params.TaskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", params.TaskID).
			Msg("failed to check task existence")
		return nil, err
	} else if !exists {
		return nil, NewValidationError("task_id", invalidTaskIDMessage)
	}

	now := s.now()
	list, err := s.lists.CreateList(ctx, &models.TaskList{
		Title:       params.Title,
		Description: params.Description,
		TaskID:      params.TaskID,
		UserID:      principal.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		// The task was deleted between the check and the insert.
		if errors.Is(err, storage.ErrInvalidReference) {
			return nil, NewValidationError("task_id", invalidTaskIDMessage)
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", principal.ID).
			Int64("task_id", params.TaskID).
			Msg("failed to insert list")
		return nil, err
	}

	s.logger.Info().
		Int64("list_id", list.ID).
		Int64("user_id", principal.ID).
		Msg("created list")
	return list, nil
}

func (s *listServiceImpl) GetList(ctx context.Context, principal models.Principal, id int64) (*models.TaskList, error) {
	return s.authorizeList(ctx, principal, policy.ActionView, id)
}

func (s *listServiceImpl) UpdateList(ctx context.Context, principal models.Principal, params UpdateListParams) (*models.TaskList, error) {
	list, err := s.authorizeList(ctx, principal, policy.ActionUpdate, params.ID)
	if err != nil {
		return nil, err
	}

	list.Title = params.Title
	list.Description = params.Description
	list.Completed = params.Completed
	list.UpdatedAt = s.now()

	updated, err := s.lists.UpdateList(ctx, list)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrListNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("list_id", params.ID).
			Msg("failed to update list")
		return nil, err
	}

	s.logger.Info().
		Int64("list_id", updated.ID).
		Int64("user_id", principal.ID).
		Msg("updated list")
	return updated, nil
}

func (s *listServiceImpl) DeleteList(ctx context.Context, principal models.Principal, id int64) error {
	if _, err := s.authorizeList(ctx, principal, policy.ActionDelete, id); err != nil {
		return err
	}

	err := s.lists.DeleteList(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrListNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("list_id", id).
			Msg("failed to delete list")
		return err
	}

	s.logger.Info().
		Int64("list_id", id).
		Int64("user_id", principal.ID).
		Msg("deleted list")
	return nil
}

func (s *listServiceImpl) authorizeList(ctx context.Context, principal models.Principal, action policy.Action, id int64) (*models.TaskList, error) {
	list, err := s.lists.GetListByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrListNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("list_id", id).
			Msg("failed to select list by id")
		return nil, err
	}

	if err = policy.Authorize(principal, action, list); err != nil {
		s.logger.Error().
			Int64("list_id", id).
			Int64("owner_id", list.UserID).
			Int64("user_id", principal.ID).
			Str("action", string(action)).
			Msg("non-owner tried to access a list")
		return nil, err
	}
	return list, nil
}
