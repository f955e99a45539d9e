package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

const selectListsQuery = `
SELECT l.id,
       l.title,
       l.description,
       l.task_id,
       l.user_id,
       l.completed,
       l.created_at,
       l.updated_at,
       t.id,
       t.title,
       t.description,
       t.created_by,
       t.created_at,
       t.updated_at,
       (SELECT COUNT(*) FROM task_lists c WHERE c.task_id = t.id),
       u.id,
       u.name,
       u.email,
       u.role,
       u.created_at,
       u.updated_at
FROM task_lists l
JOIN tasks t ON t.id = l.task_id
JOIN users u ON u.id = l.user_id
`

func scanList(row scanner) (*models.TaskList, error) {
	list := &models.TaskList{
		Task: new(models.Task),
		User: new(models.User),
	}
	err := row.Scan(
		&list.ID,
		&list.Title,
		&list.Description,
		&list.TaskID,
		&list.UserID,
		&list.Completed,
		&list.CreatedAt,
		&list.UpdatedAt,
		&list.Task.ID,
		&list.Task.Title,
		&list.Task.Description,
		&list.Task.CreatedBy,
		&list.Task.CreatedAt,
		&list.Task.UpdatedAt,
		&list.Task.ListsCount,
		&list.User.ID,
		&list.User.Name,
		&list.User.Email,
		&list.User.Role,
		&list.User.CreatedAt,
		&list.User.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func getListByID(ctx context.Context, q querier, id int64) (*models.TaskList, error) {
	list, err := scanList(q.QueryRow(ctx, selectListsQuery+"WHERE l.id = $1", id))
	if err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

func (s *Storage) CreateList(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertListQuery = `
INSERT INTO task_lists (title,
                        description,
                        task_id,
                        user_id,
                        completed,
                        created_at,
                        updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	var listID int64
	err = tx.QueryRow(
		ctx,
		insertListQuery,
		list.Title,
		list.Description,
		list.TaskID,
		list.UserID,
		list.Completed,
		list.CreatedAt,
		list.UpdatedAt,
	).Scan(&listID)
	if err != nil {
		err = translateError(err)
		if errors.Is(err, storage.ErrInvalidReference) {
			s.logger.Debug().
				Int64("task_id", list.TaskID).
				Msg("list references a missing task")
			return nil, err
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert list")
		return nil, err
	}
	s.logger.Debug().
		Int64("list_id", listID).
		Msg("inserted list")

	created, err := getListByID(ctx, tx, listID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("list_id", listID).
			Msg("failed to select inserted list")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}
	return created, nil
}

func (s *Storage) GetListByID(ctx context.Context, id int64) (*models.TaskList, error) {
	list, err := getListByID(ctx, s.pgPool, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Int64("list_id", id).
				Msg("failed to select list by id")
		}
		return nil, err
	}
	return list, nil
}

func (s *Storage) ListLists(ctx context.Context, filter storage.ListFilter) ([]*models.TaskList, int, error) {
	where := "WHERE l.user_id = $1 "
	args := []any{filter.UserID}
	if filter.TaskID != nil {
		where += "AND l.task_id = $2 "
		args = append(args, *filter.TaskID)
	}

	var total int
	err := s.pgPool.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM task_lists l "+where,
		args...,
	).Scan(&total)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", filter.UserID).
			Msg("failed to count lists")
		return nil, 0, err
	}

	limitArg := len(args) + 1
	query := selectListsQuery + where +
		"ORDER BY l.created_at DESC, l.id DESC " +
		"LIMIT $" + strconv.Itoa(limitArg) + " OFFSET $" + strconv.Itoa(limitArg+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.pgPool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", filter.UserID).
			Msg("failed to select lists")
		return nil, 0, err
	}
	defer rows.Close()

	lists := make([]*models.TaskList, 0, filter.Limit)
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan list")
			return nil, 0, err
		}
		lists = append(lists, list)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, 0, err
	}
	s.logger.Debug().
		Int("count", len(lists)).
		Int("total", total).
		Int64("user_id", filter.UserID).
		Msg("selected lists")
	return lists, total, nil
}

func (s *Storage) UpdateList(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const updateListQuery = `
UPDATE task_lists
SET title = $1,
    description = $2,
    completed = $3,
    updated_at = $4
WHERE id = $5
`
	tag, err := tx.Exec(
		ctx,
		updateListQuery,
		list.Title,
		list.Description,
		list.Completed,
		list.UpdatedAt,
		list.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("list_id", list.ID).
			Msg("failed to update list")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}

	updated, err := getListByID(ctx, tx, list.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("list_id", list.ID).
			Msg("failed to select updated list")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}
	s.logger.Debug().
		Int64("list_id", list.ID).
		Msg("updated list")
	return updated, nil
}

func (s *Storage) DeleteList(ctx context.Context, id int64) error {
	const deleteListQuery = `
DELETE FROM task_lists
WHERE id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteListQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("list_id", id).
			Msg("failed to delete list")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Int64("list_id", id).
		Msg("deleted list")
	return nil
}
