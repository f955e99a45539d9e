package postgres

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

const selectTasksQuery = `
SELECT t.id,
       t.title,
       t.description,
       t.created_by,
       t.created_at,
       t.updated_at,
       (SELECT COUNT(*) FROM task_lists l WHERE l.task_id = t.id),
       u.id,
       u.name,
       u.email,
       u.role,
       u.created_at,
       u.updated_at
FROM tasks t
JOIN users u ON u.id = t.created_by
`

func scanTask(row scanner) (*models.Task, error) {
	task := &models.Task{Creator: new(models.User)}
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.ListsCount,
		&task.Creator.ID,
		&task.Creator.Name,
		&task.Creator.Email,
		&task.Creator.Role,
		&task.Creator.CreatedAt,
		&task.Creator.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func getTaskByID(ctx context.Context, q querier, id int64) (*models.Task, error) {
	task, err := scanTask(q.QueryRow(ctx, selectTasksQuery+"WHERE t.id = $1", id))
	if err != nil {
		return nil, translateError(err)
	}
	return task, nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   created_by,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	var taskID int64
	err = tx.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, translateError(err)
	}
	s.logger.Debug().
		Int64("task_id", taskID).
		Msg("inserted task")

	created, err := getTaskByID(ctx, tx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select inserted task")
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

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := getTaskByID(ctx, s.pgPool, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Err(err).
				Int64("task_id", id).
				Msg("failed to select task by id")
		}
		return nil, err
	}
	return task, nil
}

func (s *Storage) TaskExists(ctx context.Context, id int64) (bool, error) {
	const selectTaskExistsQuery = `
SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)
`
	var exists bool
	err := s.pgPool.QueryRow(ctx, selectTaskExistsQuery, id).Scan(&exists)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to check task existence")
		return false, err
	}
	return exists, nil
}

func (s *Storage) ListTasks(ctx context.Context, offset, limit int) ([]*models.Task, int, error) {
	const countTasksQuery = `
SELECT COUNT(*)
FROM tasks
`
	var total int
	err := s.pgPool.QueryRow(ctx, countTasksQuery).Scan(&total)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return nil, 0, err
	}

	rows, err := s.pgPool.Query(
		ctx,
		selectTasksQuery+"ORDER BY t.created_at DESC, t.id DESC LIMIT $1 OFFSET $2",
		limit,
		offset,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, 0, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Int("total", total).
		Msg("selected tasks")
	return tasks, total, nil
}

func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    updated_at = $3
WHERE id = $4
`
	tag, err := tx.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}

	updated, err := getTaskByID(ctx, tx, task.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to select updated task")
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
		Int64("task_id", task.ID).
		Msg("updated task")
	return updated, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteTaskListsQuery = `
DELETE FROM task_lists
WHERE task_id = $1
`
	listsTag, err := tx.Exec(ctx, deleteTaskListsQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task lists")
		return err
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := tx.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	s.logger.Debug().
		Int64("task_id", id).
		Int64("lists_deleted", listsTag.RowsAffected()).
		Msg("deleted task")
	return nil
}
