package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

const selectTasksQuery = `
	SELECT t.id, t.title, t.description, t.created_by, t.created_at, t.updated_at,
		(SELECT COUNT(*) FROM task_lists l WHERE l.task_id = t.id) AS lists_count,
		u.name AS creator_name,
		u.email AS creator_email,
		u.role AS creator_role,
		u.created_at AS creator_created_at,
		u.updated_at AS creator_updated_at
	FROM tasks t
	JOIN users u ON u.id = t.created_by`

func getTask(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Task, error) {
	var row taskRow
	err := sqlx.GetContext(ctx, q, &row, selectTasksQuery+" WHERE t.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, translateError(err))
	}
	return row.model(), nil
}

// CreateTask inserts a task and reads it back with its creator.
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	var created *models.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (title, description, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			task.Title, task.Description, task.CreatedBy,
			task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("creating task: %w", translateError(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading task id: %w", err)
		}

		created, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logFailure(err).
			Int64("created_by", task.CreatedBy).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Debug().
		Int64("task_id", created.ID).
		Msg("inserted task")
	return created, nil
}

// GetTaskByID retrieves a single task with its creator and list count.
func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := getTask(ctx, s.db, id)
	if err != nil {
		s.logFailure(err).
			Int64("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}

// TaskExists reports whether a task with the given ID exists.
func (s *Storage) TaskExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)", id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to check task existence")
		return false, fmt.Errorf("checking task %d: %w", id, err)
	}
	return exists, nil
}

// ListTasks returns one page of tasks, newest first, and the total count.
func (s *Storage) ListTasks(ctx context.Context, offset, limit int) ([]*models.Task, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tasks"); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return nil, 0, fmt.Errorf("counting tasks: %w", err)
	}

	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows,
		selectTasksQuery+" ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("offset", offset).
			Int("limit", limit).
			Msg("failed to select tasks")
		return nil, 0, fmt.Errorf("listing tasks: %w", err)
	}

	tasks := make([]*models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.model())
	}
	return tasks, total, nil
}

// UpdateTask replaces the title and description of a task.
func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	var updated *models.Task
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET title = ?, description = ?, updated_at = ?
			WHERE id = ?`,
			task.Title, task.Description, task.UpdatedAt.UTC(), task.ID,
		)
		if err != nil {
			return fmt.Errorf("updating task %d: %w", task.ID, err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("updating task %d: %w", task.ID, storage.ErrNotFound)
		}

		updated, err = getTask(ctx, tx, task.ID)
		return err
	})
	if err != nil {
		s.logFailure(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("updated task")
	return updated, nil
}

// DeleteTask removes a task together with every list attached to it.
func (s *Storage) DeleteTask(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM task_lists WHERE task_id = ?", id); err != nil {
			return fmt.Errorf("deleting lists of task %d: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting task %d: %w", id, err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("deleting task %d: %w", id, storage.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		s.logFailure(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Debug().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}
