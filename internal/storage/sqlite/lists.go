package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

const selectListsQuery = `
	SELECT l.id, l.title, l.description, l.task_id, l.user_id, l.completed,
		l.created_at, l.updated_at,
		t.title AS task_title,
		t.description AS task_description,
		t.created_by AS task_created_by,
		t.created_at AS task_created_at,
		t.updated_at AS task_updated_at,
		(SELECT COUNT(*) FROM task_lists c WHERE c.task_id = t.id) AS task_lists_count,
		u.name AS user_name,
		u.email AS user_email,
		u.role AS user_role,
		u.created_at AS user_created_at,
		u.updated_at AS user_updated_at
	FROM task_lists l
	JOIN tasks t ON t.id = l.task_id
	JOIN users u ON u.id = l.user_id`

func getList(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.TaskList, error) {
	var row listRow
	err := sqlx.GetContext(ctx, q, &row, selectListsQuery+" WHERE l.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting list %d: %w", id, translateError(err))
	}
	return row.model(), nil
}

// CreateList inserts a list and reads it back with its task and owner.
func (s *Storage) CreateList(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	var created *models.TaskList
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO task_lists (title, description, task_id, user_id, completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			list.Title, list.Description, list.TaskID, list.UserID, list.Completed,
			list.CreatedAt.UTC(), list.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("creating list: %w", translateError(err))
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading list id: %w", err)
		}

		created, err = getList(ctx, tx, id)
		return err
	})
	if err != nil {
		s.logFailure(err).
			Int64("task_id", list.TaskID).
			Msg("failed to insert list")
		return nil, err
	}

	s.logger.Debug().
		Int64("list_id", created.ID).
		Msg("inserted list")
	return created, nil
}

// GetListByID retrieves a single list with its task and owner.
func (s *Storage) GetListByID(ctx context.Context, id int64) (*models.TaskList, error) {
	list, err := getList(ctx, s.db, id)
	if err != nil {
		s.logFailure(err).
			Int64("list_id", id).
			Msg("failed to select list by id")
		return nil, err
	}
	return list, nil
}

// ListLists returns one page of a user's lists, newest first, optionally
// restricted to a task, and the total count.
func (s *Storage) ListLists(ctx context.Context, filter storage.ListFilter) ([]*models.TaskList, int, error) {
	where := " WHERE l.user_id = ?"
	args := []interface{}{filter.UserID}
	if filter.TaskID != nil {
		where += " AND l.task_id = ?"
		args = append(args, *filter.TaskID)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM task_lists l"+where, args...); err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", filter.UserID).
			Msg("failed to count lists")
		return nil, 0, fmt.Errorf("counting lists: %w", err)
	}

	var rows []listRow
	err := s.db.SelectContext(ctx, &rows,
		selectListsQuery+where+" ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?",
		append(args, filter.Limit, filter.Offset)...,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", filter.UserID).
			Msg("failed to select lists")
		return nil, 0, fmt.Errorf("listing lists: %w", err)
	}

	lists := make([]*models.TaskList, 0, len(rows))
	for _, row := range rows {
		lists = append(lists, row.model())
	}
	return lists, total, nil
}

// UpdateList replaces the title, description and completed flag of a list.
func (s *Storage) UpdateList(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	var updated *models.TaskList
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE task_lists SET title = ?, description = ?, completed = ?, updated_at = ?
			WHERE id = ?`,
			list.Title, list.Description, list.Completed, list.UpdatedAt.UTC(), list.ID,
		)
		if err != nil {
			return fmt.Errorf("updating list %d: %w", list.ID, err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fmt.Errorf("updating list %d: %w", list.ID, storage.ErrNotFound)
		}

		updated, err = getList(ctx, tx, list.ID)
		return err
	})
	if err != nil {
		s.logFailure(err).
			Int64("list_id", list.ID).
			Msg("failed to update list")
		return nil, err
	}

	s.logger.Debug().
		Int64("list_id", list.ID).
		Msg("updated list")
	return updated, nil
}

// DeleteList removes a list by ID.
func (s *Storage) DeleteList(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM task_lists WHERE id = ?", id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("list_id", id).
			Msg("failed to delete list")
		return fmt.Errorf("deleting list %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting list %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
