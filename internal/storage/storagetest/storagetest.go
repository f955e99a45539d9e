// Package storagetest holds the behaviour every storage.Storage backend has
// to share. Backends call Run from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

// OpenFunc returns an empty storage. It is called once per subtest.
type OpenFunc func(t *testing.T) storage.Storage

// Run exercises s against the storage.Storage contract. Subtests run
// sequentially so backends may share one database between them.
func Run(t *testing.T, open OpenFunc) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{name: "users", fn: testUsers},
		{name: "tasks", fn: testTasks},
		{name: "list tasks pagination", fn: testListTasksPagination},
		{name: "delete task cascades", fn: testDeleteTaskCascades},
		{name: "lists", fn: testLists},
		{name: "list lists filter", fn: testListListsFilter},
		{name: "sessions", fn: testSessions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, open(t))
		})
	}
}

func createUser(t *testing.T, s storage.Storage, email, role string) *models.User {
	t.Helper()
	now := time.Now()
	u := &models.User{
		Name:      "User " + email,
		Email:     email,
		Password:  "hash",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createTask(t *testing.T, s storage.Storage, creator *models.User, title string, at time.Time) *models.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), &models.Task{
		Title:       title,
		Description: "desc " + title,
		CreatedBy:   creator.ID,
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	require.NoError(t, err)
	return task
}

func createList(t *testing.T, s storage.Storage, owner *models.User, task *models.Task, title string, at time.Time) *models.TaskList {
	t.Helper()
	list, err := s.CreateList(context.Background(), &models.TaskList{
		Title:     title,
		TaskID:    task.ID,
		UserID:    owner.ID,
		CreatedAt: at,
		UpdatedAt: at,
	})
	require.NoError(t, err)
	return list
}

func testUsers(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	u := createUser(t, s, "ann@example.com", models.RoleAdmin)
	assert.NotZero(t, u.ID)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", byID.Email)
	assert.Equal(t, models.RoleAdmin, byID.Role)
	assert.Equal(t, "hash", byID.Password)

	byEmail, err := s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetUserByID(ctx, u.ID+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	now := time.Now()
	err = s.CreateUser(ctx, &models.User{
		Name:      "dup",
		Email:     "ann@example.com",
		Password:  "x",
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func testTasks(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	admin := createUser(t, s, "admin@example.com", models.RoleAdmin)

	task := createTask(t, s, admin, "Launch", time.Now())
	assert.NotZero(t, task.ID)
	require.NotNil(t, task.Creator)
	assert.Equal(t, admin.ID, task.CreatedBy)
	assert.Equal(t, admin.ID, task.Creator.ID)
	assert.Equal(t, admin.Email, task.Creator.Email)
	assert.Zero(t, task.ListsCount)

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Launch", got.Title)
	assert.Equal(t, "desc Launch", got.Description)

	exists, err := s.TaskExists(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.TaskExists(ctx, task.ID+1)
	require.NoError(t, err)
	assert.False(t, exists)

	task.Title = "Relaunch"
	task.Description = "again"
	task.UpdatedAt = time.Now()
	updated, err := s.UpdateTask(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", updated.Title)
	assert.Equal(t, "again", updated.Description)
	require.NotNil(t, updated.Creator)
	assert.Equal(t, admin.ID, updated.Creator.ID)

	_, err = s.UpdateTask(ctx, &models.Task{
		ID:          task.ID + 1,
		Title:       "x",
		Description: "y",
		UpdatedAt:   time.Now(),
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetTaskByID(ctx, task.ID+1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListTasksPagination(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	admin := createUser(t, s, "admin@example.com", models.RoleAdmin)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		createTask(t, s, admin, fmt.Sprintf("task %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, total, err := s.ListTasks(ctx, 0, models.PerPage)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, first, 10)
	assert.Equal(t, "task 14", first[0].Title)
	assert.NotNil(t, first[0].Creator)

	second, _, err := s.ListTasks(ctx, models.PerPage, models.PerPage)
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, "task 0", second[4].Title)

	beyond, total, err := s.ListTasks(ctx, 3*models.PerPage, models.PerPage)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Empty(t, beyond)

	farBeyond, _, err := s.ListTasks(ctx, models.Offset(922337203685477582), models.PerPage)
	require.NoError(t, err)
	assert.Empty(t, farBeyond)
}

func testDeleteTaskCascades(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	admin := createUser(t, s, "admin@example.com", models.RoleAdmin)
	user := createUser(t, s, "user@example.com", models.RoleUser)

	task := createTask(t, s, admin, "Launch", time.Now())
	kept := createTask(t, s, admin, "Keep", time.Now())
	list := createList(t, s, user, task, "Buy cake", time.Now())
	other := createList(t, s, user, kept, "Buy candles", time.Now())

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ListsCount)

	require.NoError(t, s.DeleteTask(ctx, task.ID))

	_, err = s.GetTaskByID(ctx, task.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetListByID(ctx, list.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stillThere, err := s.GetListByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, kept.ID, stillThere.TaskID)

	assert.ErrorIs(t, s.DeleteTask(ctx, task.ID), storage.ErrNotFound)
}

func testLists(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	admin := createUser(t, s, "admin@example.com", models.RoleAdmin)
	owner := createUser(t, s, "owner@example.com", models.RoleUser)

	task := createTask(t, s, admin, "Launch", time.Now())

	description := "chocolate"
	now := time.Now()
	created, err := s.CreateList(ctx, &models.TaskList{
		Title:       "Buy cake",
		Description: &description,
		TaskID:      task.ID,
		UserID:      owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	assert.False(t, created.Completed)
	require.NotNil(t, created.Description)
	assert.Equal(t, "chocolate", *created.Description)
	require.NotNil(t, created.Task)
	assert.Equal(t, "Launch", created.Task.Title)
	assert.EqualValues(t, 1, created.Task.ListsCount)
	require.NotNil(t, created.User)
	assert.Equal(t, owner.Email, created.User.Email)

	got, err := s.GetListByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy cake", got.Title)
	assert.Equal(t, owner.ID, got.UserID)

	created.Title = "Buy pie"
	created.Description = nil
	created.Completed = true
	created.UpdatedAt = time.Now()
	updated, err := s.UpdateList(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Buy pie", updated.Title)
	assert.Nil(t, updated.Description)
	assert.True(t, updated.Completed)

	_, err = s.UpdateList(ctx, &models.TaskList{
		ID:        created.ID + 100,
		Title:     "x",
		UpdatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.CreateList(ctx, &models.TaskList{
		Title:     "orphan",
		TaskID:    task.ID + 100,
		UserID:    owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.ErrorIs(t, err, storage.ErrInvalidReference)

	require.NoError(t, s.DeleteList(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteList(ctx, created.ID), storage.ErrNotFound)
	_, err = s.GetListByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListListsFilter(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	admin := createUser(t, s, "admin@example.com", models.RoleAdmin)
	alice := createUser(t, s, "alice@example.com", models.RoleUser)
	bob := createUser(t, s, "bob@example.com", models.RoleUser)

	first := createTask(t, s, admin, "First", time.Now())
	second := createTask(t, s, admin, "Second", time.Now())

	base := time.Now().Add(-time.Hour)
	createList(t, s, alice, first, "a1", base)
	createList(t, s, alice, second, "a2", base.Add(time.Minute))
	createList(t, s, bob, first, "b1", base.Add(2*time.Minute))

	lists, total, err := s.ListLists(ctx, storage.ListFilter{UserID: alice.ID, Limit: models.PerPage})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, lists, 2)
	assert.Equal(t, "a2", lists[0].Title)
	for _, l := range lists {
		assert.Equal(t, alice.ID, l.UserID)
	}

	taskID := first.ID
	lists, total, err = s.ListLists(ctx, storage.ListFilter{UserID: alice.ID, TaskID: &taskID, Limit: models.PerPage})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, lists, 1)
	assert.Equal(t, "a1", lists[0].Title)

	lists, total, err = s.ListLists(ctx, storage.ListFilter{UserID: alice.ID, Offset: 1, Limit: models.PerPage})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, lists, 1)
	assert.Equal(t, "a1", lists[0].Title)
}

func testSessions(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	user := createUser(t, s, "user@example.com", models.RoleUser)

	now := time.Now()
	for _, id := range []string{"s1", "s2"} {
		require.NoError(t, s.CreateSession(ctx, &models.Session{
			ID:        id,
			UserID:    user.ID,
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}

	got, err := s.GetSessionByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.WithinDuration(t, now.Add(time.Hour), got.ExpiresAt, time.Second)

	require.NoError(t, s.DeleteSession(ctx, "s1"))
	_, err = s.GetSessionByID(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteSession(ctx, "s1"), storage.ErrNotFound)

	require.NoError(t, s.DeleteUserSessions(ctx, user.ID))
	_, err = s.GetSessionByID(ctx, "s2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
