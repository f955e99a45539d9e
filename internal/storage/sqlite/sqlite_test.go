package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-tracker/internal/storage"
	"github.com/adanyl0v/go-task-tracker/internal/storage/storagetest"
)

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return NewTestStorage(t)
	})
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")

	s, err := New(zerolog.Nop(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(zerolog.Nop(), path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.Get(&version, "SELECT MAX(version) FROM schema_version"))
	assert.Equal(t, migrations[len(migrations)-1].version, version)
}

func TestLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	s, err := New(logger, filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.GetTaskByID(ctx, 42)
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, buf.String())

	require.NoError(t, s.Close())

	_, err = s.GetTaskByID(ctx, 42)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"task_id":42`)
	assert.Contains(t, buf.String(), "failed to select task by id")

	buf.Reset()
	_, _, err = s.ListTasks(ctx, 0, 10)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "failed to count tasks")
}
