package async

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoices-tracker/internal/core"
	"github.com/joseph-ayodele/invoices-tracker/internal/repository"
	"github.com/joseph-ayodele/invoices-tracker/internal/rules"
)

func TestProcessorQueueProcessesJobs(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := repository.OpenSQLite(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	proc := core.NewProcessor(logger, repo, rules.Default())
	queue := NewProcessorQueue(proc, logger,
		WithWorkers(2),
		WithQueueSize(8),
		WithProcessTimeout(10*time.Second),
	)

	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("content "+name), 0o644))
		require.NoError(t, queue.Enqueue(ctx, Job{Path: path, SubmittedAt: time.Now().UTC()}))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)

	list, err := repo.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProcessorQueueEnqueueAfterShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := NewProcessorQueue(nil, logger, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	queue.Shutdown(ctx)

	// Must not panic or block on the closed channel.
	require.NoError(t, queue.Enqueue(ctx, Job{Path: "/tmp/late.png"}))
	queue.Shutdown(ctx)
}
