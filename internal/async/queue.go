package async

import (
	"context"
	"time"
)

// Job is the smallest useful unit. Extend as needed later (retry, priority,
// source channel, etc).
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
