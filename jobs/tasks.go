package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTokenLogPrune is the task type for removing expired token-audit rows.
	TaskTokenLogPrune = "token_log:prune"
)

// TokenLogPrunePayload configures a prune run. Retention counts from the
// row's expiry, not its issue time. Zero means prune as soon as expired.
type TokenLogPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// TokenRecordStore is the slice of the auth repository the pruner needs.
type TokenRecordStore interface {
	DeleteExpiredTokenRecords(ctx context.Context, before time.Time) (int64, error)
}

// NewTokenLogPruneTask constructs an Asynq task.
func NewTokenLogPruneTask(payload TokenLogPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTokenLogPrune, data), nil
}

// NewTokenLogPruneHandler returns the handler for TaskTokenLogPrune. The
// prune touches only the token audit log; role grants are never expired
// or deleted by background jobs.
func NewTokenLogPruneHandler(store TokenRecordStore, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload TokenLogPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		before := time.Now().Add(-payload.Retention)
		deleted, err := store.DeleteExpiredTokenRecords(ctx, before)
		if err != nil {
			return err
		}
		logger.Info("token log pruned",
			slog.Int64("deleted", deleted),
			slog.Time("before", before))
		return nil
	}
}
