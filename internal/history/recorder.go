// Package history records task status transitions as they happen.
// Every status change appends one row; rows are never updated.
package history

import (
	"context"
	"database/sql"
	"time"
)

type Recorder struct {
	Now func() time.Time
}

// Append writes one transition row inside the caller's transaction.
// No-op when the status did not change.
func (r Recorder) Append(ctx context.Context, tx *sql.Tx, taskID int64, oldStatus, newStatus string) error {
	if oldStatus == newStatus {
		return nil
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	ts := now().UTC().Format(time.RFC3339)
	_, err := tx.ExecContext(ctx, `INSERT INTO status_history(task_id,old_status,new_status,changed_at) VALUES (?,?,?,?)`,
		taskID, oldStatus, newStatus, ts)
	return err
}
