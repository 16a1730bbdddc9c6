package repo

import (
	"context"
	"fmt"
	"strings"

	"alice/internal/domain"
)

func (r Repo) InsertMessage(ctx context.Context, m domain.Message) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO messages(task_id,author,message,timestamp) VALUES (?,?,?,?)`,
		m.TaskID, m.Author, m.Message, m.Timestamp)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListMessages returns a task's messages in chronological order.
func (r Repo) ListMessages(ctx context.Context, taskID int64) ([]domain.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,task_id,author,message,timestamp FROM messages WHERE task_id=? ORDER BY timestamp ASC, id ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.TaskID, &m.Author, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// MessagesForTasks loads messages for a page of tasks with one batched
// query, grouped by task id.
func (r Repo) MessagesForTasks(ctx context.Context, taskIDs []int64) (map[int64][]domain.Message, error) {
	res := map[int64][]domain.Message{}
	if len(taskIDs) == 0 {
		return res, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(taskIDs)), ",")
	args := make([]any, 0, len(taskIDs))
	for _, id := range taskIDs {
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT id,task_id,author,message,timestamp FROM messages WHERE task_id IN (%s) ORDER BY timestamp ASC, id ASC`, placeholders)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.TaskID, &m.Author, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		res[m.TaskID] = append(res[m.TaskID], m)
	}
	return res, rows.Err()
}
