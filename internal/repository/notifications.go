package repository

import (
	"database/sql"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// InsertNotifications 为每个收件人各写入一条通知，全部成功或全部失败
func (r *Repository) InsertNotifications(notifications []*domain.Notification) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO notifications (id, employee_id, event_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING is_read, created_at
	`

	for _, n := range notifications {
		args := []any{n.ID, n.EmployeeID, n.EventID, n.Text}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&n.IsRead, &n.CreatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) ListNotificationsByEmployee(employeeID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, event_id, text, is_read, created_at
		FROM notifications
		WHERE employee_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{EmployeeID: employeeID}
		if err := rows.Scan(&n.ID, &n.EventID, &n.Text, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkNotificationRead 只能标记属于自己的通知，不存在时返回 sql.ErrNoRows
func (r *Repository) MarkNotificationRead(id, employeeID string) error {
	query := `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND employee_id = $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id, employeeID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
