package repository

import (
	"database/sql"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// date 和 time 类型统一转成字符串读出，与领域模型的 YYYY-MM-DD、HH:MM 格式保持一致
const shiftColumns = `
	id,
	employee_id,
	to_char(date, 'YYYY-MM-DD'),
	status,
	to_char(start_time, 'HH24:MI'),
	to_char(end_time, 'HH24:MI'),
	reason,
	replacement_employee_id,
	updated_by,
	created_at,
	updated_at
`

const upsertShiftQuery = `
	INSERT INTO shifts (
		id,
		employee_id,
		date,
		status,
		start_time,
		end_time,
		reason,
		replacement_employee_id,
		updated_by,
		created_at,
		updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (employee_id, date) DO UPDATE SET
		status = EXCLUDED.status,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		reason = EXCLUDED.reason,
		replacement_employee_id = EXCLUDED.replacement_employee_id,
		updated_by = EXCLUDED.updated_by,
		updated_at = EXCLUDED.updated_at
	RETURNING id, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*domain.ShiftRecord, error) {
	shift := &domain.ShiftRecord{}
	dst := []any{
		&shift.ID,
		&shift.EmployeeID,
		&shift.Date,
		&shift.Status,
		&shift.StartTime,
		&shift.EndTime,
		&shift.Reason,
		&shift.ReplacementEmployeeID,
		&shift.UpdatedBy,
		&shift.CreatedAt,
		&shift.UpdatedAt,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return shift, nil
}

func upsertArgs(shift *domain.ShiftRecord) []any {
	return []any{
		shift.ID,
		shift.EmployeeID,
		shift.Date,
		shift.Status,
		shift.StartTime,
		shift.EndTime,
		shift.Reason,
		shift.ReplacementEmployeeID,
		shift.UpdatedBy,
		shift.CreatedAt,
		shift.UpdatedAt,
	}
}

func (r *Repository) listShifts(query string, args ...any) ([]*domain.ShiftRecord, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.ShiftRecord, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// ListShifts 返回 [start, end] 范围内的所有排班记录，两端都包含
func (r *Repository) ListShifts(start, end string) ([]*domain.ShiftRecord, error) {
	query := `SELECT` + shiftColumns + `
		FROM shifts
		WHERE date BETWEEN $1 AND $2
		ORDER BY employee_id, date
	`

	return r.listShifts(query, start, end)
}

func (r *Repository) ListShiftsByEmployee(employeeID, start, end string) ([]*domain.ShiftRecord, error) {
	query := `SELECT` + shiftColumns + `
		FROM shifts
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	return r.listShifts(query, employeeID, start, end)
}

func (r *Repository) GetShift(employeeID, date string) (*domain.ShiftRecord, error) {
	query := `SELECT` + shiftColumns + `
		FROM shifts
		WHERE employee_id = $1 AND date = $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, query, employeeID, date))
}

// UpsertShift 以 (employee_id, date) 为键写入，已存在时保留原有的 id 和 created_at。
// updated_at 以数据库中保存的精度回填，调用方之后拿它比较版本才能对得上。
func (r *Repository) UpsertShift(shift *domain.ShiftRecord) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, upsertShiftQuery, upsertArgs(shift)...).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt); err != nil {
		return err
	}

	return nil
}

// UpsertShiftBatch 在同一个事务中写入所有记录，任意一条失败都会整体回滚
func (r *Repository) UpsertShiftBatch(shifts []*domain.ShiftRecord) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, upsertShiftQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// 先写到临时变量里，提交成功之后才回填，避免回滚后调用方拿到不存在的 id
	type returned struct {
		id        string
		createdAt sql.NullTime
		updatedAt sql.NullTime
	}
	results := make([]returned, len(shifts))

	for i, shift := range shifts {
		if err := stmt.QueryRowContext(ctx, upsertArgs(shift)...).Scan(&results[i].id, &results[i].createdAt, &results[i].updatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for i, shift := range shifts {
		shift.ID = results[i].id
		if results[i].createdAt.Valid {
			shift.CreatedAt = results[i].createdAt.Time
		}
		if results[i].updatedAt.Valid {
			shift.UpdatedAt = results[i].updatedAt.Time
		}
	}

	return nil
}

func (r *Repository) CountShifts(start, end string) (int, error) {
	query := `
		SELECT COUNT(*) FROM shifts WHERE date BETWEEN $1 AND $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var count int
	if err := r.dbpool.QueryRowContext(ctx, query, start, end).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
