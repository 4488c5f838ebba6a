package repository

import (
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

func (r *Repository) ListPreferences(start, end string) ([]*domain.Preference, error) {
	query := `
		SELECT id, employee_id, to_char(date, 'YYYY-MM-DD'), text, created_at
		FROM schedule_preferences
		WHERE date BETWEEN $1 AND $2
		ORDER BY employee_id, date
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preferences := make([]*domain.Preference, 0)
	for rows.Next() {
		preference := &domain.Preference{}
		dst := []any{&preference.ID, &preference.EmployeeID, &preference.Date, &preference.Text, &preference.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		preferences = append(preferences, preference)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}

// UpsertPreference 同一员工同一天只保留最后一次提交的意愿
func (r *Repository) UpsertPreference(preference *domain.Preference) error {
	query := `
		INSERT INTO schedule_preferences (id, employee_id, date, text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, date) DO UPDATE SET text = EXCLUDED.text
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{preference.ID, preference.EmployeeID, preference.Date, preference.Text}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&preference.ID, &preference.CreatedAt); err != nil {
		return err
	}

	return nil
}
