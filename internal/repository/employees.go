package repository

import (
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
)

// GetAllEmployees 按姓名排序返回花名册
func (r *Repository) GetAllEmployees() ([]*domain.Employee, error) {
	query := `
		SELECT id, full_name, position, email, created_at FROM employees ORDER BY full_name, id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee := &domain.Employee{}
		dst := []any{&employee.ID, &employee.FullName, &employee.Position, &employee.Email, &employee.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) GetEmployeeByID(id string) (*domain.Employee, error) {
	query := `
		SELECT full_name, position, email, created_at FROM employees WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	employee := &domain.Employee{
		ID: id,
	}

	dst := []any{&employee.FullName, &employee.Position, &employee.Email, &employee.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) CreateEmployee(employee *domain.Employee) error {
	query := `
		INSERT INTO employees (id, full_name, position, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{employee.ID, employee.FullName, employee.Position, employee.Email}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&employee.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
