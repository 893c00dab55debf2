package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
    id::text,
    COALESCE(employee_number, ''),
    first_name, last_name,
    COALESCE(category, ''),
    COALESCE(position, ''),
    COALESCE(depot, ''),
    COALESCE(marital_status, ''),
    COALESCE(educational_attainment, ''),
    requirements,
    requirements_version,
    updated_at`

// agencyCategorySQL mirrors ParseCategory.
const agencyCategorySQL = `(lower(COALESCE(category, '')) LIKE '%agency%' OR lower(COALESCE(category, '')) LIKE '%endorsed%')`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var emp Employee
	var category string
	var requirements []byte
	if err := row.Scan(
		&emp.ID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &category, &emp.Position,
		&emp.Depot, &emp.MaritalStatus, &emp.EducationalAttainment, &requirements,
		&emp.RequirementsVersion, &emp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	emp.Category = ParseCategory(category)

	set, err := DecodeRequirements(requirements)
	if err != nil {
		slog.Warn("requirements blob unreadable", "employeeId", emp.ID, "err", err)
		emp.RequirementsUnreadable = true
	}
	emp.Requirements = set
	return &emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+employeeColumns+`
    FROM employees
    WHERE id::text = $1
  `, employeeID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnknownEmployee
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter ListFilter) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	var args []any
	if depot := strings.TrimSpace(filter.Depot); depot != "" {
		args = append(args, depot)
		query += fmt.Sprintf(" AND lower(depot) = lower($%d)", len(args))
	}
	switch filter.Category {
	case CategoryAgency:
		query += " AND " + agencyCategorySQL
	case CategoryDirect:
		query += " AND NOT " + agencyCategorySQL
	}
	query += " ORDER BY last_name, first_name, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRequirements(ctx context.Context, employeeID string, set RequirementSet, expectedVersion int64) (int64, error) {
	payload, err := EncodeRequirements(set)
	if err != nil {
		return 0, err
	}

	var version int64
	err = s.DB.QueryRow(ctx, `
    UPDATE employees
    SET requirements = $2, requirements_version = requirements_version + 1, updated_at = now()
    WHERE id::text = $1 AND requirements_version = $3
    RETURNING requirements_version
  `, employeeID, payload, expectedVersion).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM employees WHERE id::text = $1)", employeeID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrUnknownEmployee
	}
	return 0, ErrStaleWrite
}
