package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"game_store_backend/internal/models"
)

// ShiftRepository stores staff clock-in/clock-out records.
type ShiftRepository interface {
	OpenShift(ctx context.Context, executor SQLExecutor, staffID int64, at time.Time, notes *string) (int64, error)
	GetOpenShift(ctx context.Context, staffID int64) (*models.StaffShift, error)
	CloseShift(ctx context.Context, executor SQLExecutor, id int64, at time.Time, hours float64) error
	GetActiveShifts(ctx context.Context) ([]models.StaffShift, error)
	GetShifts(ctx context.Context, filters models.ShiftFilters) ([]models.StaffShift, int, error)
}

type shiftRepository struct {
	db *sql.DB
}

func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftSelect = `SELECT s.id, s.staff_id, u.full_name, s.check_in, s.check_out, s.total_hours, s.status, s.notes, s.created_at
	FROM staff_shifts s LEFT JOIN users u ON u.id = s.staff_id`

func scanShift(row scanner, extra ...interface{}) (*models.StaffShift, error) {
	s := &models.StaffShift{}
	dest := []interface{}{&s.ID, &s.StaffID, &s.StaffName, &s.CheckIn, &s.CheckOut, &s.TotalHours, &s.Status, &s.Notes, &s.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *shiftRepository) OpenShift(ctx context.Context, executor SQLExecutor, staffID int64, at time.Time, notes *string) (int64, error) {
	var id int64
	err := executor.QueryRowContext(ctx,
		`INSERT INTO staff_shifts (staff_id, check_in, status, notes) VALUES ($1, $2, 'active', $3) RETURNING id`,
		staffID, at, notes,
	).Scan(&id)
	if err != nil {
		return 0, mapWriteError(err, "opening shift")
	}
	return id, nil
}

func (r *shiftRepository) GetOpenShift(ctx context.Context, staffID int64) (*models.StaffShift, error) {
	shift, err := scanShift(r.db.QueryRowContext(ctx, shiftSelect+` WHERE s.staff_id = $1 AND s.status = 'active'`, staffID))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting open shift for staff %d", staffID))
	}
	return shift, nil
}

func (r *shiftRepository) CloseShift(ctx context.Context, executor SQLExecutor, id int64, at time.Time, hours float64) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE staff_shifts SET check_out = $1, total_hours = $2, status = 'completed' WHERE id = $3 AND status = 'active'`,
		at, hours, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("closing shift %d", id))
	}
	return expectAffected(result, fmt.Sprintf("closing shift %d", id))
}

func (r *shiftRepository) GetActiveShifts(ctx context.Context) ([]models.StaffShift, error) {
	rows, err := r.db.QueryContext(ctx, shiftSelect+` WHERE s.status = 'active' ORDER BY s.check_in ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying active shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	shifts := []models.StaffShift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning shift: %v", ErrDatabaseError, err)
		}
		shifts = append(shifts, *s)
	}
	return shifts, rows.Err()
}

func (r *shiftRepository) GetShifts(ctx context.Context, filters models.ShiftFilters) ([]models.StaffShift, int, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT s.id, s.staff_id, u.full_name, s.check_in, s.check_out, s.total_hours, s.status, s.notes, s.created_at,
	                       COUNT(*) OVER() AS total_count
	                FROM staff_shifts s LEFT JOIN users u ON u.id = s.staff_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("s.staff_id = $%d", argCount))
		args = append(args, *filters.StaffID)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("s.check_in >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("s.check_in < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY s.check_in DESC")
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	shifts := []models.StaffShift{}
	total := 0
	for rows.Next() {
		s, err := scanShift(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning shift: %v", ErrDatabaseError, err)
		}
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating shifts: %v", ErrDatabaseError, err)
	}
	return shifts, total, nil
}
