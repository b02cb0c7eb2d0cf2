package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"game_store_backend/internal/models"
)

// ReservationRepository stores console bookings.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, executor SQLExecutor, res *models.Reservation) (int64, error)
	GetReservationByID(ctx context.Context, id int64) (*models.Reservation, error)
	GetReservations(ctx context.Context, filters models.ReservationFilters) ([]models.Reservation, int, error)
	UpdateReservation(ctx context.Context, executor SQLExecutor, res *models.Reservation) error
	DeleteReservation(ctx context.Context, executor SQLExecutor, id int64) error
	// HasOverlap reports whether a confirmed reservation on the console
	// intersects [start, end). excludeID skips the row being edited.
	HasOverlap(ctx context.Context, consoleID int64, start, end time.Time, excludeID *int64) (bool, error)
}

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationSelect = `SELECT r.id, r.client_name, r.client_phone, r.client_email, r.console_type, r.console_id, c.name,
	r.session_type, r.start_time, r.end_time, r.status, r.notes, r.staff_id, r.created_at, r.updated_at`

const reservationFrom = ` FROM reservations r LEFT JOIN consoles c ON c.id = r.console_id`

func scanReservation(row scanner, extra ...interface{}) (*models.Reservation, error) {
	res := &models.Reservation{}
	dest := []interface{}{&res.ID, &res.ClientName, &res.ClientPhone, &res.ClientEmail, &res.ConsoleType, &res.ConsoleID,
		&res.ConsoleName, &res.SessionType, &res.StartTime, &res.EndTime, &res.Status, &res.Notes, &res.StaffID,
		&res.CreatedAt, &res.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *reservationRepository) CreateReservation(ctx context.Context, executor SQLExecutor, res *models.Reservation) (int64, error) {
	query := `INSERT INTO reservations (client_name, client_phone, client_email, console_type, console_id, session_type,
	                                    start_time, end_time, status, notes, staff_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		res.ClientName, res.ClientPhone, res.ClientEmail, res.ConsoleType, res.ConsoleID, res.SessionType,
		res.StartTime, res.EndTime, res.Status, res.Notes, res.StaffID,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating reservation")
	}
	return res.ID, nil
}

func (r *reservationRepository) GetReservationByID(ctx context.Context, id int64) (*models.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, reservationSelect+reservationFrom+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting reservation ID %d", id))
	}
	return res, nil
}

func (r *reservationRepository) GetReservations(ctx context.Context, filters models.ReservationFilters) ([]models.Reservation, int, error) {
	var qb strings.Builder
	qb.WriteString(reservationSelect + `, COUNT(*) OVER() AS total_count` + reservationFrom)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.ConsoleID != nil {
		conditions = append(conditions, fmt.Sprintf("r.console_id = $%d", argCount))
		args = append(args, *filters.ConsoleID)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("r.start_time >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("r.start_time < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY r.start_time ASC")
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying reservations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	list := []models.Reservation{}
	total := 0
	for rows.Next() {
		res, err := scanReservation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning reservation: %v", ErrDatabaseError, err)
		}
		list = append(list, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating reservations: %v", ErrDatabaseError, err)
	}
	return list, total, nil
}

func (r *reservationRepository) UpdateReservation(ctx context.Context, executor SQLExecutor, res *models.Reservation) error {
	query := `UPDATE reservations
	          SET client_name = $1, client_phone = $2, client_email = $3, console_type = $4, console_id = $5,
	              session_type = $6, start_time = $7, end_time = $8, status = $9, notes = $10, staff_id = $11,
	              updated_at = NOW()
	          WHERE id = $12`
	result, err := executor.ExecContext(ctx, query,
		res.ClientName, res.ClientPhone, res.ClientEmail, res.ConsoleType, res.ConsoleID,
		res.SessionType, res.StartTime, res.EndTime, res.Status, res.Notes, res.StaffID, res.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating reservation ID %d", res.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating reservation ID %d", res.ID))
}

func (r *reservationRepository) DeleteReservation(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting reservation ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting reservation ID %d", id))
}

func (r *reservationRepository) HasOverlap(ctx context.Context, consoleID int64, start, end time.Time, excludeID *int64) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM reservations
	            WHERE console_id = $1 AND status = 'confirmed'
	              AND start_time < $3 AND end_time > $2
	              AND ($4::BIGINT IS NULL OR id <> $4)
	          )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, consoleID, start, end, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking reservation overlap: %v", ErrDatabaseError, err)
	}
	return exists, nil
}
