package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// SessionRepository stores gaming sessions and the consumptions attached to them.
type SessionRepository interface {
	CreateSession(ctx context.Context, executor SQLExecutor, s *models.GamingSession) (int64, error)
	GetSessionByID(ctx context.Context, id int64) (*models.GamingSession, error)
	LockSession(ctx context.Context, executor SQLExecutor, id int64) (*models.GamingSession, error)
	GetActiveSessions(ctx context.Context) ([]models.GamingSession, error)
	GetSessions(ctx context.Context, filters models.SessionFilters) ([]models.GamingSession, int, error)
	UpdateProgress(ctx context.Context, executor SQLExecutor, id int64, gamesPlayed, extensions int) error
	CompleteSession(ctx context.Context, executor SQLExecutor, s *models.GamingSession) error

	AddConsumption(ctx context.Context, executor SQLExecutor, c *models.SessionConsumption) (int64, error)
	GetConsumptions(ctx context.Context, executor SQLExecutor, sessionID int64) ([]models.SessionConsumption, error)
	DeleteConsumption(ctx context.Context, executor SQLExecutor, sessionID, consumptionID int64) error
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionSelect = `SELECT gs.id, gs.console_id, co.name, co.console_type, gs.client_id, cl.name, gs.pricing_id,
	gs.session_type, gs.start_time, gs.end_time, gs.games_played, gs.extra_time_minutes, gs.base_amount,
	gs.extra_amount, gs.total_amount, gs.points_earned, gs.points_used, gs.is_free_game, gs.payment_method,
	gs.status, gs.staff_id, gs.notes, gs.created_at, gs.updated_at`

const sessionFrom = ` FROM gaming_sessions gs
	JOIN consoles co ON co.id = gs.console_id
	LEFT JOIN clients cl ON cl.id = gs.client_id`

func scanSession(row scanner, extra ...interface{}) (*models.GamingSession, error) {
	s := &models.GamingSession{}
	dest := []interface{}{&s.ID, &s.ConsoleID, &s.ConsoleName, &s.ConsoleType, &s.ClientID, &s.ClientName, &s.PricingID,
		&s.SessionType, &s.StartTime, &s.EndTime, &s.GamesPlayed, &s.ExtraTimeMinutes, &s.BaseAmount,
		&s.ExtraAmount, &s.TotalAmount, &s.PointsEarned, &s.PointsUsed, &s.IsFreeGame, &s.PaymentMethod,
		&s.Status, &s.StaffID, &s.Notes, &s.CreatedAt, &s.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) CreateSession(ctx context.Context, executor SQLExecutor, s *models.GamingSession) (int64, error) {
	query := `INSERT INTO gaming_sessions (console_id, client_id, pricing_id, session_type, start_time, status, staff_id, notes)
	          VALUES ($1, $2, $3, $4, $5, 'active', $6, $7)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		s.ConsoleID, s.ClientID, s.PricingID, s.SessionType, s.StartTime, s.StaffID, s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating session")
	}
	s.Status = models.SessionActive
	return s.ID, nil
}

func (r *sessionRepository) GetSessionByID(ctx context.Context, id int64) (*models.GamingSession, error) {
	s, err := scanSession(r.db.QueryRowContext(ctx, sessionSelect+sessionFrom+` WHERE gs.id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting session ID %d", id))
	}
	return s, nil
}

func (r *sessionRepository) LockSession(ctx context.Context, executor SQLExecutor, id int64) (*models.GamingSession, error) {
	s, err := scanSession(executor.QueryRowContext(ctx, sessionSelect+sessionFrom+` WHERE gs.id = $1 FOR UPDATE OF gs`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("locking session ID %d", id))
	}
	return s, nil
}

func (r *sessionRepository) GetActiveSessions(ctx context.Context) ([]models.GamingSession, error) {
	rows, err := r.db.QueryContext(ctx, sessionSelect+sessionFrom+` WHERE gs.status = 'active' ORDER BY co.station_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying active sessions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	sessions := []models.GamingSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning session: %v", ErrDatabaseError, err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) GetSessions(ctx context.Context, filters models.SessionFilters) ([]models.GamingSession, int, error) {
	var qb strings.Builder
	qb.WriteString(sessionSelect + `, COUNT(*) OVER() AS total_count` + sessionFrom)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("gs.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.ConsoleID != nil {
		conditions = append(conditions, fmt.Sprintf("gs.console_id = $%d", argCount))
		args = append(args, *filters.ConsoleID)
		argCount++
	}
	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("gs.client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("gs.start_time >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("gs.start_time < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY gs.start_time DESC")
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying sessions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	sessions := []models.GamingSession{}
	total := 0
	for rows.Next() {
		s, err := scanSession(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning session: %v", ErrDatabaseError, err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sessions: %v", ErrDatabaseError, err)
	}
	return sessions, total, nil
}

func (r *sessionRepository) UpdateProgress(ctx context.Context, executor SQLExecutor, id int64, gamesPlayed, extensions int) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE gaming_sessions SET games_played = $1, extra_time_minutes = $2, updated_at = NOW()
		 WHERE id = $3 AND status = 'active'`,
		gamesPlayed, extensions, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating session ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("updating session ID %d", id))
}

// CompleteSession writes the billed figures and closes the session.
func (r *sessionRepository) CompleteSession(ctx context.Context, executor SQLExecutor, s *models.GamingSession) error {
	query := `UPDATE gaming_sessions
	          SET end_time = $1, games_played = $2, extra_time_minutes = $3, base_amount = $4, extra_amount = $5,
	              total_amount = $6, points_earned = $7, points_used = $8, is_free_game = $9, payment_method = $10,
	              pricing_id = $11, notes = $12, client_id = $13, status = 'completed', updated_at = NOW()
	          WHERE id = $14 AND status = 'active'`
	result, err := executor.ExecContext(ctx, query,
		s.EndTime, s.GamesPlayed, s.ExtraTimeMinutes, s.BaseAmount, s.ExtraAmount,
		s.TotalAmount, s.PointsEarned, s.PointsUsed, s.IsFreeGame, s.PaymentMethod,
		s.PricingID, s.Notes, s.ClientID, s.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("completing session ID %d", s.ID))
	}
	if err := expectAffected(result, fmt.Sprintf("completing session ID %d", s.ID)); err != nil {
		return err
	}
	s.Status = models.SessionCompleted
	return nil
}

func (r *sessionRepository) AddConsumption(ctx context.Context, executor SQLExecutor, c *models.SessionConsumption) (int64, error) {
	err := executor.QueryRowContext(ctx,
		`INSERT INTO session_consumptions (session_id, product_id, quantity, unit_price)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		c.SessionID, c.ProductID, c.Quantity, c.UnitPrice,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return 0, mapWriteError(err, "adding consumption")
	}
	return c.ID, nil
}

func (r *sessionRepository) GetConsumptions(ctx context.Context, executor SQLExecutor, sessionID int64) ([]models.SessionConsumption, error) {
	if executor == nil {
		executor = r.db
	}
	rows, err := executor.QueryContext(ctx,
		`SELECT sc.id, sc.session_id, sc.product_id, p.name, sc.quantity, sc.unit_price, sc.created_at
		 FROM session_consumptions sc LEFT JOIN products p ON p.id = sc.product_id
		 WHERE sc.session_id = $1 ORDER BY sc.id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying consumptions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	list := []models.SessionConsumption{}
	for rows.Next() {
		var c models.SessionConsumption
		if err := rows.Scan(&c.ID, &c.SessionID, &c.ProductID, &c.ProductName, &c.Quantity, &c.UnitPrice, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning consumption: %v", ErrDatabaseError, err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *sessionRepository) DeleteConsumption(ctx context.Context, executor SQLExecutor, sessionID, consumptionID int64) error {
	result, err := executor.ExecContext(ctx,
		`DELETE FROM session_consumptions WHERE id = $1 AND session_id = $2`, consumptionID, sessionID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting consumption ID %d", consumptionID))
	}
	return expectAffected(result, fmt.Sprintf("deleting consumption ID %d", consumptionID))
}
