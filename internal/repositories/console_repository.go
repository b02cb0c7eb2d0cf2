package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"game_store_backend/internal/models"
)

// ConsoleRepository stores gaming stations.
type ConsoleRepository interface {
	CreateConsole(ctx context.Context, executor SQLExecutor, console *models.Console) (int64, error)
	GetConsoleByID(ctx context.Context, id int64) (*models.Console, error)
	LockConsole(ctx context.Context, executor SQLExecutor, id int64) (*models.Console, error)
	GetConsoles(ctx context.Context, consoleType *string) ([]models.Console, error)
	UpdateConsole(ctx context.Context, executor SQLExecutor, console *models.Console) error
	SetConsoleState(ctx context.Context, executor SQLExecutor, id int64, status string, sessionID *int64) error
	DeleteConsole(ctx context.Context, executor SQLExecutor, id int64) error
}

type consoleRepository struct {
	db *sql.DB
}

func NewConsoleRepository(db *sql.DB) ConsoleRepository {
	return &consoleRepository{db: db}
}

const consoleColumns = `id, name, console_type, status, station_number, current_session_id, shortcut_key,
	default_pricing_id, created_at, updated_at`

func scanConsole(row scanner) (*models.Console, error) {
	c := &models.Console{}
	err := row.Scan(&c.ID, &c.Name, &c.ConsoleType, &c.Status, &c.StationNumber, &c.CurrentSessionID,
		&c.ShortcutKey, &c.DefaultPricingID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *consoleRepository) CreateConsole(ctx context.Context, executor SQLExecutor, console *models.Console) (int64, error) {
	query := `INSERT INTO consoles (name, console_type, status, station_number, shortcut_key, default_pricing_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		console.Name, console.ConsoleType, console.Status, console.StationNumber, console.ShortcutKey, console.DefaultPricingID,
	).Scan(&console.ID, &console.CreatedAt, &console.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating console")
	}
	return console.ID, nil
}

func (r *consoleRepository) GetConsoleByID(ctx context.Context, id int64) (*models.Console, error) {
	console, err := scanConsole(r.db.QueryRowContext(ctx, `SELECT `+consoleColumns+` FROM consoles WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting console ID %d", id))
	}
	return console, nil
}

// LockConsole reads a console with a row lock held until the transaction ends.
func (r *consoleRepository) LockConsole(ctx context.Context, executor SQLExecutor, id int64) (*models.Console, error) {
	console, err := scanConsole(executor.QueryRowContext(ctx, `SELECT `+consoleColumns+` FROM consoles WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("locking console ID %d", id))
	}
	return console, nil
}

func (r *consoleRepository) GetConsoles(ctx context.Context, consoleType *string) ([]models.Console, error) {
	query := `SELECT ` + consoleColumns + ` FROM consoles`
	var args []interface{}
	if consoleType != nil {
		query += ` WHERE console_type = $1`
		args = append(args, *consoleType)
	}
	query += ` ORDER BY station_number ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying consoles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	consoles := []models.Console{}
	for rows.Next() {
		c, err := scanConsole(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning console: %v", ErrDatabaseError, err)
		}
		consoles = append(consoles, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating consoles: %v", ErrDatabaseError, err)
	}
	return consoles, nil
}

func (r *consoleRepository) UpdateConsole(ctx context.Context, executor SQLExecutor, console *models.Console) error {
	query := `UPDATE consoles
	          SET name = $1, console_type = $2, status = $3, station_number = $4, shortcut_key = $5,
	              default_pricing_id = $6, updated_at = NOW()
	          WHERE id = $7`
	result, err := executor.ExecContext(ctx, query,
		console.Name, console.ConsoleType, console.Status, console.StationNumber, console.ShortcutKey,
		console.DefaultPricingID, console.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating console ID %d", console.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating console ID %d", console.ID))
}

// SetConsoleState moves a console between available and in_use together
// with its current session pointer.
func (r *consoleRepository) SetConsoleState(ctx context.Context, executor SQLExecutor, id int64, status string, sessionID *int64) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE consoles SET status = $1, current_session_id = $2, updated_at = NOW() WHERE id = $3`,
		status, sessionID, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("setting state of console ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("setting state of console ID %d", id))
}

func (r *consoleRepository) DeleteConsole(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM consoles WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting console ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting console ID %d", id))
}
