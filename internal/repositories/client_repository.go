package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(ctx context.Context, executor SQLExecutor, client *models.Client) (int64, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClientByPhone(ctx context.Context, phone string) (*models.Client, error)
	GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	UpdateClient(ctx context.Context, executor SQLExecutor, client *models.Client) error
	DeleteClient(ctx context.Context, executor SQLExecutor, id int64) error

	// LockClientPoints row-locks the client and returns its stored balance.
	LockClientPoints(ctx context.Context, executor SQLExecutor, id int64) (int, error)
	SetClientPoints(ctx context.Context, executor SQLExecutor, id int64, points int) error
	AddClientTotals(ctx context.Context, executor SQLExecutor, id int64, spent float64, games int) error
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, phone, name, email, points, total_spent, total_games_played, notes, created_by, created_at, updated_at`

func scanClient(row scanner, extra ...interface{}) (*models.Client, error) {
	c := &models.Client{}
	dest := []interface{}{
		&c.ID, &c.Phone, &c.Name, &c.Email, &c.Points, &c.TotalSpent,
		&c.TotalGamesPlayed, &c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateClient inserts a new client into the database.
func (r *clientRepository) CreateClient(ctx context.Context, executor SQLExecutor, client *models.Client) (int64, error) {
	query := `INSERT INTO clients (phone, name, email, points, notes, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		client.Phone, client.Name, client.Email, client.Points, client.Notes, client.CreatedBy,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating client")
	}
	return client.ID, nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting client by ID %d", id))
	}
	return client, nil
}

// GetClientByPhone retrieves a client by normalized phone number.
func (r *clientRepository) GetClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE phone = $1`
	client, err := scanClient(r.db.QueryRowContext(ctx, query, phone))
	if err != nil {
		return nil, mapReadError(err, "getting client by phone "+phone)
	}
	return client, nil
}

// GetClients retrieves a list of clients with pagination and optional search.
func (r *clientRepository) GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	clients := []models.Client{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + `, COUNT(*) OVER() as total_count FROM clients`)

	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE (name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*searchTerm+"%")
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY name ASC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, pageSize, offsetFor(page, pageSize))
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		client, err := scanClient(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, totalCount, nil
}

// UpdateClient updates the editable profile fields. Points and totals are
// maintained by the ledger and session flows.
func (r *clientRepository) UpdateClient(ctx context.Context, executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET phone = $1, name = $2, email = $3, notes = $4, updated_at = NOW()
	          WHERE id = $5`

	result, err := executor.ExecContext(ctx, query, client.Phone, client.Name, client.Email, client.Notes, client.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating client ID %d", client.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating client ID %d", client.ID))
}

// DeleteClient removes a client from the database.
func (r *clientRepository) DeleteClient(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting client ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting client ID %d", id))
}

func (r *clientRepository) LockClientPoints(ctx context.Context, executor SQLExecutor, id int64) (int, error) {
	var points int
	err := executor.QueryRowContext(ctx, `SELECT points FROM clients WHERE id = $1 FOR UPDATE`, id).Scan(&points)
	if err != nil {
		return 0, mapReadError(err, fmt.Sprintf("locking client ID %d", id))
	}
	return points, nil
}

func (r *clientRepository) SetClientPoints(ctx context.Context, executor SQLExecutor, id int64, points int) error {
	result, err := executor.ExecContext(ctx, `UPDATE clients SET points = $1, updated_at = NOW() WHERE id = $2`, points, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("setting points for client ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("setting points for client ID %d", id))
}

func (r *clientRepository) AddClientTotals(ctx context.Context, executor SQLExecutor, id int64, spent float64, games int) error {
	query := `UPDATE clients SET total_spent = total_spent + $1, total_games_played = total_games_played + $2, updated_at = NOW()
	          WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, spent, games, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating totals for client ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("updating totals for client ID %d", id))
}
