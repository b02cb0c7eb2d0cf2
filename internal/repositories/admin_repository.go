package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"game_store_backend/internal/models"
)

// AdminRepository backs the owner maintenance endpoints.
type AdminRepository interface {
	// ExportTable returns the newest limit rows of table as a JSON array.
	ExportTable(ctx context.Context, table string, limit int) (json.RawMessage, error)
	// PurgeBefore deletes closed rows of table created before cutoff.
	PurgeBefore(ctx context.Context, executor SQLExecutor, table string, cutoff time.Time) (int64, error)
}

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) AdminRepository {
	return &adminRepository{db: db}
}

// Table names are matched against fixed lists, so no caller-supplied name
// reaches the SQL text.
var purgeQueries = map[string]string{
	"gaming_sessions": `DELETE FROM gaming_sessions WHERE created_at < $1 AND status <> 'active'`,
	"sales":           `DELETE FROM sales WHERE created_at < $1`,
	"expenses":        `DELETE FROM expenses WHERE created_at < $1`,
	"staff_shifts":    `DELETE FROM staff_shifts WHERE created_at < $1 AND status <> 'active'`,
}

func exportQuery(table string) (string, bool) {
	for _, t := range models.ExportTables {
		if t == table {
			return fmt.Sprintf(`SELECT COALESCE(json_agg(t), '[]'::json)
			    FROM (SELECT * FROM %s ORDER BY created_at DESC, id DESC LIMIT $1) t`, t), true
		}
	}
	return "", false
}

func (r *adminRepository) ExportTable(ctx context.Context, table string, limit int) (json.RawMessage, error) {
	query, ok := exportQuery(table)
	if !ok {
		return nil, fmt.Errorf("%w: table %q is not exportable", ErrNotFound, table)
	}
	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, limit).Scan(&raw); err != nil {
		return nil, fmt.Errorf("exporting %s: %w", table, err)
	}
	return json.RawMessage(raw), nil
}

func (r *adminRepository) PurgeBefore(ctx context.Context, executor SQLExecutor, table string, cutoff time.Time) (int64, error) {
	query, ok := purgeQueries[table]
	if !ok {
		return 0, fmt.Errorf("%w: table %q cannot be purged", ErrNotFound, table)
	}
	res, err := executor.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, mapWriteError(err, "purging "+table)
	}
	return res.RowsAffected()
}
