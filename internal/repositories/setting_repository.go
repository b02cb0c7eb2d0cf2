package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"game_store_backend/internal/models"
)

// SettingRepository stores store configuration as key/JSONB rows.
type SettingRepository interface {
	GetAll(ctx context.Context) ([]models.StoreSetting, error)
	Upsert(ctx context.Context, key string, value json.RawMessage, updatedBy *int64) (*models.StoreSetting, error)
	Delete(ctx context.Context, key string) error
}

type settingRepository struct {
	db *sql.DB
}

func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetAll(ctx context.Context) ([]models.StoreSetting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_by, updated_at FROM store_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying settings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	settings := []models.StoreSetting{}
	for rows.Next() {
		var s models.StoreSetting
		var value []byte
		if err := rows.Scan(&s.Key, &value, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning setting: %v", ErrDatabaseError, err)
		}
		s.Value = json.RawMessage(value)
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *settingRepository) Upsert(ctx context.Context, key string, value json.RawMessage, updatedBy *int64) (*models.StoreSetting, error) {
	query := `INSERT INTO store_settings (key, value, updated_by, updated_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = NOW()
	          RETURNING updated_at`
	s := &models.StoreSetting{Key: key, Value: value, UpdatedBy: updatedBy}
	if err := r.db.QueryRowContext(ctx, query, key, []byte(value), updatedBy).Scan(&s.UpdatedAt); err != nil {
		return nil, mapWriteError(err, fmt.Sprintf("saving setting %s", key))
	}
	return s, nil
}

func (r *settingRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM store_settings WHERE key = $1`, key)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting setting %s", key))
	}
	return expectAffected(result, fmt.Sprintf("deleting setting %s", key))
}
