package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"game_store_backend/internal/models"
)

// AuthRepository stores staff accounts and password reset tokens.
type AuthRepository interface {
	CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error
	UpdatePassword(ctx context.Context, executor SQLExecutor, id int64, passwordHash string) error
	UpdateOnboarding(ctx context.Context, executor SQLExecutor, id int64, completed bool, step int, tooltips bool) error
	TouchLastLogin(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, executor SQLExecutor, id int64) error
	CountActiveOwners(ctx context.Context) (int, error)

	CreateResetToken(ctx context.Context, executor SQLExecutor, userID int64, tokenHash string, expiresAt time.Time) (int64, error)
	GetResetToken(ctx context.Context, id int64) (*models.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, executor SQLExecutor, id int64) error
}

type authRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, phone, role, is_active, onboarding_completed,
	onboarding_step, help_tooltips_visible, last_login_at, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.IsActive,
		&u.OnboardingCompleted, &u.OnboardingStep, &u.HelpTooltipsVisible, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *authRepository) CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (email, password_hash, full_name, phone, role, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.Phone, user.Role, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating user")
	}
	return user.ID, nil
}

func (r *authRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting user by ID %d", id))
	}
	return user, nil
}

func (r *authRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		return nil, mapReadError(err, "getting user by email")
	}
	return user, nil
}

func (r *authRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY role ASC, full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}
	return users, nil
}

func (r *authRepository) UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET full_name = $1, phone = $2, role = $3, is_active = $4, updated_at = NOW()
	          WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, user.FullName, user.Phone, user.Role, user.IsActive, user.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating user ID %d", user.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating user ID %d", user.ID))
}

func (r *authRepository) UpdatePassword(ctx context.Context, executor SQLExecutor, id int64, passwordHash string) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating password for user ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("updating password for user ID %d", id))
}

func (r *authRepository) UpdateOnboarding(ctx context.Context, executor SQLExecutor, id int64, completed bool, step int, tooltips bool) error {
	query := `UPDATE users SET onboarding_completed = $1, onboarding_step = $2, help_tooltips_visible = $3, updated_at = NOW()
	          WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, completed, step, tooltips, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating onboarding for user ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("updating onboarding for user ID %d", id))
}

func (r *authRepository) TouchLastLogin(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: updating last login for user ID %d: %v", ErrDatabaseError, id, err)
	}
	return nil
}

func (r *authRepository) DeleteUser(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting user ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting user ID %d", id))
}

func (r *authRepository) CountActiveOwners(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'owner' AND is_active`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting owners: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func (r *authRepository) CreateResetToken(ctx context.Context, executor SQLExecutor, userID int64, tokenHash string, expiresAt time.Time) (int64, error) {
	var id int64
	err := executor.QueryRowContext(ctx,
		`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id`,
		userID, tokenHash, expiresAt,
	).Scan(&id)
	if err != nil {
		return 0, mapWriteError(err, "creating reset token")
	}
	return id, nil
}

func (r *authRepository) GetResetToken(ctx context.Context, id int64) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used_at, created_at FROM password_reset_tokens WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting reset token %d", id))
	}
	return t, nil
}

func (r *authRepository) MarkResetTokenUsed(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("consuming reset token %d", id))
	}
	return expectAffected(result, fmt.Sprintf("consuming reset token %d", id))
}
