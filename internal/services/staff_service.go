package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

// --- Custom Service Errors for Staff ---
var (
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrStaffValidation  = errors.New("staff data validation error")
	ErrCannotDeleteSelf = errors.New("you cannot delete your own account")
	ErrLastOwner        = errors.New("the last active owner cannot be removed or demoted")
	ErrStaffInUse       = errors.New("staff member is referenced by other records")
)

const generatedPasswordLength = 12

// passwordAlphabet leaves out look-alike characters.
const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

// --- Staff DTOs ---
type CreateStaffRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
}

type UpdateStaffRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// CreateStaffResult reports whether the invitation email went out.
type CreateStaffResult struct {
	User            *models.User `json:"user"`
	InvitationSent  bool         `json:"invitation_sent"`
	InvitationError string       `json:"invitation_error,omitempty"`
}

// --- StaffService Interface ---
type StaffService interface {
	CreateStaff(ctx context.Context, req CreateStaffRequest) (*CreateStaffResult, error)
	ListStaff(ctx context.Context) ([]models.User, error)
	GetStaff(ctx context.Context, id int64) (*models.User, error)
	UpdateStaff(ctx context.Context, id int64, req UpdateStaffRequest) (*models.User, error)
	DeleteStaff(ctx context.Context, id, actorID int64) error
}

// --- staffService Implementation ---
type staffService struct {
	repo     repositories.AuthRepository
	db       repositories.SQLExecutor
	notifier notify.Notifier
}

func NewStaffService(repo repositories.AuthRepository, db repositories.SQLExecutor, notifier notify.Notifier) StaffService {
	return &staffService{repo: repo, db: db, notifier: notifier}
}

func generatePassword() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := 0; i < generatedPasswordLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// CreateStaff stores the account, then sends the invitation with a bounded
// wait. A notifier timeout still returns the created user along with
// ErrNotifyTimeout so the caller can tell the owner the email was not confirmed.
func (s *staffService) CreateStaff(ctx context.Context, req CreateStaffRequest) (*CreateStaffResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrStaffValidation)
	}
	name := utils.SanitizeInput(strings.TrimSpace(req.FullName))
	if !utils.IsValidName(name) {
		return nil, fmt.Errorf("%w: full name must be at least 2 characters", ErrStaffValidation)
	}
	if req.Phone != nil && *req.Phone != "" && !utils.IsValidPhone(*req.Phone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrStaffValidation)
	}
	role := req.Role
	if role == "" {
		role = models.RoleWorker
	}
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: role must be owner or worker", ErrStaffValidation)
	}

	password := req.Password
	if password == "" {
		generated, err := generatePassword()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
		}
		password = generated
	} else if !utils.IsValidPasswordLength(password, minPasswordLength) {
		return nil, ErrWeakPassword
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:               email,
		PasswordHash:        hashed,
		FullName:            name,
		Role:                role,
		IsActive:            true,
		HelpTooltipsVisible: true,
	}
	if req.Phone != nil && *req.Phone != "" {
		user.Phone = utils.Ptr(utils.NormalizePhone(*req.Phone))
	}
	if _, err := s.repo.CreateUser(ctx, s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	created, err := s.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	result := &CreateStaffResult{User: created}

	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	err = notifyErr(nctx, s.notifier.StaffInvitation(nctx, notify.StaffInvitation{
		Email:    email,
		Role:     role,
		Password: password,
	}))
	if err != nil {
		utils.LogWarn(err, "staff invitation not sent", map[string]interface{}{"user_id": created.ID})
		result.InvitationError = err.Error()
		if errors.Is(err, ErrNotifyTimeout) {
			return result, err
		}
		return result, nil
	}
	result.InvitationSent = true
	return result, nil
}

func (s *staffService) ListStaff(ctx context.Context) ([]models.User, error) {
	return s.repo.GetUsers(ctx)
}

func (s *staffService) GetStaff(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrStaffNotFound)
	}
	return user, nil
}

// ensureOtherOwner fails when user is the only active owner left.
func (s *staffService) ensureOtherOwner(ctx context.Context, user *models.User) error {
	if user.Role != models.RoleOwner || !user.IsActive {
		return nil
	}
	owners, err := s.repo.CountActiveOwners(ctx)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

func (s *staffService) UpdateStaff(ctx context.Context, id int64, req UpdateStaffRequest) (*models.User, error) {
	user, err := s.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}

	demoting := (req.Role != nil && *req.Role != models.RoleOwner) || (req.IsActive != nil && !*req.IsActive)
	if demoting {
		if err := s.ensureOtherOwner(ctx, user); err != nil {
			return nil, err
		}
	}

	if req.FullName != nil {
		name := utils.SanitizeInput(strings.TrimSpace(*req.FullName))
		if !utils.IsValidName(name) {
			return nil, fmt.Errorf("%w: full name must be at least 2 characters", ErrStaffValidation)
		}
		user.FullName = name
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			user.Phone = nil
		} else if !utils.IsValidPhone(*req.Phone) {
			return nil, fmt.Errorf("%w: invalid phone number", ErrStaffValidation)
		} else {
			user.Phone = utils.Ptr(utils.NormalizePhone(*req.Phone))
		}
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return nil, fmt.Errorf("%w: role must be owner or worker", ErrStaffValidation)
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateUser(ctx, s.db, user); err != nil {
		return nil, wrapNotFound(err, ErrStaffNotFound)
	}
	return s.repo.GetUserByID(ctx, id)
}

func (s *staffService) DeleteStaff(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	user, err := s.GetStaff(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureOtherOwner(ctx, user); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, s.db, id); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return fmt.Errorf("%w: deactivate the account instead", ErrStaffInUse)
		}
		return wrapNotFound(err, ErrStaffNotFound)
	}
	return nil
}
