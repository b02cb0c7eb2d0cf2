package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound    = errors.New("client not found")
	ErrPhoneNumberExists = errors.New("phone number already exists")
	ErrClientValidation  = errors.New("client data validation error")
	ErrClientInUse       = errors.New("client cannot be deleted as they are referenced in other records")
)

// --- Client DTOs ---
type CreateClientRequest struct {
	Phone string  `json:"phone" binding:"required"`
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

// UpdateClientRequest has no points field: balances move through the ledger.
type UpdateClientRequest struct {
	Phone *string `json:"phone"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest, createdBy *int64) (*models.Client, error)
	GetClientByID(ctx context.Context, clientID int64) (*models.Client, error)
	GetClientByPhone(ctx context.Context, phone string) (*models.Client, error)
	GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	UpdateClient(ctx context.Context, clientID int64, req UpdateClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, clientID int64) error
}

type clientService struct {
	clientRepo repositories.ClientRepository
	db         repositories.SQLExecutor
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository, db repositories.SQLExecutor) ClientService {
	return &clientService{clientRepo: repo, db: db}
}

func (s *clientService) validateClientData(ctx context.Context, name string, phone, email *string, clientID int64) error {
	if !utils.IsValidName(name) {
		return fmt.Errorf("%w: name must have at least 2 characters", ErrClientValidation)
	}
	if phone != nil {
		if !utils.IsValidPhone(*phone) {
			return fmt.Errorf("%w: phone number format is invalid", ErrClientValidation)
		}
		existing, err := s.clientRepo.GetClientByPhone(ctx, utils.NormalizePhone(*phone))
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to check phone number uniqueness: %w", err)
		}
		if existing != nil && existing.ID != clientID {
			return ErrPhoneNumberExists
		}
	}
	if email != nil && *email != "" && !utils.IsValidEmail(*email) {
		return fmt.Errorf("%w: email format is invalid", ErrClientValidation)
	}
	return nil
}

func normalizedEmail(email *string) *string {
	if email == nil {
		return nil
	}
	return utils.NewNullString(strings.ToLower(strings.TrimSpace(*email)))
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest, createdBy *int64) (*models.Client, error) {
	name := utils.SanitizeInput(strings.TrimSpace(req.Name))
	if err := s.validateClientData(ctx, name, &req.Phone, req.Email, 0); err != nil {
		return nil, err
	}

	client := &models.Client{
		Phone:     utils.NormalizePhone(req.Phone),
		Name:      name,
		Email:     normalizedEmail(req.Email),
		Notes:     req.Notes,
		CreatedBy: createdBy,
	}
	if _, err := s.clientRepo.CreateClient(ctx, s.db, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPhoneNumberExists
		}
		return nil, fmt.Errorf("failed to create client in repository: %w", err)
	}
	return s.clientRepo.GetClientByID(ctx, client.ID)
}

func (s *clientService) GetClientByID(ctx context.Context, clientID int64) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, wrapNotFound(err, ErrClientNotFound)
	}
	return client, nil
}

func (s *clientService) GetClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	if !utils.IsValidPhone(phone) {
		return nil, fmt.Errorf("%w: phone number format is invalid", ErrClientValidation)
	}
	client, err := s.clientRepo.GetClientByPhone(ctx, utils.NormalizePhone(phone))
	if err != nil {
		return nil, wrapNotFound(err, ErrClientNotFound)
	}
	return client, nil
}

func (s *clientService) GetClients(ctx context.Context, page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.clientRepo.GetClients(ctx, page, pageSize, searchTerm)
}

func (s *clientService) UpdateClient(ctx context.Context, clientID int64, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, wrapNotFound(err, ErrClientNotFound)
	}

	name := client.Name
	if req.Name != nil {
		name = utils.SanitizeInput(strings.TrimSpace(*req.Name))
	}
	if err := s.validateClientData(ctx, name, req.Phone, req.Email, clientID); err != nil {
		return nil, err
	}

	client.Name = name
	if req.Phone != nil {
		client.Phone = utils.NormalizePhone(*req.Phone)
	}
	if req.Email != nil {
		client.Email = normalizedEmail(req.Email)
	}
	if req.Notes != nil {
		client.Notes = utils.NewNullString(*req.Notes)
	}

	if err := s.clientRepo.UpdateClient(ctx, s.db, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPhoneNumberExists
		}
		return nil, wrapNotFound(err, ErrClientNotFound)
	}
	return s.clientRepo.GetClientByID(ctx, clientID)
}

func (s *clientService) DeleteClient(ctx context.Context, clientID int64) error {
	err := s.clientRepo.DeleteClient(ctx, s.db, clientID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrClientNotFound
	case errors.Is(err, repositories.ErrForeignKey):
		return ErrClientInUse
	}
	return err
}
