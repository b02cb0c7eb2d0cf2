package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrServiceNotFound  = errors.New("repair service not found")
	ErrRequestNotFound  = errors.New("service request not found")
	ErrRepairValidation = errors.New("repair validation error")
	ErrRequestClosed    = errors.New("service request is already closed")
	ErrServiceInUse     = errors.New("repair service is referenced by requests")
)

type ServiceCatalogRequest struct {
	Name              string   `json:"name" binding:"required"`
	NameFr            *string  `json:"name_fr"`
	NameAr            *string  `json:"name_ar"`
	Description       *string  `json:"description"`
	DescriptionFr     *string  `json:"description_fr"`
	DescriptionAr     *string  `json:"description_ar"`
	Category          string   `json:"category" binding:"required"`
	Price             *float64 `json:"price"`
	IsComplex         bool     `json:"is_complex"`
	EstimatedDuration *string  `json:"estimated_duration"`
	ImageURL          *string  `json:"image_url"`
	IsActive          *bool    `json:"is_active"`
	SortOrder         int      `json:"sort_order"`
}

type CreateServiceRequestRequest struct {
	ServiceID        *int64   `json:"service_id"`
	ClientName       string   `json:"client_name" binding:"required"`
	ClientPhone      string   `json:"client_phone" binding:"required"`
	ClientEmail      *string  `json:"client_email"`
	DeviceType       string   `json:"device_type" binding:"required"`
	DeviceBrand      *string  `json:"device_brand"`
	DeviceModel      *string  `json:"device_model"`
	IssueDescription string   `json:"issue_description" binding:"required"`
	Priority         string   `json:"priority"`
	EstimatedCost    *float64 `json:"estimated_cost"`
	Notes            *string  `json:"notes"`
}

type UpdateServiceRequestRequest struct {
	Status        *string  `json:"status"`
	Priority      *string  `json:"priority"`
	Diagnosis     *string  `json:"diagnosis"`
	EstimatedCost *float64 `json:"estimated_cost"`
	FinalCost     *float64 `json:"final_cost"`
	AssignedTo    *int64   `json:"assigned_to"`
	IsComplex     *bool    `json:"is_complex"`
	Notes         *string  `json:"notes"`
	InternalNotes *string  `json:"internal_notes"`
}

type RepairService interface {
	ListServices(ctx context.Context, category *string, activeOnly bool) ([]models.ServiceCatalogItem, error)
	GetService(ctx context.Context, id int64) (*models.ServiceCatalogItem, error)
	CreateService(ctx context.Context, req ServiceCatalogRequest) (*models.ServiceCatalogItem, error)
	UpdateService(ctx context.Context, id int64, req ServiceCatalogRequest) (*models.ServiceCatalogItem, error)
	DeleteService(ctx context.Context, id int64) error

	CreateRequest(ctx context.Context, req CreateServiceRequestRequest, staffID *int64) (*models.ServiceRequest, error)
	ListRequests(ctx context.Context, filters models.ServiceRequestFilters) ([]models.ServiceRequest, int, error)
	TodayRequests(ctx context.Context) ([]models.ServiceRequest, int, error)
	GetRequest(ctx context.Context, id int64) (*models.ServiceRequest, error)
	UpdateRequest(ctx context.Context, id int64, req UpdateServiceRequestRequest) (*models.ServiceRequest, error)
	DeleteRequest(ctx context.Context, id int64) error
}

type repairService struct {
	repo     repositories.RepairRepository
	clients  repositories.ClientRepository
	db       repositories.SQLExecutor
	notifier notify.Notifier
	cache    *cache.Cache
	now      func() time.Time
	async    func(func())
}

func NewRepairService(
	repo repositories.RepairRepository,
	clients repositories.ClientRepository,
	db repositories.SQLExecutor,
	notifier notify.Notifier,
	c *cache.Cache,
) RepairService {
	return &repairService{
		repo:     repo,
		clients:  clients,
		db:       db,
		notifier: notifier,
		cache:    c,
		now:      time.Now,
		async:    func(f func()) { go f() },
	}
}

func (s *repairService) ListServices(ctx context.Context, category *string, activeOnly bool) ([]models.ServiceCatalogItem, error) {
	if !activeOnly {
		return s.repo.GetServices(ctx, category, false)
	}
	variant := "active"
	if category != nil {
		variant += ":" + *category
	}
	return cache.GetOrLoad(ctx, s.cache, tableServiceCatalog, variant, func(ctx context.Context) ([]models.ServiceCatalogItem, error) {
		return s.repo.GetServices(ctx, category, true)
	})
}

func (s *repairService) GetService(ctx context.Context, id int64) (*models.ServiceCatalogItem, error) {
	item, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrServiceNotFound)
	}
	return item, nil
}

func catalogItemFrom(req ServiceCatalogRequest, item *models.ServiceCatalogItem) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrRepairValidation)
	}
	if !models.IsValidServiceCategory(req.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrRepairValidation, req.Category)
	}
	if req.Price != nil && *req.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrRepairValidation)
	}
	item.Name = strings.TrimSpace(req.Name)
	item.NameFr, item.NameAr = req.NameFr, req.NameAr
	item.Description, item.DescriptionFr, item.DescriptionAr = req.Description, req.DescriptionFr, req.DescriptionAr
	item.Category = req.Category
	item.Price = roundOpt(req.Price)
	item.IsComplex = req.IsComplex
	item.EstimatedDuration = req.EstimatedDuration
	item.ImageURL = req.ImageURL
	item.IsActive = req.IsActive == nil || *req.IsActive
	item.SortOrder = req.SortOrder
	return nil
}

func (s *repairService) CreateService(ctx context.Context, req ServiceCatalogRequest) (*models.ServiceCatalogItem, error) {
	item := &models.ServiceCatalogItem{}
	if err := catalogItemFrom(req, item); err != nil {
		return nil, err
	}
	if _, err := s.repo.CreateService(ctx, s.db, item); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tableServiceCatalog)
	return s.repo.GetServiceByID(ctx, item.ID)
}

func (s *repairService) UpdateService(ctx context.Context, id int64, req ServiceCatalogRequest) (*models.ServiceCatalogItem, error) {
	item, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrServiceNotFound)
	}
	if err := catalogItemFrom(req, item); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateService(ctx, s.db, item); err != nil {
		return nil, wrapNotFound(err, ErrServiceNotFound)
	}
	s.cache.Invalidate(ctx, tableServiceCatalog)
	return s.repo.GetServiceByID(ctx, id)
}

func (s *repairService) DeleteService(ctx context.Context, id int64) error {
	err := s.repo.DeleteService(ctx, s.db, id)
	switch {
	case errors.Is(err, repositories.ErrForeignKey):
		return ErrServiceInUse
	case err != nil:
		return wrapNotFound(err, ErrServiceNotFound)
	}
	s.cache.Invalidate(ctx, tableServiceCatalog)
	return nil
}

func (s *repairService) CreateRequest(ctx context.Context, req CreateServiceRequestRequest, staffID *int64) (*models.ServiceRequest, error) {
	name := utils.SanitizeInput(req.ClientName)
	if !utils.IsValidName(name) {
		return nil, fmt.Errorf("%w: client name must have at least 2 characters", ErrRepairValidation)
	}
	if !utils.IsValidPhone(req.ClientPhone) {
		return nil, fmt.Errorf("%w: phone number format is invalid", ErrRepairValidation)
	}
	if req.ClientEmail != nil && *req.ClientEmail != "" && !utils.IsValidEmail(*req.ClientEmail) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrRepairValidation)
	}
	if strings.TrimSpace(req.DeviceType) == "" || strings.TrimSpace(req.IssueDescription) == "" {
		return nil, fmt.Errorf("%w: device type and issue description are required", ErrRepairValidation)
	}
	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}
	if !models.IsValidPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrRepairValidation, priority)
	}

	r := &models.ServiceRequest{
		ServiceID:        req.ServiceID,
		ClientName:       name,
		ClientPhone:      utils.NormalizePhone(req.ClientPhone),
		ClientEmail:      normalizedEmail(req.ClientEmail),
		DeviceType:       utils.SanitizeInput(req.DeviceType),
		DeviceBrand:      req.DeviceBrand,
		DeviceModel:      req.DeviceModel,
		IssueDescription: utils.SanitizeInput(req.IssueDescription),
		EstimatedCost:    roundOpt(req.EstimatedCost),
		Status:           models.RequestPending,
		Priority:         priority,
		StaffID:          staffID,
		Notes:            req.Notes,
	}
	if req.ServiceID != nil {
		item, err := s.repo.GetServiceByID(ctx, *req.ServiceID)
		if err != nil {
			return nil, wrapNotFound(err, ErrServiceNotFound)
		}
		r.IsComplex = item.IsComplex
	}
	if client, err := s.clients.GetClientByPhone(ctx, r.ClientPhone); err == nil {
		r.ClientID = &client.ID
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if _, err := s.repo.CreateRequest(ctx, s.db, r); err != nil {
		return nil, err
	}

	payload := notify.ServiceRequest{
		ClientName:       r.ClientName,
		ClientPhone:      r.ClientPhone,
		DeviceType:       r.DeviceType,
		DeviceBrand:      utils.Deref(r.DeviceBrand),
		IssueDescription: r.IssueDescription,
		RequestID:        strconv.FormatInt(r.ID, 10),
		Status:           r.Status,
	}
	s.async(func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.ServiceRequest(nctx, payload); err != nil {
			utils.LogWarn(err, "service request notification not sent", map[string]interface{}{"request_id": payload.RequestID})
		}
	})
	return s.repo.GetRequestByID(ctx, r.ID)
}

func (s *repairService) ListRequests(ctx context.Context, filters models.ServiceRequestFilters) ([]models.ServiceRequest, int, error) {
	if filters.Status != nil && !models.IsValidRequestStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrRepairValidation, *filters.Status)
	}
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	return s.repo.GetRequests(ctx, filters)
}

func (s *repairService) TodayRequests(ctx context.Context) ([]models.ServiceRequest, int, error) {
	from := startOfDay(s.now())
	to := from.AddDate(0, 0, 1)
	return s.repo.GetRequests(ctx, models.ServiceRequestFilters{From: &from, To: &to, PageSize: 500})
}

func (s *repairService) GetRequest(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	r, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrRequestNotFound)
	}
	return r, nil
}

func isClosedRequest(status string) bool {
	return status == models.RequestCompleted || status == models.RequestCancelled
}

func (s *repairService) UpdateRequest(ctx context.Context, id int64, req UpdateServiceRequestRequest) (*models.ServiceRequest, error) {
	r, err := s.repo.GetRequestByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrRequestNotFound)
	}

	if req.Status != nil && *req.Status != r.Status {
		if !models.IsValidRequestStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrRepairValidation, *req.Status)
		}
		if isClosedRequest(r.Status) {
			return nil, ErrRequestClosed
		}
		now := s.now()
		switch *req.Status {
		case models.RequestInProgress:
			if r.StartedAt == nil {
				r.StartedAt = &now
			}
		case models.RequestCompleted:
			r.CompletedAt = &now
		}
		r.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.IsValidPriority(*req.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrRepairValidation, *req.Priority)
		}
		r.Priority = *req.Priority
	}
	if req.Diagnosis != nil {
		r.Diagnosis = utils.NewNullString(*req.Diagnosis)
	}
	if req.EstimatedCost != nil {
		if *req.EstimatedCost < 0 {
			return nil, fmt.Errorf("%w: costs cannot be negative", ErrRepairValidation)
		}
		r.EstimatedCost = roundOpt(req.EstimatedCost)
	}
	if req.FinalCost != nil {
		if *req.FinalCost < 0 {
			return nil, fmt.Errorf("%w: costs cannot be negative", ErrRepairValidation)
		}
		r.FinalCost = roundOpt(req.FinalCost)
	}
	if req.AssignedTo != nil {
		r.AssignedTo = req.AssignedTo
		if *req.AssignedTo == 0 {
			r.AssignedTo = nil
		}
	}
	if req.IsComplex != nil {
		r.IsComplex = *req.IsComplex
	}
	if req.Notes != nil {
		r.Notes = utils.NewNullString(*req.Notes)
	}
	if req.InternalNotes != nil {
		r.InternalNotes = utils.NewNullString(*req.InternalNotes)
	}

	if err := s.repo.UpdateRequest(ctx, s.db, r); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, fmt.Errorf("%w: assigned staff does not exist", ErrRepairValidation)
		}
		return nil, wrapNotFound(err, ErrRequestNotFound)
	}
	return s.repo.GetRequestByID(ctx, id)
}

func (s *repairService) DeleteRequest(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRequest(ctx, s.db, id); err != nil {
		return wrapNotFound(err, ErrRequestNotFound)
	}
	return nil
}
