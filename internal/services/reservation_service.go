package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

// --- Custom Service Errors for Reservations ---
var (
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrInvalidReservationTime = errors.New("invalid reservation time")
	ErrReservationValidation  = errors.New("reservation validation error")
	ErrReservationConflict    = errors.New("console is already booked for the requested time")
	ErrReservationTransition  = errors.New("invalid reservation status transition")
)

const (
	minReservation = 15 * time.Minute
	maxReservation = 12 * time.Hour

	// clockSkew tolerates a start time slightly in the past.
	clockSkew = 5 * time.Minute
)

type CreateReservationRequest struct {
	ClientName  string    `json:"client_name" binding:"required"`
	ClientPhone string    `json:"client_phone" binding:"required"`
	ClientEmail *string   `json:"client_email"`
	ConsoleType string    `json:"console_type" binding:"required"`
	SessionType string    `json:"session_type"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Notes       *string   `json:"notes"`
}

type ConfirmReservationRequest struct {
	ConsoleID int64 `json:"console_id" binding:"required"`
}

type ReservationService interface {
	CreateReservation(ctx context.Context, req CreateReservationRequest) (*models.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListReservations(ctx context.Context, filters models.ReservationFilters) ([]models.Reservation, int, error)
	Confirm(ctx context.Context, id, consoleID int64, staffID *int64) (*models.Reservation, error)
	Cancel(ctx context.Context, id int64, staffID *int64) (*models.Reservation, error)
	Complete(ctx context.Context, id int64, staffID *int64) (*models.Reservation, error)
	MarkNoShow(ctx context.Context, id int64, staffID *int64) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

type reservationService struct {
	repo     repositories.ReservationRepository
	consoles repositories.ConsoleRepository
	db       repositories.SQLExecutor
	notifier notify.Notifier
	now      func() time.Time
	async    func(func())
}

func NewReservationService(
	repo repositories.ReservationRepository,
	consoles repositories.ConsoleRepository,
	db repositories.SQLExecutor,
	notifier notify.Notifier,
) ReservationService {
	return &reservationService{
		repo:     repo,
		consoles: consoles,
		db:       db,
		notifier: notifier,
		now:      time.Now,
		async:    func(f func()) { go f() },
	}
}

func (s *reservationService) validateTimes(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidReservationTime)
	}
	if end.Sub(start) < minReservation {
		return fmt.Errorf("%w: minimum duration is 15 minutes", ErrInvalidReservationTime)
	}
	if end.Sub(start) > maxReservation {
		return fmt.Errorf("%w: maximum duration is 12 hours", ErrInvalidReservationTime)
	}
	if start.Before(s.now().Add(-clockSkew)) {
		return fmt.Errorf("%w: start time cannot be in the past", ErrInvalidReservationTime)
	}
	return nil
}

func (s *reservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*models.Reservation, error) {
	name := strings.TrimSpace(utils.SanitizeInput(req.ClientName))
	if !utils.IsValidName(name) {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", ErrReservationValidation)
	}
	if !utils.IsValidPhone(req.ClientPhone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrReservationValidation)
	}
	email := normalizedEmail(req.ClientEmail)
	if email != nil && !utils.IsValidEmail(*email) {
		return nil, fmt.Errorf("%w: invalid email", ErrReservationValidation)
	}
	if !models.IsValidConsoleType(req.ConsoleType) {
		return nil, fmt.Errorf("%w: console type must be ps4 or ps5", ErrReservationValidation)
	}
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = models.PriceHourly
	}
	if !models.IsValidPriceType(sessionType) {
		return nil, fmt.Errorf("%w: unknown session type %q", ErrReservationValidation, sessionType)
	}
	if err := s.validateTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	res := &models.Reservation{
		ClientName:  name,
		ClientPhone: utils.NormalizePhone(req.ClientPhone),
		ClientEmail: email,
		ConsoleType: req.ConsoleType,
		SessionType: sessionType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      models.ReservationPending,
		Notes:       req.Notes,
	}
	if _, err := s.repo.CreateReservation(ctx, s.db, res); err != nil {
		return nil, err
	}
	return s.repo.GetReservationByID(ctx, res.ID)
}

func (s *reservationService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	res, err := s.repo.GetReservationByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrReservationNotFound)
	}
	return res, nil
}

func (s *reservationService) ListReservations(ctx context.Context, filters models.ReservationFilters) ([]models.Reservation, int, error) {
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	return s.repo.GetReservations(ctx, filters)
}

// Confirm assigns a console and emails the client when an address is known.
func (s *reservationService) Confirm(ctx context.Context, id, consoleID int64, staffID *int64) (*models.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != models.ReservationPending {
		return nil, fmt.Errorf("%w: cannot confirm a %s reservation", ErrReservationTransition, res.Status)
	}
	console, err := s.consoles.GetConsoleByID(ctx, consoleID)
	if err != nil {
		return nil, wrapNotFound(err, ErrConsoleNotFound)
	}
	if console.ConsoleType != res.ConsoleType {
		return nil, fmt.Errorf("%w: console %s is a %s, reservation asks for %s",
			ErrReservationValidation, console.Name, console.ConsoleType, res.ConsoleType)
	}
	overlap, err := s.repo.HasOverlap(ctx, consoleID, res.StartTime, res.EndTime, &res.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrReservationConflict
	}

	res.ConsoleID = &console.ID
	res.Status = models.ReservationConfirmed
	res.StaffID = staffID
	if err := s.repo.UpdateReservation(ctx, s.db, res); err != nil {
		return nil, wrapNotFound(err, ErrReservationNotFound)
	}

	if res.ClientEmail != nil {
		payload := notify.BookingConfirmation{
			ClientName:    res.ClientName,
			ClientEmail:   *res.ClientEmail,
			ConsoleType:   strings.ToUpper(res.ConsoleType),
			SessionType:   res.SessionType,
			PreferredDate: res.StartTime.Format("2006-01-02"),
			PreferredTime: res.StartTime.Format("15:04"),
		}
		s.async(func() {
			nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := s.notifier.BookingConfirmation(nctx, payload); err != nil {
				utils.LogWarn(err, "booking confirmation not sent", map[string]interface{}{"reservation_id": id})
			}
		})
	}
	return s.repo.GetReservationByID(ctx, id)
}

func (s *reservationService) transition(ctx context.Context, id int64, to string, staffID *int64, from ...string) (*models.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, st := range from {
		if res.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrReservationTransition, res.Status, to)
	}
	res.Status = to
	res.StaffID = staffID
	if err := s.repo.UpdateReservation(ctx, s.db, res); err != nil {
		return nil, wrapNotFound(err, ErrReservationNotFound)
	}
	return s.repo.GetReservationByID(ctx, id)
}

func (s *reservationService) Cancel(ctx context.Context, id int64, staffID *int64) (*models.Reservation, error) {
	return s.transition(ctx, id, models.ReservationCancelled, staffID, models.ReservationPending, models.ReservationConfirmed)
}

func (s *reservationService) Complete(ctx context.Context, id int64, staffID *int64) (*models.Reservation, error) {
	return s.transition(ctx, id, models.ReservationCompleted, staffID, models.ReservationConfirmed)
}

func (s *reservationService) MarkNoShow(ctx context.Context, id int64, staffID *int64) (*models.Reservation, error) {
	return s.transition(ctx, id, models.ReservationNoShow, staffID, models.ReservationConfirmed)
}

func (s *reservationService) DeleteReservation(ctx context.Context, id int64) error {
	return wrapNotFound(s.repo.DeleteReservation(ctx, s.db, id), ErrReservationNotFound)
}
