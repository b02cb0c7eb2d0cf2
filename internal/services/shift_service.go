package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
)

var (
	ErrShiftAlreadyOpen = errors.New("a shift is already open for this staff member")
	ErrNoOpenShift      = errors.New("no open shift for this staff member")
)

type ClockInRequest struct {
	Notes *string `json:"notes"`
}

// ShiftStatus is what a staff member sees about their own attendance.
type ShiftStatus struct {
	ClockedIn    bool               `json:"clocked_in"`
	Shift        *models.StaffShift `json:"shift,omitempty"`
	ElapsedHours float64            `json:"elapsed_hours"`
}

type ShiftService interface {
	ClockIn(ctx context.Context, staffID int64, notes *string) (*models.StaffShift, error)
	ClockOut(ctx context.Context, staffID int64) (*models.StaffShift, error)
	ActiveShifts(ctx context.Context) ([]models.StaffShift, error)
	ShiftHistory(ctx context.Context, filters models.ShiftFilters) ([]models.StaffShift, int, error)
	MyStatus(ctx context.Context, staffID int64) (*ShiftStatus, error)
}

type shiftService struct {
	repo repositories.ShiftRepository
	db   repositories.SQLExecutor
	now  func() time.Time
}

func NewShiftService(repo repositories.ShiftRepository, db repositories.SQLExecutor) ShiftService {
	return &shiftService{repo: repo, db: db, now: time.Now}
}

func hoursBetween(from, to time.Time) float64 {
	h := to.Sub(from).Hours()
	if h < 0 {
		h = 0
	}
	return math.Round(h*100) / 100
}

func (s *shiftService) openShift(ctx context.Context, staffID int64) (*models.StaffShift, error) {
	shift, err := s.repo.GetOpenShift(ctx, staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return shift, nil
}

func (s *shiftService) ClockIn(ctx context.Context, staffID int64, notes *string) (*models.StaffShift, error) {
	open, err := s.openShift(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrShiftAlreadyOpen
	}
	if _, err := s.repo.OpenShift(ctx, s.db, staffID, s.now(), notes); err != nil {
		// the partial unique index on open shifts catches concurrent clock-ins
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrShiftAlreadyOpen
		}
		return nil, err
	}
	return s.repo.GetOpenShift(ctx, staffID)
}

func (s *shiftService) ClockOut(ctx context.Context, staffID int64) (*models.StaffShift, error) {
	open, err := s.openShift(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenShift
	}
	at := s.now()
	hours := hoursBetween(open.CheckIn, at)
	if err := s.repo.CloseShift(ctx, s.db, open.ID, at, hours); err != nil {
		return nil, wrapNotFound(err, ErrNoOpenShift)
	}
	open.CheckOut = &at
	open.TotalHours = &hours
	open.Status = models.ShiftStatusCompleted
	return open, nil
}

func (s *shiftService) ActiveShifts(ctx context.Context) ([]models.StaffShift, error) {
	return s.repo.GetActiveShifts(ctx)
}

func (s *shiftService) ShiftHistory(ctx context.Context, filters models.ShiftFilters) ([]models.StaffShift, int, error) {
	if filters.From != nil && filters.To != nil && !filters.To.After(*filters.From) {
		return nil, 0, fmt.Errorf("%w: 'to' must be after 'from'", ErrInvalidRange)
	}
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	return s.repo.GetShifts(ctx, filters)
}

func (s *shiftService) MyStatus(ctx context.Context, staffID int64) (*ShiftStatus, error) {
	open, err := s.openShift(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return &ShiftStatus{}, nil
	}
	return &ShiftStatus{ClockedIn: true, Shift: open, ElapsedHours: hoursBetween(open.CheckIn, s.now())}, nil
}
