package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

type fakeReservations struct {
	rows map[int64]*models.Reservation
	next int64
}

func (f *fakeReservations) CreateReservation(_ context.Context, _ repositories.SQLExecutor, r *models.Reservation) (int64, error) {
	f.next++
	r.ID = f.next
	cp := *r
	f.rows[r.ID] = &cp
	return r.ID, nil
}

func (f *fakeReservations) GetReservationByID(_ context.Context, id int64) (*models.Reservation, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservations) GetReservations(context.Context, models.ReservationFilters) ([]models.Reservation, int, error) {
	out := []models.Reservation{}
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeReservations) UpdateReservation(_ context.Context, _ repositories.SQLExecutor, r *models.Reservation) error {
	if _, ok := f.rows[r.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeReservations) DeleteReservation(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeReservations) HasOverlap(_ context.Context, consoleID int64, start, end time.Time, excludeID *int64) (bool, error) {
	for _, r := range f.rows {
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if r.Status != models.ReservationConfirmed || r.ConsoleID == nil || *r.ConsoleID != consoleID {
			continue
		}
		if r.StartTime.Before(end) && r.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

var reservationNow = time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)

func newReservationFixture() (*reservationService, *fakeNotifier) {
	n := &fakeNotifier{}
	consoles := newFakeConsoles(
		models.Console{ID: 1, Name: "PS5-1", ConsoleType: models.ConsolePS5, Status: models.ConsoleAvailable},
		models.Console{ID: 2, Name: "PS4-1", ConsoleType: models.ConsolePS4, Status: models.ConsoleAvailable},
	)
	svc := NewReservationService(&fakeReservations{rows: map[int64]*models.Reservation{}}, consoles, nil, n).(*reservationService)
	svc.now = func() time.Time { return reservationNow }
	svc.async = syncAsync
	return svc, n
}

func reservationAt(offset, length time.Duration) CreateReservationRequest {
	start := reservationNow.Add(offset)
	return CreateReservationRequest{
		ClientName:  "Wassim",
		ClientPhone: "29111222",
		ClientEmail: utils.Ptr("wassim@example.com"),
		ConsoleType: models.ConsolePS5,
		StartTime:   start,
		EndTime:     start.Add(length),
	}
}

func TestReservation_CreateValidatesWindow(t *testing.T) {
	svc, _ := newReservationFixture()
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, reservationAt(time.Hour, 10*time.Minute))
	assert.ErrorIs(t, err, ErrInvalidReservationTime)
	_, err = svc.CreateReservation(ctx, reservationAt(time.Hour, 13*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidReservationTime)
	_, err = svc.CreateReservation(ctx, reservationAt(-time.Hour, time.Hour))
	assert.ErrorIs(t, err, ErrInvalidReservationTime)

	bad := reservationAt(time.Hour, time.Hour)
	bad.ClientPhone = "11111111"
	_, err = svc.CreateReservation(ctx, bad)
	assert.ErrorIs(t, err, ErrReservationValidation)

	res, err := svc.CreateReservation(ctx, reservationAt(time.Hour, 15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, models.PriceHourly, res.SessionType)
}

func TestReservation_ConfirmChecksOverlap(t *testing.T) {
	svc, n := newReservationFixture()
	ctx := context.Background()

	first, err := svc.CreateReservation(ctx, reservationAt(time.Hour, 2*time.Hour))
	require.NoError(t, err)
	second, err := svc.CreateReservation(ctx, reservationAt(2*time.Hour, time.Hour))
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, first.ID, 2, nil)
	assert.ErrorIs(t, err, ErrReservationValidation, "console type mismatch")

	confirmed, err := svc.Confirm(ctx, first.ID, 1, utils.Ptr(int64(3)))
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)
	assert.Equal(t, []string{notify.KindBookingConfirmation}, n.kinds())

	_, err = svc.Confirm(ctx, second.ID, 1, nil)
	assert.ErrorIs(t, err, ErrReservationConflict)

	_, err = svc.Confirm(ctx, first.ID, 1, nil)
	assert.ErrorIs(t, err, ErrReservationTransition)
}

func TestReservation_Transitions(t *testing.T) {
	svc, _ := newReservationFixture()
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, reservationAt(time.Hour, time.Hour))
	require.NoError(t, err)

	_, err = svc.Complete(ctx, res.ID, nil)
	assert.ErrorIs(t, err, ErrReservationTransition)

	cancelled, err := svc.Cancel(ctx, res.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, res.ID, nil)
	assert.ErrorIs(t, err, ErrReservationTransition)

	assert.NoError(t, svc.DeleteReservation(ctx, res.ID))
	assert.ErrorIs(t, svc.DeleteReservation(ctx, res.ID), ErrReservationNotFound)
}
