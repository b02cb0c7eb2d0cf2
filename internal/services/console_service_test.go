package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

func newConsoleFixture() (*consoleService, *fakeConsoles, *fakeTx) {
	consoles := newFakeConsoles(
		models.Console{ID: 1, Name: "PS5 #1", ConsoleType: models.ConsolePS5, Status: models.ConsoleAvailable, StationNumber: 1},
		models.Console{ID: 2, Name: "PS5 #2", ConsoleType: models.ConsolePS5, Status: models.ConsoleInUse, StationNumber: 2, CurrentSessionID: utils.Ptr(int64(40))},
		models.Console{ID: 3, Name: "PS4 #3", ConsoleType: models.ConsolePS4, Status: models.ConsoleMaintenance, StationNumber: 3},
		models.Console{ID: 4, Name: "PS4 #4", ConsoleType: models.ConsolePS4, Status: models.ConsoleAvailable, StationNumber: 4},
	)
	tx := &fakeTx{}
	return NewConsoleService(consoles, tx, nil, nil).(*consoleService), consoles, tx
}

func TestConsole_CreateValidation(t *testing.T) {
	svc, _, _ := newConsoleFixture()
	ctx := context.Background()

	_, err := svc.CreateConsole(ctx, CreateConsoleRequest{Name: "X", ConsoleType: "xbox", StationNumber: 5})
	assert.ErrorIs(t, err, ErrConsoleValidation)
	_, err = svc.CreateConsole(ctx, CreateConsoleRequest{Name: "X", ConsoleType: models.ConsolePS5})
	assert.ErrorIs(t, err, ErrConsoleValidation)

	c, err := svc.CreateConsole(ctx, CreateConsoleRequest{Name: " PS5 #5 ", ConsoleType: models.ConsolePS5, StationNumber: 5})
	require.NoError(t, err)
	assert.Equal(t, "PS5 #5", c.Name)
	assert.Equal(t, models.ConsoleAvailable, c.Status)
}

func TestConsole_CannotSetInUseByHand(t *testing.T) {
	svc, consoles, _ := newConsoleFixture()

	_, err := svc.UpdateConsole(context.Background(), 1, UpdateConsoleRequest{Status: utils.Ptr(models.ConsoleInUse)})
	assert.ErrorIs(t, err, ErrConsoleValidation)
	assert.Equal(t, models.ConsoleAvailable, consoles.rows[1].Status)
}

func TestConsole_StatusFrozenWhileInUse(t *testing.T) {
	svc, consoles, _ := newConsoleFixture()
	ctx := context.Background()

	_, err := svc.UpdateConsole(ctx, 2, UpdateConsoleRequest{Status: utils.Ptr(models.ConsoleMaintenance)})
	assert.ErrorIs(t, err, ErrConsoleInUse)

	_, err = svc.SetMaintenance(ctx, 2, true)
	assert.ErrorIs(t, err, ErrConsoleInUse)

	c := consoles.rows[2]
	assert.Equal(t, models.ConsoleInUse, c.Status)
	require.NotNil(t, c.CurrentSessionID)
	assert.Equal(t, int64(40), *c.CurrentSessionID)

	// renaming a busy console is fine
	updated, err := svc.UpdateConsole(ctx, 2, UpdateConsoleRequest{Name: utils.Ptr("PS5 VIP")})
	require.NoError(t, err)
	assert.Equal(t, "PS5 VIP", updated.Name)
	assert.Equal(t, models.ConsoleInUse, updated.Status)
}

func TestConsole_UpdateReadsUnderLock(t *testing.T) {
	svc, consoles, tx := newConsoleFixture()

	c, err := svc.SetMaintenance(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, models.ConsoleMaintenance, c.Status)
	assert.Equal(t, 1, consoles.locks)
	assert.Equal(t, 1, tx.calls)

	c, err = svc.SetMaintenance(context.Background(), 3, false)
	require.NoError(t, err)
	assert.Equal(t, models.ConsoleAvailable, c.Status)
}

func TestConsole_UnknownStatusRejected(t *testing.T) {
	svc, _, _ := newConsoleFixture()

	_, err := svc.UpdateConsole(context.Background(), 1, UpdateConsoleRequest{Status: utils.Ptr("broken")})
	assert.ErrorIs(t, err, ErrConsoleValidation)

	_, err = svc.UpdateConsole(context.Background(), 99, UpdateConsoleRequest{Name: utils.Ptr("Ghost")})
	assert.ErrorIs(t, err, ErrConsoleNotFound)
}

func TestConsole_DeleteRefusedWhileInUse(t *testing.T) {
	svc, consoles, _ := newConsoleFixture()
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteConsole(ctx, 2), ErrConsoleInUse)
	assert.Contains(t, consoles.rows, int64(2))

	require.NoError(t, svc.DeleteConsole(ctx, 4))
	assert.NotContains(t, consoles.rows, int64(4))
	assert.ErrorIs(t, svc.DeleteConsole(ctx, 4), ErrConsoleNotFound)
	assert.Equal(t, 3, consoles.locks)
}

func TestConsole_Counter(t *testing.T) {
	svc, _, _ := newConsoleFixture()

	counter, err := svc.Counter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counter.Total)
	assert.Equal(t, 2, counter.Available)
	assert.Equal(t, 1, counter.InUse)
	assert.Equal(t, 1, counter.Maintenance)
	assert.Equal(t, map[string]int{models.ConsolePS5: 2, models.ConsolePS4: 2}, counter.ByType)
	assert.Equal(t, map[string]int{models.ConsolePS5: 1, models.ConsolePS4: 1}, counter.AvailableBy)
}

func TestConsole_ListFiltersByType(t *testing.T) {
	svc, _, _ := newConsoleFixture()
	ctx := context.Background()

	ps4, err := svc.ListConsoles(ctx, utils.Ptr(models.ConsolePS4))
	require.NoError(t, err)
	require.Len(t, ps4, 2)
	assert.Equal(t, 3, ps4[0].StationNumber)

	_, err = svc.ListConsoles(ctx, utils.Ptr("wii"))
	assert.ErrorIs(t, err, ErrConsoleValidation)
}

func TestPricing_CreateValidatesAndDeleteMapsReferences(t *testing.T) {
	pricing := newFakePricing(models.Pricing{ID: 1, Name: "PS5 hourly", ConsoleType: models.ConsolePS5, PriceType: models.PriceHourly, Price: 6, IsActive: true})
	svc := NewPricingService(pricing, nil, nil)
	ctx := context.Background()

	_, err := svc.CreatePricing(ctx, CreatePricingRequest{Name: "Bad", ConsoleType: models.ConsolePS5, PriceType: "weekly", Price: 1})
	assert.ErrorIs(t, err, ErrPricingValidation)
	_, err = svc.CreatePricing(ctx, CreatePricingRequest{Name: "Bad", ConsoleType: models.ConsolePS5, PriceType: models.PricePerGame, Price: -1})
	assert.ErrorIs(t, err, ErrPricingValidation)

	p, err := svc.CreatePricing(ctx, CreatePricingRequest{Name: "PS5 match", ConsoleType: models.ConsolePS5, PriceType: models.PricePerGame, Price: 2.0004, IsActive: utils.Ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.Price)

	active, err := svc.ListActive(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	all, err := svc.ListAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pricing.deleteErr = repositories.ErrForeignKey
	assert.ErrorIs(t, svc.DeletePricing(ctx, 1), ErrPricingInUse)
	pricing.deleteErr = nil
	require.NoError(t, svc.DeletePricing(ctx, 1))
	assert.ErrorIs(t, svc.DeletePricing(ctx, 1), ErrPricingNotFound)
}
