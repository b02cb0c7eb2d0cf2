package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"
)

type sessionFixture struct {
	svc      *sessionService
	consoles *fakeConsoles
	sessions *fakeSessions
	products *fakeProducts
	sales    *fakeSales
	clients  *fakeClients
	points   *fakePoints
	notifier *fakeNotifier
	clock    time.Time
}

func newSessionFixture(cfg models.StoreConfig) *sessionFixture {
	f := &sessionFixture{
		consoles: newFakeConsoles(
			models.Console{ID: 1, Name: "PS5 #1", ConsoleType: models.ConsolePS5, Status: models.ConsoleAvailable, StationNumber: 1},
			models.Console{ID: 2, Name: "PS4 #2", ConsoleType: models.ConsolePS4, Status: models.ConsoleMaintenance, StationNumber: 2},
		),
		products: newFakeProducts(models.Product{ID: 7, Name: "Cola", Price: 2.5, StockQuantity: 10, IsActive: true, ProductType: models.ProductConsumable}),
		sales:    newFakeSales(),
		clients:  newFakeClients(models.Client{ID: 3, Phone: "22123456", Name: "Sami", Email: utils.Ptr("sami@example.com")}),
		points:   &fakePoints{},
		notifier: &fakeNotifier{},
		clock:    time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC),
	}
	f.sessions = newFakeSessions(f.consoles)
	pricing := newFakePricing(
		models.Pricing{ID: 10, Name: "PS5 hourly", ConsoleType: models.ConsolePS5, PriceType: models.PriceHourly, Price: 6, IsActive: true},
		models.Pricing{ID: 11, Name: "PS5 match", ConsoleType: models.ConsolePS5, PriceType: models.PricePerGame, Price: 2, PointsEarned: 2, IsActive: true},
		models.Pricing{ID: 12, Name: "PS4 hourly", ConsoleType: models.ConsolePS4, PriceType: models.PriceHourly, Price: 4, IsActive: true},
	)
	svc := NewSessionService(SessionDeps{
		Sessions:  f.sessions,
		Consoles:  f.consoles,
		Pricing:   pricing,
		Products:  f.products,
		Movements: &fakeMovements{},
		Sales:     f.sales,
		Clients:   f.clients,
		Points:    f.points,
		Tx:        &fakeTx{},
		Config:    StaticConfig(cfg),
		Notifier:  f.notifier,
	}).(*sessionService)
	svc.now = func() time.Time { return f.clock }
	svc.async = syncAsync
	f.svc = svc
	return f
}

func TestSession_StartMarksConsoleInUse(t *testing.T) {
	f := newSessionFixture(models.DefaultStoreConfig())
	ctx := context.Background()

	s, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, s.Status)
	require.NotNil(t, s.PricingID)
	assert.Equal(t, int64(10), *s.PricingID, "falls back to the first active hourly tariff")

	console := f.consoles.rows[1]
	assert.Equal(t, models.ConsoleInUse, console.Status)
	require.NotNil(t, console.CurrentSessionID)
	assert.Equal(t, s.ID, *console.CurrentSessionID)

	_, err = f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1}, nil)
	assert.ErrorIs(t, err, ErrConsoleNotAvailable)
}

func TestSession_StartRejectsUnavailableAndMismatchedPricing(t *testing.T) {
	f := newSessionFixture(models.DefaultStoreConfig())
	ctx := context.Background()

	_, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 2}, nil)
	assert.ErrorIs(t, err, ErrConsoleNotAvailable)

	_, err = f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1, PricingID: utils.Ptr(int64(12))}, nil)
	assert.ErrorIs(t, err, ErrPricingMismatch)
}

func TestSession_StartUsesStoreDefaultPricing(t *testing.T) {
	cfg := models.DefaultStoreConfig()
	cfg.DefaultPricingPS5 = utils.Ptr(int64(11))
	f := newSessionFixture(cfg)

	s, err := f.svc.StartSession(context.Background(), StartSessionRequest{ConsoleID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11), *s.PricingID)
	assert.Equal(t, models.PricePerGame, s.SessionType)
}

func TestSession_EndBillsFreesConsoleAndAwardsPoints(t *testing.T) {
	f := newSessionFixture(models.DefaultStoreConfig())
	ctx := context.Background()

	s, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1, ClientID: utils.Ptr(int64(3))}, nil)
	require.NoError(t, err)
	_, err = f.svc.AddConsumption(ctx, s.ID, AddConsumptionRequest{ProductID: 7, Quantity: 2})
	require.NoError(t, err)

	f.clock = f.clock.Add(90 * time.Minute)
	receipt, err := f.svc.EndSession(ctx, s.ID, EndSessionRequest{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 90, receipt.DurationMinutes)
	assert.Equal(t, 2, receipt.BilledHours)
	assert.InDelta(t, 12.0, receipt.GamingTotal, 0.0001)
	assert.InDelta(t, 5.0, receipt.ConsumptionsTotal, 0.0001)
	assert.InDelta(t, 17.0, receipt.GrandTotal, 0.0001)
	assert.Equal(t, 12, receipt.PointsEarned)
	require.NotNil(t, receipt.ClientBalance)
	assert.Equal(t, 12, *receipt.ClientBalance)
	assert.Len(t, receipt.SaleIDs, 1)

	console := f.consoles.rows[1]
	assert.Equal(t, models.ConsoleAvailable, console.Status)
	assert.Nil(t, console.CurrentSessionID)
	assert.Equal(t, models.SessionCompleted, f.sessions.rows[s.ID].Status)

	assert.Equal(t, 8, f.products.rows[7].StockQuantity)
	assert.InDelta(t, 17.0, f.clients.rows[3].TotalSpent, 0.0001)
	assert.Equal(t, 12, f.clients.rows[3].Points)
	require.Len(t, f.points.rows, 1)
	assert.Equal(t, models.ReferenceSession, *f.points.rows[0].ReferenceType)

	assert.Equal(t, []string{notify.KindSessionReceipt}, f.notifier.kinds())

	_, err = f.svc.EndSession(ctx, s.ID, EndSessionRequest{}, nil)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestSession_ConsumptionSalesEarnProductPoints(t *testing.T) {
	f := newSessionFixture(models.DefaultStoreConfig())
	ctx := context.Background()
	f.products.rows[7].PointsEarned = 3

	s, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1, ClientID: utils.Ptr(int64(3))}, nil)
	require.NoError(t, err)
	_, err = f.svc.AddConsumption(ctx, s.ID, AddConsumptionRequest{ProductID: 7, Quantity: 2})
	require.NoError(t, err)

	f.clock = f.clock.Add(30 * time.Minute)
	receipt, err := f.svc.EndSession(ctx, s.ID, EndSessionRequest{}, nil)
	require.NoError(t, err)

	require.Len(t, receipt.SaleIDs, 1)
	sale := f.sales.rows[receipt.SaleIDs[0]]
	assert.Equal(t, 6, sale.PointsEarned)
	assert.Equal(t, 12, receipt.PointsEarned, "6 for the hour plus 6 for two drinks")
	assert.Equal(t, 12, f.clients.rows[3].Points)

	require.Len(t, f.points.rows, 2)
	assert.Equal(t, models.ReferenceSale, *f.points.rows[0].ReferenceType)
	assert.Equal(t, 6, f.points.rows[0].Amount)
}

func TestSession_ConsumptionSalesWithoutClientEarnNothing(t *testing.T) {
	f := newSessionFixture(models.DefaultStoreConfig())
	ctx := context.Background()
	f.products.rows[7].PointsEarned = 3

	s, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1}, nil)
	require.NoError(t, err)
	_, err = f.svc.AddConsumption(ctx, s.ID, AddConsumptionRequest{ProductID: 7})
	require.NoError(t, err)

	receipt, err := f.svc.EndSession(ctx, s.ID, EndSessionRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, receipt.SaleIDs, 1)
	assert.Zero(t, f.sales.rows[receipt.SaleIDs[0]].PointsEarned)
	assert.Empty(t, f.points.rows)
}

func TestSession_EndWithoutClientEarnsNothing(t *testing.T) {
	f := newSessionFixture(models.DefaultStoreConfig())
	ctx := context.Background()

	s, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1, PricingID: utils.Ptr(int64(11))}, nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateProgress(ctx, s.ID, UpdateProgressRequest{GamesPlayed: utils.Ptr(6)})
	require.NoError(t, err)

	receipt, err := f.svc.EndSession(ctx, s.ID, EndSessionRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.FreeGames)
	assert.InDelta(t, 10.0, receipt.GamingTotal, 0.0001)
	assert.Zero(t, receipt.PointsEarned)
	assert.Nil(t, receipt.ClientBalance)
	assert.Empty(t, f.points.rows)
	assert.Empty(t, f.notifier.kinds())
}

func TestSession_EndRedeemsPoints(t *testing.T) {
	cfg := models.DefaultStoreConfig()
	cfg.PointsEnabled = false
	f := newSessionFixture(cfg)
	ctx := context.Background()
	f.points.rows = append(f.points.rows, models.PointsTransaction{ClientID: 3, TransactionType: models.PointsBonus, Amount: 20, BalanceAfter: 20})

	s, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1, ClientID: utils.Ptr(int64(3))}, nil)
	require.NoError(t, err)

	_, err = f.svc.EndSession(ctx, s.ID, EndSessionRequest{PaymentMethod: models.PaymentPoints, PointsUsed: 25}, nil)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// the fake tx does not roll back, so reopen the session for the retry
	f.sessions.rows[s.ID].Status = models.SessionActive
	receipt, err := f.svc.EndSession(ctx, s.ID, EndSessionRequest{PaymentMethod: models.PaymentPoints, PointsUsed: 15}, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, receipt.PointsUsed)
	assert.Zero(t, receipt.PointsEarned)
	assert.Equal(t, 5, *receipt.ClientBalance)
}

func TestSession_ConsumptionsOnlyWhileActive(t *testing.T) {
	f := newSessionFixture(models.DefaultStoreConfig())
	ctx := context.Background()

	s, err := f.svc.StartSession(ctx, StartSessionRequest{ConsoleID: 1}, nil)
	require.NoError(t, err)
	c, err := f.svc.AddConsumption(ctx, s.ID, AddConsumptionRequest{ProductID: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Quantity)
	assert.InDelta(t, 2.5, c.UnitPrice, 0.0001)

	require.NoError(t, f.svc.RemoveConsumption(ctx, s.ID, c.ID))
	list, err := f.svc.ListConsumptions(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.EndSession(ctx, s.ID, EndSessionRequest{}, nil)
	require.NoError(t, err)
	_, err = f.svc.AddConsumption(ctx, s.ID, AddConsumptionRequest{ProductID: 7})
	assert.ErrorIs(t, err, ErrSessionNotActive)
}
