package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
)

// In-memory fakes of the repositories. The tx runner calls fn with a nil
// executor and does not roll back, so tests assert on what each flow
// wrote before it failed.

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// --- clients + points ---

type fakeClients struct {
	rows   map[int64]*models.Client
	nextID int64
}

func newFakeClients(clients ...models.Client) *fakeClients {
	f := &fakeClients{rows: map[int64]*models.Client{}}
	for i := range clients {
		c := clients[i]
		f.rows[c.ID] = &c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeClients) CreateClient(_ context.Context, _ repositories.SQLExecutor, c *models.Client) (int64, error) {
	for _, existing := range f.rows {
		if existing.Phone == c.Phone {
			return 0, repositories.ErrDuplicateKey
		}
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.rows[c.ID] = &cp
	return c.ID, nil
}

func (f *fakeClients) GetClientByID(_ context.Context, id int64) (*models.Client, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClients) GetClientByPhone(_ context.Context, phone string) (*models.Client, error) {
	for _, c := range f.rows {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeClients) GetClients(context.Context, int, int, *string) ([]models.Client, int, error) {
	out := []models.Client{}
	for _, c := range f.rows {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeClients) UpdateClient(_ context.Context, _ repositories.SQLExecutor, c *models.Client) error {
	existing, ok := f.rows[c.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.Phone, existing.Name, existing.Email, existing.Notes = c.Phone, c.Name, c.Email, c.Notes
	return nil
}

func (f *fakeClients) DeleteClient(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeClients) LockClientPoints(_ context.Context, _ repositories.SQLExecutor, id int64) (int, error) {
	c, ok := f.rows[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return c.Points, nil
}

func (f *fakeClients) SetClientPoints(_ context.Context, _ repositories.SQLExecutor, id int64, points int) error {
	c, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Points = points
	return nil
}

func (f *fakeClients) AddClientTotals(_ context.Context, _ repositories.SQLExecutor, id int64, spent float64, games int) error {
	c, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.TotalSpent += spent
	c.TotalGamesPlayed += games
	return nil
}

type fakePoints struct {
	rows []models.PointsTransaction
}

func (f *fakePoints) SumAmounts(_ context.Context, _ repositories.SQLExecutor, clientID int64) (int, error) {
	sum := 0
	for _, t := range f.rows {
		if t.ClientID == clientID {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (f *fakePoints) CreateTransaction(_ context.Context, _ repositories.SQLExecutor, t *models.PointsTransaction) (int64, error) {
	t.ID = int64(len(f.rows) + 1)
	t.CreatedAt = time.Now()
	f.rows = append(f.rows, *t)
	return t.ID, nil
}

func (f *fakePoints) GetTransactions(_ context.Context, clientID *int64, limit int) ([]models.PointsTransaction, error) {
	out := []models.PointsTransaction{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if clientID == nil || f.rows[i].ClientID == *clientID {
			out = append(out, f.rows[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- consoles + pricing ---

type fakeConsoles struct {
	rows  map[int64]*models.Console
	locks int
}

func newFakeConsoles(consoles ...models.Console) *fakeConsoles {
	f := &fakeConsoles{rows: map[int64]*models.Console{}}
	for i := range consoles {
		c := consoles[i]
		f.rows[c.ID] = &c
	}
	return f
}

func (f *fakeConsoles) CreateConsole(_ context.Context, _ repositories.SQLExecutor, c *models.Console) (int64, error) {
	c.ID = int64(len(f.rows) + 1)
	cp := *c
	f.rows[c.ID] = &cp
	return c.ID, nil
}

func (f *fakeConsoles) GetConsoleByID(_ context.Context, id int64) (*models.Console, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConsoles) LockConsole(ctx context.Context, _ repositories.SQLExecutor, id int64) (*models.Console, error) {
	f.locks++
	return f.GetConsoleByID(ctx, id)
}

func (f *fakeConsoles) GetConsoles(_ context.Context, consoleType *string) ([]models.Console, error) {
	out := []models.Console{}
	for _, c := range f.rows {
		if consoleType == nil || c.ConsoleType == *consoleType {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StationNumber < out[j].StationNumber })
	return out, nil
}

func (f *fakeConsoles) UpdateConsole(_ context.Context, _ repositories.SQLExecutor, c *models.Console) error {
	if _, ok := f.rows[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeConsoles) SetConsoleState(_ context.Context, _ repositories.SQLExecutor, id int64, status string, sessionID *int64) error {
	c, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Status, c.CurrentSessionID = status, sessionID
	return nil
}

func (f *fakeConsoles) DeleteConsole(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakePricing struct {
	rows      map[int64]*models.Pricing
	deleteErr error
}

func newFakePricing(pricings ...models.Pricing) *fakePricing {
	f := &fakePricing{rows: map[int64]*models.Pricing{}}
	for i := range pricings {
		p := pricings[i]
		f.rows[p.ID] = &p
	}
	return f
}

func (f *fakePricing) CreatePricing(_ context.Context, _ repositories.SQLExecutor, p *models.Pricing) (int64, error) {
	p.ID = int64(len(f.rows) + 1)
	cp := *p
	f.rows[p.ID] = &cp
	return p.ID, nil
}

func (f *fakePricing) GetPricingByID(_ context.Context, id int64) (*models.Pricing, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePricing) GetPricings(_ context.Context, consoleType *string, activeOnly bool) ([]models.Pricing, error) {
	out := []models.Pricing{}
	for _, p := range f.rows {
		if (consoleType == nil || p.ConsoleType == *consoleType) && (!activeOnly || p.IsActive) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePricing) GetFirstActive(ctx context.Context, consoleType, priceType string) (*models.Pricing, error) {
	all, _ := f.GetPricings(ctx, &consoleType, true)
	for _, p := range all {
		if p.PriceType == priceType {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePricing) UpdatePricing(_ context.Context, _ repositories.SQLExecutor, p *models.Pricing) error {
	if _, ok := f.rows[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePricing) DeletePricing(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- sessions ---

type fakeSessions struct {
	rows         map[int64]*models.GamingSession
	consumptions []models.SessionConsumption
	consoles     *fakeConsoles
}

func newFakeSessions(consoles *fakeConsoles) *fakeSessions {
	return &fakeSessions{rows: map[int64]*models.GamingSession{}, consoles: consoles}
}

func (f *fakeSessions) CreateSession(_ context.Context, _ repositories.SQLExecutor, s *models.GamingSession) (int64, error) {
	s.ID = int64(len(f.rows) + 1)
	s.Status = models.SessionActive
	if c, ok := f.consoles.rows[s.ConsoleID]; ok {
		s.ConsoleType = &c.ConsoleType
		s.ConsoleName = &c.Name
	}
	cp := *s
	f.rows[s.ID] = &cp
	return s.ID, nil
}

func (f *fakeSessions) GetSessionByID(_ context.Context, id int64) (*models.GamingSession, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) LockSession(ctx context.Context, _ repositories.SQLExecutor, id int64) (*models.GamingSession, error) {
	return f.GetSessionByID(ctx, id)
}

func (f *fakeSessions) GetActiveSessions(context.Context) ([]models.GamingSession, error) {
	out := []models.GamingSession{}
	for _, s := range f.rows {
		if s.Status == models.SessionActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessions) GetSessions(context.Context, models.SessionFilters) ([]models.GamingSession, int, error) {
	out := []models.GamingSession{}
	for _, s := range f.rows {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeSessions) UpdateProgress(_ context.Context, _ repositories.SQLExecutor, id int64, games, extensions int) error {
	s, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.GamesPlayed, s.ExtraTimeMinutes = games, extensions
	return nil
}

func (f *fakeSessions) CompleteSession(_ context.Context, _ repositories.SQLExecutor, s *models.GamingSession) error {
	existing, ok := f.rows[s.ID]
	if !ok || existing.Status != models.SessionActive {
		return repositories.ErrNotFound
	}
	s.Status = models.SessionCompleted
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSessions) AddConsumption(_ context.Context, _ repositories.SQLExecutor, c *models.SessionConsumption) (int64, error) {
	c.ID = int64(len(f.consumptions) + 1)
	f.consumptions = append(f.consumptions, *c)
	return c.ID, nil
}

func (f *fakeSessions) GetConsumptions(_ context.Context, _ repositories.SQLExecutor, sessionID int64) ([]models.SessionConsumption, error) {
	out := []models.SessionConsumption{}
	for _, c := range f.consumptions {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSessions) DeleteConsumption(_ context.Context, _ repositories.SQLExecutor, sessionID, consumptionID int64) error {
	for i, c := range f.consumptions {
		if c.ID == consumptionID && c.SessionID == sessionID {
			f.consumptions = append(f.consumptions[:i], f.consumptions[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// --- products, movements, sales ---

type fakeProducts struct {
	rows map[int64]*models.Product
	// deleteErr is returned by DeleteProduct when set.
	deleteErr error
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	f := &fakeProducts{rows: map[int64]*models.Product{}}
	for i := range products {
		p := products[i]
		f.rows[p.ID] = &p
	}
	return f
}

func (f *fakeProducts) CreateProduct(_ context.Context, _ repositories.SQLExecutor, p *models.Product) (int64, error) {
	p.ID = int64(len(f.rows) + 1)
	cp := *p
	cp.StockQuantity = 0
	f.rows[p.ID] = &cp
	return p.ID, nil
}

func (f *fakeProducts) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) LockProduct(ctx context.Context, _ repositories.SQLExecutor, id int64) (*models.Product, error) {
	return f.GetProductByID(ctx, id)
}

func (f *fakeProducts) GetProducts(_ context.Context, filters models.ProductFilters) ([]models.Product, int, error) {
	out := []models.Product{}
	for _, p := range f.rows {
		if filters.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeProducts) GetLowStock(context.Context) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.rows {
		if p.StockQuantity <= p.LowStockThreshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetCategories(context.Context) ([]string, error) {
	return []string{}, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, _ repositories.SQLExecutor, p *models.Product) error {
	existing, ok := f.rows[p.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stock := existing.StockQuantity
	cp := *p
	cp.StockQuantity = stock
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProducts) AdjustStock(_ context.Context, _ repositories.SQLExecutor, id int64, delta int) (int, int, error) {
	p, ok := f.rows[id]
	if !ok {
		return 0, 0, repositories.ErrNotFound
	}
	next := p.StockQuantity + delta
	if next < 0 {
		next = 0
	}
	applied := next - p.StockQuantity
	p.StockQuantity = next
	return next, applied, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeMovements struct {
	rows []models.StockMovement
}

func (f *fakeMovements) CreateMovement(_ context.Context, _ repositories.SQLExecutor, m *models.StockMovement) (int64, error) {
	m.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *m)
	return m.ID, nil
}

func (f *fakeMovements) GetMovements(context.Context, *int64, *string, int, int) ([]models.StockMovement, int, error) {
	return f.rows, len(f.rows), nil
}

func (f *fakeMovements) NetChange(_ context.Context, _ repositories.SQLExecutor, referenceType string, referenceID, productID int64) (int, error) {
	net := 0
	for _, m := range f.rows {
		if m.ProductID != productID || m.ReferenceType == nil || m.ReferenceID == nil {
			continue
		}
		if *m.ReferenceType == referenceType && *m.ReferenceID == referenceID {
			net += m.QuantityChanged
		}
	}
	return net, nil
}

type fakeSales struct {
	rows map[int64]*models.Sale
	next int64
}

func newFakeSales() *fakeSales {
	return &fakeSales{rows: map[int64]*models.Sale{}}
}

func (f *fakeSales) CreateSale(_ context.Context, _ repositories.SQLExecutor, s *models.Sale) (int64, error) {
	f.next++
	s.ID = f.next
	cp := *s
	f.rows[s.ID] = &cp
	return s.ID, nil
}

func (f *fakeSales) GetSaleByID(_ context.Context, id int64) (*models.Sale, error) {
	s, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSales) GetSales(context.Context, models.SaleFilters) ([]models.Sale, int, error) {
	out := []models.Sale{}
	for _, s := range f.rows {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeSales) DeleteSale(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- settings ---

type fakeSettings struct {
	rows map[string]json.RawMessage
}

func (f *fakeSettings) GetAll(context.Context) ([]models.StoreSetting, error) {
	out := []models.StoreSetting{}
	for k, v := range f.rows {
		out = append(out, models.StoreSetting{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeSettings) Upsert(_ context.Context, key string, value json.RawMessage, updatedBy *int64) (*models.StoreSetting, error) {
	if f.rows == nil {
		f.rows = map[string]json.RawMessage{}
	}
	f.rows[key] = value
	return &models.StoreSetting{Key: key, Value: value, UpdatedBy: updatedBy}, nil
}

func (f *fakeSettings) Delete(_ context.Context, key string) error {
	if _, ok := f.rows[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, key)
	return nil
}

// --- notifier ---

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	last  any
	err   error
	block bool
}

func (f *fakeNotifier) record(ctx context.Context, kind string, p any) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, kind)
	f.last = p
	return f.err
}

func (f *fakeNotifier) BookingConfirmation(ctx context.Context, p notify.BookingConfirmation) error {
	return f.record(ctx, notify.KindBookingConfirmation, p)
}

func (f *fakeNotifier) ContactForm(ctx context.Context, p notify.ContactForm) error {
	return f.record(ctx, notify.KindContactForm, p)
}

func (f *fakeNotifier) ServiceRequest(ctx context.Context, p notify.ServiceRequest) error {
	return f.record(ctx, notify.KindServiceRequest, p)
}

func (f *fakeNotifier) SessionReceipt(ctx context.Context, p notify.SessionReceipt) error {
	return f.record(ctx, notify.KindSessionReceipt, p)
}

func (f *fakeNotifier) StaffInvitation(ctx context.Context, p notify.StaffInvitation) error {
	return f.record(ctx, notify.KindStaffInvitation, p)
}

func (f *fakeNotifier) PasswordReset(ctx context.Context, p notify.PasswordReset) error {
	return f.record(ctx, notify.KindPasswordReset, p)
}

func (f *fakeNotifier) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func syncAsync(f func()) { f() }
