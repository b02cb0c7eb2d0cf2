package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrSessionNotFound   = errors.New("gaming session not found")
	ErrSessionNotActive  = errors.New("gaming session is not active")
	ErrSessionValidation = errors.New("gaming session validation error")
)

type StartSessionRequest struct {
	ConsoleID  int64   `json:"console_id" binding:"required"`
	ClientID   *int64  `json:"client_id"`
	PricingID  *int64  `json:"pricing_id"`
	IsFreeGame bool    `json:"is_free_game"`
	Notes      *string `json:"notes"`
}

type UpdateProgressRequest struct {
	GamesPlayed *int `json:"games_played"`
	Extensions  *int `json:"extensions"`
}

type AddConsumptionRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type EndSessionRequest struct {
	ClientID      *int64  `json:"client_id"`
	PaymentMethod string  `json:"payment_method"`
	PointsUsed    int     `json:"points_used"`
	Notes         *string `json:"notes"`
}

type SessionService interface {
	StartSession(ctx context.Context, req StartSessionRequest, staffID *int64) (*models.GamingSession, error)
	UpdateProgress(ctx context.Context, id int64, req UpdateProgressRequest) (*models.GamingSession, error)
	AddConsumption(ctx context.Context, sessionID int64, req AddConsumptionRequest) (*models.SessionConsumption, error)
	ListConsumptions(ctx context.Context, sessionID int64) ([]models.SessionConsumption, error)
	RemoveConsumption(ctx context.Context, sessionID, consumptionID int64) error
	EndSession(ctx context.Context, id int64, req EndSessionRequest, staffID *int64) (*models.SessionReceipt, error)
	ActiveSessions(ctx context.Context) ([]models.GamingSession, error)
	TodaySessions(ctx context.Context) ([]models.GamingSession, int, error)
	GetSession(ctx context.Context, id int64) (*models.GamingSession, error)
	ListSessions(ctx context.Context, filters models.SessionFilters) ([]models.GamingSession, int, error)
}

// SessionDeps groups the collaborators of the session service.
type SessionDeps struct {
	Sessions  repositories.SessionRepository
	Consoles  repositories.ConsoleRepository
	Pricing   repositories.PricingRepository
	Products  repositories.ProductRepository
	Movements repositories.StockMovementRepository
	Sales     repositories.SaleRepository
	Clients   repositories.ClientRepository
	Points    repositories.PointsRepository
	Tx        repositories.TxRunner
	DB        repositories.SQLExecutor
	Config    ConfigProvider
	Notifier  notify.Notifier
	Cache     *cache.Cache
}

type sessionService struct {
	SessionDeps
	stock  *stockKeeper
	ledger *ledger
	now    func() time.Time
	// async runs post-commit side effects.
	async func(func())
}

func NewSessionService(deps SessionDeps) SessionService {
	return &sessionService{
		SessionDeps: deps,
		stock:       &stockKeeper{products: deps.Products, movements: deps.Movements},
		ledger:      &ledger{clients: deps.Clients, points: deps.Points},
		now:         time.Now,
		async:       func(f func()) { go f() },
	}
}

// resolvePricing picks the tariff for a new session: the requested one,
// then the console default, then the store default for the console type,
// then the first active hourly tariff.
func (s *sessionService) resolvePricing(ctx context.Context, console *models.Console, requested *int64, cfg models.StoreConfig) (*models.Pricing, error) {
	if requested != nil {
		p, err := s.Pricing.GetPricingByID(ctx, *requested)
		if err != nil {
			return nil, wrapNotFound(err, ErrPricingNotFound)
		}
		if p.ConsoleType != console.ConsoleType {
			return nil, ErrPricingMismatch
		}
		return p, nil
	}

	for _, id := range []*int64{console.DefaultPricingID, cfg.DefaultPricingFor(console.ConsoleType)} {
		if id == nil {
			continue
		}
		p, err := s.Pricing.GetPricingByID(ctx, *id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if p.IsActive && p.ConsoleType == console.ConsoleType {
			return p, nil
		}
	}

	p, err := s.Pricing.GetFirstActive(ctx, console.ConsoleType, models.PriceHourly)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active pricing for %s", ErrPricingNotFound, console.ConsoleType)
		}
		return nil, err
	}
	return p, nil
}

func (s *sessionService) StartSession(ctx context.Context, req StartSessionRequest, staffID *int64) (*models.GamingSession, error) {
	console, err := s.Consoles.GetConsoleByID(ctx, req.ConsoleID)
	if err != nil {
		return nil, wrapNotFound(err, ErrConsoleNotFound)
	}
	if console.Status != models.ConsoleAvailable {
		return nil, ErrConsoleNotAvailable
	}
	if req.ClientID != nil {
		if _, err := s.Clients.GetClientByID(ctx, *req.ClientID); err != nil {
			return nil, wrapNotFound(err, ErrClientNotFound)
		}
	}

	cfg, err := s.Config.StoreConfig(ctx)
	if err != nil {
		return nil, err
	}
	pricing, err := s.resolvePricing(ctx, console, req.PricingID, cfg)
	if err != nil {
		return nil, err
	}

	session := &models.GamingSession{
		ConsoleID:     console.ID,
		ClientID:      req.ClientID,
		PricingID:     &pricing.ID,
		SessionType:   pricing.PriceType,
		StartTime:     s.now(),
		IsFreeGame:    req.IsFreeGame,
		PaymentMethod: models.PaymentCash,
		StaffID:       staffID,
		Notes:         req.Notes,
	}

	err = s.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.Consoles.LockConsole(ctx, exec, console.ID)
		if err != nil {
			return wrapNotFound(err, ErrConsoleNotFound)
		}
		if locked.Status != models.ConsoleAvailable {
			return ErrConsoleNotAvailable
		}
		if _, err := s.Sessions.CreateSession(ctx, exec, session); err != nil {
			return err
		}
		return s.Consoles.SetConsoleState(ctx, exec, console.ID, models.ConsoleInUse, &session.ID)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, tableConsoles)

	utils.LogInfo("gaming session started", map[string]interface{}{
		"session_id": session.ID, "console_id": console.ID, "pricing_id": pricing.ID,
	})
	return s.Sessions.GetSessionByID(ctx, session.ID)
}

func (s *sessionService) activeSession(ctx context.Context, id int64) (*models.GamingSession, error) {
	session, err := s.Sessions.GetSessionByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrSessionNotFound)
	}
	if session.Status != models.SessionActive {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

func (s *sessionService) UpdateProgress(ctx context.Context, id int64, req UpdateProgressRequest) (*models.GamingSession, error) {
	err := s.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.Sessions.LockSession(ctx, exec, id)
		if err != nil {
			return wrapNotFound(err, ErrSessionNotFound)
		}
		if session.Status != models.SessionActive {
			return ErrSessionNotActive
		}
		games, extensions := session.GamesPlayed, session.ExtraTimeMinutes
		if req.GamesPlayed != nil {
			games = *req.GamesPlayed
		}
		if req.Extensions != nil {
			extensions = *req.Extensions
		}
		if games < 0 || extensions < 0 {
			return fmt.Errorf("%w: counters cannot be negative", ErrSessionValidation)
		}
		return s.Sessions.UpdateProgress(ctx, exec, id, games, extensions)
	})
	if err != nil {
		return nil, err
	}
	return s.Sessions.GetSessionByID(ctx, id)
}

func (s *sessionService) AddConsumption(ctx context.Context, sessionID int64, req AddConsumptionRequest) (*models.SessionConsumption, error) {
	if _, err := s.activeSession(ctx, sessionID); err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrSessionValidation)
	}
	product, err := s.Products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, wrapNotFound(err, ErrProductNotFound)
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	c := &models.SessionConsumption{
		SessionID:   sessionID,
		ProductID:   product.ID,
		ProductName: &product.Name,
		Quantity:    qty,
		UnitPrice:   utils.RoundMoney(product.EffectivePrice()),
	}
	if _, err := s.Sessions.AddConsumption(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *sessionService) ListConsumptions(ctx context.Context, sessionID int64) ([]models.SessionConsumption, error) {
	if _, err := s.Sessions.GetSessionByID(ctx, sessionID); err != nil {
		return nil, wrapNotFound(err, ErrSessionNotFound)
	}
	return s.Sessions.GetConsumptions(ctx, s.DB, sessionID)
}

func (s *sessionService) RemoveConsumption(ctx context.Context, sessionID, consumptionID int64) error {
	if _, err := s.activeSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.Sessions.DeleteConsumption(ctx, s.DB, sessionID, consumptionID); err != nil {
		return wrapNotFound(err, ErrSessionNotFound)
	}
	return nil
}

func (s *sessionService) sessionPricing(ctx context.Context, session *models.GamingSession) (*models.Pricing, error) {
	if session.PricingID != nil {
		p, err := s.Pricing.GetPricingByID(ctx, *session.PricingID)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}
	consoleType := utils.Deref(session.ConsoleType)
	p, err := s.Pricing.GetFirstActive(ctx, consoleType, session.SessionType)
	if err != nil {
		return nil, wrapNotFound(err, ErrPricingNotFound)
	}
	return p, nil
}

// EndSession bills the session, turns consumptions into sales, frees the
// console and settles points, all in one transaction.
func (s *sessionService) EndSession(ctx context.Context, id int64, req EndSessionRequest, staffID *int64) (*models.SessionReceipt, error) {
	payment := req.PaymentMethod
	if payment == "" {
		payment = models.PaymentCash
	}
	if payment != models.PaymentCash && payment != models.PaymentPoints {
		return nil, fmt.Errorf("%w: payment method must be cash or points", ErrSessionValidation)
	}
	if req.PointsUsed < 0 {
		return nil, fmt.Errorf("%w: points used cannot be negative", ErrSessionValidation)
	}
	if payment == models.PaymentPoints && req.PointsUsed == 0 {
		return nil, fmt.Errorf("%w: paying with points needs points_used", ErrSessionValidation)
	}

	cfg, err := s.Config.StoreConfig(ctx)
	if err != nil {
		return nil, err
	}

	receipt := &models.SessionReceipt{SaleIDs: []int64{}}
	var client *models.Client

	err = s.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.Sessions.LockSession(ctx, exec, id)
		if err != nil {
			return wrapNotFound(err, ErrSessionNotFound)
		}
		if session.Status != models.SessionActive {
			return ErrSessionNotActive
		}
		if req.ClientID != nil {
			session.ClientID = req.ClientID
		}
		if req.PointsUsed > 0 && session.ClientID == nil {
			return fmt.Errorf("%w: redeeming points needs a client", ErrSessionValidation)
		}
		if session.ClientID != nil {
			client, err = s.Clients.GetClientByID(ctx, *session.ClientID)
			if err != nil {
				return wrapNotFound(err, ErrClientNotFound)
			}
		}

		pricing, err := s.sessionPricing(ctx, session)
		if err != nil {
			return err
		}
		end := s.now()
		bill := CalculateBill(BillInput{
			Pricing:     *pricing,
			Start:       session.StartTime,
			End:         end,
			GamesPlayed: session.GamesPlayed,
			Extensions:  session.ExtraTimeMinutes,
			IsFreeGame:  session.IsFreeGame,
			Config:      cfg,
		})
		if client == nil {
			bill.PointsEarned = 0
		}

		consumptions, err := s.Sessions.GetConsumptions(ctx, exec, id)
		if err != nil {
			return err
		}
		consumptionPoints := 0
		for _, c := range consumptions {
			sale := &models.Sale{
				ClientID:      session.ClientID,
				ProductID:     c.ProductID,
				Quantity:      c.Quantity,
				UnitPrice:     c.UnitPrice,
				TotalAmount:   utils.RoundMoney(c.UnitPrice * float64(c.Quantity)),
				PaymentMethod: models.PaymentCash,
				StaffID:       staffID,
				SessionID:     &session.ID,
			}
			if cfg.PointsEnabled && client != nil {
				product, err := s.Products.GetProductByID(ctx, c.ProductID)
				if err != nil {
					return wrapNotFound(err, ErrProductNotFound)
				}
				sale.PointsEarned = product.PointsEarned * c.Quantity
			}
			if err := recordSale(ctx, exec, s.Sales, s.stock, sale); err != nil {
				return err
			}
			if sale.PointsEarned > 0 {
				if _, err := s.ledger.post(ctx, exec, ledgerEntry{
					ClientID:      client.ID,
					Type:          models.PointsEarned,
					Amount:        sale.PointsEarned,
					Description:   utils.Ptr(fmt.Sprintf("Points earned on sale #%d", sale.ID)),
					ReferenceType: models.ReferenceSale,
					ReferenceID:   &sale.ID,
					StaffID:       staffID,
				}); err != nil {
					return err
				}
				consumptionPoints += sale.PointsEarned
			}
			receipt.ConsumptionsTotal += sale.TotalAmount
			receipt.SaleIDs = append(receipt.SaleIDs, sale.ID)
		}

		session.EndTime = &end
		session.PricingID = &pricing.ID
		session.BaseAmount = bill.BaseAmount
		session.ExtraAmount = bill.ExtraAmount
		session.TotalAmount = bill.TotalAmount
		session.PointsEarned = bill.PointsEarned
		session.PointsUsed = req.PointsUsed
		session.PaymentMethod = payment
		if req.Notes != nil {
			session.Notes = utils.NewNullString(*req.Notes)
		}
		if err := s.Sessions.CompleteSession(ctx, exec, session); err != nil {
			return err
		}
		if err := s.Consoles.SetConsoleState(ctx, exec, session.ConsoleID, models.ConsoleAvailable, nil); err != nil {
			return err
		}

		if client != nil {
			spent := utils.RoundMoney(bill.TotalAmount + receipt.ConsumptionsTotal)
			if err := s.Clients.AddClientTotals(ctx, exec, client.ID, spent, session.GamesPlayed); err != nil {
				return err
			}
			if bill.PointsEarned > 0 {
				if _, err := s.ledger.post(ctx, exec, ledgerEntry{
					ClientID:      client.ID,
					Type:          models.PointsEarned,
					Amount:        bill.PointsEarned,
					Description:   utils.Ptr(fmt.Sprintf("Gaming session #%d", session.ID)),
					ReferenceType: models.ReferenceSession,
					ReferenceID:   &session.ID,
					StaffID:       staffID,
				}); err != nil {
					return err
				}
			}
			if req.PointsUsed > 0 {
				if _, err := s.ledger.redeem(ctx, exec, ledgerEntry{
					ClientID:      client.ID,
					Amount:        req.PointsUsed,
					Description:   utils.Ptr(fmt.Sprintf("Points used on session #%d", session.ID)),
					ReferenceType: models.ReferenceSession,
					ReferenceID:   &session.ID,
					StaffID:       staffID,
				}); err != nil {
					return err
				}
			}
			balance, err := s.Points.SumAmounts(ctx, exec, client.ID)
			if err != nil {
				return err
			}
			receipt.ClientBalance = &balance
		}

		receipt.Session = *session
		receipt.DurationMinutes = bill.DurationMinutes
		receipt.BilledHours = bill.BilledHours
		receipt.FreeGames = bill.FreeGames
		receipt.PaidGames = bill.PaidGames
		receipt.GamingTotal = bill.TotalAmount
		receipt.ConsumptionsTotal = utils.RoundMoney(receipt.ConsumptionsTotal)
		receipt.GrandTotal = utils.RoundMoney(bill.TotalAmount + receipt.ConsumptionsTotal)
		receipt.PointsEarned = bill.PointsEarned + consumptionPoints
		receipt.PointsUsed = req.PointsUsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, tableConsoles, tableProducts)

	if client != nil && client.Email != nil {
		s.sendReceipt(*client, receipt)
	}
	return receipt, nil
}

func (s *sessionService) sendReceipt(client models.Client, receipt *models.SessionReceipt) {
	payload := notify.SessionReceipt{
		ClientName:   client.Name,
		ClientEmail:  *client.Email,
		ConsoleType:  utils.Deref(receipt.Session.ConsoleType),
		Duration:     formatDuration(receipt.DurationMinutes),
		TotalAmount:  receipt.GrandTotal,
		PointsEarned: receipt.PointsEarned,
		Date:         receipt.Session.StartTime.Format("2006-01-02"),
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.SessionReceipt(ctx, payload); err != nil {
			utils.LogWarn(err, "session receipt not sent", map[string]interface{}{"session_id": receipt.Session.ID})
		}
	})
}

func formatDuration(minutes int) string {
	return fmt.Sprintf("%dh %02dmin", minutes/60, minutes%60)
}

func (s *sessionService) ActiveSessions(ctx context.Context) ([]models.GamingSession, error) {
	return s.Sessions.GetActiveSessions(ctx)
}

func (s *sessionService) TodaySessions(ctx context.Context) ([]models.GamingSession, int, error) {
	from := startOfDay(s.now())
	to := from.AddDate(0, 0, 1)
	return s.Sessions.GetSessions(ctx, models.SessionFilters{From: &from, To: &to, PageSize: 500})
}

func (s *sessionService) GetSession(ctx context.Context, id int64) (*models.GamingSession, error) {
	session, err := s.Sessions.GetSessionByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrSessionNotFound)
	}
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, filters models.SessionFilters) ([]models.GamingSession, int, error) {
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	return s.Sessions.GetSessions(ctx, filters)
}
