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

var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrPointsValidation   = errors.New("points validation error")
)

type CreatePointsTransactionRequest struct {
	ClientID        int64   `json:"client_id" binding:"required"`
	TransactionType string  `json:"transaction_type" binding:"required"`
	Amount          int     `json:"amount" binding:"required"`
	Description     *string `json:"description"`
	ReferenceType   *string `json:"reference_type"`
	ReferenceID     *int64  `json:"reference_id"`
}

type RedeemPointsRequest struct {
	ClientID    int64   `json:"client_id" binding:"required"`
	Points      int     `json:"points" binding:"required"`
	Description *string `json:"description"`
}

// ReconcileResult reports the stored balance against the ledger sum.
type ReconcileResult struct {
	ClientID int64 `json:"client_id"`
	Stored   int   `json:"stored"`
	Ledger   int   `json:"ledger"`
	Drift    int   `json:"drift"`
}

type PointsService interface {
	CreateTransaction(ctx context.Context, req CreatePointsTransactionRequest, staffID *int64) (*models.PointsTransaction, error)
	Redeem(ctx context.Context, req RedeemPointsRequest, staffID *int64) (*models.PointsTransaction, error)
	History(ctx context.Context, clientID *int64, limit int) ([]models.PointsTransaction, error)
	Balance(ctx context.Context, clientID int64) (int, error)
	Reconcile(ctx context.Context, clientID int64) (*ReconcileResult, error)
}

// ledgerEntry is one signed change to a client's balance.
type ledgerEntry struct {
	ClientID      int64
	Type          string
	Amount        int
	Description   *string
	ReferenceType string
	ReferenceID   *int64
	StaffID       *int64
}

// ledger posts entries; callers own the transaction. Session and sale
// flows share it so their points land in the same commit as the rest.
type ledger struct {
	clients repositories.ClientRepository
	points  repositories.PointsRepository
}

func validateEntry(e ledgerEntry) error {
	if e.Amount == 0 {
		return fmt.Errorf("%w: amount cannot be zero", ErrPointsValidation)
	}
	switch e.Type {
	case models.PointsEarned, models.PointsBonus, models.PointsRefund:
		if e.Amount < 0 {
			return fmt.Errorf("%w: %s amount must be positive", ErrPointsValidation, e.Type)
		}
	case models.PointsSpent:
		if e.Amount > 0 {
			return fmt.Errorf("%w: spent amount must be negative", ErrPointsValidation)
		}
	case models.PointsAdjustment:
	default:
		return fmt.Errorf("%w: unknown transaction type %q", ErrPointsValidation, e.Type)
	}
	return nil
}

// post locks the client, appends the row and overwrites the stored balance.
func (l *ledger) post(ctx context.Context, exec repositories.SQLExecutor, e ledgerEntry) (*models.PointsTransaction, error) {
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	if _, err := l.clients.LockClientPoints(ctx, exec, e.ClientID); err != nil {
		return nil, wrapNotFound(err, ErrClientNotFound)
	}
	prior, err := l.points.SumAmounts(ctx, exec, e.ClientID)
	if err != nil {
		return nil, err
	}
	balance := prior + e.Amount
	if e.Amount < 0 && balance < 0 {
		return nil, fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientPoints, prior, -e.Amount)
	}
	return l.write(ctx, exec, e, balance)
}

// redeem checks the balance before anything is written, then posts a spent row.
func (l *ledger) redeem(ctx context.Context, exec repositories.SQLExecutor, e ledgerEntry) (*models.PointsTransaction, error) {
	if e.Amount <= 0 {
		return nil, fmt.Errorf("%w: points to redeem must be positive", ErrPointsValidation)
	}
	if _, err := l.clients.LockClientPoints(ctx, exec, e.ClientID); err != nil {
		return nil, wrapNotFound(err, ErrClientNotFound)
	}
	balance, err := l.points.SumAmounts(ctx, exec, e.ClientID)
	if err != nil {
		return nil, err
	}
	if balance < e.Amount {
		return nil, fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientPoints, balance, e.Amount)
	}
	e.Type = models.PointsSpent
	e.Amount = -e.Amount
	return l.write(ctx, exec, e, balance+e.Amount)
}

func (l *ledger) write(ctx context.Context, exec repositories.SQLExecutor, e ledgerEntry, balance int) (*models.PointsTransaction, error) {
	tx := &models.PointsTransaction{
		ClientID:         e.ClientID,
		TransactionType:  e.Type,
		Amount:           e.Amount,
		BalanceAfter:     balance,
		Description:      e.Description,
		ReferenceID:      e.ReferenceID,
		StaffID:          e.StaffID,
		ConfirmedByStaff: e.StaffID != nil,
	}
	if e.ReferenceType != "" {
		tx.ReferenceType = utils.Ptr(e.ReferenceType)
	}
	if _, err := l.points.CreateTransaction(ctx, exec, tx); err != nil {
		return nil, err
	}
	if err := l.clients.SetClientPoints(ctx, exec, e.ClientID, balance); err != nil {
		return nil, err
	}
	return tx, nil
}

type pointsService struct {
	ledger *ledger
	tx     repositories.TxRunner
}

func NewPointsService(clients repositories.ClientRepository, points repositories.PointsRepository, tx repositories.TxRunner) PointsService {
	return &pointsService{ledger: &ledger{clients: clients, points: points}, tx: tx}
}

func referenceOf(ref *string) string {
	if ref == nil {
		return models.ReferenceManual
	}
	r := strings.TrimSpace(*ref)
	switch r {
	case models.ReferenceSession, models.ReferenceSale, models.ReferenceOrder, models.ReferenceManual:
		return r
	}
	return models.ReferenceManual
}

func (s *pointsService) CreateTransaction(ctx context.Context, req CreatePointsTransactionRequest, staffID *int64) (*models.PointsTransaction, error) {
	if !models.IsValidPointsType(req.TransactionType) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrPointsValidation, req.TransactionType)
	}
	var out *models.PointsTransaction
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		out, err = s.ledger.post(ctx, exec, ledgerEntry{
			ClientID:      req.ClientID,
			Type:          req.TransactionType,
			Amount:        req.Amount,
			Description:   req.Description,
			ReferenceType: referenceOf(req.ReferenceType),
			ReferenceID:   req.ReferenceID,
			StaffID:       staffID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogInfo("points transaction recorded", map[string]interface{}{
		"client_id": out.ClientID, "type": out.TransactionType, "amount": out.Amount, "balance_after": out.BalanceAfter,
	})
	return out, nil
}

func (s *pointsService) Redeem(ctx context.Context, req RedeemPointsRequest, staffID *int64) (*models.PointsTransaction, error) {
	desc := req.Description
	if desc == nil {
		desc = utils.Ptr(fmt.Sprintf("Redeemed %d points", req.Points))
	}
	var out *models.PointsTransaction
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		out, err = s.ledger.redeem(ctx, exec, ledgerEntry{
			ClientID:      req.ClientID,
			Amount:        req.Points,
			Description:   desc,
			ReferenceType: models.ReferenceManual,
			StaffID:       staffID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *pointsService) History(ctx context.Context, clientID *int64, limit int) ([]models.PointsTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.ledger.points.GetTransactions(ctx, clientID, limit)
}

func (s *pointsService) Balance(ctx context.Context, clientID int64) (int, error) {
	if _, err := s.ledger.clients.GetClientByID(ctx, clientID); err != nil {
		return 0, wrapNotFound(err, ErrClientNotFound)
	}
	var balance int
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		balance, err = s.ledger.points.SumAmounts(ctx, exec, clientID)
		return err
	})
	return balance, err
}

func (s *pointsService) Reconcile(ctx context.Context, clientID int64) (*ReconcileResult, error) {
	res := &ReconcileResult{ClientID: clientID}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		stored, err := s.ledger.clients.LockClientPoints(ctx, exec, clientID)
		if err != nil {
			return wrapNotFound(err, ErrClientNotFound)
		}
		sum, err := s.ledger.points.SumAmounts(ctx, exec, clientID)
		if err != nil {
			return err
		}
		res.Stored, res.Ledger, res.Drift = stored, sum, stored-sum
		if res.Drift == 0 {
			return nil
		}
		return s.ledger.clients.SetClientPoints(ctx, exec, clientID, sum)
	})
	if err != nil {
		return nil, err
	}
	if res.Drift != 0 {
		utils.LogWarn(nil, "points balance drift corrected", map[string]interface{}{
			"client_id": clientID, "stored": res.Stored, "ledger": res.Ledger,
		})
	}
	return res, nil
}
