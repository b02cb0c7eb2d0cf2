package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrConsoleNotFound     = errors.New("console not found")
	ErrConsoleValidation   = errors.New("console validation error")
	ErrConsoleNotAvailable = errors.New("console is not available")
	ErrConsoleInUse        = errors.New("console is in use")
	ErrConsoleExists       = errors.New("station number already taken")
)

type CreateConsoleRequest struct {
	Name             string  `json:"name" binding:"required"`
	ConsoleType      string  `json:"console_type" binding:"required"`
	StationNumber    int     `json:"station_number" binding:"required"`
	ShortcutKey      *string `json:"shortcut_key"`
	DefaultPricingID *int64  `json:"default_pricing_id"`
}

type UpdateConsoleRequest struct {
	Name             *string `json:"name"`
	ConsoleType      *string `json:"console_type"`
	Status           *string `json:"status"`
	StationNumber    *int    `json:"station_number"`
	ShortcutKey      *string `json:"shortcut_key"`
	DefaultPricingID *int64  `json:"default_pricing_id"`
}

type ConsoleService interface {
	ListConsoles(ctx context.Context, consoleType *string) ([]models.Console, error)
	GetConsole(ctx context.Context, id int64) (*models.Console, error)
	CreateConsole(ctx context.Context, req CreateConsoleRequest) (*models.Console, error)
	UpdateConsole(ctx context.Context, id int64, req UpdateConsoleRequest) (*models.Console, error)
	SetMaintenance(ctx context.Context, id int64, on bool) (*models.Console, error)
	DeleteConsole(ctx context.Context, id int64) error
	Counter(ctx context.Context) (*models.ConsoleCounter, error)
}

type consoleService struct {
	repo  repositories.ConsoleRepository
	tx    repositories.TxRunner
	db    repositories.SQLExecutor
	cache *cache.Cache
}

func NewConsoleService(repo repositories.ConsoleRepository, tx repositories.TxRunner, db repositories.SQLExecutor, c *cache.Cache) ConsoleService {
	return &consoleService{repo: repo, tx: tx, db: db, cache: c}
}

func (s *consoleService) ListConsoles(ctx context.Context, consoleType *string) ([]models.Console, error) {
	variant := "all"
	if consoleType != nil {
		if !models.IsValidConsoleType(*consoleType) {
			return nil, fmt.Errorf("%w: unknown console type %q", ErrConsoleValidation, *consoleType)
		}
		variant = *consoleType
	}
	return cache.GetOrLoad(ctx, s.cache, tableConsoles, variant, func(ctx context.Context) ([]models.Console, error) {
		return s.repo.GetConsoles(ctx, consoleType)
	})
}

func (s *consoleService) GetConsole(ctx context.Context, id int64) (*models.Console, error) {
	c, err := s.repo.GetConsoleByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrConsoleNotFound)
	}
	return c, nil
}

func (s *consoleService) CreateConsole(ctx context.Context, req CreateConsoleRequest) (*models.Console, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrConsoleValidation)
	}
	if !models.IsValidConsoleType(req.ConsoleType) {
		return nil, fmt.Errorf("%w: console type must be ps4 or ps5", ErrConsoleValidation)
	}
	if req.StationNumber <= 0 {
		return nil, fmt.Errorf("%w: station number must be positive", ErrConsoleValidation)
	}

	c := &models.Console{
		Name:             name,
		ConsoleType:      req.ConsoleType,
		Status:           models.ConsoleAvailable,
		StationNumber:    req.StationNumber,
		ShortcutKey:      req.ShortcutKey,
		DefaultPricingID: req.DefaultPricingID,
	}
	if _, err := s.repo.CreateConsole(ctx, s.db, c); err != nil {
		return nil, s.mapWrite(err)
	}
	s.cache.Invalidate(ctx, tableConsoles)
	return s.repo.GetConsoleByID(ctx, c.ID)
}

func (s *consoleService) mapWrite(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateKey):
		return ErrConsoleExists
	case errors.Is(err, repositories.ErrForeignKey):
		return fmt.Errorf("%w: default pricing does not exist", ErrConsoleValidation)
	}
	return wrapNotFound(err, ErrConsoleNotFound)
}

// UpdateConsole holds the console row lock while it checks and writes the
// status, so a session started concurrently keeps its in_use state.
func (s *consoleService) UpdateConsole(ctx context.Context, id int64, req UpdateConsoleRequest) (*models.Console, error) {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.repo.LockConsole(ctx, exec, id)
		if err != nil {
			return wrapNotFound(err, ErrConsoleNotFound)
		}
		if err := applyConsoleUpdate(c, req); err != nil {
			return err
		}
		if err := s.repo.UpdateConsole(ctx, exec, c); err != nil {
			return s.mapWrite(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tableConsoles)
	return s.repo.GetConsoleByID(ctx, id)
}

func applyConsoleUpdate(c *models.Console, req UpdateConsoleRequest) error {
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return fmt.Errorf("%w: name cannot be empty", ErrConsoleValidation)
		}
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.ConsoleType != nil {
		if !models.IsValidConsoleType(*req.ConsoleType) {
			return fmt.Errorf("%w: console type must be ps4 or ps5", ErrConsoleValidation)
		}
		c.ConsoleType = *req.ConsoleType
	}
	if req.Status != nil && *req.Status != c.Status {
		if *req.Status == models.ConsoleInUse {
			return fmt.Errorf("%w: in_use is set by starting a session", ErrConsoleValidation)
		}
		if *req.Status != models.ConsoleAvailable && *req.Status != models.ConsoleMaintenance {
			return fmt.Errorf("%w: unknown status %q", ErrConsoleValidation, *req.Status)
		}
		if c.Status == models.ConsoleInUse {
			return ErrConsoleInUse
		}
		c.Status = *req.Status
	}
	if req.StationNumber != nil {
		if *req.StationNumber <= 0 {
			return fmt.Errorf("%w: station number must be positive", ErrConsoleValidation)
		}
		c.StationNumber = *req.StationNumber
	}
	if req.ShortcutKey != nil {
		c.ShortcutKey = utils.NewNullString(*req.ShortcutKey)
	}
	if req.DefaultPricingID != nil {
		c.DefaultPricingID = req.DefaultPricingID
		if *req.DefaultPricingID == 0 {
			c.DefaultPricingID = nil
		}
	}
	return nil
}

func (s *consoleService) SetMaintenance(ctx context.Context, id int64, on bool) (*models.Console, error) {
	status := models.ConsoleAvailable
	if on {
		status = models.ConsoleMaintenance
	}
	return s.UpdateConsole(ctx, id, UpdateConsoleRequest{Status: &status})
}

func (s *consoleService) DeleteConsole(ctx context.Context, id int64) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		c, err := s.repo.LockConsole(ctx, exec, id)
		if err != nil {
			return wrapNotFound(err, ErrConsoleNotFound)
		}
		if c.Status == models.ConsoleInUse {
			return ErrConsoleInUse
		}
		if err := s.repo.DeleteConsole(ctx, exec, id); err != nil {
			if errors.Is(err, repositories.ErrForeignKey) {
				return fmt.Errorf("%w: console has session history", ErrConsoleInUse)
			}
			return wrapNotFound(err, ErrConsoleNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, tableConsoles)
	return nil
}

func (s *consoleService) Counter(ctx context.Context) (*models.ConsoleCounter, error) {
	consoles, err := s.ListConsoles(ctx, nil)
	if err != nil {
		return nil, err
	}
	counter := &models.ConsoleCounter{ByType: map[string]int{}, AvailableBy: map[string]int{}}
	for _, c := range consoles {
		counter.Total++
		counter.ByType[c.ConsoleType]++
		switch c.Status {
		case models.ConsoleAvailable:
			counter.Available++
			counter.AvailableBy[c.ConsoleType]++
		case models.ConsoleInUse:
			counter.InUse++
		case models.ConsoleMaintenance:
			counter.Maintenance++
		}
	}
	return counter, nil
}
