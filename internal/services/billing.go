package services

import (
	"math"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/pkg/utils"
)

// BillInput is everything needed to price one gaming session.
type BillInput struct {
	Pricing     models.Pricing
	Start       time.Time
	End         time.Time
	GamesPlayed int
	Extensions  int
	IsFreeGame  bool
	Config      models.StoreConfig
}

// Bill is the priced outcome of a session.
type Bill struct {
	DurationMinutes int
	BilledHours     int
	FreeGames       int
	PaidGames       int
	BaseAmount      float64
	ExtraAmount     float64
	TotalAmount     float64
	PointsEarned    int
}

// CalculateBill prices a session. Hourly sessions bill every started hour;
// per-game sessions bill paid games plus paid extensions.
func CalculateBill(in BillInput) Bill {
	var b Bill
	elapsed := in.End.Sub(in.Start)
	if elapsed < 0 {
		elapsed = 0
	}
	b.DurationMinutes = int(elapsed / time.Minute)

	if in.IsFreeGame {
		return b
	}

	switch in.Pricing.PriceType {
	case models.PricePerGame:
		games := in.GamesPlayed
		if games < 0 {
			games = 0
		}
		threshold := in.Config.FreeGameThreshold
		if in.Config.FreeGamesEnabled && threshold > 0 && games >= threshold+1 {
			b.FreeGames = games / (threshold + 1)
		}
		b.PaidGames = games - b.FreeGames
		b.BaseAmount = utils.RoundMoney(float64(b.PaidGames) * in.Pricing.Price)
		if in.Extensions > 0 {
			b.ExtraAmount = utils.RoundMoney(float64(in.Extensions) * in.Pricing.ExtraTimePrice)
		}
		b.TotalAmount = utils.RoundMoney(b.BaseAmount + b.ExtraAmount)
		if in.Config.PointsEnabled {
			per := in.Pricing.PointsEarned
			if per == 0 {
				per = 1
			}
			b.PointsEarned = b.PaidGames * per
		}
	default:
		b.BilledHours = int(math.Ceil(elapsed.Hours()))
		b.BaseAmount = utils.RoundMoney(float64(b.BilledHours) * in.Pricing.Price)
		b.TotalAmount = b.BaseAmount
		if in.Config.PointsEnabled {
			rate := in.Config.PointsPerDT
			if rate <= 0 {
				rate = 1
			}
			b.PointsEarned = int(math.Floor(b.TotalAmount * rate))
		}
	}
	return b
}
