package loyalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Program is a tenant's loyalty configuration
type Program struct {
	ID                uuid.UUID
	TenantID          uuid.UUID
	PointsPerCurrency decimal.Decimal
	// MaxPointsPerOrder caps earned points; zero means no cap
	MaxPointsPerOrder int
	// PointValue is the currency value of one redeemed point
	PointValue        decimal.Decimal
	MinRedeemPoints   int
	SilverThreshold   decimal.Decimal
	GoldThreshold     decimal.Decimal
	PlatinumThreshold decimal.Decimal
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PointsFor returns floor(total * pointsPerCurrency) capped by MaxPointsPerOrder
func (p *Program) PointsFor(total decimal.Decimal) int {
	if !p.IsActive || !total.IsPositive() {
		return 0
	}
	points := int(total.Mul(p.PointsPerCurrency).Floor().IntPart())
	if p.MaxPointsPerOrder > 0 && points > p.MaxPointsPerOrder {
		points = p.MaxPointsPerOrder
	}
	if points < 0 {
		return 0
	}
	return points
}

// ValueOf converts redeemed points to a discount amount
func (p *Program) ValueOf(points int) decimal.Decimal {
	return valueobject.RoundMoney(p.PointValue.Mul(decimal.NewFromInt(int64(points))))
}

// TierFor maps lifetime spend to a tier
func (p *Program) TierFor(totalSpent decimal.Decimal) Tier {
	switch {
	case p.PlatinumThreshold.IsPositive() && totalSpent.GreaterThanOrEqual(p.PlatinumThreshold):
		return TierPlatinum
	case p.GoldThreshold.IsPositive() && totalSpent.GreaterThanOrEqual(p.GoldThreshold):
		return TierGold
	case p.SilverThreshold.IsPositive() && totalSpent.GreaterThanOrEqual(p.SilverThreshold):
		return TierSilver
	}
	return TierBronze
}
