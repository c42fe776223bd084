package commissionservice

import (
	"github.com/mubahood/dtehm-insurance-api-sub001/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Schedule holds the payout percentages for the seller and each upline generation, nearest first.
type Schedule struct {
	Seller decimal.Decimal
	Levels [domain.UplineDepth]decimal.Decimal
}

// DefaultSchedule pays 10% to the seller and 12.3% spread over ten generations.
var DefaultSchedule = Schedule{
	Seller: decimal.NewFromInt(10),
	Levels: [domain.UplineDepth]decimal.Decimal{
		decimal.RequireFromString("3"),
		decimal.RequireFromString("2.5"),
		decimal.RequireFromString("2"),
		decimal.RequireFromString("1.5"),
		decimal.RequireFromString("1"),
		decimal.RequireFromString("0.8"),
		decimal.RequireFromString("0.6"),
		decimal.RequireFromString("0.4"),
		decimal.RequireFromString("0.3"),
		decimal.RequireFromString("0.2"),
	},
}

func share(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred).Round(2)
}

// Split computes the payouts for subtotal. Generations missing from upline get nothing and
// their share is not handed to anyone else. Every share is rounded to cents on its own and the
// total is the sum of the rounded shares.
func Split(subtotal decimal.Decimal, upline domain.Upline, schedule Schedule) domain.Commission {
	c := domain.Commission{Seller: share(subtotal, schedule.Seller)}
	c.Total = c.Seller
	for k, userID := range upline {
		if userID == 0 {
			continue
		}
		amount := share(subtotal, schedule.Levels[k])
		c.Levels[k] = domain.LevelShare{UserID: userID, Amount: amount}
		c.Total = c.Total.Add(amount)
	}
	return c
}
