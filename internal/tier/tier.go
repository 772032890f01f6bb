package tier

import (
	"math/big"

	"github.com/shopspring/decimal"

	"launchScope/internal/model"
)

// Tier drives notification routing.
type Tier string

const (
	Champion    Tier = "champion"
	HeavyHitter Tier = "heavy-hitter"
	Regular     Tier = "regular"
)

const (
	// HeavyFollowerThreshold is the minimum follower count of a heavy hitter.
	HeavyFollowerThreshold int64 = 5000
	// NativeDecimals is the precision of ticket prices.
	NativeDecimals int32 = 18
)

// HeavyTicketPrice is the minimum ticket price, in whole native units, of a heavy hitter.
var HeavyTicketPrice = decimal.RequireFromString("1.5")

// Classify tiers a creator. It returns false when tiering does not apply:
// first-time creators and creators without a profile are never tiered.
func Classify(profile *model.CreatorProfile, contractsCreated int) (Tier, bool) {
	if contractsCreated <= 1 || profile == nil {
		return "", false
	}
	if profile.IsChampion {
		return Champion, true
	}
	if profile.FollowerCount != nil && *profile.FollowerCount >= HeavyFollowerThreshold {
		return HeavyHitter, true
	}
	if price := TicketPrice(profile.TicketPrice); price.GreaterThanOrEqual(HeavyTicketPrice) {
		return HeavyHitter, true
	}
	return Regular, true
}

// TicketPrice converts a smallest-unit price to whole native units. Nil is zero.
func TicketPrice(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -NativeDecimals)
}
