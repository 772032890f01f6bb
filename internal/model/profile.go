package model

import (
	"math/big"
	"time"

	"github.com/samber/lo"
)

// ChampionBadgeType is the badge type code the social service reserves for champions.
const ChampionBadgeType = 19

// Badge is a profile badge. BadgeType is normalized to an integer when decoded.
type Badge struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	BadgeType int    `json:"badge_type"`
	Order     int    `json:"order"`
}

// Socials holds optional social links.
type Socials struct {
	Twitter  *string `json:"twitter,omitempty"`
	Telegram *string `json:"telegram,omitempty"`
	Website  *string `json:"website,omitempty"`
}

// CreatorProfile is a best-effort social profile. Nil pointers mean the value was never seen.
type CreatorProfile struct {
	Address          string     `json:"address"`
	Handle           *string    `json:"handle,omitempty"`
	DisplayName      *string    `json:"display_name,omitempty"`
	Bio              *string    `json:"bio,omitempty"`
	Avatar           *string    `json:"avatar,omitempty"`
	Socials          Socials    `json:"socials"`
	Verified         *bool      `json:"verified,omitempty"`
	FollowerCount    *int64     `json:"follower_count,omitempty"`
	TwitterFollowers *int64     `json:"twitter_followers,omitempty"`
	FollowingCount   *int64     `json:"following_count,omitempty"`
	ActivityCount    *int64     `json:"activity_count,omitempty"`
	JoinedAt         *time.Time `json:"joined_at,omitempty"`
	TicketPrice      *big.Int   `json:"ticket_price,omitempty"`
	TotalHolders     *int64     `json:"total_holders,omitempty"`
	TradingVolume    *big.Int   `json:"trading_volume,omitempty"`
	Supply           *int64     `json:"supply,omitempty"`
	Badges           []Badge    `json:"badges"`

	// IsChampion collapses unknown to false: a profile whose badges could not be read
	// is never a champion. Tiering depends on this.
	IsChampion bool `json:"is_champion"`
}

// HasChampionBadge reports whether any badge carries the champion type code.
func HasChampionBadge(badges []Badge) bool {
	return lo.ContainsBy(badges, func(b Badge) bool {
		return b.BadgeType == ChampionBadgeType
	})
}

// HandleOrAddress returns the handle when known, otherwise the wallet address.
func (p *CreatorProfile) HandleOrAddress() string {
	if p.Handle != nil && *p.Handle != "" {
		return *p.Handle
	}
	return p.Address
}
