package resolver

import (
	"math/big"
	"strings"

	"github.com/samber/lo"

	"launchScope/internal/identity"
	"launchScope/internal/model"
)

// Later stages overwrite a field only when they carry a value; absent values never clear earlier ones.

// applyHandleRecord reports whether the record carried any field at all.
func applyHandleRecord(p *model.CreatorProfile, rec *identity.HandleRecord) bool {
	set := []bool{
		setString(&p.Handle, rec.HandleName()),
		setString(&p.DisplayName, rec.DisplayName),
		setString(&p.Avatar, rec.Avatar),
		setString(&p.Socials.Twitter, rec.TwitterHandle),
		setInt(&p.FollowerCount, rec.FollowerCount),
		setInt(&p.TwitterFollowers, rec.TwitterFollowers),
		setInt(&p.TotalHolders, rec.HolderCount),
		setBig(&p.TicketPrice, rec.KeyPrice),
		setBig(&p.TradingVolume, rec.Volume),
	}
	return lo.Contains(set, true)
}

func applySocialUser(p *model.CreatorProfile, u *identity.SocialUser) {
	setString(&p.Handle, u.Handle)
	setString(&p.DisplayName, u.DisplayName)
	setString(&p.Bio, u.Bio)
	setString(&p.Avatar, u.Avatar)
	setString(&p.Socials.Twitter, u.TwitterHandle)
	setString(&p.Socials.Telegram, u.Telegram)
	setString(&p.Socials.Website, u.Website)
	if u.Verified != nil {
		v := *u.Verified
		p.Verified = &v
	}
	setInt(&p.FollowerCount, u.FollowerCount)
	setInt(&p.TwitterFollowers, u.TwitterFollowers)
	setInt(&p.FollowingCount, u.FollowingCount)
	setInt(&p.ActivityCount, u.ThreadCount)
	if u.CreatedOn != nil && !u.CreatedOn.IsZero() {
		t := u.CreatedOn.UTC()
		p.JoinedAt = &t
	}
	setBig(&p.TicketPrice, u.KeyPrice)
}

// applyStats always recomputes badge-derived fields from this payload.
func applyStats(p *model.CreatorProfile, s *identity.SocialStats) {
	setInt(&p.TotalHolders, s.TotalHolders)
	setBig(&p.TicketPrice, s.KeyPrice)
	setBig(&p.TradingVolume, s.Volume)
	setInt(&p.Supply, s.Supply)

	p.Badges = s.ModelBadges()
	if p.Badges == nil {
		p.Badges = []model.Badge{}
	}
	p.IsChampion = model.HasChampionBadge(p.Badges)
}

func setString(dst **string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	*dst = &v
	return true
}

func setInt(dst **int64, v identity.FlexInt) bool {
	p := v.Ptr()
	if p == nil {
		return false
	}
	*dst = p
	return true
}

func setBig(dst **big.Int, v identity.FlexBig) bool {
	p := v.Ptr()
	if p == nil {
		return false
	}
	*dst = p
	return true
}

