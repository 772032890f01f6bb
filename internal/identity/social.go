package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"launchScope/internal/adapter"
	"launchScope/internal/model"
)

// SocialUser is the social service profile of a handle.
type SocialUser struct {
	ID               string     `json:"id"`
	Handle           string     `json:"handle"`
	DisplayName      string     `json:"twitterName"`
	Bio              string     `json:"twitterBio"`
	Avatar           string     `json:"twitterPicture"`
	TwitterHandle    string     `json:"twitterHandle"`
	Telegram         string     `json:"telegram"`
	Website          string     `json:"website"`
	Verified         *bool      `json:"twitterConfirmed"`
	FollowerCount    FlexInt    `json:"followerCount"`
	TwitterFollowers FlexInt    `json:"twitterFollowers"`
	FollowingCount   FlexInt    `json:"followingsCount"`
	ThreadCount      FlexInt    `json:"threadCount"`
	CreatedOn        *time.Time `json:"createdOn"`
	KeyPrice         FlexBig    `json:"keyPrice"`
}

// SocialBadge is a badge as sent by the social service; the type code may be a number or a string.
type SocialBadge struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	BadgeType FlexInt `json:"badgeType"`
	Order     FlexInt `json:"order"`
}

// SocialStats holds the stats and badges of a user. Badges is nil when the payload had no badge array.
type SocialStats struct {
	TotalHolders FlexInt       `json:"totalHolders"`
	KeyPrice     FlexBig       `json:"keyPrice"`
	Volume       FlexBig       `json:"volume"`
	Supply       FlexInt       `json:"supply"`
	Badges       []SocialBadge `json:"-"`
}

type socialUserResponse struct {
	User *SocialUser `json:"user"`
}

type socialStatsResponse struct {
	Stats  *SocialStats  `json:"stats"`
	Badges []SocialBadge `json:"badges"`
}

// ModelBadges normalizes badges to the model, dropping entries without a type code.
func (s *SocialStats) ModelBadges() []model.Badge {
	if s.Badges == nil {
		return nil
	}
	out := make([]model.Badge, 0, len(s.Badges))
	for _, b := range s.Badges {
		if !b.BadgeType.Valid {
			continue
		}
		out = append(out, model.Badge{
			ID:        b.ID,
			OwnerID:   b.UserID,
			BadgeType: int(b.BadgeType.Value),
			Order:     int(b.Order.Value),
		})
	}
	return out
}

// SocialClient queries the social service by handle and by user id.
type SocialClient struct {
	http    *adapter.HTTPClient
	baseURL string
	token   string
}

func NewSocialClient(httpClient *adapter.HTTPClient, baseURL, token string) *SocialClient {
	return &SocialClient{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

// UserByHandle returns the user for a handle, or adapter.ErrNotFound.
func (c *SocialClient) UserByHandle(ctx context.Context, handle string) (*SocialUser, error) {
	endpoint := fmt.Sprintf("%s/users/by-handle/%s", c.baseURL, url.PathEscape(handle))

	var resp socialUserResponse
	if err := c.http.GetJSON(ctx, endpoint, adapter.BearerHeaders(c.token), &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, adapter.ErrNotFound
	}
	return resp.User, nil
}

// UserStats returns stats and badges for a user id.
func (c *SocialClient) UserStats(ctx context.Context, userID string) (*SocialStats, error) {
	endpoint := fmt.Sprintf("%s/users/%s/stats", c.baseURL, url.PathEscape(userID))

	var resp socialStatsResponse
	if err := c.http.GetJSON(ctx, endpoint, adapter.BearerHeaders(c.token), &resp); err != nil {
		return nil, err
	}
	stats := resp.Stats
	if stats == nil {
		stats = &SocialStats{}
	}
	stats.Badges = resp.Badges
	return stats, nil
}
