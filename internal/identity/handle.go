package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"launchScope/internal/adapter"
)

// HandleRecord is the address lookup record of the handle service.
type HandleRecord struct {
	Handle           string  `json:"handle"`
	UserName         string  `json:"userName"`
	DisplayName      string  `json:"displayName"`
	Avatar           string  `json:"avatar"`
	TwitterHandle    string  `json:"twitterHandle"`
	FollowerCount    FlexInt `json:"followerCount"`
	TwitterFollowers FlexInt `json:"twitterFollowers"`
	KeyPrice         FlexBig `json:"keyPrice"`
	HolderCount      FlexInt `json:"holderCount"`
	Volume           FlexBig `json:"volume"`
}

// HandleName returns the handle, falling back to the user name.
func (r *HandleRecord) HandleName() string {
	if r.Handle != "" {
		return r.Handle
	}
	return r.UserName
}

type handleResponse struct {
	User *HandleRecord `json:"user"`
}

// HandleClient looks up a handle by wallet address.
type HandleClient struct {
	http    *adapter.HTTPClient
	baseURL string
}

func NewHandleClient(httpClient *adapter.HTTPClient, baseURL string) *HandleClient {
	return &HandleClient{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// LookupByAddress returns the record for an address, or adapter.ErrNotFound when none exists.
func (c *HandleClient) LookupByAddress(ctx context.Context, address string) (*HandleRecord, error) {
	endpoint := fmt.Sprintf("%s/users/by-address/%s", c.baseURL, url.PathEscape(strings.ToLower(address)))

	var resp handleResponse
	if err := c.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, adapter.ErrNotFound
	}
	return resp.User, nil
}
