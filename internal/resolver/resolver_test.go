package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchScope/internal/adapter"
	"launchScope/internal/identity"
	"launchScope/internal/model"
)

const wallet = "0xAbCdEf0000000000000000000000000000000001"

func testConfig() Config {
	return Config{
		TTL:       time.Minute,
		Attempts:  3,
		BatchSize: 3,
	}
}

func flex(v int64) identity.FlexInt { return identity.FlexInt{Value: v, Valid: true} }

type fakeHandles struct {
	mu      sync.Mutex
	calls   int
	records map[string]*identity.HandleRecord
	errs    []error
}

func (f *fakeHandles) LookupByAddress(_ context.Context, address string) (*identity.HandleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	rec, ok := f.records[address]
	if !ok {
		return nil, adapter.ErrNotFound
	}
	return rec, nil
}

func (f *fakeHandles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSocial struct {
	user      *identity.SocialUser
	userErr   error
	stats     *identity.SocialStats
	statsErr  error
	userCalls int
}

func (f *fakeSocial) UserByHandle(context.Context, string) (*identity.SocialUser, error) {
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.user == nil {
		return nil, adapter.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeSocial) UserStats(context.Context, string) (*identity.SocialStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	if f.stats == nil {
		return &identity.SocialStats{}, nil
	}
	return f.stats, nil
}

func TestResolveEndToEnd(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := adapter.NewHTTPClient(&http.Client{Transport: transport}, 0)

	addr := strings.ToLower(wallet)
	transport.RegisterResponder(http.MethodGet, "https://handles.test/users/by-address/"+addr,
		httpmock.NewStringResponder(200, `{"user":{"handle":"alice","displayName":"Alice","followerCount":120}}`))
	transport.RegisterResponder(http.MethodGet, "https://social.test/users/by-handle/alice",
		httpmock.NewStringResponder(200, `{"user":{"id":"u-1","handle":"alice","twitterBio":"gm","followerCount":"6000","twitterConfirmed":true}}`))
	transport.RegisterResponder(http.MethodGet, "https://social.test/users/u-1/stats",
		httpmock.NewStringResponder(200, `{"stats":{"totalHolders":42,"keyPrice":"2000000000000000000"},"badges":[{"id":"b1","userId":"u-1","badgeType":"19","order":1}]}`))

	r := New(testConfig(),
		identity.NewHandleClient(client, "https://handles.test"),
		identity.NewSocialClient(client, "https://social.test", "tok"),
		nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, addr, profile.Address)
	assert.Equal(t, "alice", *profile.Handle)
	assert.Equal(t, "Alice", *profile.DisplayName)
	assert.Equal(t, "gm", *profile.Bio)
	assert.Equal(t, int64(6000), *profile.FollowerCount)
	assert.Equal(t, int64(42), *profile.TotalHolders)
	assert.Equal(t, "2000000000000000000", profile.TicketPrice.String())
	assert.True(t, *profile.Verified)
	assert.True(t, profile.IsChampion)
	assert.Equal(t, []model.Badge{{ID: "b1", OwnerID: "u-1", BadgeType: 19, Order: 1}}, profile.Badges)

	_, err = r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, 3, transport.GetTotalCallCount())
}

func TestResolveNotFoundIsCached(t *testing.T) {
	handles := &fakeHandles{}
	social := &fakeSocial{}
	r := New(testConfig(), handles, social, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	assert.Nil(t, profile)

	profile, err = r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	assert.Nil(t, profile)

	assert.Equal(t, 1, handles.count())
	assert.Zero(t, social.userCalls)
}

func TestResolveStopsWithoutHandle(t *testing.T) {
	addr := strings.ToLower(wallet)
	handles := &fakeHandles{records: map[string]*identity.HandleRecord{
		addr: {DisplayName: "anon", FollowerCount: flex(10)},
	}}
	social := &fakeSocial{}
	r := New(testConfig(), handles, social, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Nil(t, profile.Handle)
	assert.Equal(t, "anon", *profile.DisplayName)
	assert.False(t, profile.IsChampion)
	assert.Zero(t, social.userCalls)
}

func TestResolveEmptyHandleRecordIsNoProfile(t *testing.T) {
	addr := strings.ToLower(wallet)
	handles := &fakeHandles{records: map[string]*identity.HandleRecord{
		addr: {},
	}}
	social := &fakeSocial{}
	r := New(testConfig(), handles, social, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Zero(t, social.userCalls)
}

func TestResolveExponentVolumeKeepsChampion(t *testing.T) {
	transport := httpmock.NewMockTransport()
	client := adapter.NewHTTPClient(&http.Client{Transport: transport}, 0)

	addr := strings.ToLower(wallet)
	transport.RegisterResponder(http.MethodGet, "https://handles.test/users/by-address/"+addr,
		httpmock.NewStringResponder(200, `{"user":{"handle":"bob","volume":1.5e+21}}`))
	transport.RegisterResponder(http.MethodGet, "https://social.test/users/by-handle/bob",
		httpmock.NewStringResponder(200, `{"user":{"id":"u-2","handle":"bob"}}`))
	transport.RegisterResponder(http.MethodGet, "https://social.test/users/u-2/stats",
		httpmock.NewStringResponder(200, `{"stats":{"volume":2e+21},"badges":[{"id":"b1","userId":"u-2","badgeType":19,"order":1}]}`))

	r := New(testConfig(),
		identity.NewHandleClient(client, "https://handles.test"),
		identity.NewSocialClient(client, "https://social.test", "tok"),
		nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, profile.IsChampion)
	assert.Equal(t, "2000000000000000000000", profile.TradingVolume.String())
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET https://handles.test/users/by-address/"+addr])
}

func TestResolveStatsFailureIsNotChampion(t *testing.T) {
	addr := strings.ToLower(wallet)
	handles := &fakeHandles{records: map[string]*identity.HandleRecord{addr: {Handle: "bob"}}}
	social := &fakeSocial{
		user:     &identity.SocialUser{ID: "u-2", Handle: "bob", FollowerCount: flex(7000)},
		statsErr: &adapter.StatusError{StatusCode: 403, Body: "forbidden"},
	}
	r := New(testConfig(), handles, social, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(7000), *profile.FollowerCount)
	assert.False(t, profile.IsChampion)
	assert.Nil(t, profile.Badges)
}

func TestResolveMissingUserIDIsNotChampion(t *testing.T) {
	addr := strings.ToLower(wallet)
	handles := &fakeHandles{records: map[string]*identity.HandleRecord{addr: {Handle: "carol"}}}
	social := &fakeSocial{
		user:  &identity.SocialUser{Handle: "carol"},
		stats: &identity.SocialStats{Badges: []identity.SocialBadge{{BadgeType: flex(model.ChampionBadgeType)}}},
	}
	r := New(testConfig(), handles, social, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.False(t, profile.IsChampion)
}

func TestResolveNoBadgesIsNotChampion(t *testing.T) {
	addr := strings.ToLower(wallet)
	handles := &fakeHandles{records: map[string]*identity.HandleRecord{addr: {Handle: "dan"}}}
	social := &fakeSocial{user: &identity.SocialUser{ID: "u-3"}}
	r := New(testConfig(), handles, social, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.False(t, profile.IsChampion)
	assert.Empty(t, profile.Badges)
}

func TestResolveRetriesTransientErrors(t *testing.T) {
	addr := strings.ToLower(wallet)
	transient := errors.New("connection reset")
	handles := &fakeHandles{
		records: map[string]*identity.HandleRecord{addr: {DisplayName: "eve"}},
		errs:    []error{transient, transient},
	}
	r := New(testConfig(), handles, &fakeSocial{}, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 3, handles.count())
}

func TestResolveExhaustedRetriesReturnsError(t *testing.T) {
	transient := errors.New("connection reset")
	handles := &fakeHandles{errs: []error{transient, transient, transient}}
	r := New(testConfig(), handles, &fakeSocial{}, nil, nil)

	profile, err := r.Resolve(context.Background(), wallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, transient)
	assert.Nil(t, profile)
	assert.Equal(t, 3, handles.count())

	// The failure is memoized for the TTL.
	_, err = r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, 3, handles.count())
}

func TestResolveRefetchesAfterTTL(t *testing.T) {
	addr := strings.ToLower(wallet)
	handles := &fakeHandles{records: map[string]*identity.HandleRecord{addr: {DisplayName: "fay"}}}
	cfg := testConfig()
	cfg.TTL = 40 * time.Millisecond
	r := New(cfg, handles, &fakeSocial{}, nil, nil)

	_, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, 1, handles.count())

	time.Sleep(80 * time.Millisecond)

	_, err = r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, 2, handles.count())
}

func TestForceRefreshBypassesCache(t *testing.T) {
	addr := strings.ToLower(wallet)
	handles := &fakeHandles{records: map[string]*identity.HandleRecord{addr: {DisplayName: "gus"}}}
	r := New(testConfig(), handles, &fakeSocial{}, nil, nil)

	_, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)

	handles.mu.Lock()
	handles.records[addr] = &identity.HandleRecord{DisplayName: "gus2"}
	handles.mu.Unlock()

	profile, err := r.ForceRefresh(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, "gus2", *profile.DisplayName)

	cached, err := r.Resolve(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, "gus2", *cached.DisplayName)
	assert.Equal(t, 2, handles.count())
}

type concurrencyHandles struct {
	inflight atomic.Int32
	peak     atomic.Int32
}

func (c *concurrencyHandles) LookupByAddress(_ context.Context, address string) (*identity.HandleRecord, error) {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return &identity.HandleRecord{DisplayName: address}, nil
}

func TestResolveManyBatches(t *testing.T) {
	handles := &concurrencyHandles{}
	cfg := testConfig()
	cfg.BatchPause = 5 * time.Millisecond
	r := New(cfg, handles, &fakeSocial{}, nil, nil)

	var addrs []string
	for i := 0; i < 7; i++ {
		addrs = append(addrs, fmt.Sprintf("0x%040X", i))
	}
	addrs = append(addrs, strings.ToLower(addrs[0]))

	out := r.ResolveMany(context.Background(), addrs)
	require.Len(t, out, 7)
	for _, a := range addrs {
		p, ok := out[strings.ToLower(a)]
		require.True(t, ok)
		require.NotNil(t, p)
	}
	assert.LessOrEqual(t, handles.peak.Load(), int32(3))
}
