package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"launchScope/internal/model"
)

// ResolveMany resolves addresses in groups of BatchSize, pausing between groups.
// The result maps lowercase addresses to profiles; unresolvable addresses map to nil.
func (r *Resolver) ResolveMany(ctx context.Context, addresses []string) map[string]*model.CreatorProfile {
	keys := lo.Uniq(lo.Map(addresses, func(a string, _ int) string { return strings.ToLower(a) }))
	out := make(map[string]*model.CreatorProfile, len(keys))
	if len(keys) == 0 {
		return out
	}

	pool := pond.NewPool(r.cfg.BatchSize)
	defer pool.StopAndWait()

	var mu sync.Mutex
	chunks := lo.Chunk(keys, r.cfg.BatchSize)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}
		group := pool.NewGroup()
		for _, addr := range chunk {
			group.Submit(func() {
				profile, err := r.Resolve(ctx, addr)
				if err != nil {
					r.logger.Debug("batch resolve failed", zap.String("address", addr), zap.Error(err))
				}
				mu.Lock()
				out[addr] = profile
				mu.Unlock()
			})
		}
		_ = group.Wait()

		if i < len(chunks)-1 && r.cfg.BatchPause > 0 {
			if !sleep(ctx, r.cfg.BatchPause) {
				break
			}
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
