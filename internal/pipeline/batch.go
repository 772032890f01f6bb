package pipeline

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"launchScope/internal/model"
)

// Pending is a recorded creation whose creator qualifies for enrichment.
type Pending struct {
	Event            model.ClassifiedEvent
	ContractsCreated int
}

// CompleteBatch resolves the creators of all pending creations in bounded groups, then
// tiers and dispatches each creation in order.
func (e *Enricher) CompleteBatch(ctx context.Context, pending []Pending) []Outcome {
	if len(pending) == 0 {
		return nil
	}

	var profiles map[string]*model.CreatorProfile
	if e.resolver != nil {
		addresses := lo.Map(pending, func(p Pending, _ int) string { return p.Event.CreatorAddress() })
		profiles = e.resolver.ResolveMany(ctx, addresses)
	}

	outcomes := make([]Outcome, 0, len(pending))
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		profile := profiles[strings.ToLower(p.Event.CreatorAddress())]
		outcomes = append(outcomes, e.Complete(ctx, p.Event, p.ContractsCreated, profile))
	}
	return outcomes
}
