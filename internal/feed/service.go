// Package feed implements the aggregation pipeline: concurrent
// provider fan-out, deterministic merge, ranking, and envelope
// assembly.
package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/david/govfeed/internal/ai"
	"github.com/david/govfeed/internal/models"
	"github.com/david/govfeed/internal/providers"
	"github.com/google/uuid"
)

// Service aggregates provider pages into one ranked feed. GetFeed
// never fails: a broken or rate-limited upstream degrades content
// quality, never request availability.
type Service struct {
	Registry *providers.Registry
	Ranker   *ai.Ranker
}

func NewService(registry *providers.Registry, ranker *ai.Ranker) *Service {
	return &Service{Registry: registry, Ranker: ranker}
}

// GetFeed runs the full pipeline for one page request. Providers are
// paged upstream, so the assembler performs no further slicing: the
// envelope carries every item the active providers returned for this
// page.
func (s *Service) GetFeed(ctx context.Context, profile models.UserProfile, activeIDs []string, limit, page int) models.FeedEnvelope {
	if limit < 1 || limit > providers.MaxPageSize {
		limit = providers.MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	reqID := uuid.New().String()[:8]
	start := time.Now()

	results := s.Gather(ctx, activeIDs, profile.Keywords, limit, page)
	items, sourceCounts, hasMore := Merge(s.Registry.Order(), results)

	ranked := s.Ranker.Rank(ctx, items, profile)
	if ranked == nil {
		ranked = []models.Opportunity{}
	}

	log.Printf("[Feed %s] page=%d providers=%d items=%d has_more=%t in %s",
		reqID, page, len(results), len(ranked), hasMore, time.Since(start).Round(time.Millisecond))

	return models.FeedEnvelope{
		Items:        ranked,
		Total:        len(ranked),
		HasMore:      hasMore,
		Page:         page,
		SourceCounts: sourceCounts,
		Profile:      profile,
	}
}

// Gather issues one page-request per active provider concurrently.
// Each call is isolated: a panic inside an adapter becomes that
// provider's zero-item result and never delays or cancels the
// others. All calls are joined before returning, so total latency is
// the slowest single provider, not the sum.
func (s *Service) Gather(ctx context.Context, activeIDs []string, keywords string, limit, page int) map[string]models.ProviderPageResult {
	type task struct {
		id       string
		provider providers.Provider
	}

	var tasks []task
	for _, id := range activeIDs {
		p, ok := s.Registry.Lookup(id)
		if !ok {
			log.Printf("[Feed] unknown provider %q requested — skipping", id)
			continue
		}
		tasks = append(tasks, task{id: id, provider: p})
	}

	results := make([]models.ProviderPageResult, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Feed] provider %s panicked: %v", t.id, r)
					results[i] = models.ProviderPageResult{Items: []models.Opportunity{}}
				}
			}()
			results[i] = t.provider.Fetch(ctx, keywords, limit, page)
		}(i, t)
	}
	wg.Wait()

	out := make(map[string]models.ProviderPageResult, len(tasks))
	for i, t := range tasks {
		out[t.id] = results[i]
	}
	return out
}

// Merge concatenates provider pages in the fixed registry order so
// output is reproducible regardless of which network call finished
// first. HasMore is the logical OR across providers; an empty result
// set yields false.
func Merge(order []string, results map[string]models.ProviderPageResult) ([]models.Opportunity, map[string]int, bool) {
	items := []models.Opportunity{}
	sourceCounts := make(map[string]int, len(results))
	hasMore := false

	for _, id := range order {
		res, ok := results[id]
		if !ok {
			continue
		}
		items = append(items, res.Items...)
		sourceCounts[id] = res.TotalOnPage
		hasMore = hasMore || res.HasMore
	}
	return items, sourceCounts, hasMore
}
