package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"fincoach/internal/analysis"
	"fincoach/internal/cache"
	"fincoach/internal/core"
	"fincoach/internal/store"
)

// AnalysisService runs the computation engines over stored datasets, caching
// per-dataset results. Cache keys start with the dataset ID so Invalidate can
// drop every cached view of one dataset.
type AnalysisService struct {
	store store.DatasetStore
	cache *cache.LRUCache[any]
	sites analysis.WebsiteLookup
}

func NewAnalysisService(store store.DatasetStore, c *cache.LRUCache[any], sites analysis.WebsiteLookup) *AnalysisService {
	return &AnalysisService{
		store: store,
		cache: c,
		sites: sites,
	}
}

// Aggregation returns the category aggregation for a dataset over the given
// window, excluding the named categories.
func (s *AnalysisService) Aggregation(ctx context.Context, datasetID string, window core.Window, excluded []string) (analysis.Aggregation, error) {
	key := aggregationKey(datasetID, window, excluded)
	if cached, ok := s.cacheGet(key); ok {
		return cached.(analysis.Aggregation), nil
	}

	dataset, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return analysis.Aggregation{}, err
	}

	agg := analysis.Aggregate(dataset.Transactions, window, excluded)
	s.cacheSet(key, agg)
	return agg, nil
}

// Subscriptions returns the detected recurring charges for a dataset.
func (s *AnalysisService) Subscriptions(ctx context.Context, datasetID string, threshold float64) ([]analysis.SubscriptionCandidate, error) {
	key := fmt.Sprintf("%s:subscriptions:%.3f", datasetID, threshold)
	if cached, ok := s.cacheGet(key); ok {
		return cached.([]analysis.SubscriptionCandidate), nil
	}

	dataset, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	subs := analysis.DetectSubscriptions(dataset.Transactions, threshold, s.sites)
	s.cacheSet(key, subs)
	return subs, nil
}

// Profile returns the trailing spending profile for a dataset.
func (s *AnalysisService) Profile(ctx context.Context, datasetID string) (analysis.SpendingProfile, error) {
	key := datasetID + ":profile"
	if cached, ok := s.cacheGet(key); ok {
		return cached.(analysis.SpendingProfile), nil
	}

	dataset, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return analysis.SpendingProfile{}, err
	}

	profile := analysis.Profile(dataset.Transactions)
	s.cacheSet(key, profile)
	return profile, nil
}

// SavingsGoal analyzes a savings target against a dataset's spending.
func (s *AnalysisService) SavingsGoal(ctx context.Context, datasetID string, target float64, months int) (analysis.SavingsAnalysis, error) {
	dataset, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return analysis.SavingsAnalysis{}, err
	}
	return analysis.AnalyzeSavingsGoal(target, months, dataset.Transactions)
}

// Projections simulates every horizon concurrently and returns them keyed by
// timeframe. One bad horizon fails the whole request; the input is validated
// once up front so that cannot happen mid-flight.
func (s *AnalysisService) Projections(ctx context.Context, snapshot core.WealthSnapshot, flows core.MonthlyFlows) (map[core.Timeframe]analysis.ProjectionSeries, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	results := make([]analysis.ProjectionSeries, len(core.AllTimeframes()))
	g, ctx := errgroup.WithContext(ctx)
	for i, tf := range core.AllTimeframes() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			series, err := analysis.ProjectNetWorth(snapshot, flows, tf)
			if err != nil {
				return fmt.Errorf("project %s: %w", tf, err)
			}
			results[i] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[core.Timeframe]analysis.ProjectionSeries, len(results))
	for _, series := range results {
		out[series.Timeframe] = series
	}
	return out, nil
}

// OptimizedProjections runs the reduced-spending simulation for every
// horizon. The spending profile comes from the dataset when one is named;
// without a dataset the cuts are empty and both series match.
func (s *AnalysisService) OptimizedProjections(ctx context.Context, datasetID string, snapshot core.WealthSnapshot, flows core.MonthlyFlows, cutPct float64, redirect core.ContributionStream) (map[core.Timeframe]analysis.OptimizedProjection, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	var profile analysis.SpendingProfile
	if datasetID != "" {
		var err error
		profile, err = s.Profile(ctx, datasetID)
		if err != nil {
			return nil, err
		}
	}

	results := make([]analysis.OptimizedProjection, len(core.AllTimeframes()))
	g, ctx := errgroup.WithContext(ctx)
	for i, tf := range core.AllTimeframes() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			proj, err := analysis.ProjectNetWorthOptimized(snapshot, flows, tf, cutPct, profile, redirect)
			if err != nil {
				return fmt.Errorf("optimized project %s: %w", tf, err)
			}
			results[i] = proj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[core.Timeframe]analysis.OptimizedProjection, len(results))
	for _, proj := range results {
		out[proj.Original.Timeframe] = proj
	}
	return out, nil
}

// Priorities plans the funding waterfall using the dataset's spending profile
// for discretionary income and monthly expenses.
func (s *AnalysisService) Priorities(ctx context.Context, datasetID string, profile analysis.FinancialProfile) (analysis.PriorityPlan, error) {
	spending, err := s.Profile(ctx, datasetID)
	if err != nil {
		return analysis.PriorityPlan{}, err
	}

	discretionary := spending.MonthlySavings
	if discretionary < 0 {
		discretionary = 0
	}
	return analysis.PlanPriorities(profile, discretionary, spending.MonthlyExpenses)
}

// Invalidate drops every cached result for a dataset.
func (s *AnalysisService) Invalidate(datasetID string) {
	if s.cache != nil {
		s.cache.DeletePrefix(datasetID + ":")
	}
}

func (s *AnalysisService) cacheGet(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *AnalysisService) cacheSet(key string, value any) {
	if s.cache != nil {
		s.cache.Set(key, value)
	}
}

func aggregationKey(datasetID string, window core.Window, excluded []string) string {
	ex := make([]string, 0, len(excluded))
	for _, c := range excluded {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			ex = append(ex, c)
		}
	}
	sort.Strings(ex)
	return fmt.Sprintf("%s:analysis:%s:%s", datasetID, window, strings.Join(ex, ","))
}
