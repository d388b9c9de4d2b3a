package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"bizpulse/pkg/contracts/domain"
)

// Aggregator is the single source of truth for deriving chart-ready metric
// series from a filtered record set. It consolidates the derivation logic
// that every dashboard view shares: label derivation from the record date,
// zero-default numeric handling, and the per-view business rules in
// dashboards.go.
type Aggregator struct {
	logger         *slog.Logger
	scale          ProxyScale
	maxTrendPoints int
}

// AggregatorConfig holds configuration options for the Aggregator.
type AggregatorConfig struct {
	Scale          ProxyScale
	MaxTrendPoints int // chronological points kept in trend/progress series
}

// ProxyScale carries the fixed divisors the proxy metrics are scaled by.
// These are placeholder business rules inherited from the dashboards, not
// computed thresholds; changing them changes chart output one-for-one.
type ProxyScale struct {
	OperationsIssueDiv float64
	OperationsTaskDiv  float64
	VarianceIssueDiv   float64
	VarianceTaskDiv    float64
	GrowthIssueDiv     float64
	GrowthTaskDiv      float64
	SalesThousands     float64
	SalesTenThousands  float64
	HighValueThreshold float64
}

// DefaultProxyScale returns the divisors the original dashboards shipped with.
func DefaultProxyScale() ProxyScale {
	return ProxyScale{
		OperationsIssueDiv: 50000,
		OperationsTaskDiv:  30000,
		VarianceIssueDiv:   100000,
		VarianceTaskDiv:    60000,
		GrowthIssueDiv:     500000,
		GrowthTaskDiv:      300000,
		SalesThousands:     1000,
		SalesTenThousands:  10000,
		HighValueThreshold: 10000,
	}
}

// DefaultAggregatorConfig returns the standard aggregator configuration.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		Scale:          DefaultProxyScale(),
		MaxTrendPoints: 7,
	}
}

// NewAggregator creates an aggregator with the given configuration.
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxTrendPoints <= 0 {
		config.MaxTrendPoints = 7
	}
	if config.Scale == (ProxyScale{}) {
		config.Scale = DefaultProxyScale()
	}
	return &Aggregator{
		logger:         logger.With(slog.String("component", "aggregator")),
		scale:          config.Scale,
		maxTrendPoints: config.MaxTrendPoints,
	}
}

// labelFor derives the display label for one record. With a month/range
// filter active the records already belong to a single month, so the label
// carries day granularity ("Jan 2"); without a filter it carries year
// granularity ("Jan 2025"). Records with unparsable dates get a synthetic
// ordinal label instead.
func (a *Aggregator) labelFor(rec domain.BalanceRecord, index int, monthScoped bool, fallback string) string {
	t, ok := ParseFlexible(rec.Date)
	if !ok {
		if rec.Date != "" {
			return rec.Date
		}
		return fmt.Sprintf("%s %d", fallback, index+1)
	}
	if monthScoped {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2006")
}

// sortChronological returns a copy of records ordered ascending by parsed
// date. Records with unparsable dates sort to the end, keeping their
// relative order.
func sortChronological(records []domain.BalanceRecord) []domain.BalanceRecord {
	sorted := make([]domain.BalanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, okI := ParseFlexible(sorted[i].Date)
		tj, okJ := ParseFlexible(sorted[j].Date)
		if !okI {
			return false
		}
		if !okJ {
			return true
		}
		return ti.Before(tj)
	})
	return sorted
}

// percentOf returns round(100 * part / total), zero when the total is not
// positive. Guards every ratio in the aggregations against NaN and Inf.
func percentOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(part / total * 100)
}

func sumBy(records []domain.BalanceRecord, f func(domain.BalanceRecord) float64) float64 {
	var sum float64
	for _, rec := range records {
		sum += f(rec)
	}
	return sum
}

func countBy(records []domain.BalanceRecord, pred func(domain.BalanceRecord) bool) int {
	n := 0
	for _, rec := range records {
		if pred(rec) {
			n++
		}
	}
	return n
}

func scaleDown(value, divisor float64) float64 {
	if divisor == 0 {
		return 0
	}
	return math.Floor(value / divisor)
}

func roundDiv(value, divisor float64) float64 {
	if divisor == 0 {
		return 0
	}
	return math.Round(value / divisor)
}
