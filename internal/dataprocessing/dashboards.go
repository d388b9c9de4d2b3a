package dataprocessing

import (
	"fmt"
	"math"

	"bizpulse/pkg/contracts/domain"
)

// Per-view derivations. Every method tolerates missing fields (coerced to
// zero at ingestion) and returns empty series for empty input; none of them
// can produce NaN or Inf.

// RevenueExpense derives one point per record with the receivable and
// payable totals.
func (a *Aggregator) RevenueExpense(records []domain.BalanceRecord, monthScoped bool) domain.MetricSeries {
	series := make(domain.MetricSeries, 0, len(records))
	for i, rec := range records {
		series = append(series, domain.NewMetricPoint(
			a.labelFor(rec, i, monthScoped, "Entry"),
			map[string]float64{
				"Revenue":  rec.TotalReceivable,
				"Expenses": rec.TotalPayable,
			},
		))
	}
	return series
}

// MonthlyTrend derives one point per record carrying profit alongside the
// revenue and expense totals.
func (a *Aggregator) MonthlyTrend(records []domain.BalanceRecord, monthScoped bool) domain.MetricSeries {
	series := make(domain.MetricSeries, 0, len(records))
	for i, rec := range records {
		series = append(series, domain.NewMetricPoint(
			a.labelFor(rec, i, monthScoped, "Day"),
			map[string]float64{
				"Profit":   rec.DailyBalance,
				"Revenue":  rec.TotalReceivable,
				"Expenses": rec.TotalPayable,
			},
		))
	}
	return series
}

// BudgetAllocation derives the proportion-chart totals: summed receivables,
// summed payables, and the daily-balance sum clipped to non-negative.
// Entries that are not strictly positive are dropped so the chart never
// renders zero slices.
func (a *Aggregator) BudgetAllocation(records []domain.BalanceRecord) domain.MetricSeries {
	totalRevenue := sumBy(records, func(r domain.BalanceRecord) float64 { return r.TotalReceivable })
	totalExpenses := sumBy(records, func(r domain.BalanceRecord) float64 { return r.TotalPayable })
	totalProfit := math.Max(0, sumBy(records, func(r domain.BalanceRecord) float64 { return r.DailyBalance }))

	candidates := []struct {
		name  string
		value float64
	}{
		{"Revenue", totalRevenue},
		{"Expenses", totalExpenses},
		{"Profit", totalProfit},
	}

	series := make(domain.MetricSeries, 0, len(candidates))
	for _, c := range candidates {
		if c.value > 0 {
			series = append(series, domain.NewMetricPoint(c.name, map[string]float64{"value": c.value}))
		}
	}
	return series
}

// AssetsLiabilities maps the accounting view's per-record asset and
// liability totals.
func (a *Aggregator) AssetsLiabilities(records []domain.BalanceRecord, monthScoped bool) domain.MetricSeries {
	series := make(domain.MetricSeries, 0, len(records))
	for i, rec := range records {
		series = append(series, domain.NewMetricPoint(
			a.labelFor(rec, i, monthScoped, "Entry"),
			map[string]float64{
				"Assets":      rec.TotalReceivable,
				"Liabilities": rec.TotalPayable,
			},
		))
	}
	return series
}

// CashFlow maps the per-record daily balance.
func (a *Aggregator) CashFlow(records []domain.BalanceRecord, monthScoped bool) domain.MetricSeries {
	series := make(domain.MetricSeries, 0, len(records))
	for i, rec := range records {
		series = append(series, domain.NewMetricPoint(
			a.labelFor(rec, i, monthScoped, "Day"),
			map[string]float64{"CashFlow": rec.DailyBalance},
		))
	}
	return series
}

// LedgerEntries types each record's daily balance as a Credit or Debit line.
func (a *Aggregator) LedgerEntries(records []domain.BalanceRecord, monthScoped bool) []domain.LedgerEntry {
	entries := make([]domain.LedgerEntry, 0, len(records))
	for i, rec := range records {
		kind := domain.LedgerCredit
		if rec.DailyBalance < 0 {
			kind = domain.LedgerDebit
		}
		entries = append(entries, domain.LedgerEntry{
			Name:   a.labelFor(rec, i, monthScoped, "Entry"),
			Amount: rec.DailyBalance,
			Type:   kind,
		})
	}
	return entries
}

// ProgressSeries expresses each record's accumulated balance as a percentage
// of the maximum accumulated balance across the set, on the first
// MaxTrendPoints chronological records. A set with no positive accumulated
// balance yields all-zero progress rather than dividing by zero.
func (a *Aggregator) ProgressSeries(records []domain.BalanceRecord) domain.MetricSeries {
	sorted := sortChronological(records)

	var maxAccumulated float64
	for _, rec := range sorted {
		if rec.AccumulatedBalance > maxAccumulated {
			maxAccumulated = rec.AccumulatedBalance
		}
	}

	limit := a.maxTrendPoints
	if len(sorted) < limit {
		limit = len(sorted)
	}

	series := make(domain.MetricSeries, 0, limit)
	for i := 0; i < limit; i++ {
		rec := sorted[i]
		series = append(series, domain.NewMetricPoint(
			weekLabel(i),
			map[string]float64{
				"Progress": percentOf(rec.AccumulatedBalance, maxAccumulated),
				"Tasks":    scaleDown(rec.TotalReceivable+rec.TotalPayable, a.scale.SalesThousands),
			},
		))
	}
	return series
}

// IssueTaskSeries derives the engineering view's issue/task proxy counts
// from whole-set sums of the financial operations. The divisors are
// placeholder business rules preserved from the original dashboards.
func (a *Aggregator) IssueTaskSeries(records []domain.BalanceRecord) domain.MetricSeries {
	vpOperations := sumBy(records, func(r domain.BalanceRecord) float64 { return r.ReceivableVP + r.PayableVP })
	tgnOperations := sumBy(records, func(r domain.BalanceRecord) float64 { return r.ReceivableTGN + r.PayableTGN })
	dailyVariance := sumBy(records, func(r domain.BalanceRecord) float64 { return math.Abs(r.DailyBalance) })
	accumulatedGrowth := sumBy(records, func(r domain.BalanceRecord) float64 { return r.AccumulatedBalance })

	return domain.MetricSeries{
		domain.NewMetricPoint("VP Operations", map[string]float64{
			"Issues": scaleDown(vpOperations, a.scale.OperationsIssueDiv),
			"Tasks":  scaleDown(vpOperations, a.scale.OperationsTaskDiv),
		}),
		domain.NewMetricPoint("TGN Operations", map[string]float64{
			"Issues": scaleDown(tgnOperations, a.scale.OperationsIssueDiv),
			"Tasks":  scaleDown(tgnOperations, a.scale.OperationsTaskDiv),
		}),
		domain.NewMetricPoint("Daily Monitoring", map[string]float64{
			"Issues": scaleDown(dailyVariance, a.scale.VarianceIssueDiv),
			"Tasks":  scaleDown(dailyVariance, a.scale.VarianceTaskDiv),
		}),
		domain.NewMetricPoint("Growth Analysis", map[string]float64{
			"Issues": scaleDown(accumulatedGrowth, a.scale.GrowthIssueDiv),
			"Tasks":  scaleDown(accumulatedGrowth, a.scale.GrowthTaskDiv),
		}),
	}
}

// SystemUptime reports the share of records with at least 80% of their
// numeric fields populated, as a rounded percentage. Empty input yields 0.
func (a *Aggregator) SystemUptime(records []domain.BalanceRecord) int {
	if len(records) == 0 {
		return 0
	}
	threshold := int(math.Ceil(float64(domain.NumericFieldCount) * 0.8))
	complete := 0
	for _, rec := range records {
		populated := 0
		for _, v := range rec.NumericFields() {
			if v != 0 {
				populated++
			}
		}
		if populated >= threshold {
			complete++
		}
	}
	return int(percentOf(float64(complete), float64(len(records))))
}

// SalesSeries derives the commercial view's revenue-stream sums, scaled to
// thousands (ten thousands for the accumulated total) for bar display.
func (a *Aggregator) SalesSeries(records []domain.BalanceRecord) domain.MetricSeries {
	vpRevenue := sumBy(records, func(r domain.BalanceRecord) float64 { return r.ReceivableVP })
	tgnRevenue := sumBy(records, func(r domain.BalanceRecord) float64 { return r.ReceivableTGN })
	totalReceivable := sumBy(records, func(r domain.BalanceRecord) float64 { return r.TotalReceivable })
	dailySales := sumBy(records, func(r domain.BalanceRecord) float64 { return math.Abs(r.DailyBalance) })
	accumulatedSales := sumBy(records, func(r domain.BalanceRecord) float64 { return r.AccumulatedBalance })

	return domain.MetricSeries{
		domain.NewMetricPoint("VP Revenue", map[string]float64{"Sales": roundDiv(vpRevenue, a.scale.SalesThousands)}),
		domain.NewMetricPoint("TGN Revenue", map[string]float64{"Sales": roundDiv(tgnRevenue, a.scale.SalesThousands)}),
		domain.NewMetricPoint("Daily Operations", map[string]float64{"Sales": roundDiv(dailySales, a.scale.SalesThousands)}),
		domain.NewMetricPoint("Accumulated Growth", map[string]float64{"Sales": roundDiv(accumulatedSales, a.scale.SalesTenThousands)}),
		domain.NewMetricPoint("Total Receivables", map[string]float64{"Sales": roundDiv(totalReceivable, a.scale.SalesThousands)}),
	}
}

// CustomerDistribution buckets records by transaction pattern and normalizes
// the counts to percentages of the total, with a residual Others bucket so
// the pie always sums to roughly 100. No bucket can go negative.
func (a *Aggregator) CustomerDistribution(records []domain.BalanceRecord) domain.MetricSeries {
	vp := countBy(records, func(r domain.BalanceRecord) bool { return r.ReceivableVP > 0 })
	tgn := countBy(records, func(r domain.BalanceRecord) bool { return r.ReceivableTGN > 0 })
	highValue := countBy(records, func(r domain.BalanceRecord) bool {
		return math.Abs(r.DailyBalance) > a.scale.HighValueThreshold
	})

	total := vp + tgn + highValue
	if total < 1 {
		total = 1
	}

	vpPct := percentOf(float64(vp), float64(total))
	tgnPct := percentOf(float64(tgn), float64(total))
	highPct := percentOf(float64(highValue), float64(total))
	others := math.Max(0, 100-percentOf(float64(vp+tgn+highValue), float64(total)))

	return domain.MetricSeries{
		domain.NewMetricPoint("VP Clients", map[string]float64{"value": vpPct}),
		domain.NewMetricPoint("TGN Clients", map[string]float64{"value": tgnPct}),
		domain.NewMetricPoint("High Value", map[string]float64{"value": highPct}),
		domain.NewMetricPoint("Others", map[string]float64{"value": others}),
	}
}

// SalesTrend maps the first MaxTrendPoints chronological records to their
// receivable totals in thousands.
func (a *Aggregator) SalesTrend(records []domain.BalanceRecord, monthScoped bool) domain.MetricSeries {
	sorted := sortChronological(records)

	limit := a.maxTrendPoints
	if len(sorted) < limit {
		limit = len(sorted)
	}

	series := make(domain.MetricSeries, 0, limit)
	for i := 0; i < limit; i++ {
		rec := sorted[i]
		series = append(series, domain.NewMetricPoint(
			a.labelFor(rec, i, monthScoped, "Day"),
			map[string]float64{"Sales": roundDiv(rec.TotalReceivable, a.scale.SalesThousands)},
		))
	}
	return series
}

func weekLabel(index int) string {
	return fmt.Sprintf("Week %d", index+1)
}
