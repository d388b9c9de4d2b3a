package services

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"bizpulse/internal/dataprocessing"
	apperrors "bizpulse/internal/errors"
	"bizpulse/internal/infrastructure"
	"bizpulse/pkg/contracts/domain"
)

// View names accepted by the dashboard endpoints.
const (
	ViewFinancial   = "financial"
	ViewAccounting  = "accounting"
	ViewEngineering = "engineering"
	ViewCommercial  = "commercial"
)

// RangeQuery carries the raw filter parameters from a request. Month takes
// a month-option value ("current", "1month", ..., "all"); Start/End hold a
// custom range. Custom bounds win over the month selector when both are set.
type RangeQuery struct {
	Month string
	Start string
	End   string
}

// RangeEcho is returned alongside every view so the client can show which
// window the series were computed for.
type RangeEcho struct {
	Month string `json:"month,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// FinancialView bundles the series of the financial dashboard.
type FinancialView struct {
	Range            RangeEcho           `json:"range"`
	RecordCount      int                 `json:"record_count"`
	RevenueExpense   domain.MetricSeries `json:"revenue_expense"`
	MonthlyTrend     domain.MetricSeries `json:"monthly_trend"`
	BudgetAllocation domain.MetricSeries `json:"budget_allocation"`
	TotalRevenue     float64             `json:"total_revenue"`
	TotalExpenses    float64             `json:"total_expenses"`
	NetBalance       float64             `json:"net_balance"`
}

// AccountingView bundles the series of the accounting dashboard.
type AccountingView struct {
	Range             RangeEcho            `json:"range"`
	RecordCount       int                  `json:"record_count"`
	AssetsLiabilities domain.MetricSeries  `json:"assets_liabilities"`
	CashFlow          domain.MetricSeries  `json:"cash_flow"`
	Ledger            []domain.LedgerEntry `json:"ledger"`
	TotalCredits      float64              `json:"total_credits"`
	TotalDebits       float64              `json:"total_debits"`
}

// EngineeringView bundles the proxy series of the engineering dashboard.
type EngineeringView struct {
	Range        RangeEcho           `json:"range"`
	RecordCount  int                 `json:"record_count"`
	Progress     domain.MetricSeries `json:"progress"`
	IssueTask    domain.MetricSeries `json:"issue_task"`
	SystemUptime int                 `json:"system_uptime"`
	TotalIssues  float64             `json:"total_issues"`
	TotalTasks   float64             `json:"total_tasks"`
}

// CommercialView bundles the proxy series of the commercial dashboard.
type CommercialView struct {
	Range        RangeEcho           `json:"range"`
	RecordCount  int                 `json:"record_count"`
	Sales        domain.MetricSeries `json:"sales"`
	SalesTrend   domain.MetricSeries `json:"sales_trend"`
	Distribution domain.MetricSeries `json:"distribution"`
	TotalSales   float64             `json:"total_sales"`
	TopProduct   string              `json:"top_product"`
}

// DashboardService owns the current record snapshot and derives the per-view
// payloads. The snapshot is replaced wholesale and never mutated in place, so
// readers only need the lock for the slice header.
type DashboardService struct {
	logger     *slog.Logger
	aggregator *dataprocessing.Aggregator
	monthsBack int

	mu        sync.RWMutex
	records   []domain.BalanceRecord
	updatedAt time.Time
}

// NewDashboardService creates the service with an empty snapshot.
func NewDashboardService(aggregator *dataprocessing.Aggregator, monthsBack int, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if monthsBack <= 0 {
		monthsBack = 12
	}
	return &DashboardService{
		logger:     logger.With(slog.String("service", "dashboard")),
		aggregator: aggregator,
		monthsBack: monthsBack,
	}
}

// ReplaceRecords installs a new snapshot. The slice is owned by the service
// after the call.
func (s *DashboardService) ReplaceRecords(records []domain.BalanceRecord) {
	s.mu.Lock()
	s.records = records
	s.updatedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("record snapshot replaced", slog.Int("record_count", len(records)))
}

// Records returns the current snapshot and its replacement time.
func (s *DashboardService) Records() ([]domain.BalanceRecord, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.updatedAt
}

// RecordCount returns the size of the current snapshot.
func (s *DashboardService) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// MonthOptions returns the month selector menu for the current time.
func (s *DashboardService) MonthOptions() []domain.MonthOption {
	return dataprocessing.MonthOptions(time.Now(), s.monthsBack)
}

// ResolveRange turns request parameters into a concrete date range.
// monthScoped reports whether a bounded window is active, which switches the
// chart labels to day granularity. "all" or empty parameters produce the
// permissive zero range.
func (s *DashboardService) ResolveRange(q RangeQuery) (domain.DateRange, bool, error) {
	if q.Start != "" || q.End != "" {
		r, ok := dataprocessing.CustomRange(q.Start, q.End)
		if !ok {
			return domain.DateRange{}, false, apperrors.ErrInvalidDateRange
		}
		return r, true, nil
	}

	month := strings.TrimSpace(q.Month)
	if month == "" || month == "all" {
		return domain.DateRange{}, false, nil
	}

	for _, opt := range dataprocessing.MonthOptions(time.Now(), s.monthsBack) {
		if opt.Value == month {
			return opt.Range(), true, nil
		}
	}
	return domain.DateRange{}, false, apperrors.ErrInvalidDateRange
}

// filtered resolves the range and applies it to the current snapshot.
func (s *DashboardService) filtered(q RangeQuery) ([]domain.BalanceRecord, bool, error) {
	r, monthScoped, err := s.ResolveRange(q)
	if err != nil {
		return nil, false, err
	}

	records, _ := s.Records()
	return dataprocessing.FilterByRange(records, r), monthScoped, nil
}

func echo(q RangeQuery) RangeEcho {
	return RangeEcho{Month: q.Month, Start: q.Start, End: q.End}
}

// Financial builds the financial dashboard payload.
func (s *DashboardService) Financial(q RangeQuery) (*FinancialView, error) {
	records, monthScoped, err := s.filtered(q)
	if err != nil {
		return nil, err
	}

	var revenue, expenses, balance float64
	for _, rec := range records {
		revenue += rec.TotalReceivable
		expenses += rec.TotalPayable
		balance += rec.DailyBalance
	}

	return &FinancialView{
		Range:            echo(q),
		RecordCount:      len(records),
		RevenueExpense:   s.aggregator.RevenueExpense(records, monthScoped),
		MonthlyTrend:     s.aggregator.MonthlyTrend(records, monthScoped),
		BudgetAllocation: s.aggregator.BudgetAllocation(records),
		TotalRevenue:     revenue,
		TotalExpenses:    expenses,
		NetBalance:       balance,
	}, nil
}

// Accounting builds the accounting dashboard payload.
func (s *DashboardService) Accounting(q RangeQuery) (*AccountingView, error) {
	records, monthScoped, err := s.filtered(q)
	if err != nil {
		return nil, err
	}

	ledger := s.aggregator.LedgerEntries(records, monthScoped)
	var credits, debits float64
	for _, e := range ledger {
		if e.Type == domain.LedgerCredit {
			credits += e.Amount
		} else {
			debits += -e.Amount
		}
	}

	return &AccountingView{
		Range:             echo(q),
		RecordCount:       len(records),
		AssetsLiabilities: s.aggregator.AssetsLiabilities(records, monthScoped),
		CashFlow:          s.aggregator.CashFlow(records, monthScoped),
		Ledger:            ledger,
		TotalCredits:      credits,
		TotalDebits:       debits,
	}, nil
}

// Engineering builds the engineering dashboard payload.
func (s *DashboardService) Engineering(q RangeQuery) (*EngineeringView, error) {
	records, _, err := s.filtered(q)
	if err != nil {
		return nil, err
	}

	issueTask := s.aggregator.IssueTaskSeries(records)
	var issues, tasks float64
	for _, p := range issueTask {
		issues += p.Value("Issues")
		tasks += p.Value("Tasks")
	}

	return &EngineeringView{
		Range:        echo(q),
		RecordCount:  len(records),
		Progress:     s.aggregator.ProgressSeries(records),
		IssueTask:    issueTask,
		SystemUptime: s.aggregator.SystemUptime(records),
		TotalIssues:  issues,
		TotalTasks:   tasks,
	}, nil
}

// Commercial builds the commercial dashboard payload.
func (s *DashboardService) Commercial(q RangeQuery) (*CommercialView, error) {
	records, monthScoped, err := s.filtered(q)
	if err != nil {
		return nil, err
	}

	sales := s.aggregator.SalesSeries(records)
	var total float64
	top := ""
	best := 0.0
	for _, p := range sales {
		v := p.Value("Sales")
		total += v
		if v > best {
			best = v
			top = p.Name
		}
	}

	return &CommercialView{
		Range:        echo(q),
		RecordCount:  len(records),
		Sales:        sales,
		SalesTrend:   s.aggregator.SalesTrend(records, monthScoped),
		Distribution: s.aggregator.CustomerDistribution(records),
		TotalSales:   total,
		TopProduct:   top,
	}, nil
}

// View dispatches by view name. Unknown names return ErrViewNotFound.
func (s *DashboardService) View(name string, q RangeQuery) (interface{}, error) {
	switch name {
	case ViewFinancial:
		return s.Financial(q)
	case ViewAccounting:
		return s.Accounting(q)
	case ViewEngineering:
		return s.Engineering(q)
	case ViewCommercial:
		return s.Commercial(q)
	default:
		return nil, apperrors.ErrViewNotFound
	}
}
