package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/exporter"
	"bizpulse/internal/services"
	"bizpulse/pkg/contracts/domain"
)

// DashboardHandler serves the dashboard views, the month selector, the raw
// record snapshot, and the series exports.
type DashboardHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dashboard/{view}", h.GetView)
	r.Get("/months", h.GetMonths)
	r.Get("/records", h.GetRecords)
	r.Post("/records", h.ReplaceRecords)
	r.Get("/export/{view}.{format}", h.ExportView)

	return r
}

// customRangeRequest is the custom date window of a view request.
type customRangeRequest struct {
	Start string `validate:"required"`
	End   string `validate:"required"`
}

// rangeQuery extracts and validates the filter parameters.
func (h *DashboardHandler) rangeQuery(r *http.Request) (services.RangeQuery, error) {
	q := services.RangeQuery{
		Month: r.URL.Query().Get("month"),
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}

	if q.Start != "" || q.End != "" {
		req := customRangeRequest{Start: q.Start, End: q.End}
		if err := h.validate.Struct(req); err != nil {
			return q, apierrors.ErrValidation("range", "both start and end are required for a custom range")
		}
	}
	return q, nil
}

// GetView handles GET /dashboard/{view}.
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	q, err := h.rangeQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.View(chi.URLParam(r, "view"), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetMonths handles GET /months.
func (h *DashboardHandler) GetMonths(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.MonthOptions(),
	})
}

// GetRecords handles GET /records.
func (h *DashboardHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	records, updatedAt := h.service.Records()
	if records == nil {
		records = []domain.BalanceRecord{}
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"clientData":   records,
			"record_count": len(records),
			"updated_at":   updatedAt,
		},
	})
}

// ReplaceRecords handles POST /records: the manual upload path. The body is
// either a bare array of loose records or the standard envelope.
func (h *DashboardHandler) ReplaceRecords(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "failed to read request body"))
		return
	}

	loose, err := decodeLooseRecords(body)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "expected a JSON record array or envelope"))
		return
	}

	records := make([]domain.BalanceRecord, 0, len(loose))
	for _, fields := range loose {
		records = append(records, domain.RecordFromMap(fields))
	}

	h.service.ReplaceRecords(records)
	h.logger.InfoContext(r.Context(), "records replaced via upload",
		slog.Int("record_count", len(records)))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"record_count": len(records),
		},
	})
}

// decodeLooseRecords accepts either the standard envelope or a bare array
// of loose records.
func decodeLooseRecords(body []byte) ([]map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var loose []map[string]interface{}
		if err := json.Unmarshal(trimmed, &loose); err != nil {
			return nil, err
		}
		return loose, nil
	}

	var payload struct {
		Data struct {
			ClientData []map[string]interface{} `json:"clientData"`
		} `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, err
	}
	return payload.Data.ClientData, nil
}

// ExportView handles GET /export/{view}.{format}.
func (h *DashboardHandler) ExportView(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	format := chi.URLParam(r, "format")

	q, err := h.rangeQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sections, err := h.sectionsFor(view, q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", view, time.Now().Format("2006-01-02"), format)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		err = exporter.WriteCSV(w, sections, exporter.CSVOptions{BOMPrefix: true})
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		err = exporter.WriteXLSX(w, sections)
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "supported formats are csv and xlsx"))
		return
	}

	if err != nil {
		// Headers are already written; log instead of rendering a problem.
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("view", view),
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

// sectionsFor assembles the exportable sections of a view.
func (h *DashboardHandler) sectionsFor(view string, q services.RangeQuery) ([]exporter.Section, error) {
	switch view {
	case services.ViewFinancial:
		v, err := h.service.Financial(q)
		if err != nil {
			return nil, err
		}
		return []exporter.Section{
			{Title: "Revenue vs Expenses", Series: v.RevenueExpense},
			{Title: "Monthly Trend", Series: v.MonthlyTrend},
			{Title: "Budget Allocation", Series: v.BudgetAllocation},
		}, nil
	case services.ViewAccounting:
		v, err := h.service.Accounting(q)
		if err != nil {
			return nil, err
		}
		return []exporter.Section{
			{Title: "Assets vs Liabilities", Series: v.AssetsLiabilities},
			{Title: "Cash Flow", Series: v.CashFlow},
			exporter.LedgerSection("Ledger", v.Ledger),
		}, nil
	case services.ViewEngineering:
		v, err := h.service.Engineering(q)
		if err != nil {
			return nil, err
		}
		return []exporter.Section{
			{Title: "Progress", Series: v.Progress},
			{Title: "Issues and Tasks", Series: v.IssueTask},
		}, nil
	case services.ViewCommercial:
		v, err := h.service.Commercial(q)
		if err != nil {
			return nil, err
		}
		return []exporter.Section{
			{Title: "Sales", Series: v.Sales},
			{Title: "Sales Trend", Series: v.SalesTrend},
			{Title: "Customer Distribution", Series: v.Distribution},
		}, nil
	default:
		return nil, apierrors.ErrViewNotFound
	}
}
