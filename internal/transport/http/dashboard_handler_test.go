package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/dataprocessing"
	apierrors "bizpulse/internal/errors"
	"bizpulse/internal/services"
	"bizpulse/pkg/contracts/domain"
)

func newTestHandler(t *testing.T, records []domain.BalanceRecord) *DashboardHandler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	agg := dataprocessing.NewAggregator(logger, dataprocessing.DefaultAggregatorConfig())
	service := services.NewDashboardService(agg, 12, logger)
	if records != nil {
		service.ReplaceRecords(records)
	}
	return NewDashboardHandler(service, logger, apierrors.NewErrorHandler(logger, false))
}

func testRecords() []domain.BalanceRecord {
	return []domain.BalanceRecord{
		{Date: "01/01/2025", TotalReceivable: 1000, TotalPayable: 400, DailyBalance: 600},
		{Date: "15/01/2025", TotalReceivable: 2000, TotalPayable: 600, DailyBalance: 1400},
	}
}

func doRequest(h *DashboardHandler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestGetView(t *testing.T) {
	h := newTestHandler(t, testRecords())

	t.Run("financial view", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/dashboard/financial?start=01/01/2025&end=31/01/2025", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status string                 `json:"status"`
			Data   map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.EqualValues(t, 2, resp.Data["record_count"])
		assert.EqualValues(t, 3000, resp.Data["total_revenue"])
	})

	t.Run("all views answer", func(t *testing.T) {
		for _, view := range []string{"financial", "accounting", "engineering", "commercial"} {
			rec := doRequest(h, http.MethodGet, "/dashboard/"+view, nil)
			assert.Equal(t, http.StatusOK, rec.Code, view)
		}
	})

	t.Run("unknown view is 404 problem", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/dashboard/payroll", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "json")
	})

	t.Run("incomplete custom range is 400", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/dashboard/financial?start=01/01/2025", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid month option is 400", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/dashboard/financial?month=nonsense", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetMonths(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := doRequest(h, http.MethodGet, "/months", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.MonthOption `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 13)
	assert.Equal(t, "current", resp.Data[0].Value)
}

func TestGetRecords(t *testing.T) {
	t.Run("empty snapshot yields empty array", func(t *testing.T) {
		h := newTestHandler(t, nil)
		rec := doRequest(h, http.MethodGet, "/records", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"clientData":[]`)
	})

	t.Run("snapshot round-trips field names", func(t *testing.T) {
		h := newTestHandler(t, testRecords())
		rec := doRequest(h, http.MethodGet, "/records", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"DATA":"01/01/2025"`)
		assert.Contains(t, rec.Body.String(), `"record_count":2`)
	})
}

func TestReplaceRecords(t *testing.T) {
	t.Run("bare array accepted", func(t *testing.T) {
		h := newTestHandler(t, nil)
		body := bytes.NewBufferString(`[{"DATA":"01/01/2025","TOTAL_RECEBER":"1,000.50"}]`)

		rec := doRequest(h, http.MethodPost, "/records", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"record_count":1`)

		records, _ := h.service.Records()
		require.Len(t, records, 1)
		assert.Equal(t, 1000.50, records[0].TotalReceivable)
	})

	t.Run("envelope accepted", func(t *testing.T) {
		h := newTestHandler(t, nil)
		body := bytes.NewBufferString(`{"data":{"clientData":[{"DATA":"01/01/2025"},{"DATA":"02/01/2025"}]}}`)

		rec := doRequest(h, http.MethodPost, "/records", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 2, h.service.RecordCount())
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		h := newTestHandler(t, nil)
		rec := doRequest(h, http.MethodPost, "/records", bytes.NewBufferString(`{nope`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportView(t *testing.T) {
	h := newTestHandler(t, testRecords())

	t.Run("csv export", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/export/financial.csv", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "financial-")

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "\xef\xbb\xbf"), "expected UTF-8 BOM")
		assert.Contains(t, body, "Revenue vs Expenses")
	})

	t.Run("xlsx export", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/export/commercial.xlsx", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("unsupported format is 400", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/export/financial.pdf", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown view is 404", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/export/payroll.csv", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
