package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  float64
	}{
		{"nil", nil, 0},
		{"float64", 12.5, 12.5},
		{"int", 42, 42},
		{"json number", json.Number("7.25"), 7.25},
		{"plain string", "100.5", 100.5},
		{"currency prefix", "R$ 1,500.00", 1500},
		{"thousands separators", "1,234,567.89", 1234567.89},
		{"negative string", "-300", -300},
		{"empty string", "", 0},
		{"whitespace", "   ", 0},
		{"garbage string", "n/a", 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceFloat(tt.input))
		})
	}
}

func TestRecordFromMap(t *testing.T) {
	t.Run("mixed value types", func(t *testing.T) {
		rec := RecordFromMap(map[string]interface{}{
			"DATA":            " 01/01/2025 ",
			"RECEBER_VP":      "1,000.00",
			"PAGAR_VP":        500.5,
			"TOTAL_RECEBER":   json.Number("1000"),
			"TOTAL_A_PAGAR":   nil,
			"SALDO_DIARIO":    "R$ 499.50",
			"SALDO_ACUMULADO": "broken",
		})

		assert.Equal(t, "01/01/2025", rec.Date)
		assert.Equal(t, 1000.0, rec.ReceivableVP)
		assert.Equal(t, 500.5, rec.PayableVP)
		assert.Equal(t, 1000.0, rec.TotalReceivable)
		assert.Equal(t, 0.0, rec.TotalPayable)
		assert.Equal(t, 499.5, rec.DailyBalance)
		assert.Equal(t, 0.0, rec.AccumulatedBalance)
	})

	t.Run("empty map yields zero record", func(t *testing.T) {
		rec := RecordFromMap(map[string]interface{}{})
		assert.Equal(t, BalanceRecord{}, rec)
	})
}

func TestBalanceRecordJSON(t *testing.T) {
	payload := []byte(`{"DATA":"01/01/2025","TOTAL_RECEBER":1000,"SALDO_DIARIO":-50}`)

	var rec BalanceRecord
	require.NoError(t, json.Unmarshal(payload, &rec))
	assert.Equal(t, "01/01/2025", rec.Date)
	assert.Equal(t, 1000.0, rec.TotalReceivable)
	assert.Equal(t, -50.0, rec.DailyBalance)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"DATA":"01/01/2025"`)
	assert.Contains(t, string(out), `"TOTAL_RECEBER":1000`)
}

func TestNumericFields(t *testing.T) {
	rec := BalanceRecord{
		ReceivableVP: 1, PayableVP: 2, ReceivableTGN: 3, PayableTGN: 4,
		TotalReceivable: 5, TotalPayable: 6, DailyBalance: 7, AccumulatedBalance: 8,
	}

	fields := rec.NumericFields()
	require.Len(t, fields, NumericFieldCount)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, fields)
}
