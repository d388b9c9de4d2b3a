package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// BalanceRecord represents a single row of uploaded daily balance data.
// JSON tags mirror the column names of the source CSV uploads so payloads
// fetched from the upstream API bind without a translation layer.
type BalanceRecord struct {
	Date               string  `json:"DATA"`
	ReceivableVP       float64 `json:"RECEBER_VP"`
	PayableVP          float64 `json:"PAGAR_VP"`
	ReceivableTGN      float64 `json:"RECEBER_TGN"`
	PayableTGN         float64 `json:"PAGAR_TGN"`
	TotalReceivable    float64 `json:"TOTAL_RECEBER"`
	TotalPayable       float64 `json:"TOTAL_A_PAGAR"`
	DailyBalance       float64 `json:"SALDO_DIARIO"`
	AccumulatedBalance float64 `json:"SALDO_ACUMULADO"`
}

// NumericFieldCount is the number of numeric fields a complete record carries.
const NumericFieldCount = 8

// NumericFields returns the numeric field values in column order.
func (r BalanceRecord) NumericFields() []float64 {
	return []float64{
		r.ReceivableVP, r.PayableVP,
		r.ReceivableTGN, r.PayableTGN,
		r.TotalReceivable, r.TotalPayable,
		r.DailyBalance, r.AccumulatedBalance,
	}
}

// RecordFromMap builds a BalanceRecord from a loose field map, coercing
// every numeric value with a zero default. Uploads come from third-party
// CSV files of variable quality, so missing, null, or non-numeric cells
// never fail ingestion.
func RecordFromMap(fields map[string]interface{}) BalanceRecord {
	return BalanceRecord{
		Date:               coerceString(fields["DATA"]),
		ReceivableVP:       CoerceFloat(fields["RECEBER_VP"]),
		PayableVP:          CoerceFloat(fields["PAGAR_VP"]),
		ReceivableTGN:      CoerceFloat(fields["RECEBER_TGN"]),
		PayableTGN:         CoerceFloat(fields["PAGAR_TGN"]),
		TotalReceivable:    CoerceFloat(fields["TOTAL_RECEBER"]),
		TotalPayable:       CoerceFloat(fields["TOTAL_A_PAGAR"]),
		DailyBalance:       CoerceFloat(fields["SALDO_DIARIO"]),
		AccumulatedBalance: CoerceFloat(fields["SALDO_ACUMULADO"]),
	}
}

// CoerceFloat converts a loosely typed value to float64 with a zero default.
// Strings may carry thousands separators or currency prefixes.
func CoerceFloat(v interface{}) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(val)
		s = strings.TrimPrefix(s, "R$")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceString(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
