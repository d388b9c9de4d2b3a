package domain

import (
	"encoding/json"
	"time"
)

// MetricPoint is a single labeled entry in a chart series. Values holds the
// named numeric fields of the point ("Revenue", "Expenses", ...). The point
// marshals flat, so a chart component consumes it directly:
//
//	{"name": "Jan 15", "Revenue": 2000, "Expenses": 600}
type MetricPoint struct {
	Name   string
	Values map[string]float64
}

// NewMetricPoint creates a point with the given label and values.
func NewMetricPoint(name string, values map[string]float64) MetricPoint {
	if values == nil {
		values = map[string]float64{}
	}
	return MetricPoint{Name: name, Values: values}
}

// Value returns the named field, zero when absent.
func (p MetricPoint) Value(field string) float64 {
	return p.Values[field]
}

// MarshalJSON flattens the point into a single JSON object.
func (p MetricPoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Values)+1)
	for k, v := range p.Values {
		out[k] = v
	}
	out["name"] = p.Name
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds a point from its flattened form.
func (p *MetricPoint) UnmarshalJSON(data []byte) error {
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Values = make(map[string]float64, len(raw))
	for k, v := range raw {
		if k == "name" {
			if s, ok := v.(string); ok {
				p.Name = s
			}
			continue
		}
		p.Values[k] = CoerceFloat(v)
	}
	return nil
}

// MetricSeries is an ordered list of points. When the series represents a
// time axis the order matches the chronological order of source records.
type MetricSeries []MetricPoint

// Ledger entry types.
const (
	LedgerCredit = "Credit"
	LedgerDebit  = "Debit"
)

// LedgerEntry is a single bookkeeping line derived from a record's
// daily balance, typed by the sign of the amount.
type LedgerEntry struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}

// DateRange is an inclusive [start, end] interval of calendar time.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// IsZero reports whether either bound is missing.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() || r.End.IsZero()
}

// Contains tests membership at time resolution, inclusive on both ends.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// MonthOption is one selectable entry in the date-range picker menu.
type MonthOption struct {
	Value string    `json:"value"`
	Label string    `json:"label"`
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Range returns the option's resolved date range.
func (o MonthOption) Range() DateRange {
	return DateRange{Start: o.Start, End: o.End}
}
