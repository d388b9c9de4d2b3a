package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/pkg/contracts/domain"
)

func sampleSections() []Section {
	return []Section{
		{
			Title: "Revenue vs Expenses",
			Series: domain.MetricSeries{
				domain.NewMetricPoint("Jan 1", map[string]float64{"Revenue": 1000, "Expenses": 400}),
				domain.NewMetricPoint("Jan 15", map[string]float64{"Revenue": 2000, "Expenses": 600}),
			},
		},
		{
			Title: "Budget",
			Series: domain.MetricSeries{
				domain.NewMetricPoint("Revenue", map[string]float64{"value": 3000}),
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	t.Run("sections with sorted columns", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleSections(), CSVOptions{}))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 6)

		assert.Equal(t, "Revenue vs Expenses,Expenses,Revenue", lines[0])
		assert.Equal(t, "Jan 1,400,1000", lines[1])
		assert.Equal(t, "Jan 15,600,2000", lines[2])
		assert.Equal(t, "", strings.TrimSpace(lines[3]))
		assert.Equal(t, "Budget,value", lines[4])
		assert.Equal(t, "Revenue,3000", lines[5])
	})

	t.Run("bom prefix", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleSections(), CSVOptions{BOMPrefix: true}))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	})

	t.Run("empty sections", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, nil, CSVOptions{}))
		assert.Zero(t, buf.Len())
	})

	t.Run("fractional values keep precision", func(t *testing.T) {
		sections := []Section{{
			Title: "S",
			Series: domain.MetricSeries{
				domain.NewMetricPoint("p", map[string]float64{"v": 10.5}),
			},
		}}
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sections, CSVOptions{}))
		assert.Contains(t, buf.String(), "p,10.5")
	})
}

func TestLedgerSection(t *testing.T) {
	entries := []domain.LedgerEntry{
		{Name: "Jan 1", Amount: 500, Type: domain.LedgerCredit},
		{Name: "Jan 2", Amount: -300, Type: domain.LedgerDebit},
	}

	section := LedgerSection("Ledger", entries)
	require.Len(t, section.Series, 2)
	assert.Equal(t, "Jan 1 (Credit)", section.Series[0].Name)
	assert.Equal(t, 500.0, section.Series[0].Value("Amount"))
	assert.Equal(t, "Jan 2 (Debit)", section.Series[1].Name)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleSections()))
	// XLSX files are zip archives.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", sheetName("", 0))
	assert.Equal(t, "Budget", sheetName("Budget", 1))
	long := strings.Repeat("x", 40)
	assert.Len(t, sheetName(long, 0), 31)
}
