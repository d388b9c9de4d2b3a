package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	t.Run("standard upload", func(t *testing.T) {
		input := strings.Join([]string{
			"DATA,RECEBER_VP,PAGAR_VP,TOTAL_RECEBER,TOTAL_A_PAGAR,SALDO_DIARIO",
			"01/01/2025,1000,400,1000,400,600",
			"02/01/2025,2000,600,2000,600,1400",
		}, "\n")

		records, err := ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "01/01/2025", records[0].Date)
		assert.Equal(t, 1000.0, records[0].ReceivableVP)
		assert.Equal(t, 400.0, records[0].PayableVP)
		assert.Equal(t, 600.0, records[0].DailyBalance)
		assert.Equal(t, 1400.0, records[1].DailyBalance)
	})

	t.Run("banner rows before header tolerated", func(t *testing.T) {
		input := strings.Join([]string{
			"Balance Report,,",
			",,",
			"DATA,TOTAL_RECEBER,TOTAL_A_PAGAR",
			"01/01/2025,100,50",
		}, "\n")

		records, err := ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 100.0, records[0].TotalReceivable)
	})

	t.Run("summary and empty rows skipped", func(t *testing.T) {
		input := strings.Join([]string{
			"DATA,TOTAL_RECEBER",
			"01/01/2025,100",
			",",
			"TOTAL,100",
		}, "\n")

		records, err := ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("currency formatting coerced", func(t *testing.T) {
		input := strings.Join([]string{
			"DATA,TOTAL_RECEBER,SALDO_DIARIO",
			`01/01/2025,"R$ 1,500.00",abc`,
		}, "\n")

		records, err := ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 1500.0, records[0].TotalReceivable)
		assert.Equal(t, 0.0, records[0].DailyBalance)
	})

	t.Run("short rows contribute zeros", func(t *testing.T) {
		input := strings.Join([]string{
			"DATA,TOTAL_RECEBER,TOTAL_A_PAGAR",
			"01/01/2025,100",
		}, "\n")

		records, err := ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 0.0, records[0].TotalPayable)
	})

	t.Run("missing date column is an error", func(t *testing.T) {
		input := "TOTAL_RECEBER,TOTAL_A_PAGAR\n100,50\n"
		_, err := ParseCSV(strings.NewReader(input))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATA")
	})

	t.Run("case insensitive header", func(t *testing.T) {
		input := "data,total_receber\n01/01/2025,100\n"
		records, err := ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 100.0, records[0].TotalReceivable)
	})
}

func TestParseFileDispatch(t *testing.T) {
	// Unknown extensions go through the CSV path; a missing file surfaces
	// the open error.
	_, err := ParseFile("does-not-exist.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
