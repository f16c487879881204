package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMonthYear(t *testing.T) {
	got, err := FormatMonthYear("15/03/2025")
	require.NoError(t, err)
	assert.Equal(t, "032025", got)

	got, err = FormatMonthYear(" 01/12/2024 ")
	require.NoError(t, err)
	assert.Equal(t, "122024", got)
}

func TestFormatMonthYear_Invalid(t *testing.T) {
	for _, bad := range []string{"", "2025-03-15", "31/02/2025", "15/13/2025"} {
		_, err := FormatMonthYear(bad)
		assert.Error(t, err, "date %q", bad)
	}
}

func TestBuildFilename(t *testing.T) {
	got := BuildFilename("1173", "SUEZBIO", "032025", "FA-2025-0042")
	assert.Equal(t, "1173-SUEZBIO-032025-FA-2025-0042.pdf", got)
}

func TestBuildFilename_SanitizesInvoiceNumber(t *testing.T) {
	got := BuildFilename("1173", "SUEZ", "032025", "FA 2025/0042")
	assert.Equal(t, "1173-SUEZ-032025-FA20250042.pdf", got)
}
