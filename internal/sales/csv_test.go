package sales

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-pos-sales/internal/money"
)

func TestToDelimitedText(t *testing.T) {
	recs := []MonthlyRecord{
		{ID: "s-2", Total: money.FromCents(21000), PaymentMethod: "qr", CreatedAt: time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), ItemCount: 3},
		{ID: "s-1", Total: money.FromCents(5), PaymentMethod: "cash", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ItemCount: 0},
	}

	text, err := ToDelimitedText(recs)
	require.NoError(t, err)

	assert.Equal(t, "Sale ID,Total,Payment Method,Created At,Items\n"+
		"s-2,210.00,qr,2024-03-09T08:00:00Z,3\n"+
		"s-1,0.05,cash,2024-03-01T00:00:00Z,0\n", text)
}

func TestToDelimitedText_EmptyReportHasHeader(t *testing.T) {
	text, err := ToDelimitedText(nil)
	require.NoError(t, err)
	assert.Equal(t, "Sale ID,Total,Payment Method,Created At,Items\n", text)
}

func TestToDelimitedText_QuotesFreeFormTags(t *testing.T) {
	recs := []MonthlyRecord{{ID: "s-1", Total: money.FromCents(100), PaymentMethod: "card, visa", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}}

	text, err := ToDelimitedText(recs)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "card, visa", rows[1][2])
	assert.Equal(t, "1.00", rows[1][1])
}
