package sales

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{"Sale ID", "Total", "Payment Method", "Created At", "Items"}

// WriteDelimitedText writes a header line and one comma-separated line per
// record. Totals carry exactly two decimals.
func WriteDelimitedText(w io.Writer, recs []MonthlyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write([]string{
			r.ID,
			r.Total.String(),
			r.PaymentMethod,
			r.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(r.ItemCount, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ToDelimitedText(recs []MonthlyRecord) (string, error) {
	var sb strings.Builder
	if err := WriteDelimitedText(&sb, recs); err != nil {
		return "", err
	}
	return sb.String(), nil
}
