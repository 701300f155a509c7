package redisx

import (
	"fmt"
	"time"
)

const (
	// Cached monthly report: report:monthly:{tz}:{YYYY-MM}:{gen} -> JSON []MonthlyRecord
	KeyMonthlyReport = "report:monthly:%s:%s:%d"

	// Report generation, bumped on every sale in the month: report:gen:{tz}:{YYYY-MM} -> int
	KeyReportGeneration = "report:gen:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLReport = 5 * time.Minute
	TTLDedup  = 48 * time.Hour

	// must outlive any report entry, or a reset counter could reach an old entry
	TTLGeneration = 400 * 24 * time.Hour
)

func MonthlyReportKey(tz, month string, gen int64) string {
	return fmt.Sprintf(KeyMonthlyReport, tz, month, gen)
}

func ReportGenerationKey(tz, month string) string { return fmt.Sprintf(KeyReportGeneration, tz, month) }

func DedupKey(service, id string) string { return fmt.Sprintf(KeyDedup, service, id) }
