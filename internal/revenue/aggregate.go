package revenue

import (
	"fmt"
	"strings"
)

// DateLayout is the format of a selected date
const DateLayout = "2006-01-02"

// Summary is what the revenue widget shows for one date
type Summary struct {
	Date           string   `json:"date"`
	Total          float64  `json:"total"`
	FormattedTotal string   `json:"formatted_total"`
	Records        []Record `json:"records"`
}

// FilterByDate keeps the records whose timestamp starts with date
func FilterByDate(records []Record, date string) []Record {
	filtered := make([]Record, 0)
	for _, r := range records {
		if strings.HasPrefix(r.Date, date) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Sum adds up revenue with plain float accumulation
func Sum(records []Record) float64 {
	var total float64
	for _, r := range records {
		total += r.Revenue
	}
	return total
}

// FormatTotal renders an amount with two decimal places
func FormatTotal(total float64) string {
	return fmt.Sprintf("%.2f", total)
}

// Summarize filters records to date and totals them. One chart bar per kept record.
func Summarize(date string, records []Record) Summary {
	filtered := FilterByDate(records, date)
	total := Sum(filtered)
	return Summary{
		Date:           date,
		Total:          total,
		FormattedTotal: FormatTotal(total),
		Records:        filtered,
	}
}

// Empty is the zero state shown when data could not be loaded
func Empty(date string) Summary {
	return Summarize(date, nil)
}
