package model

import (
	"slices"
	"time"
)

// ExtractedEntity is the company and years a question is about.
// Company may be empty when the question names no company.
type ExtractedEntity struct {
	Company string `json:"company"`
	Years   []int  `json:"years"`
}

// Resolved reports whether a company name was found.
func (e ExtractedEntity) Resolved() bool {
	return e.Company != ""
}

// NormalizeYears sorts years ascending and removes duplicates and
// anything that is not a four-digit year.
func NormalizeYears(years []int) []int {
	out := make([]int, 0, len(years))
	for _, y := range years {
		if y < 1000 || y > 9999 {
			continue
		}
		out = append(out, y)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// RecentReportingYears returns the n most recent completed fiscal years
// relative to now, oldest first. Annual reports for year Y are filed in
// Y+1, so the latest available year is now.Year()-1.
func RecentReportingYears(now time.Time, n int) []int {
	if n <= 0 {
		return nil
	}
	latest := now.Year() - 1
	years := make([]int, n)
	for i := range years {
		years[i] = latest - (n - 1) + i
	}
	return years
}
