package analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

// SummaryWindow is how far back Summarize looks.
const SummaryWindow = 30 * 24 * time.Hour

// Summary describes the jobs logged inside the summary window.
type Summary struct {
	HasJobs       bool         `json:"-"`
	TotalJobs     int          `json:"total_jobs"`
	TotalRevenue  float64      `json:"total_revenue"`
	RevenueByType []NamedValue `json:"revenue_by_type"`
	JobsBySource  []NamedValue `json:"jobs_by_source"`
}

// Summarize reduces jobs dated within the 30 days before now. Jobs are
// compared by calendar date in UTC.
func Summarize(jobs []domain.Job, now time.Time) Summary {
	s := Summary{HasJobs: len(jobs) > 0, RevenueByType: []NamedValue{}, JobsBySource: []NamedValue{}}
	if !s.HasJobs {
		return s
	}

	cutoff := now.UTC().Add(-SummaryWindow).Truncate(24 * time.Hour)
	recent := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		d, err := time.Parse(domain.DateLayout, j.Date)
		if err != nil || d.Before(cutoff) {
			continue
		}
		recent = append(recent, j)
	}

	total := decimal.Zero
	for _, j := range recent {
		total = total.Add(decimal.NewFromFloat(j.Value))
	}
	agg := Aggregate(recent)

	s.TotalJobs = len(recent)
	s.TotalRevenue = total.InexactFloat64()
	s.RevenueByType = agg.RevenueByType
	s.JobsBySource = agg.CountBySource
	return s
}

// Text renders the summary for inclusion in a model prompt.
func (s Summary) Text() string {
	if !s.HasJobs {
		return "No job data available."
	}
	if s.TotalJobs == 0 {
		return "No jobs logged in the last 30 days."
	}

	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString("**Recent Job Summary (Last 30 Days):**\n")
	p.Fprintf(&b, "Total Jobs: %d\n", s.TotalJobs)
	p.Fprintf(&b, "Total Revenue: $%.2f\n", s.TotalRevenue)
	b.WriteString("Revenue by Job Type:\n")
	for _, t := range s.RevenueByType {
		p.Fprintf(&b, "- %s: $%.2f\n", t.Name, t.Value)
	}
	b.WriteString("Jobs by Lead Source:")
	for _, src := range s.JobsBySource {
		p.Fprintf(&b, "\n- %s: %d jobs", src.Name, int64(src.Value))
	}
	return b.String()
}
