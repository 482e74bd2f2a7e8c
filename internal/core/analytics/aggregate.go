// Package analytics derives chart-ready series and prompt summaries from the
// job log. Everything here is pure: no I/O and no clock reads.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/detailiq/dashboard-system/internal/core/domain"
)

const monthKeyLayout = "2006-01"

// MonthLabelLayout renders a month key as "Jun 2024".
const MonthLabelLayout = "Jan 2006"

// MonthPoint is one entry of a monthly series.
type MonthPoint struct {
	Month string  `json:"month"`
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// NamedValue is a (name, total) pair used by the grouped breakdowns.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ChartData is the output of Aggregate.
type ChartData struct {
	RevenueSeries []MonthPoint `json:"revenue_series"`
	CountSeries   []MonthPoint `json:"count_series"`
	RevenueByType []NamedValue `json:"revenue_by_type"`
	CountBySource []NamedValue `json:"count_by_source"`
}

type monthBucket struct {
	revenue decimal.Decimal
	count   int64
}

// Aggregate groups jobs by calendar month, job type and lead source.
// Sums use exact decimal arithmetic and every group is emitted in key order,
// so any permutation of jobs yields an identical result.
func Aggregate(jobs []domain.Job) ChartData {
	out := ChartData{
		RevenueSeries: []MonthPoint{},
		CountSeries:   []MonthPoint{},
		RevenueByType: []NamedValue{},
		CountBySource: []NamedValue{},
	}
	if len(jobs) == 0 {
		return out
	}

	months := make(map[string]*monthBucket)
	byType := make(map[string]decimal.Decimal)
	bySource := make(map[string]int64)

	for _, j := range jobs {
		key := monthKey(j.Date)
		b, ok := months[key]
		if !ok {
			b = &monthBucket{revenue: decimal.Zero}
			months[key] = b
		}
		v := decimal.NewFromFloat(j.Value)
		b.revenue = b.revenue.Add(v)
		b.count++

		byType[j.Type] = byType[j.Type].Add(v)
		bySource[j.LeadSource]++
	}

	for _, key := range sortedKeys(months) {
		b := months[key]
		label := monthLabel(key)
		out.RevenueSeries = append(out.RevenueSeries, MonthPoint{Month: label, Key: key, Value: b.revenue.InexactFloat64()})
		out.CountSeries = append(out.CountSeries, MonthPoint{Month: label, Key: key, Value: float64(b.count)})
	}
	for _, name := range sortedKeys(byType) {
		out.RevenueByType = append(out.RevenueByType, NamedValue{Name: name, Value: byType[name].InexactFloat64()})
	}
	for _, name := range sortedKeys(bySource) {
		out.CountBySource = append(out.CountBySource, NamedValue{Name: name, Value: float64(bySource[name])})
	}
	return out
}

// monthKey truncates an ISO date to its YYYY-MM prefix.
func monthKey(date string) string {
	if len(date) < len(monthKeyLayout) {
		return date
	}
	return date[:len(monthKeyLayout)]
}

func monthLabel(key string) string {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format(MonthLabelLayout)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
