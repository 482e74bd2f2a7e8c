package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/detailiq/dashboard-system/internal/core/analytics"
	"github.com/detailiq/dashboard-system/internal/core/domain"
	"github.com/detailiq/dashboard-system/internal/core/ports"
)

const advisorSystemPrompt = `You are a world-class business consultant specializing in the car detailing industry. Your analysis must be sharp, proactive, and data-driven. Your primary goal is to help the user increase profitability and efficiency.
- Use Your Tools: You have access to a knowledge base. When a user asks a question, first check the knowledge base to see if a relevant article exists.
- Correlate Data: Proactively look for connections. Specifically compare Marketing Spend to Jobs by Lead Source to evaluate marketing effectiveness.
- Analyze Profitability: Use the Detailed Job Data Summary to identify the most profitable job types and effective lead sources.
- Be Actionable: Always provide clear, actionable recommendations.
Structure your responses in Markdown. Base your analysis on the most recent data provided in the prompt.`

// contextBuilder assembles the business data block prepended to every
// advisory turn and suggestion.
type contextBuilder struct {
	goals ports.GoalRepository
	jobs  ports.JobRepository
	now   func() time.Time
}

func (b *contextBuilder) build(ctx context.Context, orgID string) (string, error) {
	goals, err := b.goals.ListByOrg(ctx, orgID)
	if err != nil {
		return "", fmt.Errorf("business context: %w", err)
	}
	jobs, err := b.jobs.ListByOrg(ctx, orgID)
	if err != nil {
		return "", fmt.Errorf("business context: %w", err)
	}
	records, err := b.jobs.ListMetricsByOrg(ctx, orgID)
	if err != nil {
		return "", fmt.Errorf("business context: %w", err)
	}
	now := b.now()

	var sb strings.Builder
	sb.WriteString("**LATEST BUSINESS DATA:**\n---\n**Active Goals:**\n")
	for _, g := range goals {
		if g.Status != domain.GoalActive {
			continue
		}
		fmt.Fprintf(&sb, "- Goal: %s (Target: %s, Current: %s)\n", g.Description, formatNumber(g.TargetValue), formatNumber(g.CurrentValue))
	}
	sb.WriteString("---\n**Detailed Job Data Summary (Last 30 Days):**\n")
	sb.WriteString(analytics.Summarize(jobs, now).Text())
	if recent := recentRecords(records, now); len(recent) > 0 {
		sb.WriteString("\n---\n**Business Metrics (Last 30 Days):**\n")
		for _, r := range recent {
			fmt.Fprintf(&sb, "- %s on %s: %s\n", r.DataType, r.Date, formatNumber(r.Value))
		}
	}
	sb.WriteString("\n---")
	return sb.String(), nil
}

func recentRecords(records []domain.MetricRecord, now time.Time) []domain.MetricRecord {
	cutoff := now.UTC().Add(-analytics.SummaryWindow).Truncate(24 * time.Hour)
	out := make([]domain.MetricRecord, 0, len(records))
	for _, r := range records {
		d, err := time.Parse(domain.DateLayout, r.Date)
		if err != nil || d.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
