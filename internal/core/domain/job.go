package domain

import "time"

// DateLayout is the ISO calendar date format used by jobs, metrics and plan steps.
const DateLayout = "2006-01-02"

// Job is a completed detailing job. Jobs are append-only.
type Job struct {
	ID         string    `json:"id" bson:"_id"`
	OrgID      string    `json:"org_id" bson:"org_id"`
	Type       string    `json:"type" bson:"type"`
	Value      float64   `json:"value" bson:"value"`
	LeadSource string    `json:"lead_source" bson:"lead_source"`
	Date       string    `json:"date" bson:"date"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// MetricRecord is a free-form business measurement such as marketing spend.
type MetricRecord struct {
	ID        string         `json:"id" bson:"_id"`
	OrgID     string         `json:"org_id" bson:"org_id"`
	DataType  string         `json:"data_type" bson:"data_type"`
	Value     float64        `json:"value" bson:"value"`
	Date      string         `json:"date" bson:"date"`
	Details   map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
