package domain

import "time"

// Article is a knowledge-base entry owned by an organization.
type Article struct {
	ID        string    `json:"id" bson:"_id"`
	OrgID     string    `json:"org_id" bson:"org_id"`
	Title     string    `json:"title" bson:"title"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// SearchResult is a ranked knowledge-base hit.
type SearchResult struct {
	Title string  `json:"title" bson:"title"`
	Text  string  `json:"text" bson:"text"`
	Score float64 `json:"score" bson:"score"`
}

// KnowledgeSearchLimit is the number of results returned by a search.
const KnowledgeSearchLimit = 3
