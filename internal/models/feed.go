package models

// FeedEnvelope is the final response for one feed page. HasMore is
// the logical OR across providers: the feed can show more if any
// single provider still has pages, even if the others are exhausted.
type FeedEnvelope struct {
	Items        []Opportunity  `json:"items"`
	Total        int            `json:"total"`
	HasMore      bool           `json:"has_more"`
	Page         int            `json:"page"`
	SourceCounts map[string]int `json:"source_counts"`
	Profile      UserProfile    `json:"profile"`
}
