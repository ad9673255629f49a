package models

// SourceType classifies where an opportunity came from.
type SourceType string

const (
	SourceContract SourceType = "contract"
	SourceAward    SourceType = "award"
	SourceGrant    SourceType = "grant"
)

// Opportunity is the canonical item every provider normalizes into.
// IDs are prefixed with the provider short name ("sam-", "award-",
// "grant-") so cross-provider collisions are structurally impossible.
// Dates stay in provider-native string formats; no cross-provider
// normalization is guaranteed.
type Opportunity struct {
	ID             string     `json:"id"`
	Source         string     `json:"source"`
	SourceType     SourceType `json:"source_type"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Agency         string     `json:"agency"`
	PostedDate     string     `json:"posted_date"`
	Deadline       string     `json:"deadline"`
	NAICS          string     `json:"naics"`
	SetAside       string     `json:"set_aside"`
	ContractType   string     `json:"contract_type"`
	URL            string     `json:"url"`
	AwardAmount    *float64   `json:"award_amount"`
	Recipient      string     `json:"recipient,omitempty"`
	IsMock         bool       `json:"is_mock"`
	RelevanceScore int        `json:"relevance_score"`
	AISummary      string     `json:"ai_summary"`
}

// ProviderPageResult is the contract every provider adapter returns,
// regardless of whether the live upstream or the synthetic fallback
// produced the page.
type ProviderPageResult struct {
	Items       []Opportunity `json:"items"`
	TotalOnPage int           `json:"total_on_page"`
	HasMore     bool          `json:"has_more"`
}
