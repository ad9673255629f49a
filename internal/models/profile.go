package models

// UserProfile drives relevance ranking and provider keyword filters.
// Keywords is a comma-separated term list; Focus is free text.
type UserProfile struct {
	Keywords string   `json:"keywords"`
	Focus    string   `json:"focus"`
	OrgType  string   `json:"org_type"`
	Agencies []string `json:"agencies"`
	RawInput string   `json:"raw_input,omitempty"`
}
