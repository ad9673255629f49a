package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/david/govfeed/internal/models"
)

// USASpending fetches contract awards from the USASpending.gov
// spending_by_award API.
type USASpending struct {
	Client  *http.Client
	BaseURL string
}

func NewUSASpending(cfg SourceConfig) *USASpending {
	return &USASpending{
		Client:  &http.Client{Timeout: cfg.Timeout()},
		BaseURL: cfg.BaseURL,
	}
}

func (u *USASpending) ID() string { return "usaspending" }

type usaSpendingRequest struct {
	Filters map[string]any `json:"filters"`
	Fields  []string       `json:"fields"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Sort    string         `json:"sort"`
	Order   string         `json:"order"`
}

type usaSpendingResponse struct {
	Results      []usaSpendingRecord `json:"results"`
	PageMetadata struct {
		HasNext bool `json:"hasNext"`
	} `json:"page_metadata"`
}

type usaSpendingRecord struct {
	AwardID             string   `json:"Award ID"`
	RecipientName       string   `json:"Recipient Name"`
	AwardAmount         *float64 `json:"Award Amount"`
	AwardingAgency      string   `json:"Awarding Agency"`
	AwardType           string   `json:"Award Type"`
	Description         string   `json:"Description"`
	PerfStartDate       string   `json:"Period of Performance Start Date"`
	PerfCurrentEndDate  string   `json:"Period of Performance Current End Date"`
	GeneratedInternalID string   `json:"generated_internal_id"`
}

// Fetch returns one page of recent awards, largest first. The page
// number passes straight through to the upstream request; the keyword
// filter is the API's own full-text match.
func (u *USASpending) Fetch(ctx context.Context, keywords string, limit, page int) models.ProviderPageResult {
	limit = clampLimit(limit)
	if page < 1 {
		page = 1
	}

	filters := map[string]any{
		"time_period": []map[string]string{{
			"start_date": time.Now().AddDate(0, 0, -90).Format("2006-01-02"),
			"end_date":   time.Now().Format("2006-01-02"),
		}},
		"award_type_codes": []string{"A", "B", "C", "D"},
	}
	if keywords != "" {
		filters["keyword"] = keywords
	}

	payload := usaSpendingRequest{
		Filters: filters,
		Fields: []string{
			"Award ID", "Recipient Name", "Award Amount", "Awarding Agency",
			"Award Type", "Description", "Period of Performance Start Date",
			"Period of Performance Current End Date", "generated_internal_id",
		},
		Page:  page,
		Limit: limit,
		Sort:  "Award Amount",
		Order: "desc",
	}

	data, err := u.search(ctx, payload)
	if err != nil {
		log.Printf("[USASpending] %v — using mock data", err)
		mock := mockPage(awardMockCatalog, keywords, limit, page)
		return models.ProviderPageResult{Items: mock, TotalOnPage: len(mock), HasMore: page < mockPageCap}
	}

	if len(data.Results) == 0 {
		log.Print("[USASpending] No results from live API — using mock data")
		mock := mockPage(awardMockCatalog, keywords, limit, page)
		return models.ProviderPageResult{Items: mock, TotalOnPage: len(mock), HasMore: false}
	}

	items := make([]models.Opportunity, 0, len(data.Results))
	for _, rec := range data.Results {
		items = append(items, parseAwardRecord(rec))
	}

	hasMore := data.PageMetadata.HasNext || len(data.Results) == limit
	return models.ProviderPageResult{Items: items, TotalOnPage: len(items), HasMore: hasMore}
}

func (u *USASpending) search(ctx context.Context, payload usaSpendingRequest) (*usaSpendingResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", u.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, snippet)
	}

	var data usaSpendingResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &data, nil
}

func parseAwardRecord(rec usaSpendingRecord) models.Opportunity {
	recipient := rec.RecipientName
	if recipient == "" {
		recipient = "Unknown"
	}
	return models.Opportunity{
		ID:           "award-" + rec.AwardID,
		Source:       "USASpending.gov",
		SourceType:   models.SourceAward,
		Title:        "Award to " + recipient,
		Description:  sanitizeDescription(rec.Description),
		Agency:       rec.AwardingAgency,
		PostedDate:   rec.PerfStartDate,
		Deadline:     rec.PerfCurrentEndDate,
		ContractType: rec.AwardType,
		URL:          fmt.Sprintf("https://www.usaspending.gov/award/%s", rec.GeneratedInternalID),
		AwardAmount:  rec.AwardAmount,
		Recipient:    rec.RecipientName,
	}
}

var awardMockCatalog = []models.Opportunity{
	{
		ID: "award-mock-001", Source: "USASpending.gov", SourceType: models.SourceAward,
		Title:       "Award to Palantir Technologies Inc.",
		Description: "Data integration and analytics platform for Army Enterprise Resource Planning. Scope includes deployment of Gotham and Foundry platforms across 15 brigade combat teams with full ATO.",
		Agency:      "DEPT OF ARMY", PostedDate: rdate(3), Deadline: rdate(-365),
		NAICS: "541512", ContractType: "Definitive Contract",
		URL: "https://www.usaspending.gov", AwardAmount: amount(229500000), Recipient: "Palantir Technologies Inc.", IsMock: true,
	},
	{
		ID: "award-mock-002", Source: "USASpending.gov", SourceType: models.SourceAward,
		Title:       "Award to Anduril Industries",
		Description: "Autonomous surveillance tower (AST) production and sustainment contract. Lattice OS-enabled border security towers with EO/IR sensor fusion, radar, and autonomous threat alerting.",
		Agency:      "DEPT OF HOMELAND SECURITY", PostedDate: rdate(5), Deadline: rdate(-730),
		NAICS: "336414", ContractType: "Definitive Contract",
		URL: "https://www.usaspending.gov", AwardAmount: amount(120000000), Recipient: "Anduril Industries", IsMock: true,
	},
	{
		ID: "award-mock-003", Source: "USASpending.gov", SourceType: models.SourceAward,
		Title:       "Award to Booz Allen Hamilton",
		Description: "Cyber operations support and threat intelligence services for CYBERCOM. Includes red team operations, vulnerability research, and adversary emulation across DoD networks.",
		Agency:      "US CYBER COMMAND", PostedDate: rdate(7), Deadline: rdate(-365),
		NAICS: "541513", ContractType: "IDIQ Task Order",
		URL: "https://www.usaspending.gov", AwardAmount: amount(342000000), Recipient: "Booz Allen Hamilton", IsMock: true,
	},
	{
		ID: "award-mock-004", Source: "USASpending.gov", SourceType: models.SourceAward,
		Title:       "Award to Shield AI",
		Description: "Hivemind autonomous pilot software license and integration services for F-16 and MQ-20 Avenger platforms. Enables fully autonomous air combat maneuvering without GPS or comms.",
		Agency:      "DEPT OF THE AIR FORCE", PostedDate: rdate(4), Deadline: rdate(-548),
		NAICS: "541715", ContractType: "Definitive Contract",
		URL: "https://www.usaspending.gov", AwardAmount: amount(67800000), Recipient: "Shield AI", IsMock: true,
	},
	{
		ID: "award-mock-005", Source: "USASpending.gov", SourceType: models.SourceAward,
		Title:       "Award to General Dynamics IT",
		Description: "DoD enterprise cloud migration and managed security services. Deployment of classified workloads to Impact Level 5/6 cloud environments with continuous monitoring.",
		Agency:      "DEFENSE LOGISTICS AGENCY", PostedDate: rdate(8), Deadline: rdate(-1095),
		NAICS: "541519", ContractType: "IDIQ",
		URL: "https://www.usaspending.gov", AwardAmount: amount(895000000), Recipient: "General Dynamics IT", IsMock: true,
	},
	{
		ID: "award-mock-006", Source: "USASpending.gov", SourceType: models.SourceAward,
		Title:       "Award to Leidos",
		Description: "Navy Next Generation Enterprise Network (NGEN) support services. Full spectrum IT services including network operations, cybersecurity, and service desk for 400,000 Navy and Marine Corps users.",
		Agency:      "DEPT OF NAVY", PostedDate: rdate(2), Deadline: rdate(-1825),
		NAICS: "541519", ContractType: "IDIQ",
		URL: "https://www.usaspending.gov", AwardAmount: amount(7700000000), Recipient: "Leidos", IsMock: true,
	},
	{
		ID: "award-mock-007", Source: "USASpending.gov", SourceType: models.SourceAward,
		Title:       "Award to Rebellion Defense",
		Description: "AI-enabled cyber threat detection and response platform (Nova) for classified DoD networks. Real-time adversarial behavior detection with automated playbook execution.",
		Agency:      "DEPT OF DEFENSE / CIO", PostedDate: rdate(6), Deadline: rdate(-365),
		NAICS: "541513", ContractType: "Definitive Contract",
		URL: "https://www.usaspending.gov", AwardAmount: amount(18400000), Recipient: "Rebellion Defense", IsMock: true,
	},
}
