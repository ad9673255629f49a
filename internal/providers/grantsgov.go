package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/david/govfeed/internal/models"
)

// GrantsGov fetches federal grant opportunities from the Grants.gov
// search API.
type GrantsGov struct {
	Client  *http.Client
	BaseURL string
}

func NewGrantsGov(cfg SourceConfig) *GrantsGov {
	return &GrantsGov{
		Client:  &http.Client{Timeout: cfg.Timeout()},
		BaseURL: cfg.BaseURL,
	}
}

func (g *GrantsGov) ID() string { return "grants" }

type grantsGovRequest struct {
	Keyword            string `json:"keyword"`
	OppStatuses        string `json:"oppStatuses"`
	Rows               int    `json:"rows"`
	StartRecordNum     int    `json:"startRecordNum"`
	SortBy             string `json:"sortBy"`
	Eligibilities      string `json:"eligibilities"`
	AgencyCode         string `json:"agencyCode"`
	FundingCategories  string `json:"fundingCategories"`
	FundingInstruments string `json:"fundingInstruments"`
}

type grantsGovResponse struct {
	OppHits  []grantsGovRecord `json:"oppHits"`
	OppCount int               `json:"oppCount"`
	// search2 wraps the same payload in "data".
	Data *struct {
		OppHits  []grantsGovRecord `json:"oppHits"`
		HitCount int               `json:"hitCount"`
	} `json:"data"`
}

type grantsGovRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Synopsis        string   `json:"synopsis"`
	AgencyName      string   `json:"agencyName"`
	OpenDate        string   `json:"openDate"`
	CloseDate       string   `json:"closeDate"`
	InstrumentTypes string   `json:"instrumentTypes"`
	AwardCeiling    *float64 `json:"awardCeiling"`
}

// Fetch returns one page of posted/forecasted grants, newest first.
// Grants.gov offers a real full-text keyword search; an empty keyword
// set falls back to a broad default so the page is never unfiltered
// noise.
func (g *GrantsGov) Fetch(ctx context.Context, keywords string, limit, page int) models.ProviderPageResult {
	limit = clampLimit(limit)
	startRecord := pageOffset(limit, page)

	keyword := keywords
	if keyword == "" {
		keyword = "defense technology"
	}

	payload := grantsGovRequest{
		Keyword:        keyword,
		OppStatuses:    "forecasted|posted",
		Rows:           limit,
		StartRecordNum: startRecord,
		SortBy:         "openDate|desc",
	}

	hits, total, err := g.search(ctx, payload)
	if err != nil {
		log.Printf("[Grants.gov] %v — using mock data", err)
		mock := mockPage(grantMockCatalog, keywords, limit, page)
		return models.ProviderPageResult{Items: mock, TotalOnPage: len(mock), HasMore: page < mockPageCap}
	}

	if len(hits) == 0 {
		log.Print("[Grants.gov] No results from live API — using mock data")
		mock := mockPage(grantMockCatalog, keywords, limit, page)
		return models.ProviderPageResult{Items: mock, TotalOnPage: len(mock), HasMore: false}
	}

	items := make([]models.Opportunity, 0, len(hits))
	for _, rec := range hits {
		items = append(items, parseGrantRecord(rec))
	}

	return models.ProviderPageResult{
		Items:       items,
		TotalOnPage: len(items),
		HasMore:     startRecord+limit < total,
	}
}

func (g *GrantsGov) search(ctx context.Context, payload grantsGovRequest) ([]grantsGovRecord, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, 0, fmt.Errorf("API returned %d: %s", resp.StatusCode, snippet)
	}

	var data grantsGovResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, 0, fmt.Errorf("decoding response: %w", err)
	}

	if data.Data != nil {
		return data.Data.OppHits, data.Data.HitCount, nil
	}
	return data.OppHits, data.OppCount, nil
}

func parseGrantRecord(rec grantsGovRecord) models.Opportunity {
	title := rec.Title
	if title == "" {
		title = "Untitled Grant"
	}
	return models.Opportunity{
		ID:           "grant-" + rec.ID,
		Source:       "Grants.gov",
		SourceType:   models.SourceGrant,
		Title:        title,
		Description:  htmlToText(rec.Synopsis),
		Agency:       rec.AgencyName,
		PostedDate:   rec.OpenDate,
		Deadline:     rec.CloseDate,
		ContractType: rec.InstrumentTypes,
		URL:          fmt.Sprintf("https://www.grants.gov/search-results-detail/%s", rec.ID),
		AwardAmount:  rec.AwardCeiling,
	}
}

var grantMockCatalog = []models.Opportunity{
	{
		ID: "grant-mock-001", Source: "Grants.gov", SourceType: models.SourceGrant,
		Title:       "DARPA Young Faculty Award — Autonomous Systems",
		Description: "The Defense Advanced Research Projects Agency Young Faculty Award (YFA) program aims to identify and engage rising research stars in junior faculty positions and expose them to DoD needs. This cycle focuses on autonomous multi-agent coordination, adversarial machine learning, and edge computing for contested environments.",
		Agency:      "DEFENSE ADVANCED RESEARCH PROJECTS AGENCY", PostedDate: rdate(4), Deadline: fdate(45),
		ContractType: "Grant", URL: "https://www.grants.gov", AwardAmount: amount(500000), IsMock: true,
	},
	{
		ID: "grant-mock-002", Source: "Grants.gov", SourceType: models.SourceGrant,
		Title:       "SBIR Phase II — Electronic Warfare Cognitive Radio",
		Description: "This SBIR Phase II opportunity funds development of software-defined cognitive radio systems for electronic warfare applications. Technology must demonstrate real-time spectrum sensing, adaptive waveform generation, and AI-driven interference avoidance in congested/contested spectrum environments.",
		Agency:      "DEPT OF THE AIR FORCE / AFWERX", PostedDate: rdate(2), Deadline: fdate(30),
		SetAside: "Small Business", ContractType: "SBIR Phase II",
		URL: "https://www.grants.gov", AwardAmount: amount(1750000), IsMock: true,
	},
	{
		ID: "grant-mock-003", Source: "Grants.gov", SourceType: models.SourceGrant,
		Title:       "ONR University Research Initiative — Undersea Acoustics",
		Description: "The Office of Naval Research Multidisciplinary University Research Initiative (MURI) award solicits proposals in next-generation undersea acoustic sensing and communications. Focus areas include deep water propagation modeling, bio-inspired sonar, and ML-based signal classification.",
		Agency:      "OFFICE OF NAVAL RESEARCH", PostedDate: rdate(6), Deadline: fdate(60),
		ContractType: "MURI Grant", URL: "https://www.grants.gov", AwardAmount: amount(7500000), IsMock: true,
	},
	{
		ID: "grant-mock-004", Source: "Grants.gov", SourceType: models.SourceGrant,
		Title:       "DHS S&T — Critical Infrastructure Cyber Resilience",
		Description: "DHS Science and Technology Directorate funds research into automated cyber resilience for industrial control systems in critical infrastructure. Topics include anomaly detection in OT networks, automated patch management, and supply chain risk assessment for SCADA systems.",
		Agency:      "DEPT OF HOMELAND SECURITY / S&T", PostedDate: rdate(3), Deadline: fdate(90),
		ContractType: "Grant", URL: "https://www.grants.gov", AwardAmount: amount(2000000), IsMock: true,
	},
	{
		ID: "grant-mock-005", Source: "Grants.gov", SourceType: models.SourceGrant,
		Title:       "STTR Phase I — Directed Energy Beam Control",
		Description: "Army STTR Phase I solicitation for novel adaptive optics approaches to high-energy laser beam control in turbulent atmospheric conditions. Proposals must demonstrate theoretical basis for wavefront correction achieving Strehl ratios above 0.8 at 5km range.",
		Agency:      "DEPT OF ARMY / RDECOM", PostedDate: rdate(1), Deadline: fdate(21),
		SetAside: "Small Business", ContractType: "STTR Phase I",
		URL: "https://www.grants.gov", AwardAmount: amount(250000), IsMock: true,
	},
	{
		ID: "grant-mock-006", Source: "Grants.gov", SourceType: models.SourceGrant,
		Title:       "NSF-DoD Joint Program — Trusted AI for National Security",
		Description: "Joint NSF/DoD program funding foundational research in trustworthy AI systems for national security applications. Priority areas include formal verification of neural networks, robustness to distribution shift, and interpretability in high-stakes decision systems.",
		Agency:      "NATIONAL SCIENCE FOUNDATION / DoD", PostedDate: rdate(8), Deadline: fdate(120),
		ContractType: "Cooperative Agreement", URL: "https://www.grants.gov", AwardAmount: amount(4000000), IsMock: true,
	},
	{
		ID: "grant-mock-007", Source: "Grants.gov", SourceType: models.SourceGrant,
		Title:       "AFRL SBIR Phase I — Space Domain Awareness AI",
		Description: "Air Force Research Laboratory seeks SBIR Phase I proposals for AI-enabled space domain awareness tools. Scope includes conjunction analysis, maneuver detection, intent prediction for non-cooperative space objects, and data fusion from ground-based and space-based sensor networks.",
		Agency:      "AIR FORCE RESEARCH LABORATORY / AFWERX", PostedDate: rdate(5), Deadline: fdate(35),
		SetAside: "Small Business", ContractType: "SBIR Phase I",
		URL: "https://www.grants.gov", AwardAmount: amount(150000), IsMock: true,
	},
}
