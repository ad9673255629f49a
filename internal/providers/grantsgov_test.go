package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGrantsGovFetchLivePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req grantsGovRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Keyword != "hypersonics" {
			t.Errorf("keyword not forwarded, got %q", req.Keyword)
		}
		if req.StartRecordNum != 10 {
			t.Errorf("startRecordNum should be (page-1)*rows, got %d", req.StartRecordNum)
		}
		if req.OppStatuses != "forecasted|posted" {
			t.Errorf("unexpected oppStatuses %q", req.OppStatuses)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"oppHits": []grantsGovRecord{{
				ID:         "358790",
				Title:      "Hypersonic Propulsion Research",
				Synopsis:   "<p>Research into <b>scramjet</b> combustion.</p>",
				AgencyName: "AFRL",
				OpenDate:   "2025-01-10",
				CloseDate:  "2025-03-01",
			}},
			"oppCount": 31,
		})
	}))
	defer srv.Close()

	p := NewGrantsGov(SourceConfig{ID: "grants", BaseURL: srv.URL, TimeoutSeconds: 2})
	result := p.Fetch(context.Background(), "hypersonics", 10, 2)

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.ID != "grant-358790" {
		t.Fatalf("expected prefixed grant id, got %s", item.ID)
	}
	if item.Description != "Research into scramjet combustion." {
		t.Fatalf("synopsis HTML should be flattened to text, got %q", item.Description)
	}
	if item.URL != "https://www.grants.gov/search-results-detail/358790" {
		t.Fatalf("unexpected URL %s", item.URL)
	}
	// startRecord 10 + rows 10 < 31 total.
	if !result.HasMore {
		t.Fatal("expected has_more while records remain")
	}
}

func TestGrantsGovDataWrappedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"oppHits":  []grantsGovRecord{{ID: "1", Title: "Wrapped"}, {ID: "2", Title: "Also Wrapped"}},
				"hitCount": 2,
			},
		})
	}))
	defer srv.Close()

	p := NewGrantsGov(SourceConfig{ID: "grants", BaseURL: srv.URL, TimeoutSeconds: 2})
	result := p.Fetch(context.Background(), "ai", 10, 1)

	if len(result.Items) != 2 {
		t.Fatalf("search2-style wrapped payload not parsed, got %d items", len(result.Items))
	}
	if result.HasMore {
		t.Fatal("all 2 of 2 records returned, has_more should be false")
	}
}

func TestGrantsGovDefaultKeyword(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req grantsGovRequest
		json.NewDecoder(r.Body).Decode(&req)
		got = req.Keyword
		json.NewEncoder(w).Encode(map[string]any{
			"oppHits":  []grantsGovRecord{{ID: "1", Title: "X"}},
			"oppCount": 1,
		})
	}))
	defer srv.Close()

	p := NewGrantsGov(SourceConfig{ID: "grants", BaseURL: srv.URL, TimeoutSeconds: 2})
	p.Fetch(context.Background(), "", 10, 1)

	if got != "defense technology" {
		t.Fatalf("empty keywords should fall back to broad default, got %q", got)
	}
}

func TestGrantsGovErrorFallsBackToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewGrantsGov(SourceConfig{ID: "grants", BaseURL: srv.URL, TimeoutSeconds: 2})
	result := p.Fetch(context.Background(), "", 25, 2)

	if len(result.Items) != len(grantMockCatalog) {
		t.Fatalf("expected full mock catalog, got %d items", len(result.Items))
	}
	for _, item := range result.Items {
		if !item.IsMock {
			t.Fatalf("fallback item %s must be is_mock", item.ID)
		}
	}
	if !result.HasMore {
		t.Fatal("mock fallback below page cap should report has_more")
	}
}
