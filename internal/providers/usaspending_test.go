package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUSASpendingFetchLivePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req usaSpendingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Page != 2 {
			t.Errorf("page should pass through upstream, got %d", req.Page)
		}
		if req.Filters["keyword"] != "cyber" {
			t.Errorf("keyword filter missing, got %v", req.Filters["keyword"])
		}

		amt := 5000000.0
		json.NewEncoder(w).Encode(map[string]any{
			"results": []usaSpendingRecord{{
				AwardID:             "CONT_AWD_1",
				RecipientName:       "Example Corp",
				AwardAmount:         &amt,
				AwardingAgency:      "DEPT OF DEFENSE",
				AwardType:           "Definitive Contract",
				Description:         "Cyber services",
				GeneratedInternalID: "gen-1",
			}},
			"page_metadata": map[string]any{"hasNext": true},
		})
	}))
	defer srv.Close()

	p := NewUSASpending(SourceConfig{ID: "usaspending", BaseURL: srv.URL, TimeoutSeconds: 2})
	result := p.Fetch(context.Background(), "cyber", 10, 2)

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.ID != "award-CONT_AWD_1" {
		t.Fatalf("expected prefixed award id, got %s", item.ID)
	}
	if item.Title != "Award to Example Corp" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.AwardAmount == nil || *item.AwardAmount != 5000000 {
		t.Fatalf("award amount not mapped: %v", item.AwardAmount)
	}
	if !result.HasMore {
		t.Fatal("page_metadata.hasNext should set has_more")
	}
}

func TestUSASpendingTransportFailureFallsBack(t *testing.T) {
	p := NewUSASpending(SourceConfig{ID: "usaspending", BaseURL: "http://127.0.0.1:0", TimeoutSeconds: 1})
	result := p.Fetch(context.Background(), "AI, autonomous", 25, 1)

	if len(result.Items) != len(awardMockCatalog) {
		t.Fatalf("expected full mock catalog (%d), got %d", len(awardMockCatalog), len(result.Items))
	}
	for _, item := range result.Items {
		if !item.IsMock {
			t.Fatalf("fallback item %s must be is_mock", item.ID)
		}
	}
	if result.TotalOnPage != len(result.Items) {
		t.Fatalf("total_on_page %d != len(items) %d", result.TotalOnPage, len(result.Items))
	}
}

func TestUSASpendingEmptyResultsFallBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	p := NewUSASpending(SourceConfig{ID: "usaspending", BaseURL: srv.URL, TimeoutSeconds: 2})
	result := p.Fetch(context.Background(), "", 5, 1)

	if len(result.Items) == 0 {
		t.Fatal("expected synthetic fallback items")
	}
	if result.HasMore {
		t.Fatal("empty authoritative live page must not report has_more")
	}
}
