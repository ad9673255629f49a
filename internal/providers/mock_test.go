package providers

import (
	"testing"

	"github.com/david/govfeed/internal/models"
)

func TestMockPageRotationVisitsWholeCatalog(t *testing.T) {
	// With limit=1, pages 1..K must visit every catalog item exactly
	// once, in the score-based order, cycling rather than repeating
	// page 1 forever.
	catalog := samMockCatalog
	seen := map[string]int{}
	var order []string

	for page := 1; page <= len(catalog); page++ {
		items := mockPage(catalog, "AI, autonomous", 1, page)
		if len(items) != 1 {
			t.Fatalf("page %d: expected 1 item, got %d", page, len(items))
		}
		seen[items[0].ID]++
		order = append(order, items[0].ID)
	}

	if len(seen) != len(catalog) {
		t.Fatalf("expected %d distinct items across %d pages, got %d", len(catalog), len(catalog), len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("item %s visited %d times, expected once", id, n)
		}
	}

	// Page 1 must start from the best-scoring item.
	first := mockPage(catalog, "AI, autonomous", len(catalog), 1)
	if order[0] != first[0].ID {
		t.Fatalf("rotation order %v does not start at score order head %s", order, first[0].ID)
	}
}

func TestMockPageScoreOrdering(t *testing.T) {
	items := mockPage(samMockCatalog, "autonomous", len(samMockCatalog), 1)

	prev := tokenOverlap(items[0], "autonomous")
	for _, item := range items[1:] {
		score := tokenOverlap(item, "autonomous")
		if score > prev {
			t.Fatalf("items not sorted by descending overlap: %d after %d", score, prev)
		}
		prev = score
	}
}

func TestMockPageNoKeywordsKeepsCatalogOrder(t *testing.T) {
	items := mockPage(grantMockCatalog, "", len(grantMockCatalog), 1)
	for i, item := range items {
		if item.ID != grantMockCatalog[i].ID {
			t.Fatalf("position %d: got %s, want %s", i, item.ID, grantMockCatalog[i].ID)
		}
	}
}

func TestMockPageTruncatesToLimit(t *testing.T) {
	items := mockPage(awardMockCatalog, "cyber", 3, 1)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
}

func TestTokenOverlapSplitsCommasAndWhitespace(t *testing.T) {
	item := models.Opportunity{
		Title:       "Autonomous Systems Integration",
		Description: "Edge AI platform",
		Agency:      "DARPA",
	}

	tests := []struct {
		keywords string
		want     int
	}{
		{"autonomous", 1},
		{"autonomous systems", 2},
		{"autonomous, edge AI", 3},
		{"quantum", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := tokenOverlap(item, tt.keywords); got != tt.want {
			t.Fatalf("tokenOverlap(%q) = %d, want %d", tt.keywords, got, tt.want)
		}
	}
}

func TestCatalogIDsArePrefixed(t *testing.T) {
	for _, tc := range []struct {
		prefix  string
		catalog []models.Opportunity
	}{
		{"sam-", samMockCatalog},
		{"award-", awardMockCatalog},
		{"grant-", grantMockCatalog},
	} {
		for _, item := range tc.catalog {
			if len(item.ID) <= len(tc.prefix) || item.ID[:len(tc.prefix)] != tc.prefix {
				t.Fatalf("catalog item %q missing prefix %q", item.ID, tc.prefix)
			}
			if !item.IsMock {
				t.Fatalf("catalog item %q must be flagged is_mock", item.ID)
			}
		}
	}
}
