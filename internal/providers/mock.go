package providers

import (
	"sort"
	"strings"

	"github.com/david/govfeed/internal/models"
)

// mockPageCap: synthetic pages report has_more while the page number
// is below this cap. There is no real upstream count to consult, so
// this is a deliberate approximation.
const mockPageCap = 5

// mockPage builds a synthetic page from a fixed catalog: score each
// record by keyword-token overlap, sort descending (stable, so the
// catalog order breaks ties), rotate by ((page-1)*limit) mod size so
// repeated page requests cycle through the catalog instead of
// repeating the first page, then truncate to limit.
func mockPage(catalog []models.Opportunity, keywords string, limit, page int) []models.Opportunity {
	items := make([]models.Opportunity, len(catalog))
	copy(items, catalog)

	if keywords != "" {
		scores := make(map[string]int, len(items))
		for _, item := range items {
			scores[item.ID] = tokenOverlap(item, keywords)
		}
		sort.SliceStable(items, func(i, j int) bool {
			return scores[items[i].ID] > scores[items[j].ID]
		})
	}

	limit = clampLimit(limit)
	if page < 1 {
		page = 1
	}
	start := ((page - 1) * limit) % len(items)
	rotated := append(items[start:], items[:start]...)
	if len(rotated) > limit {
		rotated = rotated[:limit]
	}
	return rotated
}

// tokenOverlap counts how many keyword tokens appear as substrings in
// the item's title+description+agency. Keywords split on commas, then
// whitespace; matching is case-insensitive.
func tokenOverlap(item models.Opportunity, keywords string) int {
	haystack := strings.ToLower(item.Title + " " + item.Description + " " + item.Agency)
	score := 0
	for _, term := range strings.Split(strings.ToLower(keywords), ",") {
		for _, word := range strings.Fields(term) {
			if strings.Contains(haystack, word) {
				score++
			}
		}
	}
	return score
}
