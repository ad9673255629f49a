package providers

import (
	"context"
	"time"

	"github.com/david/govfeed/internal/models"
)

// MaxPageSize caps the per-provider page size; upstream APIs reject
// larger windows.
const MaxPageSize = 25

// Provider is the one contract every adapter satisfies. Fetch never
// returns an error: transport, parse, and non-2xx failures are
// absorbed inside the adapter, which substitutes a synthetic page so
// the coordinator needs no provider-specific error handling.
type Provider interface {
	ID() string
	Fetch(ctx context.Context, keywords string, limit, page int) models.ProviderPageResult
}

// clampLimit bounds a requested page size to [1, MaxPageSize].
func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// pageOffset computes the provider-native 0-based offset for a
// 1-based page number.
func pageOffset(limit, page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * clampLimit(limit)
}

func rdate(daysAgo int) string {
	return time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02")
}

func fdate(daysAhead int) string {
	return time.Now().AddDate(0, 0, daysAhead).Format("01/02/2006")
}

func amount(v float64) *float64 {
	return &v
}
