// feedcheck fetches one feed page straight through the aggregation
// pipeline and renders it as a table. Useful for eyeballing provider
// health and ranking quality without a frontend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/david/govfeed/internal/ai"
	"github.com/david/govfeed/internal/feed"
	"github.com/david/govfeed/internal/models"
	"github.com/david/govfeed/internal/providers"
	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	keywords := flag.String("keywords", "defense technology, AI, autonomous systems", "comma-separated profile keywords")
	sources := flag.String("sources", "sam,usaspending,grants", "comma-separated provider ids")
	limit := flag.Int("limit", 10, "items per provider page")
	page := flag.Int("page", 1, "page number")
	flag.Parse()

	registry, err := providers.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load provider registry: %v", err)
	}

	creds := ai.NewCredentials(os.Getenv("OPENAI_API_KEY"))
	client := ai.NewOpenAIClient(os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"), creds)
	svc := feed.NewService(registry, ai.NewRanker(client, creds))

	profile := models.UserProfile{Keywords: *keywords, Focus: *keywords}
	envelope := svc.GetFeed(context.Background(), profile, splitIDs(*sources), *limit, *page)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Score", "Source", "Title", "Agency", "Deadline", "Mock"})

	for _, item := range envelope.Items {
		title := item.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		t.AppendRow(table.Row{item.RelevanceScore, item.Source, title, item.Agency, item.Deadline, item.IsMock})
	}
	t.Render()

	fmt.Printf("page=%d total=%d has_more=%t counts=%v\n",
		envelope.Page, envelope.Total, envelope.HasMore, envelope.SourceCounts)
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
