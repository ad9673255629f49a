package main

import (
	"log"
	"os"

	"github.com/david/govfeed/internal/ai"
	"github.com/david/govfeed/internal/api"
	"github.com/david/govfeed/internal/feed"
	"github.com/david/govfeed/internal/profiles"
	"github.com/david/govfeed/internal/providers"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	registry, err := providers.LoadRegistry()
	if err != nil {
		log.Fatalf("Failed to load provider registry: %v", err)
	}

	creds := ai.NewCredentials(os.Getenv("OPENAI_API_KEY"))
	client := ai.NewOpenAIClient(os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"), creds)
	ranker := ai.NewRanker(client, creds)

	svc := feed.NewService(registry, ranker)
	store := profiles.NewMemoryStore()

	srv := api.NewServer(svc, ranker, creds, store, registry)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
