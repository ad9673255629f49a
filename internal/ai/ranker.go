package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/david/govfeed/internal/models"
)

// maxAIRanked bounds how many items go to the scoring service in the
// single batched call; items past this keep their keyword score.
const maxAIRanked = 40

const snippetLen = 300

// Ranker scores and orders a candidate set against a user profile.
// The primary path is one batched scoring-service call; the fallback
// is the pure keyword formula. Rank never returns an error.
type Ranker struct {
	Client *OpenAIClient
	Creds  *Credentials
}

func NewRanker(client *OpenAIClient, creds *Credentials) *Ranker {
	return &Ranker{Client: client, Creds: creds}
}

type itemSummary struct {
	Idx     int      `json:"idx"`
	Title   string   `json:"title"`
	Agency  string   `json:"agency"`
	Type    string   `json:"type"`
	Amount  *float64 `json:"amount"`
	Snippet string   `json:"snippet"`
}

type itemRanking struct {
	Idx     int    `json:"idx"`
	Score   int    `json:"score"`
	Summary string `json:"summary"`
}

// Rank re-orders items descending by relevance (never resizing), and
// always returns a fully-scored set. The keyword pass runs first so
// every item carries a deterministic baseline; on success the AI
// overlay replaces scores for the first 40 items. Any classified
// failure discards the entire overlay, so no partial external ranking
// survives, and an auth failure additionally invalidates the cached
// credential.
func (r *Ranker) Rank(ctx context.Context, items []models.Opportunity, profile models.UserProfile) []models.Opportunity {
	if len(items) == 0 {
		return items
	}

	applyKeywordScores(items, profile)

	rankings, err := r.scoreBatch(ctx, items, profile)
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			r.logFailure(err)
		}
		for i := range items {
			items[i].AISummary = ""
		}
		sortByScore(items)
		return items
	}

	n := len(items)
	if n > maxAIRanked {
		n = maxAIRanked
	}
	for i := 0; i < n; i++ {
		if rk, ok := rankings[i]; ok {
			items[i].RelevanceScore = clamp(rk.Score, 0, 100)
			items[i].AISummary = rk.Summary
		}
		// An index missing from the response keeps its keyword score
		// and an empty summary.
	}

	sortByScore(items)
	return items
}

func (r *Ranker) scoreBatch(ctx context.Context, items []models.Opportunity, profile models.UserProfile) (map[int]itemRanking, error) {
	focus := profile.Focus
	if focus == "" {
		focus = profile.Keywords
	}

	n := len(items)
	if n > maxAIRanked {
		n = maxAIRanked
	}
	summaries := make([]itemSummary, 0, n)
	for i := 0; i < n; i++ {
		snippet := items[i].Description
		if len(snippet) > snippetLen {
			snippet = snippet[:snippetLen]
		}
		summaries = append(summaries, itemSummary{
			Idx:     i,
			Title:   items[i].Title,
			Agency:  items[i].Agency,
			Type:    string(items[i].SourceType),
			Amount:  items[i].AwardAmount,
			Snippet: snippet,
		})
	}

	payload, err := json.Marshal(summaries)
	if err != nil {
		return nil, &ScoringError{Kind: FailureMalformed, Err: err}
	}

	prompt := fmt.Sprintf(`You are a government contracting intelligence analyst.

User focus: %q
User keywords: %q

Score each item 0-100 for relevance to this user. Write a sharp, specific 1-sentence summary (max 18 words) explaining WHY it's relevant — not just what it is.

Return ONLY a JSON array, no markdown:
[{"idx": 0, "score": 85, "summary": "Directly targets your AI/ISR work — $120M NAVAIR award with sensor fusion scope"}]

Items:
%s`, focus, profile.Keywords, payload)

	raw, err := r.Client.Complete(ctx, prompt, 2500)
	if err != nil {
		return nil, err
	}

	var rankings []itemRanking
	if err := json.Unmarshal([]byte(stripFences(raw)), &rankings); err != nil {
		return nil, &ScoringError{Kind: FailureMalformed, Err: fmt.Errorf("parsing rankings: %w", err)}
	}

	scoreMap := make(map[int]itemRanking, len(rankings))
	for _, rk := range rankings {
		scoreMap[rk.Idx] = rk
	}
	return scoreMap, nil
}

func (r *Ranker) logFailure(err error) {
	switch Classify(err) {
	case FailureQuota:
		log.Print("[AI Ranker] Scoring quota exceeded — falling back to keyword ranking")
	case FailureRateLimit:
		log.Print("[AI Ranker] Scoring service rate limited — falling back to keyword ranking")
	case FailureAuth:
		log.Print("[AI Ranker] Scoring key invalid — falling back to keyword ranking")
		if r.Creds != nil {
			r.Creds.Invalidate()
		}
	default:
		log.Printf("[AI Ranker] %v — falling back to keyword ranking", err)
	}
}

var keywordSplit = regexp.MustCompile(`[,\s]+`)

// KeywordRank is the always-available deterministic fallback: pure,
// never fails, stable under ties.
func KeywordRank(items []models.Opportunity, profile models.UserProfile) []models.Opportunity {
	applyKeywordScores(items, profile)
	for i := range items {
		items[i].AISummary = ""
	}
	sortByScore(items)
	return items
}

// applyKeywordScores sets every item's relevance from the keyword
// formula: 3 points per token found in the title, 1 point per token
// found elsewhere in title+description+agency; tokens of one or two
// characters are dropped.
func applyKeywordScores(items []models.Opportunity, profile models.UserProfile) {
	var words []string
	for _, w := range keywordSplit.Split(strings.ToLower(profile.Keywords), -1) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}

	for i := range items {
		title := strings.ToLower(items[i].Title)
		haystack := title + " " + strings.ToLower(items[i].Description) + " " + strings.ToLower(items[i].Agency)

		score := 0
		for _, w := range words {
			if !strings.Contains(haystack, w) {
				continue
			}
			if strings.Contains(title, w) {
				score += 3
			} else {
				score++
			}
		}
		items[i].RelevanceScore = clamp(30+score*8, 0, 95)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortByScore(items []models.Opportunity) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
}
