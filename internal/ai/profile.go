package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/david/govfeed/internal/models"
)

// ParseProfile extracts a structured search profile from a free-text
// description. Never fails: without a credential, or on any scoring
// error, the raw input itself becomes the profile.
func (r *Ranker) ParseProfile(ctx context.Context, rawInput string) models.UserProfile {
	prompt := fmt.Sprintf(`Extract a search profile from this user description for a government contracts/grants feed:

%q

Return ONLY JSON (no markdown):
{
  "keywords": "3-8 comma-separated search terms optimized for SAM.gov, e.g.: counter-UAS, autonomous systems, C2",
  "org_type": "small business / large prime / research university / nonprofit / etc",
  "focus": "One crisp sentence describing their focus area",
  "agencies": ["list", "of", "relevant", "DoD/IC agencies"]
}`, rawInput)

	raw, err := r.Client.Complete(ctx, prompt, 400)
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			log.Printf("[AI Profile] %v", err)
			if Classify(err) == FailureAuth && r.Creds != nil {
				r.Creds.Invalidate()
			}
		}
		return fallbackProfile(rawInput)
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(stripFences(raw)), &profile); err != nil {
		log.Printf("[AI Profile] parsing profile: %v", err)
		return fallbackProfile(rawInput)
	}
	if profile.Keywords == "" {
		profile.Keywords = rawInput
	}
	return profile
}

func fallbackProfile(rawInput string) models.UserProfile {
	focus := rawInput
	if len(focus) > 100 {
		focus = focus[:100]
	}
	return models.UserProfile{
		Keywords: rawInput,
		Focus:    focus,
		Agencies: []string{},
	}
}
