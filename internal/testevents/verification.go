package testevents

import (
	"fmt"
)

type scoredItem struct {
	Candidate struct {
		ID string `json:"id"`
	} `json:"candidate"`
	Score      float64  `json:"score"`
	SharedTags []string `json:"shared_tags"`
}

type recommendationPayload struct {
	Status string       `json:"status"`
	Items  []scoredItem `json:"items"`
}

// verifyRecommendations checks the invariants every recommendation reply
// must hold for userID.
func verifyRecommendations(userID string, p recommendationPayload, topK int, friends bool) error {
	switch p.Status {
	case "ok":
		if len(p.Items) == 0 {
			return fmt.Errorf("user %s: status ok with no items", userID)
		}
	case "no_profile_tags", "no_matches":
		if len(p.Items) != 0 {
			return fmt.Errorf("user %s: status %s with %d items", userID, p.Status, len(p.Items))
		}
	default:
		return fmt.Errorf("user %s: unknown status %q", userID, p.Status)
	}

	if len(p.Items) > topK {
		return fmt.Errorf("user %s: %d items exceeds top %d", userID, len(p.Items), topK)
	}
	for i, it := range p.Items {
		if i > 0 && it.Score > p.Items[i-1].Score {
			return fmt.Errorf("user %s: item %d scores above its predecessor", userID, i)
		}
		if friends && it.Candidate.ID == userID {
			return fmt.Errorf("user %s: recommended as their own friend", userID)
		}
		if !friends && (it.Score <= 0 || len(it.SharedTags) == 0) {
			return fmt.Errorf("user %s: event %s recommended without shared tags", userID, it.Candidate.ID)
		}
	}
	return nil
}
