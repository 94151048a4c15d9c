package model

// Profile is a user's public profile.
type Profile struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// GetID implements Tagged.
func (p Profile) GetID() string { return p.ID }

// GetTags implements Tagged.
func (p Profile) GetTags() []string { return p.Tags }

// MergeTags returns the union of existing and additions in first-seen order.
func MergeTags(existing, additions []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(additions))
	out := make([]string, 0, len(existing)+len(additions))
	for _, list := range [][]string{existing, additions} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
