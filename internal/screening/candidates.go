package screening

import "slices"

// Candidates is a ranked list handed from one processing step to the next.
// Removals keep the relative order of the remaining items.
type Candidates struct {
	Items []ScoredCandidate `json:"items"`
}

func NewCandidates(items []ScoredCandidate) *Candidates {
	return &Candidates{Items: items}
}

func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, c.Len())
	for _, item := range c.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (c *Candidates) FindByID(id string) *ScoredCandidate {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// Keep removes every candidate keep rejects and returns the removed IDs.
func (c *Candidates) Keep(keep func(ScoredCandidate) bool) []string {
	var removed []string
	c.Items = slices.DeleteFunc(c.Items, func(item ScoredCandidate) bool {
		if keep(item) {
			return false
		}
		removed = append(removed, item.ID)
		return true
	})
	return removed
}

// Exclude removes the candidates with the given IDs.
func (c *Candidates) Exclude(ids []string) []string {
	targets := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		targets[id] = struct{}{}
	}
	return c.Keep(func(item ScoredCandidate) bool {
		_, found := targets[item.ID]
		return !found
	})
}

// Truncate keeps the first n candidates.
func (c *Candidates) Truncate(n int) []string {
	if n < 0 || n >= c.Len() {
		return nil
	}
	removed := make([]string, 0, c.Len()-n)
	for _, item := range c.Items[n:] {
		removed = append(removed, item.ID)
	}
	c.Items = c.Items[:n]
	return removed
}
