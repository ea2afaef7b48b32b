// Package selector picks practice content while avoiding items a learner
// saw recently in the same session.
package selector

// DefaultMaxHistory is the number of recent items remembered per category.
const DefaultMaxHistory = 20

// History is a bounded, oldest-first list of recently served item keys.
// It is owned by one session and one content category.
type History struct {
	Items []string `json:"items"`
	Max   int      `json:"max"`
}

// NewHistory returns an empty history capped at max entries. A non-positive
// max falls back to DefaultMaxHistory.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{Max: max}
}

func (h *History) limit() int {
	if h.Max <= 0 {
		return DefaultMaxHistory
	}
	return h.Max
}

// Contains reports whether key is in the history window.
func (h *History) Contains(key string) bool {
	for _, it := range h.Items {
		if it == key {
			return true
		}
	}
	return false
}

// Push appends key and drops the oldest entries beyond the cap.
func (h *History) Push(key string) {
	h.Items = append(h.Items, key)
	if over := len(h.Items) - h.limit(); over > 0 {
		h.Items = append([]string(nil), h.Items[over:]...)
	}
}

// Len returns the number of remembered items.
func (h *History) Len() int {
	return len(h.Items)
}

// keepRecent truncates the history to its n most recent entries.
func (h *History) keepRecent(n int) {
	if n < 0 {
		n = 0
	}
	if len(h.Items) > n {
		h.Items = append([]string(nil), h.Items[len(h.Items)-n:]...)
	}
}
