package jobboard

import (
	"sort"
	"strings"
)

// ErrorSet collects unique error description strings. Duplicate texts
// collapse to a single entry. The zero value is not usable; call
// NewErrorSet.
type ErrorSet struct {
	seen  map[string]struct{}
	items []string
}

// NewErrorSet returns an empty ErrorSet.
func NewErrorSet() *ErrorSet {
	return &ErrorSet{seen: make(map[string]struct{})}
}

// Add records an error text, ignoring empty strings and duplicates.
func (s *ErrorSet) Add(text string) {
	if text == "" {
		return
	}
	if _, ok := s.seen[text]; ok {
		return
	}
	s.seen[text] = struct{}{}
	s.items = append(s.items, text)
}

// Merge adds every entry of other into s.
func (s *ErrorSet) Merge(other *ErrorSet) {
	if other == nil {
		return
	}
	for _, text := range other.items {
		s.Add(text)
	}
}

// Len returns the number of unique entries.
func (s *ErrorSet) Len() int {
	return len(s.items)
}

// Format joins the entries with "; " and hard-truncates the result to
// maxLen runes. Entries are sorted so the formatted log does not depend on
// the order outcomes were folded in.
func (s *ErrorSet) Format(maxLen int) string {
	if len(s.items) == 0 {
		return ""
	}
	sorted := make([]string, len(s.items))
	copy(sorted, s.items)
	sort.Strings(sorted)
	joined := strings.Join(sorted, "; ")
	if maxLen <= 0 {
		return joined
	}
	runes := []rune(joined)
	if len(runes) <= maxLen {
		return joined
	}
	return string(runes[:maxLen])
}
