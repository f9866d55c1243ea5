package jobboard

import "strings"

// nbsp is the non-breaking space character, common in scraped HTML.
const nbsp = "\u00a0"

// Clean collapses whitespace runs (including newlines, tabs, and
// non-breaking spaces) to single spaces, trims the result, and then deletes
// every literal substring in remove. It is total on any input, including
// the empty string.
func Clean(text string, remove ...string) string {
	text = strings.ReplaceAll(text, nbsp, " ")
	text = strings.Join(strings.Fields(text), " ")
	for _, item := range remove {
		if item == "" {
			continue
		}
		text = strings.ReplaceAll(text, item, "")
	}
	return strings.TrimSpace(text)
}
