package insight

import "strings"

// Dedupe collapses day-level insights whose normalized titles collide,
// keeping the entry with the most supporting evidence as the survivor. Runs
// over the accumulated corpus before meta-merging so repeated daily themes
// don't dominate the synthesis input.
func Dedupe(insights []Insight) []Insight {
	survivors := make([]Insight, 0, len(insights))
	byTitle := make(map[string]int)

	for _, in := range insights {
		key := normalizeTitle(in.Title)
		idx, seen := byTitle[key]
		if !seen {
			byTitle[key] = len(survivors)
			survivors = append(survivors, in)
			continue
		}
		if len(in.SupportingEvidence) > len(survivors[idx].SupportingEvidence) {
			survivors[idx] = in
		}
	}
	return survivors
}

func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
