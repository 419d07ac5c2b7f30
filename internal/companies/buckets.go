package companies

import "strings"

// Buckets is the offering list split into the three groups the guide shows.
type Buckets struct {
	FullTime   bool
	EntryLevel []ListItem
	Thesis     []ListItem
}

// Classify sorts offering tokens into buckets. A token can land in no bucket
// or in several. Output order follows the vocabulary, not the input, and the
// final item of each list is marked.
func (v Vocabulary) Classify(tokens []string) Buckets {
	present := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		present[normalizeToken(token)] = true
	}

	var b Buckets
	for _, token := range v.FullTime {
		if present[normalizeToken(token)] {
			b.FullTime = true
			break
		}
	}
	b.EntryLevel = pick(v.EntryLevel, present)
	b.Thesis = pick(v.Thesis, present)
	return b
}

func pick(labels []Label, present map[string]bool) []ListItem {
	items := []ListItem{}
	for _, l := range labels {
		if present[normalizeToken(l.Token)] {
			items = append(items, ListItem{Text: l.Label})
		}
	}
	if len(items) > 0 {
		items[len(items)-1].Last = true
	}
	return items
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JoinItems joins list items for plain text output, using lastSep before the
// item marked Last: "Semester, Bachelor und Master".
func JoinItems(items []ListItem, sep, lastSep string) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			if item.Last {
				sb.WriteString(lastSep)
			} else {
				sb.WriteString(sep)
			}
		}
		sb.WriteString(item.Text)
	}
	return sb.String()
}
