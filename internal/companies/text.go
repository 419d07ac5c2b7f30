package companies

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText prepares a free text CRM field for the guide. The CRM editor may
// store HTML; tags are stripped and block elements become line breaks.
// Blank lines are dropped and each line is trimmed.
func CleanText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.Contains(raw, "<") {
		return cleanWhitespace(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return cleanWhitespace(raw)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return cleanWhitespace(doc.Find("body").Text())
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// Key is the asset key of a company: its name with spaces replaced by "_".
func Key(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}
