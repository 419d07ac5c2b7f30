// Package rendering renders company records into LaTeX fair guide pages.
package rendering

import "strings"

// EscapeLaTeX escapes characters reserved by LaTeX.
// Special characters: \ { } $ & % # ^ _ ~
// Straight double quotes become '' and runs of three or more dots \ldots{}.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	runes := []rune(text)
	var result strings.Builder
	result.Grow(len(text) * 2) // Pre-allocate space for potential escaping

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		case '"':
			result.WriteString(`''`)
		case '.':
			n := dotRun(runes, i)
			if n >= 3 {
				result.WriteString(`\ldots{}`)
				i += n - 1
				continue
			}
			result.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

func dotRun(runes []rune, start int) int {
	n := 0
	for start+n < len(runes) && runes[start+n] == '.' {
		n++
	}
	return n
}

// NewlineToBreak turns embedded line breaks into forced LaTeX line breaks.
func NewlineToBreak(text string) string {
	return strings.ReplaceAll(text, "\n", "\\\\\n")
}

// Path prepares a file path for \includegraphics and \includepdf.
func Path(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
