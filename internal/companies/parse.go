package companies

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// listMarker wraps every item of a CRM multi-select value: ^a^,^b^
const listMarker = "^"

// ParseList splits a CRM multi-select value of the form ^a^,^b^ into its
// items. A missing marker on either side is tolerated. Empty input and empty
// items are dropped; the result is never nil.
func ParseList(raw string) []string {
	items := []string{}
	if strings.TrimSpace(raw) == "" {
		return items
	}
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		item = strings.TrimPrefix(item, listMarker)
		item = strings.TrimSuffix(item, listMarker)
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseCount keeps only the digits of a free text number ("ca. 1'200 MA").
// It reports false when no digit is present.
func ParseCount(raw string) (int64, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		// more digits than fit into int64
		return 0, false
	}
	return n, true
}

// FormatCount renders n with a go-humanize integer pattern such as "#'###.".
func FormatCount(pattern string, n int64) string {
	if pattern == "" {
		return strconv.FormatInt(n, 10)
	}
	return humanize.FormatInteger(pattern, int(n))
}

// CheckCountFormat reports whether pattern is accepted by go-humanize, which
// panics on malformed patterns.
func CheckCountFormat(pattern string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid count format %q: %v", pattern, r)
		}
	}()
	_ = FormatCount(pattern, 1234567)
	return nil
}
