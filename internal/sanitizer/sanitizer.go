// Package sanitizer normalizes extracted text before it is moderated or stored.
package sanitizer

import (
	"regexp"
	"strings"
)

var (
	scriptBlock   = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	eventHandler  = regexp.MustCompile(`(?i)\bon\w+\s*=\s*(?:"[^"]*"|'[^']*')`)
	excessNewline = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips C0 control characters (except tab, newline, and carriage return),
// removes script blocks and inline event-handler attributes, collapses runs of three or
// more newlines to two, and trims surrounding whitespace.
//
// Control characters are removed first so they cannot split a script tag past the filter.
// Sanitize is idempotent.
func Sanitize(text string) string {
	text = StripControl(text)

	for {
		next := eventHandler.ReplaceAllString(scriptBlock.ReplaceAllString(text, ""), "")
		if next == text {
			break
		}
		text = next
	}

	text = excessNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// StripControl removes C0 control characters other than \t, \n, and \r.
func StripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, text)
}
