// Package sanitize cleans free text that reaches carbonpath from tool clients
// and imported catalogs before it is stored or echoed back to an agent. It
// strips control characters, XML/HTML tags, markdown hierarchy markers and
// code fences so a path name or technology description cannot smuggle
// instructions into a client's context.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the maximum allowed length for descriptions.
const MaxTextLength = 2000

// MaxNameLength is the maximum allowed length for names and identifiers.
const MaxNameLength = 80

// rule is one rewrite in the Text pipeline.
type rule struct {
	re   *regexp.Regexp
	with string
}

// textRules run in order after control characters are removed.
var textRules = []rule{
	// tags, attributes included, and <?...?> processing instructions
	{regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`), ""},
	// headings become list items
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), "- "},
	// horizontal rules
	{regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`), ""},
	// code fences
	{regexp.MustCompile("```+"), "`"},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
	underscoreRun = regexp.MustCompile(`_{2,}`)
)

// Text cleans multi-line free text such as a technology description: control
// characters except newline and tab are dropped, markup is neutralized, runs
// of blank lines are collapsed and the result is cut to MaxTextLength with a
// trailing ellipsis.
func Text(input string) string {
	if input == "" {
		return ""
	}
	s := strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
	for _, r := range textRules {
		s = r.re.ReplaceAllString(s, r.with)
	}
	s = strings.TrimSpace(s)
	if len(s) > MaxTextLength {
		s = truncate(s, MaxTextLength) + "..."
	}
	return s
}

// Name cleans a single-line display name such as a path or country name.
func Name(input string) string {
	s := strings.TrimSpace(whitespaceRun.ReplaceAllString(Text(input), " "))
	if len(s) > MaxNameLength {
		s = strings.TrimSpace(truncate(s, MaxNameLength))
	}
	return s
}

// Identifier keeps only [a-zA-Z0-9-_./] of an author or technology id,
// collapses repeated hyphens and underscores, and cuts to MaxNameLength.
func Identifier(input string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '/', r == '.':
			return r
		}
		return -1
	}, input)
	s = hyphenRun.ReplaceAllString(s, "-")
	s = underscoreRun.ReplaceAllString(s, "_")
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
