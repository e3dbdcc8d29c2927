package core

import (
	"strings"
	"unicode"
)

// FallbackName is used when derivation yields nothing usable.
const FallbackName = "Untitled"

// ellipsis marks a truncated name. ASCII on purpose: some sync layers
// mangle the Unicode ellipsis.
const ellipsis = "..."

// illegalRunes are rejected for the target filesystems.
const illegalRunes = `\/:*?"<>|#^[]`

// reservedStems are device names that cannot be used as filenames on
// Windows, matched case-insensitively against the derived stem.
var reservedStems = func() map[string]struct{} {
	names := []string{"CON", "PRN", "AUX", "NUL"}
	for i := 0; i <= 9; i++ {
		names = append(names, "COM"+string(rune('0'+i)), "LPT"+string(rune('0'+i)))
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}()

// emojiRanges covers the pictographic blocks stripped from derived names
// unless Config.PreserveEmoji is set.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1}, // zero-width joiner
		{Lo: 0x20E3, Hi: 0x20E3, Stride: 1}, // combining enclosing keycap
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1}, // miscellaneous symbols
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1}, // dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // arrows, stars
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1}, // variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport
		{Lo: 0x1F700, Hi: 0x1F77F, Stride: 1}, // alchemical symbols
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental pictographs
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // extended pictographs
	},
}

// Derive computes a filesystem-safe filename stem from document content.
// It is pure: no I/O, no randomness, identical inputs yield identical
// output. The result carries no extension and no container path.
func Derive(content string, cfg Config) string {
	if cfg.SkipFrontMatter {
		content = skipFrontMatter(content)
	}

	working := content
	if cfg.UseLeadingHeading {
		if heading, ok := leadingHeading(working); ok {
			working = heading
		}
	}

	stem := scan(working, cfg.MaxStemLength, cfg.StopAtFirstLine)

	if !cfg.PreserveEmoji {
		stem = stripEmoji(stem)
	}

	// Collapse whitespace runs and trim the edges.
	stem = strings.Join(strings.Fields(stem), " ")

	// Dot-prefixed names are hidden or special on most filesystems.
	stem = strings.TrimLeft(stem, ".")

	if stem == "" {
		return FallbackName
	}
	if _, reserved := reservedStems[strings.ToUpper(stem)]; reserved {
		return FallbackName
	}
	return stem
}

// skipFrontMatter drops a leading front-matter block delimited by lines of
// three hyphens. A missing closing delimiter is not an error: the content
// is returned unchanged.
func skipFrontMatter(content string) string {
	first, rest, found := strings.Cut(content, "\n")
	if !found || strings.TrimRight(first, "\r") != "---" {
		return content
	}

	for rest != "" {
		line, remainder, _ := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == "---" {
			return strings.TrimLeftFunc(remainder, unicode.IsSpace)
		}
		if remainder == "" {
			break
		}
		rest = remainder
	}
	return content
}

// leadingHeading extracts the text of a markdown heading (one to six '#'
// followed by a space) when the content starts with one.
func leadingHeading(content string) (string, bool) {
	level := 0
	for level < len(content) && content[level] == '#' {
		level++
	}
	if level < 1 || level > 6 || level >= len(content) || content[level] != ' ' {
		return "", false
	}
	text := content[level+1:]
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	return text, true
}

// scan walks the working text rune by rune, building the raw stem. maxLen
// counts output-eligible runes; once reached, trailing whitespace is
// trimmed and the ellipsis marker appended.
func scan(text string, maxLen int, stopAtFirstLine bool) string {
	var b strings.Builder
	count := 0

	for _, r := range text {
		if count >= maxLen {
			return trimmedWithEllipsis(b.String())
		}
		switch {
		case r == '\r':
			// Half of a CRLF pair; the '\n' carries the break.
			continue
		case r == '\n':
			if stopAtFirstLine {
				return trimmedWithEllipsis(b.String())
			}
			// Line breaks inside the window become a single space; the
			// whitespace collapse afterwards merges any run.
			b.WriteRune(' ')
			count++
		case strings.ContainsRune(illegalRunes, r):
			// Rejected outright, not counted.
			continue
		default:
			b.WriteRune(r)
			count++
		}
	}
	return b.String()
}

func trimmedWithEllipsis(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace) + ellipsis
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(emojiRanges, r) {
			return -1
		}
		return r
	}, s)
}
