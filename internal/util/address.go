package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// Unicode spaces, \v and BOM count as whitespace
	emailRe     = regexp.MustCompile(`^[^\s\x0B\x{FEFF}\p{Z}@]+@[^\s\x0B\x{FEFF}\p{Z}@]+\.[^\s\x0B\x{FEFF}\p{Z}@]+$`)
	separatorRe = regexp.MustCompile(`[._-]`)
)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// LocalPart returns the text before the first '@' (the whole string when there is none).
func LocalPart(addr string) string {
	if i := strings.IndexByte(addr, '@'); i >= 0 {
		return addr[:i]
	}
	return addr
}

// BareAddress strips an optional display name: "Jane <jane@x.com>" -> "jane@x.com".
func BareAddress(from string) string {
	from = strings.TrimSpace(from)
	open := strings.LastIndexByte(from, '<')
	end := strings.LastIndexByte(from, '>')
	if open >= 0 && end > open {
		return strings.TrimSpace(from[open+1 : end])
	}
	return from
}

// DisplayName derives a human name for a From value.
//
//	"Jane Doe <jane@x.com>" -> "Jane Doe"
//	"jane.doe@x.com"        -> "Jane doe"
func DisplayName(from string) string {
	from = strings.TrimSpace(from)
	if i := strings.IndexByte(from, '<'); i > 0 {
		name := strings.Trim(strings.TrimSpace(from[:i]), `"'`)
		if name != "" {
			return name
		}
	}

	local := separatorRe.ReplaceAllString(LocalPart(BareAddress(from)), " ")
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError {
		return local
	}
	return string(unicode.ToUpper(r)) + local[size:]
}

// FirstName is the first word of DisplayName.
func FirstName(from string) string {
	name := DisplayName(from)
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
