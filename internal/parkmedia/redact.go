package parkmedia

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces password values in log output
const RedactedPlaceholder = "*REDACTED*"

var (
	// password=VALUE up to the next '&', quote or whitespace
	formPasswordPattern = regexp.MustCompile(`(password=)[^&\s"]*`)

	// "password": "VALUE" with escaped quotes allowed inside VALUE
	jsonPasswordPattern = regexp.MustCompile(`(password"\s*:\s*")(?:[^"\\]|\\.)*(")`)
)

// RedactPasswords masks every password value in s, in both form encoded
// (password=...) and JSON ("password":"...") shapes.
func RedactPasswords(s string) string {
	s = formPasswordPattern.ReplaceAllString(s, "${1}"+RedactedPlaceholder)
	return jsonPasswordPattern.ReplaceAllString(s, "${1}"+RedactedPlaceholder+"${2}")
}

// RedactCookie masks every value of a Cookie header, keeping the names.
func RedactCookie(header string) string {
	parts := strings.Split(header, ";")
	for i, part := range parts {
		trimmed := strings.TrimLeft(part, " ")
		parts[i] = part[:len(part)-len(trimmed)] + redactCookiePair(trimmed)
	}
	return strings.Join(parts, ";")
}

// RedactSetCookie masks the value of one Set-Cookie header. Attributes such
// as Path and Expires are kept.
func RedactSetCookie(header string) string {
	pair, attrs, found := strings.Cut(header, ";")
	pair = redactCookiePair(pair)
	if found {
		return pair + ";" + attrs
	}
	return pair
}

func redactCookiePair(pair string) string {
	name, _, found := strings.Cut(pair, "=")
	if !found {
		return pair
	}
	return name + "=" + RedactedPlaceholder
}
