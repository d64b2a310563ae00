// Package naming derives Dart identifiers, class name segments and file names
// from raw filesystem segments.
package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// delimiterRun matches one or more '-' or '_' followed by any character.
	delimiterRun = regexp.MustCompile(`[-_]+(.)`)

	// digitLetter matches a letter that directly follows a digit.
	digitLetter = regexp.MustCompile(`[0-9][a-z]`)

	// nonAlnum matches every character outside [A-Za-z0-9].
	nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

	// nonSnake matches runs of characters that are not allowed in file stems.
	nonSnake = regexp.MustCompile(`[^a-z0-9]+`)
)

// reserved lists Dart keywords that cannot be used as member names.
var reserved = map[string]struct{}{
	"class":   {},
	"switch":  {},
	"return":  {},
	"default": {},
	"break":   {},
	"if":      {},
	"else":    {},
	"for":     {},
	"var":     {},
	"final":   {},
	"const":   {},
}

// Identifier converts a directory name or file stem into a safe camelCase
// Dart identifier. "my-icon_1" becomes "myIcon1", "class" becomes
// "classAsset" and "123abc" becomes "item123Abc".
func Identifier(segment string) string {
	s := nonAlnum.ReplaceAllString(camel(segment), "")

	if s == "" {
		return "unknown"
	}

	s = lowerFirst(s)

	if s[0] >= '0' && s[0] <= '9' {
		s = "item" + s
	}

	if _, ok := reserved[s]; ok {
		s += "Asset"
	}

	return s
}

// TypeSegment converts a segment into the capitalized form that is appended
// to a parent class name. It returns "Unknown" for segments without any
// usable character.
func TypeSegment(segment string) string {
	s := nonAlnum.ReplaceAllString(camel(segment), "")
	if s == "" {
		return "Unknown"
	}

	return upperFirst(s)
}

// Singular strips a single trailing "s" unless that would leave nothing.
func Singular(name string) string {
	if len(name) > 1 && strings.HasSuffix(name, "s") {
		return name[:len(name)-1]
	}

	return name
}

// CategoryClass returns the private root class name of a category, e.g.
// "images" becomes "_Image".
func CategoryClass(dir string) string {
	return "_" + TypeSegment(Singular(dir))
}

// FileName returns a snake_case file stem for a category directory.
func FileName(dir string) string {
	s := nonSnake.ReplaceAllString(toSnake(dir), "_")
	s = strings.Trim(s, "_")

	if s == "" {
		return "unknown"
	}

	if s[0] >= '0' && s[0] <= '9' {
		s = "item_" + s
	}

	return s
}

// IsReserved reports whether word is one of the Dart keywords that
// Identifier guards against.
func IsReserved(word string) bool {
	_, ok := reserved[word]
	return ok
}

// camel folds delimiter runs into an uppercase next character and
// capitalizes letters that follow a digit.
func camel(s string) string {
	s = delimiterRun.ReplaceAllStringFunc(s, func(m string) string {
		r, _ := utf8.DecodeLastRuneInString(m)
		return string(unicode.ToUpper(r))
	})

	return digitLetter.ReplaceAllStringFunc(s, strings.ToUpper)
}

func lowerFirst(s string) string {
	return strings.ToLower(s[:1]) + s[1:]
}

func upperFirst(s string) string {
	return strings.ToUpper(s[:1]) + s[1:]
}

// toSnake inserts underscores at camelCase boundaries and lowercases.
func toSnake(s string) string {
	var b strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
