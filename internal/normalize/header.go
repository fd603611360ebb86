// Package normalize turns raw spreadsheet exports into domain records:
// header repair, filename codes, column resolution and value coercion.
package normalize

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// boilerplate is removed wherever it appears in a header. The accent-less
// spellings are what the LMS export leaves behind after mangling.
var boilerplate = []string{
	"Questionrio:",
	"Questionário:",
	"Frum:",
	"Fórum:",
	"(Real)",
}

// CleanHeader repairs UTF-8 text that was decoded as Latin-1, strips export
// boilerplate and trims whitespace. Clean ASCII input is returned unchanged.
func CleanHeader(raw string) string {
	name := repairMojibake(raw)
	for _, marker := range boilerplate {
		name = strings.ReplaceAll(name, marker, "")
	}
	return norm.NFC.String(strings.TrimSpace(name))
}

// CleanHeaders applies CleanHeader to every column name.
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = CleanHeader(h)
	}
	return cleaned
}

// repairMojibake re-encodes as ISO-8859-1 and reinterprets the bytes as UTF-8.
// Any failure (rune outside Latin-1, invalid UTF-8 result) keeps the original.
func repairMojibake(s string) string {
	encoded, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return s
	}
	if !utf8.ValidString(encoded) {
		return s
	}
	return encoded
}
