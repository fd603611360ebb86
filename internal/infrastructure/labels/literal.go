package labels

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	errAssignmentMissing = errors.New("assignment not found")
	errUnbalanced        = errors.New("unbalanced braces")
)

// extractLiteral finds "name = {" in code and returns the brace-balanced
// literal that follows. Comments are dropped, line breaks become spaces,
// trailing commas before a closing brace are removed and every quoted string
// is rewritten as a YAML double-quoted scalar, which leaves a flow mapping
// that YAML can decode.
func extractLiteral(code, name string) (string, error) {
	start, err := findAssignment(code, name)
	if err != nil {
		return "", err
	}
	return scanBraces(code[start:])
}

func findAssignment(code, name string) (int, error) {
	for offset := 0; offset < len(code); {
		idx := strings.Index(code[offset:], name)
		if idx < 0 {
			break
		}
		pos := offset + idx
		offset = pos + len(name)

		if pos > 0 {
			prev, _ := utf8.DecodeLastRuneInString(code[:pos])
			if isIdentRune(prev) {
				continue
			}
		}
		lineStart := strings.LastIndex(code[:pos], "\n") + 1
		if strings.Contains(code[lineStart:pos], "#") {
			continue
		}

		rest := strings.TrimLeft(code[offset:], " \t")
		if !strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, "==") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " \t\r\n")
		if !strings.HasPrefix(rest, "{") {
			continue
		}
		return len(code) - len(rest), nil
	}
	return 0, fmt.Errorf("%w: %s", errAssignmentMissing, name)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanBraces expects src to start with '{'.
func scanBraces(src string) (string, error) {
	var (
		out       []byte
		depth     int
		quote     rune
		escaped   bool
		inComment bool
	)

	for _, r := range src {
		if inComment {
			if r == '\n' {
				inComment = false
				out = append(out, ' ')
			}
			continue
		}

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
				out = appendEscape(out, r)
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
				out = append(out, '"')
			case r == '"':
				out = append(out, '\\', '"')
			default:
				out = utf8.AppendRune(out, r)
			}
			continue
		}

		switch r {
		case '#':
			inComment = true
			continue
		case '"', '\'':
			quote = r
			r = '"'
		case '{':
			depth++
		case '}':
			depth--
			out = trimTrailingComma(out)
		case '\n', '\r', '\t':
			r = ' '
		}
		out = utf8.AppendRune(out, r)

		if depth == 0 {
			return string(out), nil
		}
	}
	return "", errUnbalanced
}

// appendEscape writes the Python escape sequence backslash-c in YAML's
// double-quoted syntax. A single quote loses its backslash; the remaining
// escapes are shared by both languages.
func appendEscape(out []byte, c rune) []byte {
	switch c {
	case '\'':
		return append(out, '\'')
	case '"':
		return append(out, '\\', '"')
	}
	out = append(out, '\\')
	return utf8.AppendRune(out, c)
}

func trimTrailingComma(out []byte) []byte {
	trimmed := strings.TrimRight(string(out), " ")
	if strings.HasSuffix(trimmed, ",") {
		return []byte(strings.TrimSuffix(trimmed, ","))
	}
	return out
}
