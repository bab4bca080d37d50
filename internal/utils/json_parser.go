package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyJSON is returned when there is nothing to parse
var ErrEmptyJSON = errors.New("empty input")

var (
	fencedBlock     = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey     = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	repairSequences = []func(string) string{
		strings.TrimSpace,
		unfence,
		firstObject,
		repair,
	}
)

// ParseAIJSON decodes JSON produced by a model into target. Model output is
// not always strict JSON, so the input goes through progressively more
// invasive rewrites (trim, unfence, extract the first object, repair
// trailing commas / unquoted keys / single quotes) until one decodes.
// Type mismatches are not repaired: a string where a number is expected
// stays an error.
func ParseAIJSON(input string, target any) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyJSON
	}

	candidate := input
	var lastErr error
	for _, step := range repairSequences {
		next := step(candidate)
		if next == "" {
			continue
		}
		candidate = next
		if lastErr = json.Unmarshal([]byte(candidate), target); lastErr == nil {
			return nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(lastErr, &typeErr) {
			return fmt.Errorf("field %q: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
	}

	return fmt.Errorf("failed to parse JSON from input %q: %w", truncateString(input, 100), lastErr)
}

// unfence strips a markdown code fence when the whole payload sits in one
func unfence(input string) string {
	if m := fencedBlock.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return input
}

// firstObject cuts the first balanced {...} out of surrounding prose
func firstObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start < 0 {
		return input
	}
	if obj := extractBalanced(input[start:], '{', '}'); obj != "" {
		return obj
	}
	return input
}

// extractBalanced returns the prefix of input up to the brace closing its first character
func extractBalanced(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}
	return ""
}

// repair fixes the syntax slips models make most often
func repair(input string) string {
	s := strings.TrimPrefix(input, "\ufeff")
	s = controlChars.ReplaceAllString(s, "")
	s = singleToDoubleQuotes(s)
	return outsideStrings(s, func(code string) string {
		code = trailingComma.ReplaceAllString(code, "$1")
		return unquotedKey.ReplaceAllString(code, `$1"$2"$3`)
	})
}

// outsideStrings applies fix to the text between double-quoted strings,
// leaving string contents untouched
func outsideStrings(input string, fix func(string) string) string {
	var b strings.Builder
	b.Grow(len(input))
	start := 0
	inString, escape := false, false

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\' && inString:
			escape = true
		case ch == '"' && inString:
			b.WriteString(input[start : i+1])
			start = i + 1
			inString = false
		case ch == '"':
			b.WriteString(fix(input[start:i]))
			start = i
			inString = true
		}
	}

	if inString {
		b.WriteString(input[start:])
	} else {
		b.WriteString(fix(input[start:]))
	}
	return b.String()
}

// singleToDoubleQuotes converts single-quoted strings outside double-quoted ones
func singleToDoubleQuotes(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	inDouble, inSingle, escape := false, false, false

	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteRune('"')
			continue
		case ch == '"' && inSingle:
			b.WriteString(`\"`)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
