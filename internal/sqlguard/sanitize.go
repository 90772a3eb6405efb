// Package sqlguard implements the read-only admission policy for
// caller-supplied T-SQL: lexical sanitization, a keyword-denylist validator,
// and row-limit resolution. Everything here is pure; no I/O.
package sqlguard

import "strings"

// sanitizer states for the single-pass scan.
type scanState int

const (
	stateNormal scanState = iota
	stateLineComment
	stateBlockComment
	stateString
	stateBracket
)

// Sanitize strips lexical noise from SQL text: block comments, line
// comments, single-quoted string literals (with doubled-quote escaping),
// and bracket-delimited identifiers. Each removed span becomes a single
// space so adjacent tokens never join. A single pass avoids the
// backtracking pitfalls of nested regex replacement and handles
// unterminated constructs by dropping them through end of input.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	state := stateNormal
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case stateNormal:
			switch {
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				state = stateBlockComment
				i++
			case c == '-' && i+1 < len(text) && text[i+1] == '-':
				state = stateLineComment
				i++
			case c == '\'':
				state = stateString
			case c == '[':
				state = stateBracket
			default:
				b.WriteByte(c)
			}
		case stateLineComment:
			if c == '\n' {
				b.WriteByte(' ')
				b.WriteByte('\n')
				state = stateNormal
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				i++
				b.WriteByte(' ')
				state = stateNormal
			}
		case stateString:
			if c == '\'' {
				// Doubled quote is an escaped quote inside the literal.
				if i+1 < len(text) && text[i+1] == '\'' {
					i++
					continue
				}
				b.WriteByte(' ')
				state = stateNormal
			}
		case stateBracket:
			if c == ']' {
				b.WriteByte(' ')
				state = stateNormal
			}
		}
	}
	// Unterminated comment/string/bracket: the span is dropped entirely.
	if state != stateNormal {
		b.WriteByte(' ')
	}
	return b.String()
}
