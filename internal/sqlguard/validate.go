package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// Policy bounds what the validator admits and what the executor returns.
// Loaded once at startup; borrowed read-only by every request.
type Policy struct {
	EnforceReadonly bool
	MaxQueryChars   int
	MaxRows         int
}

// Rejection reasons. Stable identifiers, safe to match on programmatically.
const (
	ReasonEmpty              = "empty"
	ReasonTooLong            = "too_long"
	ReasonWrongLeadingClause = "wrong_leading_clause"
	ReasonMultipleStatements = "multiple_statements"
	ReasonDisallowedKeyword  = "disallowed_keyword"
	ReasonDisallowedProcCall = "disallowed_procedure_call"
)

// ValidationError is returned when a query is rejected by the read-only
// policy. Token is set for keyword and procedure-call rejections.
type ValidationError struct {
	Reason string
	Token  string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "query is empty"
	case ReasonTooLong:
		return "query exceeds the maximum allowed length"
	case ReasonWrongLeadingClause:
		return "only SELECT (optionally WITH-prefixed) queries are allowed"
	case ReasonMultipleStatements:
		return "multiple statements are not allowed"
	case ReasonDisallowedKeyword:
		return fmt.Sprintf("read-only queries only: found %q", e.Token)
	case ReasonDisallowedProcCall:
		return fmt.Sprintf("stored procedure calls are not allowed: %q", e.Token)
	default:
		return "query rejected: " + e.Reason
	}
}

// read-only SQL: forbid keywords that modify data, schema, or server state.
// This is a conservative lexical denylist, not a parser; do not loosen it
// without compensating controls.
var deniedKeywords = []string{
	"add", "alter", "backup", "begin", "bulk", "commit", "create",
	"delete", "deny", "drop", "exec", "execute", "grant", "insert",
	"into", "merge", "openquery", "openrowset", "opendatasource",
	"reconfigure", "restore", "revoke", "rollback", "save", "set",
	"shutdown", "truncate", "update", "use", "dbcc",
}

var deniedKeywordSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(deniedKeywords))
	for _, w := range deniedKeywords {
		m[w] = struct{}{}
	}
	return m
}()

var (
	leadingClauseRe = regexp.MustCompile(`(?i)^(with|select)\b`)
	identTokenRe    = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// Validate classifies raw query text as admissible under the read-only
// policy. It returns nil (admitted) or a *ValidationError. Pure and
// deterministic: revalidating an admitted query admits it again.
//
// Checks run in order and short-circuit: non-empty, raw length bound,
// leading clause, single statement, keyword denylist, sp_/xp_ prefix guard.
// The latter four run against the sanitized text so keywords cannot hide in
// comments, string literals, or bracketed identifiers - and conversely a
// column legitimately named after a keyword, when bracket-quoted, is not
// flagged.
func Validate(raw string, policy Policy) error {
	if !policy.EnforceReadonly {
		return nil
	}
	if strings.TrimSpace(raw) == "" {
		return &ValidationError{Reason: ReasonEmpty}
	}
	if len(raw) > policy.MaxQueryChars {
		return &ValidationError{Reason: ReasonTooLong}
	}

	cleaned := Sanitize(raw)

	lead := strings.TrimLeft(cleaned, " \t\r\n")
	if !leadingClauseRe.MatchString(lead) {
		return &ValidationError{Reason: ReasonWrongLeadingClause}
	}

	// A single trailing semicolon is tolerated; any other semicolon means
	// a second statement.
	trimmed := strings.TrimRight(cleaned, " \t\r\n")
	if i := strings.IndexByte(trimmed, ';'); i >= 0 && i != len(trimmed)-1 {
		return &ValidationError{Reason: ReasonMultipleStatements}
	}

	for _, tok := range identTokenRe.FindAllString(cleaned, -1) {
		lower := strings.ToLower(tok)
		if _, denied := deniedKeywordSet[lower]; denied {
			return &ValidationError{Reason: ReasonDisallowedKeyword, Token: lower}
		}
		// Extended/system stored procedures, even without a leading exec.
		if strings.HasPrefix(lower, "xp_") || strings.HasPrefix(lower, "sp_") {
			return &ValidationError{Reason: ReasonDisallowedProcCall, Token: lower}
		}
	}
	return nil
}
