package sheet

import (
	"regexp"
	"strings"
)

// AuthorField is the record field the author validator inspects
const AuthorField = "author"

// wellFormedAuthor matches "Surname, Given" with Unicode letter tokens,
// allowing apostrophes and hyphens inside names
var wellFormedAuthor = regexp.MustCompile(`^\s*[\p{L}'-]+,\s*[\p{L}'-]+\s*$`)

// AuthorWellFormed reports whether a value already follows the
// "Surname, Given" format
func AuthorWellFormed(raw string) bool {
	return wellFormedAuthor.MatchString(raw)
}

// NormalizeAuthor rewrites a free-form author value to "Surname, Given".
// Well-formed input is returned unchanged with changed=false. Otherwise
// the value is split on whitespace: the first token is the given name, the
// second the surname. Fewer than two tokens, or tokens that do not form a
// well-formed result (a stray comma, digits), is a format error; the
// caller reports it instead of writing a corrupted value back.
func NormalizeAuthor(raw string) (normalized string, changed bool, ok bool) {
	if AuthorWellFormed(raw) {
		return raw, false, true
	}

	tokens := strings.Fields(raw)
	if len(tokens) < 2 {
		return "", false, false
	}

	given, surname := tokens[0], tokens[1]
	rewritten := surname + ", " + given
	if !AuthorWellFormed(rewritten) {
		return "", false, false
	}
	return rewritten, true, true
}
