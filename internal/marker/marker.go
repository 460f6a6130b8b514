// Package marker builds the note tags that tie derived ledger entries back
// to the savings goal, planned entry or recurring definition that produced
// them. Ledger rows carry no foreign key to their source, so the exact text
// written here is what cleanup and idempotency checks search for later.
package marker

import "strings"

// Savings tags a mirrored deposit. The goal id is used rather than the goal
// name so renaming a goal does not orphan its ledger rows.
func Savings(goalID string) string {
	return "[AHORRO:" + goalID + "]"
}

// Planned tags the entry created when a planned entry is settled.
func Planned(concept string) string {
	return "[PLANNED:" + concept + "]"
}

// Recurring tags an entry posted from a recurring definition.
func Recurring(concept string) string {
	return "[RECURRING:" + concept + "]"
}

// Note prefixes free text with tag. Empty text yields the bare tag.
func Note(tag string, text *string) string {
	if text == nil {
		return tag
	}
	t := strings.TrimSpace(*text)
	if t == "" {
		return tag
	}
	return tag + " " + t
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsClause is the WHERE fragment matching a note that contains the
// pattern returned by ContainsPattern.
const ContainsClause = `note LIKE ? ESCAPE '\'`

// ContainsPattern returns a LIKE pattern matching any note that contains
// tag literally.
func ContainsPattern(tag string) string {
	return "%" + likeEscaper.Replace(tag) + "%"
}
