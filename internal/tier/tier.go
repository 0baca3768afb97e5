// Package tier maps the many historical tier spellings onto the five
// canonical listing tiers.
package tier

import "strings"

type Tier string

const (
	Megajob   Tier = "megajob"
	Premium   Tier = "premium"
	Prime     Tier = "prime"
	Latest    Tier = "latest"
	Newspaper Tier = "newspaper"
)

// All lists the canonical tiers in display order.
var All = []Tier{Megajob, Premium, Prime, Latest, Newspaper}

var aliases = map[string]Tier{
	"megajob":       Megajob,
	"mega_job":      Megajob,
	"premium":       Premium,
	"premium_job":   Premium,
	"prime":         Prime,
	"prime_job":     Prime,
	"latest":        Latest,
	"latest_job":    Latest,
	"newspaper":     Newspaper,
	"newspaper_job": Newspaper,
}

// Normalize resolves raw case-insensitively. Whitespace is not trimmed.
func Normalize(raw string) (Tier, bool) {
	if raw == "" {
		return "", false
	}
	t, ok := aliases[strings.ToLower(raw)]
	return t, ok
}

// Paid reports whether t is one of the paid placement tiers. Online postings
// outside these also show up under latest.
func (t Tier) Paid() bool {
	return t == Megajob || t == Premium || t == Prime
}

// Valid reports whether t is canonical (aliases are not).
func (t Tier) Valid() bool {
	c, ok := aliases[string(t)]
	return ok && c == t
}

// priority is keyed by the stored tier string, not the normalized tier, so
// mega_job and friends score 0.
var priority = map[string]int{
	"megajob":       5,
	"premium":       4,
	"prime":         3,
	"latest":        2,
	"latest_job":    2,
	"newspaper":     1,
	"newspaper_job": 1,
}

// Priority ranks a raw tier string for tie-breaking. Unknown strings score 0.
func Priority(raw string) int {
	return priority[raw]
}
