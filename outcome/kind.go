package outcome

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

import "strconv"

// Kind classifies a failed parse attempt.
type Kind uint8

const (
	// KindBacktrack is a recoverable mismatch.
	KindBacktrack Kind = iota + 1 // backtrack
	// KindCut is a confirmed failure on a committed grammar branch.
	KindCut // cut
	// KindIncomplete signals that a partial stream needs more data.
	KindIncomplete // incomplete
)

// Needed reports how much more input an incomplete parse requires.
// The zero value is [Unknown].
type Needed int

// Unknown indicates more input is required but the amount is not known.
const Unknown Needed = 0

// Size returns a [Needed] of at least n more units, or [Unknown] if n is not
// positive.
func Size(n int) Needed {
	if n <= 0 {
		return Unknown
	}

	return Needed(n)
}

// IsKnown reports whether the required amount is known.
func (n Needed) IsKnown() bool { return n > 0 }

// String returns "unknown" or the number of units needed.
func (n Needed) String() string {
	if !n.IsKnown() {
		return "unknown"
	}

	return strconv.Itoa(int(n))
}
