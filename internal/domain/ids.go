package domain

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// IDFormat selects how generated ids are spelled.
type IDFormat int

const (
	// FormatCompact is base-36 milliseconds followed by six random base-36
	// characters. The collection store uses it.
	FormatCompact IDFormat = iota

	// FormatNumeric is decimal milliseconds followed by a random number in
	// [0, 999]. The merge tool uses it.
	FormatNumeric
)

const (
	compactSuffixLen = 6
	numericSuffixMax = 1000
	base36Digits     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// IDGenerator draws ids that are guaranteed absent from an exclusion set.
// The zero value uses FormatCompact, the wall clock and math/rand/v2.
type IDGenerator struct {
	Format IDFormat

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// IntN returns a random int in [0, n). Defaults to rand.IntN.
	IntN func(n int) int
}

// NewIDGenerator returns a generator for the given format.
func NewIDGenerator(format IDFormat) *IDGenerator {
	return &IDGenerator{Format: format}
}

// Generate returns a candidate id not present in excluded. A colliding
// candidate is redrawn with a fresh suffix. Callers add the result to
// excluded before asking for the next id in the same batch.
func (g *IDGenerator) Generate(excluded IDSet) string {
	for {
		id := g.candidate()
		if !excluded.Has(id) {
			return id
		}
	}
}

func (g *IDGenerator) candidate() string {
	ms := g.now().UnixMilli()

	if g.Format == FormatNumeric {
		return strconv.FormatInt(ms, 10) + strconv.Itoa(g.intn(numericSuffixMax))
	}

	var b strings.Builder
	b.WriteString(strconv.FormatInt(ms, 36))
	for range compactSuffixLen {
		b.WriteByte(base36Digits[g.intn(len(base36Digits))])
	}

	return b.String()
}

func (g *IDGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}

	return time.Now()
}

func (g *IDGenerator) intn(n int) int {
	if g.IntN != nil {
		return g.IntN(n)
	}

	return rand.IntN(n) //nolint:gosec // ids need uniqueness, not unpredictability
}
