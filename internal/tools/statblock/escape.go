package statblock

import (
	"fmt"
	"strconv"
	"strings"
)

// Quoting selects how free text is embedded in the statblock YAML.
type Quoting int

const (
	// QuotingCompat reproduces the legacy converter byte-for-byte: a
	// backslash escape of control and non-ASCII characters wrapped in
	// plain double quotes. Known defect: characters the statblock
	// parser treats specially (embedded quotes among them) pass
	// through unescaped, so a handful of records render incorrectly.
	// Kept as the default for compatibility with existing vaults.
	QuotingCompat Quoting = iota

	// QuotingStrict emits a fully escaped double-quoted scalar, fixing
	// the records that the compat mode mangles at the cost of output
	// that differs from legacy documents.
	QuotingStrict
)

// escapeText applies the legacy escape: backslash doubling, named escapes
// for common control characters, \xNN for other control and Latin-1
// characters, and \uNNNN / \UNNNNNNNN for everything else outside ASCII.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x7f:
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	return b.String()
}

// quote wraps a composed statblock value in double quotes.
func (q Quoting) quote(s string) string {
	if q == QuotingStrict {
		return strconv.Quote(s)
	}
	return `"` + s + `"`
}

// quoteText quotes a free-text value, escaping it first.
func (q Quoting) quoteText(s string) string {
	if q == QuotingStrict {
		return strconv.Quote(s)
	}
	return `"` + escapeText(s) + `"`
}
