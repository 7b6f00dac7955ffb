// Package format holds the display formatting shared by document payloads
// and API responses. Every date and money field that reaches a template
// goes through these two functions; nothing formats ad hoc.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout renders as e.g. "March 15, 2023".
const dateLayout = "January 2, 2006"

// Date formats a calendar date for templates and display. Nil dates render
// as an empty string so templates never see a fabricated date.
func Date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// Currency renders a money amount as "$1,234.56". Negative amounts keep
// the sign in front of the dollar symbol.
func Currency(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)

	// Insert thousands separators into the integer part.
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	out := "$" + b.String() + frac
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

// Summary trims long narrative text for list views, cutting at a word
// boundary where possible.
func Summary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && i < len(s) && s[i] != ' ' {
		i--
	}
	if i <= 0 {
		i = max
	}
	return s[:i] + "…"
}
