package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders operand strings for display. The integer part is grouped
// using the locale's convention; the decimal part is shown verbatim.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	symbols numberSymbols
}

func NewFormatter(tag language.Tag) Formatter {
	p := message.NewPrinter(tag)
	return Formatter{tag: tag, printer: p, symbols: symbolsFor(p)}
}

// ParseLocale resolves a BCP 47 tag such as "en", "de-CH" or "hi-IN".
func ParseLocale(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und, fmt.Errorf("parse locale: empty tag")
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parse locale %q: %w", s, err)
	}
	return tag, nil
}

func (f Formatter) Locale() language.Tag { return f.tag }

// FormatForDisplay splits value on the first '.' and groups the integer part.
// An integer part that is not a number (for example the empty string before a
// bare ".") renders as nothing, so "." displays as "." and "3." as "3.".
func (f Formatter) FormatForDisplay(value string) string {
	intPart, decPart, hasDecimal := strings.Cut(value, ".")
	display := f.formatInteger(intPart)
	if hasDecimal {
		return display + "." + decPart
	}
	return display
}

// formatInteger groups the shortest round-trip digits of s, so a stored
// 1e24 shows as 1,000,000,000,000,000,000,000,000 and not as its binary
// expansion. A negative zero keeps its sign.
func (f Formatter) formatInteger(s string) string {
	v, ok := parseNumber(s)
	if !ok || math.IsNaN(v) {
		return ""
	}
	if f.printer == nil {
		f = NewFormatter(language.Und)
	}
	body := "∞"
	if !math.IsInf(v, 0) {
		digits, _, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'f', -1, 64), ".")
		body = f.symbols.group(digits)
	}
	if math.Signbit(v) {
		return f.symbols.minusPrefix + body + f.symbols.minusSuffix
	}
	return body
}

// numberSymbols is how a locale writes an integer: its digits, group
// separator, group sizes and minus sign.
type numberSymbols struct {
	digits      [10]rune
	separator   string
	primary     int // rightmost group
	secondary   int // every group left of it
	minusPrefix string
	minusSuffix string
}

var asciiSymbols = numberSymbols{
	digits:      [10]rune{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'},
	separator:   ",",
	primary:     3,
	secondary:   3,
	minusPrefix: "-",
}

// groupingReference holds every digit, 1-9 then 0, in its first ten places.
const groupingReference int64 = 1234567890123456

// symbolsFor reads the locale's symbols back out of p's rendering of
// groupingReference and of -1.
func symbolsFor(p *message.Printer) numberSymbols {
	s := asciiSymbols
	ref := p.Sprintf("%v", number.Decimal(groupingReference))

	var (
		seq    []rune
		groups []int
		sep    strings.Builder
		n      int
	)
	for _, r := range ref {
		if !unicode.IsDigit(r) {
			if len(seq) > 0 {
				sep.WriteRune(r)
			}
			continue
		}
		if sep.Len() > 0 {
			if len(groups) == 0 {
				s.separator = sep.String()
			}
			groups = append(groups, n)
			n = 0
			sep.Reset()
		}
		seq = append(seq, r)
		n++
	}
	groups = append(groups, n)
	if len(seq) != 16 {
		return asciiSymbols
	}
	s.digits[0] = seq[9]
	for i := 1; i <= 9; i++ {
		s.digits[i] = seq[i-1]
	}

	switch len(groups) {
	case 1:
		s.separator = ""
	case 2:
		s.primary = groups[1]
		s.secondary = groups[1]
	default:
		s.primary = groups[len(groups)-1]
		s.secondary = groups[len(groups)-2]
	}

	minus := p.Sprintf("%v", number.Decimal(int64(-1)))
	if i := strings.IndexFunc(minus, unicode.IsDigit); i >= 0 {
		_, size := utf8.DecodeRuneInString(minus[i:])
		s.minusPrefix = minus[:i]
		s.minusSuffix = minus[i+size:]
	}
	return s
}

// group writes ASCII digits in the locale's digits with its separators.
func (s numberSymbols) group(digits string) string {
	n := len(digits)
	breaks := make([]bool, n)
	if s.separator != "" && s.primary > 0 && s.secondary > 0 {
		for i := n - s.primary; i > 0; i -= s.secondary {
			breaks[i] = true
		}
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if breaks[i] {
			b.WriteString(s.separator)
		}
		if c := digits[i]; c >= '0' && c <= '9' {
			b.WriteRune(s.digits[c-'0'])
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}
