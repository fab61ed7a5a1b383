package query

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/travelpass/dashboard/core/schema"
)

const (
	displayDate = "02/01/2006"
	isoDate     = "2006-01-02"
)

// textMatcher lowers text and renders values the way the dashboard displays
// them. A cases.Caser and a message.Printer keep internal state, so one
// textMatcher is built per Filter call and never shared between goroutines.
type textMatcher struct {
	lower   cases.Caser
	printer *message.Printer
}

func newTextMatcher() *textMatcher {
	return &textMatcher{
		lower:   cases.Lower(language.Vietnamese),
		printer: message.NewPrinter(language.Vietnamese),
	}
}

// Fold lower-cases s with Unicode-aware rules.
func (m *textMatcher) Fold(s string) string {
	return m.lower.String(s)
}

// Contains reports whether any rendering of value contains the folded needle.
func (m *textMatcher) Contains(value any, needle string) bool {
	for _, rendering := range m.Render(value) {
		if strings.Contains(m.Fold(rendering), needle) {
			return true
		}
	}
	return false
}

// Render returns every textual form a value is displayed in. Absent values
// and composite values have no rendering.
func (m *textMatcher) Render(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if t, ok := schema.ParseTime(v); ok {
			return []string{v, t.Format(displayDate)}
		}
		return []string{v}
	case bool:
		return []string{strconv.FormatBool(v)}
	case time.Time:
		return []string{v.Format(displayDate), v.Format(isoDate), v.Format(time.RFC3339)}
	}

	if f, ok := numberOf(value); ok {
		return []string{
			strconv.FormatFloat(f, 'f', -1, 64),
			m.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2))),
		}
	}
	return nil
}

// FormatNumber renders n with vi-VN digit grouping ("500.000").
func FormatNumber(n float64) string {
	return message.NewPrinter(language.Vietnamese).Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
}

// FormatDate renders t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(displayDate)
}
