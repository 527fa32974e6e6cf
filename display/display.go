// Package display renders prediction results as the text shown to the user.
package display

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter prints amounts in the configured locale, so 2700 shows as
// "2,700.00" for en-US.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

func NewFormatter(locale, symbol string) (*Formatter, error) {
	if locale == "" {
		locale = "en-US"
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("display locale %q: %w", locale, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}, nil
}

// Sales is the success line.
func (f *Formatter) Sales(v float64) string {
	return f.printer.Sprintf("Predicted Item Outlet Sales: %s%.2f", f.symbol, v)
}

// Failure is the error line. The cause text is kept verbatim.
func (f *Formatter) Failure(err error) string {
	return "Error during prediction: " + err.Error()
}
