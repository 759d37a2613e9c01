// Package templates renders the dashboard HTML.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box for a failed request.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><strong>%s</strong> <span class="code">(%s)</span><p>%s</p></div>`,
			templ.EscapeString(message), templ.EscapeString(code), templ.EscapeString(action))
		return err
	})
}

// KPICard renders one headline statistic.
func KPICard(label, value, accent string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="card" style="border-top:4px solid %s"><small>%s</small><h2>%s</h2></div>`,
			templ.EscapeString(accent), templ.EscapeString(label), templ.EscapeString(value))
		return err
	})
}

// FormatOptional renders a nil statistic as a dash and others with two
// decimals.
func FormatOptional(v *float64, unit string) string {
	if v == nil {
		return "–"
	}
	if unit == "" {
		return fmt.Sprintf("%.2f", *v)
	}
	return fmt.Sprintf("%.2f %s", *v, unit)
}
