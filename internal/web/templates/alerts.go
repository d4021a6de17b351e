// Package templates renders the HTML fragments returned to HTMX clients.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissible error box.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert" data-code="%s"><p class="alert-message">%s</p>`,
			templ.EscapeString(code), templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}

// LicenseBanner renders the license-expiry notice. level picks the style:
// expired, critical, warning or info.
func LicenseBanner(level, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="license-banner license-%s" role="status">%s</div>`,
			templ.EscapeString(level), templ.EscapeString(message))
		return err
	})
}

// ImportSummary renders the outcome of a committed import.
func ImportSummary(inserted int64) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		noun := "orçamentos importados"
		if inserted == 1 {
			noun = "orçamento importado"
		}
		_, err := fmt.Fprintf(w, `<div class="alert alert-success" role="status">%d %s</div>`,
			inserted, templ.EscapeString(noun))
		return err
	})
}
