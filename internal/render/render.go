package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/pfrederiksen/skydaily/internal/daily"
)

// DefaultTitle heads the page when Options.Title is empty.
const DefaultTitle = "Sky: Children of the Light"

//go:embed templates/*.tmpl
var templateFS embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html.tmpl").Funcs(template.FuncMap{
	"countdown": func(secs int) string {
		return clock.FormatCountdown(time.Duration(secs) * time.Second)
	},
	"join": strings.Join,
}).ParseFS(templateFS, "templates/dashboard.html.tmpl"))

// Options tunes the page.
type Options struct {
	Title string
	// CalendarURL adds a subscription link when set.
	CalendarURL string
}

// Dashboard writes the HTML page for r. Nil report sections are rendered as
// error cards.
func Dashboard(w io.Writer, r *daily.Report, opts Options) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}
	if err := dashboardTmpl.Execute(w, buildPage(r, opts)); err != nil {
		return fmt.Errorf("executing dashboard template: %w", err)
	}
	return nil
}
