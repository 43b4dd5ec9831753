// Package templates embeds the server-rendered HTML pages.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed *.html
var files embed.FS

// Funcs returns the helpers available to every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02")
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02 15:04")
		},
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},
		"join": func(items []string) string {
			return strings.Join(items, ", ")
		},
		"deref": func(v *uint64) uint64 {
			if v == nil {
				return 0
			}
			return *v
		},
	}
}

// Load parses all embedded pages into one template set.
func Load() (*template.Template, error) {
	tmpl, errParse := template.New("").Funcs(Funcs()).ParseFS(files, "*.html")
	if errParse != nil {
		return nil, fmt.Errorf("parse templates: %w", errParse)
	}
	return tmpl, nil
}
