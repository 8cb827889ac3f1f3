// Package templates embeds and parses the server-rendered pages.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"heartbridge/internal/models"
)

//go:embed files/*.tmpl
var files embed.FS

// Load parses every page and partial into one template set.
// Pages are executed by file name, e.g. "feed.tmpl".
func Load() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(files, "files/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// FuncMap holds the helpers available to every page
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
		"roleColor": func(r models.Role) string {
			return r.Color()
		},
		"roleLabel": func(r models.Role) string {
			return r.Label()
		},
		"avatarURL": func(name string) string {
			if name == "" {
				return ""
			}
			return "/avatars/" + name
		},
		"humanBytes": humanBytes,
		"percent": func(p float64) string {
			return fmt.Sprintf("%.1f%%", p)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
