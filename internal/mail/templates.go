package mail

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func render(name string, data any) (string, error) {
	var out strings.Builder
	if err := templates.ExecuteTemplate(&out, name+".html", data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return out.String(), nil
}
