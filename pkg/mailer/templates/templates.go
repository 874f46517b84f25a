package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

var subjects = map[string]string{
	"welcome": "Welcome to {{.CompanyName}}",
}

// Render renders the named template into subject, text and html bodies.
// Missing keys render as empty strings.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	subj, ok := subjects[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText("subject", subj, data); err != nil {
		return "", "", "", err
	}

	textSrc, err := FS.ReadFile(name + ".txt.tmpl")
	if err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name, string(textSrc), data); err != nil {
		return "", "", "", err
	}

	ht, err := htmpl.New(name).Option("missingkey=zero").ParseFS(FS, name+".html.tmpl")
	if err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	if err := ht.ExecuteTemplate(&buf, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return subject, text, buf.String(), nil
}

func renderText(name, src string, data map[string]any) (string, error) {
	t, err := texttpl.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}
