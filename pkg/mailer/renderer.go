package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"

	pkgerrors "github.com/lynk-ai/lynk-backend/pkg/errors"
)

//go:embed templates/email/*.txt templates/email/*.html
var embeddedTemplates embed.FS

const templateDir = "templates/email"

// Rendered holds both bodies of a multipart/alternative message.
type Rendered struct {
	Text string
	HTML string
}

// Renderer renders named templates; every template has a .txt and a .html variant.
// Missing data keys are render errors rather than "<no value>" in a customer's inbox.
type Renderer struct {
	text map[string]*texttemplate.Template
	html map[string]*htmltemplate.Template
}

// NewRenderer parses the templates bundled with the binary.
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(embeddedTemplates, templateDir)
}

// NewRendererFS parses every <name>.txt / <name>.html pair under dir.
func NewRendererFS(fsys fs.FS, dir string) (*Renderer, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir %q: %w", dir, err)
	}

	r := &Renderer{
		text: map[string]*texttemplate.Template{},
		html: map[string]*htmltemplate.Template{},
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file := entry.Name()
		full := path.Join(dir, file)
		switch ext := path.Ext(file); ext {
		case ".txt":
			name := strings.TrimSuffix(file, ext)
			tmpl, err := texttemplate.New(file).Option("missingkey=error").ParseFS(fsys, full)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", full, err)
			}
			r.text[name] = tmpl
		case ".html":
			name := strings.TrimSuffix(file, ext)
			tmpl, err := htmltemplate.New(file).Option("missingkey=error").ParseFS(fsys, full)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", full, err)
			}
			r.html[name] = tmpl
		}
	}

	for name := range r.text {
		if _, ok := r.html[name]; !ok {
			return nil, fmt.Errorf("template %q has no html variant", name)
		}
	}
	for name := range r.html {
		if _, ok := r.text[name]; !ok {
			return nil, fmt.Errorf("template %q has no text variant", name)
		}
	}
	return r, nil
}

// Has reports whether a template pair is available under name.
func (r *Renderer) Has(name string) bool {
	_, ok := r.text[name]
	return ok
}

func (r *Renderer) Render(name string, data map[string]any) (Rendered, error) {
	textTmpl, ok := r.text[name]
	if !ok {
		return Rendered{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown email template %q", name))
	}
	htmlTmpl := r.html[name]

	var textBuf, htmlBuf bytes.Buffer
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return Rendered{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "render text template")
	}
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return Rendered{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "render html template")
	}
	return Rendered{Text: textBuf.String(), HTML: htmlBuf.String()}, nil
}
