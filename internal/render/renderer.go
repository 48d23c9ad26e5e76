package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"ledgerview/internal/core"
)

// Template names.
const (
	PageTemplate   = "index"
	LedgerTemplate = "ledger"
)

// Chip is a filter control bound to an upstream endpoint.
type Chip struct {
	Label    string
	Endpoint string
}

// PageData feeds the full page.
type PageData struct {
	Chips           []Chip
	UserEndpoint    string
	InitialEndpoint string
}

// Renderer executes the embedded templates.
type Renderer struct {
	templates *template.Template
	money     Formatter
}

// New parses templates/*.html from fsys.
func New(fsys fs.FS, money Formatter) (*Renderer, error) {
	t, err := template.New("ledgerview").Funcs(template.FuncMap{
		"endpointVals": endpointVals,
	}).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{PageTemplate, LedgerTemplate} {
		if t.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q not defined", name)
		}
	}
	return &Renderer{templates: t, money: money}, nil
}

// Ledger writes the KPI cards and table for records.
func (r *Renderer) Ledger(w io.Writer, records []core.Transaction) error {
	return r.execute(w, LedgerTemplate, Ledger(records, r.money))
}

// Page writes the full dashboard page.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.execute(w, PageTemplate, data)
}

// execute renders into a buffer first so a failing template never leaves a
// half-written response.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// endpointVals builds the hx-vals payload carrying endpoint. The result is
// JSON, so the template escapes it as an ordinary attribute value.
func endpointVals(endpoint string) (string, error) {
	b, err := json.Marshal(map[string]string{"endpoint": endpoint})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
