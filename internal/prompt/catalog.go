// Package prompt renders the instructions sent to the model for each pipeline.
// The templates embed the extraction markers so the prompt contract and the
// extractor always agree on the sentinel tokens.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
)

//go:embed prompts.yaml
var defaultCatalog []byte

type catalogFile struct {
	Version int                    `yaml:"version"`
	Prompts map[string]promptEntry `yaml:"prompts"`
}

type promptEntry struct {
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// Data is the input to a prompt template.
type Data struct {
	Prompt       string
	PreviousHTML string
	PreviousCSS  string
	PreviousJS   string
	// PreviousPages are rendered in slug order.
	PreviousPages map[string]domain.Page
	Markers       extract.Markers
}

// HasPrevious reports whether an earlier bundle should be shown to the model.
func (d Data) HasPrevious() bool {
	return d.PreviousHTML != "" || d.PreviousCSS != "" || d.PreviousJS != "" || len(d.PreviousPages) > 0
}

// Catalog holds the parsed templates, one per project kind.
type Catalog struct {
	markers   extract.Markers
	templates map[domain.ProjectKind]*template.Template
}

// Default parses the embedded catalog.
func Default(markers extract.Markers) (*Catalog, error) {
	return Parse(defaultCatalog, markers)
}

// Parse builds a catalog from YAML. Both the web and document prompts must be present.
func Parse(raw []byte, markers extract.Markers) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("prompt.Parse: %w", err)
	}

	c := &Catalog{
		markers:   markers.WithDefaults(),
		templates: make(map[domain.ProjectKind]*template.Template, len(file.Prompts)),
	}
	for name, entry := range file.Prompts {
		kind := domain.ProjectKind(name)
		if !kind.Valid() {
			return nil, fmt.Errorf("prompt.Parse: unknown prompt kind %q", name)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(entry.Template)
		if err != nil {
			return nil, fmt.Errorf("prompt.Parse: template %q: %w", name, err)
		}
		c.templates[kind] = tmpl
	}
	for _, kind := range []domain.ProjectKind{domain.ProjectKindWeb, domain.ProjectKindDocument} {
		if _, ok := c.templates[kind]; !ok {
			return nil, fmt.Errorf("prompt.Parse: missing prompt %q", kind)
		}
	}
	return c, nil
}

// Markers returns the sentinel tokens rendered into every prompt.
func (c *Catalog) Markers() extract.Markers {
	return c.markers
}

// Render produces the full prompt for kind. Data.Markers is always overridden
// with the catalog's markers.
func (c *Catalog) Render(kind domain.ProjectKind, data Data) (string, error) {
	tmpl, ok := c.templates[kind]
	if !ok {
		return "", fmt.Errorf("prompt.Render: %w: %q", domain.ErrInvalidProjectKind, kind)
	}
	if strings.TrimSpace(data.Prompt) == "" {
		return "", domain.ErrEmptyPrompt
	}
	data.Markers = c.markers

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompt.Render: %w", err)
	}
	return b.String(), nil
}
