// Package export renders extracted artifacts into downloadable files.
// Every function here is a pure transform over an already extracted artifact.
package export

import (
	"bytes"
	"fmt"
	"html/template"

	"pagecrafter/internal/domain"
)

// The bundle's CSS, JS and HTML are model output the user asked for, so they
// are embedded verbatim, as the live preview does.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{ .Title }}</title>
{{- if .Stylesheet }}
<link rel="stylesheet" href="{{ .Stylesheet }}">
{{- else }}
<style>
{{ .CSS }}
</style>
{{- end }}
</head>
<body>
{{ .HTML }}
{{- if .Script }}
<script src="{{ .Script }}"></script>
{{- else }}
<script>
{{ .JS }}
</script>
{{- end }}
</body>
</html>
`))

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{ .Title }}</title>
<style>
body { font-family: Georgia, serif; max-width: 48rem; margin: 3rem auto; line-height: 1.6; color: #1f2937; }
h1 { margin-bottom: 0.25rem; }
.author { color: #6b7280; margin-top: 0; }
section { margin-top: 2rem; }
p { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
{{- if .Author }}
<p class="author">{{ .Author }}</p>
{{- end }}
{{- range .Sections }}
<section>
<h2>{{ .Heading }}</h2>
<p>{{ .Content }}</p>
</section>
{{- end }}
</body>
</html>
`))

type pageData struct {
	Title      string
	HTML       template.HTML
	CSS        template.CSS
	JS         template.JS
	Stylesheet string
	Script     string
}

// PageHTML renders a single self-contained HTML file with the CSS inlined in
// a <style> element and the JS in a <script> element.
func PageHTML(title string, page domain.Page) ([]byte, error) {
	return renderPage(pageData{
		Title: title,
		HTML:  template.HTML(page.HTML), //nolint:gosec // generated page content is the export payload
		CSS:   template.CSS(page.CSS),
		JS:    template.JS(page.JS),
	})
}

// BundleHTML renders the main page of a bundle as a single HTML file.
func BundleHTML(title string, bundle domain.CodeBundle) ([]byte, error) {
	return PageHTML(title, domain.Page{Title: title, HTML: bundle.HTML, CSS: bundle.CSS, JS: bundle.JS})
}

func linkedPageHTML(title, body, stylesheet, script string) ([]byte, error) {
	return renderPage(pageData{
		Title:      title,
		HTML:       template.HTML(body),
		Stylesheet: stylesheet,
		Script:     script,
	})
}

func renderPage(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("export.renderPage: %w", err)
	}
	return buf.Bytes(), nil
}

// DocumentHTML renders a report document as a standalone, escaped HTML page.
func DocumentHTML(doc domain.ReportDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("export.DocumentHTML: %w", err)
	}
	return buf.Bytes(), nil
}
