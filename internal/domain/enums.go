package domain

// ProjectKind selects which extraction pipeline serves a project.
type ProjectKind string

const (
	ProjectKindWeb      ProjectKind = "web"
	ProjectKindDocument ProjectKind = "document"
)

// Valid reports whether k is a known project kind.
func (k ProjectKind) Valid() bool {
	return k == ProjectKindWeb || k == ProjectKindDocument
}

// MessageRole is the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ExportFormat identifies an export transform.
type ExportFormat string

const (
	ExportHTML ExportFormat = "html"
	ExportZIP  ExportFormat = "zip"
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// AllowedExportFormats lists the export formats available per project kind.
var AllowedExportFormats = map[ProjectKind][]ExportFormat{
	ProjectKindWeb:      {ExportHTML, ExportZIP},
	ProjectKindDocument: {ExportHTML, ExportXLSX, ExportCSV},
}

// SupportsExport reports whether format is available for kind.
func SupportsExport(kind ProjectKind, format ExportFormat) bool {
	for _, f := range AllowedExportFormats[kind] {
		if f == format {
			return true
		}
	}
	return false
}

// ExportContentTypes maps export formats to their MIME types.
var ExportContentTypes = map[ExportFormat]string{
	ExportHTML: "text/html; charset=utf-8",
	ExportZIP:  "application/zip",
	ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExportCSV:  "text/csv; charset=utf-8",
}
