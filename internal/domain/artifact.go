package domain

import "html"

// CodeBundle is the artifact produced by the web pipeline.
type CodeBundle struct {
	HTML  string          `json:"html"`
	CSS   string          `json:"css"`
	JS    string          `json:"js"`
	Pages map[string]Page `json:"pages,omitempty"`
}

// Page is an additional page of a multi-page site, keyed by slug in CodeBundle.Pages.
type Page struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
	CSS   string `json:"css"`
	JS    string `json:"js"`
}

// ReportDocument is the artifact produced by the document pipeline.
type ReportDocument struct {
	Title    string    `json:"title"`
	Author   string    `json:"author,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is one heading/content block of a ReportDocument.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// ErrorTitle is the title and heading carried by every error artifact.
const ErrorTitle = "Error"

// ErrorCodeBundle builds the web pipeline's error artifact.
func ErrorCodeBundle(message string) CodeBundle {
	return CodeBundle{
		HTML: "<div class=\"error\"><h1>" + ErrorTitle + "</h1><p>" + html.EscapeString(message) + "</p></div>",
		CSS:  ".error{font-family:sans-serif;color:#b91c1c;padding:2rem}",
	}
}

// ErrorReportDocument builds the document pipeline's error artifact.
func ErrorReportDocument(message string) ReportDocument {
	return ReportDocument{
		Title:    ErrorTitle,
		Sections: []Section{{Heading: ErrorTitle, Content: message}},
	}
}
