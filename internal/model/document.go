package model

// Document is one indexed unit of content (usually a page) belonging to a table.
// It is produced by backend ingestion and is read-only here; every response shape
// the backend emits is normalized into this one before it leaves the service layer.
type Document struct {
	ID     string         `json:"id"`
	Source DocumentSource `json:"source"`
}

type DocumentSource struct {
	Properties DocumentProperties `json:"properties"`
}

type DocumentProperties struct {
	Type               string       `json:"type"`
	TextRepresentation string       `json:"text_representation"`
	Properties         DocumentMeta `json:"properties"`
}

type DocumentMeta struct {
	PageNumber int    `json:"page_number"`
	FileName   string `json:"file_name"`
}

// FileName returns the name of the uploaded file the document was extracted from.
func (d Document) FileName() string { return d.Source.Properties.Properties.FileName }

// Text returns the extracted text of the document.
func (d Document) Text() string { return d.Source.Properties.TextRepresentation }

// PageNumber returns the page the document was extracted from, or 0 if unknown.
func (d Document) PageNumber() int { return d.Source.Properties.Properties.PageNumber }

// DocumentRef describes a file already uploaded to the backend that should be
// ingested into a table.
type DocumentRef struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
}
