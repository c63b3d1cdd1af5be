package models

// RecordKind selects which record type an extraction produces.
type RecordKind string

const (
	KindInstitution RecordKind = "institution"
	KindCutoff      RecordKind = "cutoff"
)

// Format declares how an uploaded file should be read. FormatAuto lets the
// extractor registry sniff the content.
type Format string

const (
	FormatAuto      Format = "auto"
	FormatDelimited Format = "delimited"
	FormatDocument  Format = "document"
)

// ExtractionStats counts what happened to the input rows of one file.
type ExtractionStats struct {
	TotalRows int `json:"totalRows"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Sections  int `json:"sections,omitempty"` // document extraction only
}

// ExtractionResult is the structured outcome of extracting one file.
// A failed result (Success=false) carries zero records and a descriptive
// message; per-row rejections only show up in Stats and Errors.
type ExtractionResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Kind         RecordKind      `json:"kind"`
	Institutions []Institution   `json:"institutions,omitempty"`
	Cutoffs      []CutoffRecord  `json:"cutoffs,omitempty"`
	Errors       []string        `json:"errors,omitempty"`
	Stats        ExtractionStats `json:"stats"`
}

// RecordCount returns how many records the result accepted.
func (r *ExtractionResult) RecordCount() int {
	return len(r.Institutions) + len(r.Cutoffs)
}
