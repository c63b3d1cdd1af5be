package extract

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/admitcast/backend/internal/models"
)

// Extractor defines the interface for record extractors.
type Extractor interface {
	// Name returns the unique name of the extractor.
	Name() string
	// CanExtract returns true if this extractor can handle the given file.
	CanExtract(filePath string) (bool, error)
	// Extract reads the file and produces normalized records of the given kind.
	Extract(filePath string, kind models.RecordKind) (*models.ExtractionResult, error)
}

// Registry holds all available extractors and provides auto-detection.
type Registry struct {
	extractors []Extractor
}

// NewRegistry builds the default registry. now freezes the scanner's and
// segmenter's "current year" default.
func NewRegistry(now time.Time) *Registry {
	return &Registry{
		extractors: []Extractor{
			NewDelimitedExtractor(now),
			NewDocumentExtractor(now, PDFTextSource{}, PlainTextSource{}),
		},
	}
}

// Register adds a new extractor to the registry.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// ByFormat returns the extractor for a declared format, or nil for
// FormatAuto.
func (r *Registry) ByFormat(format models.Format) Extractor {
	var name string
	switch format {
	case models.FormatDelimited:
		name = "delimited"
	case models.FormatDocument:
		name = "document"
	default:
		return nil
	}
	for _, e := range r.extractors {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Detect sniffs the correct extractor for a file.
func (r *Registry) Detect(filePath string) (Extractor, error) {
	for _, e := range r.extractors {
		can, err := e.CanExtract(filePath)
		if err != nil {
			continue
		}
		if can {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no suitable extractor found for file: %s", filePath)
}

// DelimitedExtractor handles comma-delimited dumps: institution rows behind
// a header, or cutoff tables with inline course/year/category headers.
type DelimitedExtractor struct {
	now time.Time
}

func NewDelimitedExtractor(now time.Time) *DelimitedExtractor {
	return &DelimitedExtractor{now: now}
}

func (e *DelimitedExtractor) Name() string { return "delimited" }

// CanExtract samples the first lines and requires a majority to contain the
// delimiter.
func (e *DelimitedExtractor) CanExtract(filePath string) (bool, error) {
	if ext := strings.ToLower(filepath.Ext(filePath)); ext == ".csv" {
		return true, nil
	} else if ext == ".pdf" {
		return false, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	checked := 0
	matched := 0
	for scanner.Scan() && checked < 10 {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		checked++
		if strings.Contains(line, ",") {
			matched++
		}
	}

	return checked > 0 && float64(matched)/float64(checked) >= 0.6, nil
}

func (e *DelimitedExtractor) Extract(filePath string, kind models.RecordKind) (*models.ExtractionResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return failedResult(kind, fmt.Sprintf("source unreadable: %v", err)), fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	rows := ParseDelimited(string(data))
	result := &models.ExtractionResult{Kind: kind}
	result.Stats.TotalRows = len(rows)

	if len(rows) < 2 {
		result.Message = "insufficient data: need a header row and at least one data row"
		result.Errors = append(result.Errors, ErrInsufficientData.Error())
		return result, nil
	}

	var rejects []string
	switch kind {
	case models.KindInstitution:
		result.Institutions, rejects = MapInstitutions(rows)
	case models.KindCutoff:
		if hasCutoffHeader(rows[0]) {
			result.Cutoffs, rejects = MapCutoffs(rows, e.now.Year())
		} else {
			scanned := NewScanner(e.now).Scan(rows)
			result.Cutoffs = scanned
			// Header-context rows are expected non-data rows, not rejects.
			rejects = nil
		}
	default:
		result.Message = fmt.Sprintf("unknown record kind: %s", kind)
		return result, nil
	}

	finalizeResult(result, rejects)
	return result, nil
}

// hasCutoffHeader reports whether the first row looks like an explicit
// header: at least three cells resolving to distinct cutoff fields.
func hasCutoffHeader(row []string) bool {
	seen := make(map[string]struct{})
	for _, cell := range row {
		if field, ok := CanonicalField(cell, cutoffSynonyms); ok {
			seen[field] = struct{}{}
		}
	}
	return len(seen) >= 3
}

// DocumentExtractor handles unstructured extracted text (PDF or plain
// text), segmenting it into sections before field extraction.
type DocumentExtractor struct {
	now   time.Time
	pdf   TextSource
	plain TextSource
}

func NewDocumentExtractor(now time.Time, pdfSource, plainSource TextSource) *DocumentExtractor {
	return &DocumentExtractor{now: now, pdf: pdfSource, plain: plainSource}
}

func (e *DocumentExtractor) Name() string { return "document" }

// CanExtract accepts PDFs by extension and otherwise acts as the fallback
// for non-delimited text.
func (e *DocumentExtractor) CanExtract(filePath string) (bool, error) {
	if strings.ToLower(filepath.Ext(filePath)) == ".pdf" {
		return true, nil
	}
	delimited, err := NewDelimitedExtractor(e.now).CanExtract(filePath)
	if err != nil {
		return false, err
	}
	return !delimited, nil
}

func (e *DocumentExtractor) Extract(filePath string, kind models.RecordKind) (*models.ExtractionResult, error) {
	source := e.plain
	if strings.ToLower(filepath.Ext(filePath)) == ".pdf" {
		source = e.pdf
	}

	text, err := source.ExtractText(filePath)
	if err != nil {
		return failedResult(kind, fmt.Sprintf("source unreadable: %v", err)), err
	}

	result := &models.ExtractionResult{Kind: kind}
	result.Stats.TotalRows = countLines(text)

	switch kind {
	case models.KindInstitution:
		sections := SegmentInstitutionText(text)
		result.Stats.Sections = len(sections)
		var rejects []string
		for i, section := range sections {
			inst, ok := ExtractInstitutionSection(section)
			if !ok {
				rejects = append(rejects, fmt.Sprintf("section %d: missing name or code", i+1))
				continue
			}
			result.Institutions = append(result.Institutions, inst)
		}
		finalizeResult(result, rejects)
	case models.KindCutoff:
		records, sections := ScanCutoffSections(text, e.now)
		result.Cutoffs = records
		result.Stats.Sections = sections
		finalizeResult(result, nil)
	default:
		result.Message = fmt.Sprintf("unknown record kind: %s", kind)
	}

	return result, nil
}

func countLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func failedResult(kind models.RecordKind, message string) *models.ExtractionResult {
	return &models.ExtractionResult{
		Kind:    kind,
		Message: message,
		Errors:  []string{message},
	}
}

func finalizeResult(result *models.ExtractionResult, rejects []string) {
	result.Errors = append(result.Errors, rejects...)
	result.Stats.Accepted = result.RecordCount()
	result.Stats.Rejected = len(rejects)

	if result.Stats.Accepted == 0 {
		result.Message = "insufficient data: no records accepted"
		result.Errors = append(result.Errors, ErrInsufficientData.Error())
		return
	}
	result.Success = true
	result.Message = fmt.Sprintf("extracted %d records", result.Stats.Accepted)
}
