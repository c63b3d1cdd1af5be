package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/admitcast/backend/internal/models"
)

// ScanContext carries the course/year/category context forward across the
// lines of one cutoff table. It lives for a single scan pass and is never
// shared between files.
type ScanContext struct {
	Course   string
	Year     int
	Category string
}

// NewScanContext returns the initial context: no course yet, the calendar
// year of now, category "General".
func NewScanContext(now time.Time) ScanContext {
	return ScanContext{Year: now.Year(), Category: "General"}
}

// courseSynonyms canonicalizes course abbreviations and spellings, checked
// in order with the first match winning.
var courseSynonyms = []fieldSynonym{
	{"computer science", "Computer Science Engineering"},
	{"cse", "Computer Science Engineering"},
	{"information technology", "Information Technology"},
	{"electronics and communication", "Electronics & Communication Engineering"},
	{"ece", "Electronics & Communication Engineering"},
	{"electrical", "Electrical Engineering"},
	{"eee", "Electrical Engineering"},
	{"mechanical", "Mechanical Engineering"},
	{"mech", "Mechanical Engineering"},
	{"civil", "Civil Engineering"},
	{"chemical", "Chemical Engineering"},
	{"aeronautical", "Aeronautical Engineering"},
	{"biotechnology", "Biotechnology Engineering"},
}

// courseKeywords mark a first cell as a course header.
var courseKeywords = []string{
	"computer science", "cse", "information technology", "electronics",
	"ece", "electrical", "eee", "mechanical", "mech", "civil", "chemical",
	"aeronautical", "biotechnology", "engineering", "technology",
}

// CanonicalCourse maps an abbreviation or free spelling onto the canonical
// course name. Unknown courses are passed through title-cased.
func CanonicalCourse(raw string) string {
	if c, ok := CanonicalField(raw, courseSynonyms); ok {
		return c
	}
	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// Scanner walks tokenized rows of a cutoff table in a single forward pass,
// emitting one CutoffRecord per detected data row. Classification order is
// course header, year header, category header, data row; first match wins.
type Scanner struct {
	now time.Time
}

// NewScanner creates a Scanner. The injected time freezes "current year" for
// rows scanned before any year header.
func NewScanner(now time.Time) *Scanner {
	return &Scanner{now: now}
}

// Scan runs the forward pass. Rows must be in original file order since the
// course/year/category context carries forward row to row.
func (s *Scanner) Scan(rows [][]string) []models.CutoffRecord {
	ctx := NewScanContext(s.now)
	var records []models.CutoffRecord

	for _, row := range rows {
		cells := splitPipeRow(row)
		if len(cells) == 0 {
			continue
		}

		if course, ok := classifyCourseHeader(cells[0]); ok {
			ctx.Course = course
			continue
		}
		if year, ok := classifyYearHeader(cells); ok {
			ctx.Year = year
			continue
		}
		if category, ok := classifyCategoryHeader(cells); ok {
			ctx.Category = category
			continue
		}

		if ctx.Course == "" {
			continue
		}
		if rec, ok := classifyDataRow(cells, ctx); ok {
			records = append(records, rec)
		}
	}

	return records
}

// splitPipeRow re-tokenizes a single-cell row containing pipe separators so
// pipe tables scan the same as comma tables.
func splitPipeRow(row []string) []string {
	if len(row) != 1 || !strings.Contains(row[0], "|") {
		return row
	}
	parts := strings.Split(row[0], "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

func classifyCourseHeader(first string) (string, bool) {
	f := strings.ToLower(strings.TrimSpace(first))
	if f == "" {
		return "", false
	}
	for _, kw := range courseKeywords {
		if strings.Contains(f, kw) {
			return CanonicalCourse(first), true
		}
	}
	return "", false
}

func classifyYearHeader(cells []string) (int, bool) {
	line := strings.Join(cells, " ")
	for _, m := range yearPattern.FindAllString(line, -1) {
		if y, ok := coerceInt(m); ok && y >= 1900 && y <= 2099 {
			return y, true
		}
	}
	return 0, false
}

func classifyCategoryHeader(cells []string) (string, bool) {
	line := strings.Join(cells, " ")
	idx := strings.Index(strings.ToLower(line), "category:")
	if idx < 0 {
		return "", false
	}
	value := strings.TrimSpace(line[idx+len("category:"):])
	if value == "" {
		value = "General"
	}
	return value, true
}

// classifyDataRow qualifies a row when its first cell is a plausible name
// (length > 3) and some later cell holds an in-bounds integer rank. The
// first qualifying integer left to right wins.
func classifyDataRow(cells []string, ctx ScanContext) (models.CutoffRecord, bool) {
	name := strings.TrimSpace(cells[0])
	if len(name) <= 3 {
		return models.CutoffRecord{}, false
	}

	for _, cell := range cells[1:] {
		rank, ok := coerceInt(cell)
		if !ok || !models.ValidRank(rank) {
			continue
		}
		return models.CutoffRecord{
			Year:            ctx.Year,
			InstitutionName: name,
			InstitutionCode: DeriveCode(name),
			CourseName:      ctx.Course,
			Category:        ctx.Category,
			RankCutoff:      rank,
			TotalSeats:      models.DefaultTotalSeats,
			Fee:             models.DefaultFee,
			Duration:        models.DefaultDuration,
		}, true
	}
	return models.CutoffRecord{}, false
}
