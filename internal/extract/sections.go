package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/admitcast/backend/internal/models"
)

// Minimum section lengths below which a segment is treated as noise.
const (
	minInstitutionSection = 50
	minCutoffSection      = 30
)

// institutionBoundaries trigger a new institution section.
var institutionBoundaries = []string{
	"----", "====", "College Name:", "COLLEGE DETAILS",
}

// cutoffBoundaries trigger a new cutoff section: upper-case course names as
// they appear in extracted document text.
var cutoffBoundaries = []string{
	"COMPUTER SCIENCE", "INFORMATION TECHNOLOGY", "ELECTRONICS",
	"ELECTRICAL", "MECHANICAL", "CIVIL", "CHEMICAL", "AERONAUTICAL",
	"BIOTECHNOLOGY", "ENGINEERING",
}

// segment walks the text line by line, starting a new section whenever a
// boundary marker appears and the accumulated buffer is non-empty. Sections
// shorter than minLen are discarded.
func segment(text string, boundaries []string, minLen int) []string {
	var sections []string
	var buf strings.Builder

	flush := func() {
		s := strings.TrimSpace(buf.String())
		if len(s) >= minLen {
			sections = append(sections, s)
		}
		buf.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if isBoundary(line, boundaries) && strings.TrimSpace(buf.String()) != "" {
			flush()
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	flush()

	return sections
}

func isBoundary(line string, boundaries []string) bool {
	for _, marker := range boundaries {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// SegmentInstitutionText splits extracted document text into candidate
// institution sections.
func SegmentInstitutionText(text string) []string {
	return segment(text, institutionBoundaries, minInstitutionSection)
}

// SegmentCutoffText splits extracted document text into candidate cutoff
// table sections.
func SegmentCutoffText(text string) []string {
	return segment(text, cutoffBoundaries, minCutoffSection)
}

// Field extraction patterns for institution sections.
var (
	ratingPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*5`)
	yearAfterTag  = regexp.MustCompile(`(?:Established|Year)[:\s]*(\d{4})`)
	fourDigit     = regexp.MustCompile(`\b(\d{4})\b`)
	phonePattern  = regexp.MustCompile(`\+?[\d][\d\s-]{7,}`)
	emailPattern  = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`)
	webPattern    = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	percentValue  = regexp.MustCompile(`(\d{1,3})\s*%`)
)

// ExtractInstitutionSection runs line-by-line label matching over one
// section. A record is returned only if name and code are non-empty after
// the standard derivation pass.
func ExtractInstitutionSection(section string) (models.Institution, bool) {
	var inst models.Institution

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case hasLabel(lower, "college name:", "institution name:", "name:"):
			inst.Name = labelValue(line)
		case hasLabel(lower, "college code:", "code:"):
			inst.Code = strings.ToUpper(labelValue(line))
		case hasLabel(lower, "type:"):
			inst.Type = labelValue(line)
		case hasLabel(lower, "location:", "city:", "address:"):
			inst.Location = labelValue(line)
		case hasLabel(lower, "courses offered:", "courses:"):
			inst.Courses = coerceList(labelValue(line))
		case hasLabel(lower, "facilities:"):
			inst.Facilities = coerceList(labelValue(line))
		case hasLabel(lower, "phone:", "contact:") || strings.Contains(line, "+91-"):
			if m := phonePattern.FindString(line); m != "" {
				inst.Phone = strings.TrimSpace(m)
			}
		case hasLabel(lower, "email:") || strings.Contains(line, "@"):
			if m := emailPattern.FindString(line); m != "" {
				inst.Email = m
			}
		case hasLabel(lower, "website:") || strings.Contains(lower, "www."):
			if m := webPattern.FindString(line); m != "" {
				inst.Website = m
			}
		case hasLabel(lower, "rating:") || strings.Contains(line, "/5"):
			if m := ratingPattern.FindStringSubmatch(line); m != nil {
				if f, ok := coerceFloat(m[1]); ok {
					inst.Rating = f
				}
			}
		case hasLabel(lower, "total seats:", "seats:"):
			if n, ok := coerceInt(labelValue(line)); ok {
				inst.TotalSeats = n
			}
		case strings.Contains(lower, "placement") && strings.Contains(line, "%"):
			if m := percentValue.FindStringSubmatch(line); m != nil {
				if n, ok := coerceInt(m[1]); ok {
					inst.Placement = n
				}
			}
		case strings.Contains(lower, "fee") || strings.ContainsRune(line, '₹'):
			inst.FeeRange = labelValue(line)
		case strings.Contains(lower, "established") || hasLabel(lower, "year:"):
			inst.Established = extractYear(line)
		case hasLabel(lower, "affiliation:", "affiliated to:"):
			inst.Affiliation = labelValue(line)
		}
	}

	DeriveInstitutionFields(&inst)
	if !inst.Valid() {
		return models.Institution{}, false
	}
	return inst, true
}

func hasLabel(lower string, labels ...string) bool {
	for _, l := range labels {
		if strings.HasPrefix(lower, l) {
			return true
		}
	}
	return false
}

// labelValue returns the text after the first colon, or the whole line when
// no colon is present.
func labelValue(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return strings.TrimSpace(line)
}

// extractYear finds the first 4-digit token in range 1900-2099, preferring
// one following an "Established"/"Year:" tag.
func extractYear(line string) int {
	if m := yearAfterTag.FindStringSubmatch(line); m != nil {
		if y, ok := coerceInt(m[1]); ok && y >= 1900 && y <= 2099 {
			return y
		}
	}
	for _, m := range fourDigit.FindAllString(line, -1) {
		if y, ok := coerceInt(m); ok && y >= 1900 && y <= 2099 {
			return y
		}
	}
	return 0
}

// ScanCutoffSections extracts cutoff records from unstructured document
// text. Course detection triggers on lines containing "ENGINEERING" without
// a table delimiter; data rows are lines with at least two pipe characters.
func ScanCutoffSections(text string, now time.Time) ([]models.CutoffRecord, int) {
	sections := SegmentCutoffText(text)
	var records []models.CutoffRecord

	for _, section := range sections {
		ctx := NewScanContext(now)
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if strings.Contains(line, "ENGINEERING") && !strings.Contains(line, "|") {
				ctx.Course = CanonicalCourse(line)
				continue
			}
			if year, ok := classifyYearHeader([]string{line}); ok && !strings.Contains(line, "|") {
				ctx.Year = year
				continue
			}
			if category, ok := classifyCategoryHeader([]string{line}); ok {
				ctx.Category = category
				continue
			}

			if strings.Count(line, "|") < 2 {
				continue
			}
			if rec, ok := extractCutoffRow(line, ctx); ok {
				records = append(records, rec)
			}
		}
	}

	return records, len(sections)
}

// extractCutoffRow splits a pipe-delimited table row: column 0 is the
// institution name, column 1's digits form the rank, column 2's digits (if
// present) the seat count.
func extractCutoffRow(line string, ctx ScanContext) (models.CutoffRecord, bool) {
	cols := strings.Split(line, "|")
	if len(cols) < 2 {
		return models.CutoffRecord{}, false
	}

	name := strings.TrimSpace(cols[0])
	rank, _ := coerceInt(cols[1])
	if len(name) < 3 || !models.ValidRank(rank) {
		return models.CutoffRecord{}, false
	}

	seats := models.DefaultTotalSeats
	if len(cols) > 2 {
		if n, ok := coerceInt(cols[2]); ok && n > 0 {
			seats = n
		}
	}

	return models.CutoffRecord{
		Year:            ctx.Year,
		InstitutionName: name,
		InstitutionCode: DeriveCode(name),
		CourseName:      ctx.Course,
		Category:        ctx.Category,
		RankCutoff:      rank,
		TotalSeats:      seats,
		Fee:             models.DefaultFee,
		Duration:        models.DefaultDuration,
	}, true
}
