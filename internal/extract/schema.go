package extract

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/admitcast/backend/internal/models"
)

// Canonical field names shared by the schema mapper and the section
// extractor.
const (
	fieldName        = "name"
	fieldCode        = "code"
	fieldType        = "type"
	fieldLocation    = "location"
	fieldDescription = "description"
	fieldCourses     = "courses"
	fieldFacilities  = "facilities"
	fieldRating      = "rating"
	fieldSeats       = "total_seats"
	fieldFeeRange    = "fee_range"
	fieldPlacement   = "placement"
	fieldPhone       = "phone"
	fieldEmail       = "email"
	fieldWebsite     = "website"
	fieldEstablished = "established"
	fieldAffiliation = "affiliation"

	fieldYear     = "year"
	fieldCourse   = "course"
	fieldCategory = "category"
	fieldRank     = "rank"
	fieldFee      = "fee"
	fieldDuration = "duration"
)

// fieldSynonym binds a free-form header pattern to a canonical field.
// Tables are checked in order, first match wins, so more specific patterns
// must come before the generic words they contain.
type fieldSynonym struct {
	pattern string
	field   string
}

var institutionSynonyms = []fieldSynonym{
	{"code", fieldCode},
	{"establish", fieldEstablished},
	{"affiliat", fieldAffiliation},
	{"parent", fieldAffiliation},
	{"college name", fieldName},
	{"institution name", fieldName},
	{"institute", fieldName},
	{"institution", fieldName},
	{"college", fieldName},
	{"name", fieldName},
	{"type", fieldType},
	{"category", fieldType},
	{"location", fieldLocation},
	{"city", fieldLocation},
	{"address", fieldLocation},
	{"description", fieldDescription},
	{"about", fieldDescription},
	{"course", fieldCourses},
	{"branch", fieldCourses},
	{"program", fieldCourses},
	{"facilit", fieldFacilities},
	{"amenit", fieldFacilities},
	{"rating", fieldRating},
	{"seat", fieldSeats},
	{"intake", fieldSeats},
	{"capacity", fieldSeats},
	{"fee", fieldFeeRange},
	{"placement", fieldPlacement},
	{"phone", fieldPhone},
	{"contact", fieldPhone},
	{"mobile", fieldPhone},
	{"email", fieldEmail},
	{"mail", fieldEmail},
	{"website", fieldWebsite},
	{"url", fieldWebsite},
	{"year", fieldEstablished},
}

var cutoffSynonyms = []fieldSynonym{
	{"code", fieldCode},
	{"college name", fieldName},
	{"institution name", fieldName},
	{"institution", fieldName},
	{"institute", fieldName},
	{"college", fieldName},
	{"name", fieldName},
	{"year", fieldYear},
	{"course", fieldCourse},
	{"branch", fieldCourse},
	{"program", fieldCourse},
	{"category", fieldCategory},
	{"caste", fieldCategory},
	{"quota", fieldCategory},
	{"cutoff", fieldRank},
	{"closing rank", fieldRank},
	{"closing", fieldRank},
	{"rank", fieldRank},
	{"seat", fieldSeats},
	{"intake", fieldSeats},
	{"fee", fieldFee},
	{"duration", fieldDuration},
}

// CanonicalField resolves a raw header onto a canonical field name using the
// given synonym table. Matching is case-insensitive on the trimmed header.
func CanonicalField(header string, table []fieldSynonym) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return "", false
	}
	for _, s := range table {
		if strings.Contains(h, s.pattern) {
			return s.field, true
		}
	}
	return "", false
}

// coerceInt extracts a decimal integer from a cell, tolerating surrounding
// noise like "60 seats" or "Rank: 1250".
func coerceInt(raw string) (int, bool) {
	digits := strings.Builder{}
	started := false
	for _, r := range strings.TrimSpace(raw) {
		if r == '-' && !started && digits.Len() == 0 {
			digits.WriteRune(r)
			continue
		}
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
			started = true
		} else if started {
			break
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func coerceFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// coerceList splits a comma-separated cell into trimmed non-empty items.
func coerceList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// MapInstitutions maps header-addressed rows onto Institution records.
// The first row is treated as headers; rows with fewer than 3 cells are
// rejected. A record is emitted only if name and code are non-empty after
// derivation.
func MapInstitutions(rows [][]string) ([]models.Institution, []string) {
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	var records []models.Institution
	var rejects []string

	for i, row := range rows[1:] {
		if len(row) < 3 {
			rejects = append(rejects, fmt.Sprintf("row %d: fewer than 3 cells", i+2))
			continue
		}

		var inst models.Institution
		for j, cell := range row {
			if j >= len(headers) || strings.TrimSpace(cell) == "" {
				continue
			}
			field, ok := CanonicalField(headers[j], institutionSynonyms)
			if !ok {
				continue
			}
			assignInstitutionField(&inst, field, cell)
		}

		DeriveInstitutionFields(&inst)
		if !inst.Valid() {
			rejects = append(rejects, fmt.Sprintf("row %d: missing name or code", i+2))
			continue
		}
		records = append(records, inst)
	}

	return records, rejects
}

func assignInstitutionField(inst *models.Institution, field, cell string) {
	cell = strings.TrimSpace(cell)
	switch field {
	case fieldName:
		inst.Name = cell
	case fieldCode:
		inst.Code = strings.ToUpper(cell)
	case fieldType:
		inst.Type = cell
	case fieldLocation:
		inst.Location = cell
	case fieldDescription:
		inst.Description = cell
	case fieldCourses:
		inst.Courses = coerceList(cell)
	case fieldFacilities:
		inst.Facilities = coerceList(cell)
	case fieldRating:
		if f, ok := coerceFloat(cell); ok {
			inst.Rating = f
		}
	case fieldSeats:
		if n, ok := coerceInt(cell); ok {
			inst.TotalSeats = n
		}
	case fieldFeeRange:
		inst.FeeRange = cell
	case fieldPlacement:
		if n, ok := coerceInt(cell); ok {
			inst.Placement = n
		}
	case fieldPhone:
		inst.Phone = cell
	case fieldEmail:
		inst.Email = cell
	case fieldWebsite:
		inst.Website = cell
	case fieldEstablished:
		if n, ok := coerceInt(cell); ok && n >= 1900 && n <= 2099 {
			inst.Established = n
		}
	case fieldAffiliation:
		inst.Affiliation = cell
	}
}

// MapCutoffs maps header-addressed rows onto CutoffRecord values. Used for
// delimited cutoff dumps that carry an explicit header row; headerless dumps
// go through the Scanner instead.
func MapCutoffs(rows [][]string, defaultYear int) ([]models.CutoffRecord, []string) {
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	var records []models.CutoffRecord
	var rejects []string

	for i, row := range rows[1:] {
		if len(row) < 3 {
			rejects = append(rejects, fmt.Sprintf("row %d: fewer than 3 cells", i+2))
			continue
		}

		rec := models.CutoffRecord{
			Year:       defaultYear,
			Category:   "General",
			TotalSeats: models.DefaultTotalSeats,
			Fee:        models.DefaultFee,
			Duration:   models.DefaultDuration,
		}
		for j, cell := range row {
			if j >= len(headers) || strings.TrimSpace(cell) == "" {
				continue
			}
			field, ok := CanonicalField(headers[j], cutoffSynonyms)
			if !ok {
				continue
			}
			assignCutoffField(&rec, field, cell)
		}

		if rec.InstitutionName == "" || !models.ValidRank(rec.RankCutoff) {
			rejects = append(rejects, fmt.Sprintf("row %d: missing name or rank out of bounds", i+2))
			continue
		}
		if rec.CourseName != "" {
			rec.CourseName = CanonicalCourse(rec.CourseName)
		}
		records = append(records, rec)
	}

	return records, rejects
}

func assignCutoffField(rec *models.CutoffRecord, field, cell string) {
	cell = strings.TrimSpace(cell)
	switch field {
	case fieldName:
		rec.InstitutionName = cell
	case fieldCode:
		rec.InstitutionCode = strings.ToUpper(cell)
	case fieldYear:
		if n, ok := coerceInt(cell); ok && n >= 1900 && n <= 2099 {
			rec.Year = n
		}
	case fieldCourse:
		rec.CourseName = cell
	case fieldCategory:
		rec.Category = cell
	case fieldRank:
		if n, ok := coerceInt(cell); ok {
			rec.RankCutoff = n
		}
	case fieldSeats:
		if n, ok := coerceInt(cell); ok && n > 0 {
			rec.TotalSeats = n
		}
	case fieldFee:
		if n, ok := coerceInt(cell); ok && n > 0 {
			rec.Fee = n
		}
	case fieldDuration:
		rec.Duration = cell
	}
}

// DeriveInstitutionFields fills required derived fields in a fixed order:
// code, type, description, rating. Already-mapped values are kept.
func DeriveInstitutionFields(inst *models.Institution) {
	if inst.Code == "" {
		inst.Code = DeriveCode(inst.Name)
	}
	if inst.Type == "" {
		inst.Type = deriveType(inst.Name, inst.Courses)
	}
	if inst.Description == "" {
		inst.Description = deriveDescription(inst.Type, inst.Location)
	}
	if inst.Rating == 0 {
		inst.Rating = deriveRating(inst.Name, inst.Type)
	}
}

// DeriveCode derives an institution code from the name. With at least two
// words longer than 2 characters the code is the first 3 letters of each,
// upper-cased; otherwise the first 6 letters of the name with non-letters
// stripped.
func DeriveCode(name string) string {
	var words []string
	for _, w := range strings.Fields(name) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	if len(words) >= 2 {
		return strings.ToUpper(prefix(words[0], 3) + prefix(words[1], 3))
	}

	letters := strings.Builder{}
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters.WriteRune(r)
			if letters.Len() >= 6 {
				break
			}
		}
	}
	return strings.ToUpper(letters.String())
}

func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

var typeKeywords = []fieldSynonym{
	{"polytechnic", "Polytechnic"},
	{"medical", "Medical"},
	{"pharmacy", "Pharmacy"},
	{"dental", "Medical"},
	{"law", "Law"},
	{"management", "Management"},
	{"business", "Management"},
	{"arts", "Arts & Science"},
	{"science", "Arts & Science"},
	{"engineering", "Engineering"},
	{"technology", "Engineering"},
	{"technical", "Engineering"},
}

func deriveType(name string, courses []string) string {
	if t, ok := CanonicalField(name, typeKeywords); ok {
		return t
	}
	for _, c := range courses {
		if t, ok := CanonicalField(c, typeKeywords); ok {
			return t
		}
	}
	return "Engineering"
}

func deriveDescription(instType, location string) string {
	if location != "" {
		return fmt.Sprintf("%s institution located in %s.", instType, location)
	}
	return fmt.Sprintf("%s institution.", instType)
}

// deriveRating synthesizes a plausible rating from the name length and type,
// bounded to [1, 5]. Deterministic so re-extraction of the same dump yields
// the same record.
func deriveRating(name, instType string) float64 {
	base := 3.0
	switch instType {
	case "Engineering", "Medical":
		base = 3.5
	case "Management", "Law":
		base = 3.2
	}
	r := base + float64(len(name)%10)*0.15
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return r
}
