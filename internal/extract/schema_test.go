package extract

import (
	"testing"
)

func TestMapInstitutionsAcceptsAllValidRows(t *testing.T) {
	rows := [][]string{
		{"College Name", "Code", "Location", "Seats", "Rating"},
		{"ABC Engineering College", "ABC1", "Chennai", "120", "4.2"},
		{"XYZ Medical College", "XYZ2", "Mumbai", "100", "4.0"},
		{"PQR Institute of Technology", "PQR3", "Delhi", "240", "3.8"},
	}

	records, rejects := MapInstitutions(rows)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d (rejects: %v)", len(records), rejects)
	}
	if len(rejects) != 0 {
		t.Errorf("Expected no rejects, got %v", rejects)
	}

	first := records[0]
	if first.Name != "ABC Engineering College" {
		t.Errorf("Expected name mapped, got %q", first.Name)
	}
	if first.Code != "ABC1" {
		t.Errorf("Expected code mapped, got %q", first.Code)
	}
	if first.Location != "Chennai" {
		t.Errorf("Expected location mapped, got %q", first.Location)
	}
	if first.TotalSeats != 120 {
		t.Errorf("Expected seats coerced to 120, got %d", first.TotalSeats)
	}
	if first.Rating != 4.2 {
		t.Errorf("Expected rating 4.2, got %f", first.Rating)
	}
}

func TestMapInstitutionsSkipsShortRows(t *testing.T) {
	rows := [][]string{
		{"Name", "Code", "Location"},
		{"Valid College", "VC1", "Chennai"},
		{"Too", "Short"},
	}

	records, rejects := MapInstitutions(rows)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if len(rejects) != 1 {
		t.Errorf("Expected 1 reject, got %d", len(rejects))
	}
}

func TestMapInstitutionsHeaderSynonyms(t *testing.T) {
	rows := [][]string{
		{"Institution", "Institution Code", "City", "Courses Offered", "Established Year"},
		{"Govt Polytechnic", "GP01", "Pune", "Mechanical, Civil", "1962"},
	}

	records, _ := MapInstitutions(rows)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Code != "GP01" {
		t.Errorf("Expected code GP01, got %q", rec.Code)
	}
	if rec.Location != "Pune" {
		t.Errorf("Expected location Pune, got %q", rec.Location)
	}
	if len(rec.Courses) != 2 || rec.Courses[0] != "Mechanical" {
		t.Errorf("Expected course list split, got %v", rec.Courses)
	}
	if rec.Established != 1962 {
		t.Errorf("Expected established 1962, got %d", rec.Established)
	}
}

func TestMapInstitutionsDerivesMissingFields(t *testing.T) {
	rows := [][]string{
		{"Name", "Location", "Seats"},
		{"Government Engineering College", "Trichy", "300"},
	}

	records, _ := MapInstitutions(rows)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Code != "GOVENG" {
		t.Errorf("Expected derived code GOVENG, got %q", rec.Code)
	}
	if rec.Type != "Engineering" {
		t.Errorf("Expected derived type Engineering, got %q", rec.Type)
	}
	if rec.Description == "" {
		t.Error("Expected derived description")
	}
	if rec.Rating < 1 || rec.Rating > 5 {
		t.Errorf("Derived rating out of bounds: %f", rec.Rating)
	}
}

func TestDeriveCode(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Government Engineering College", "GOVENG"},
		{"Govt College", "GOVCOL"},
		{"IIT", "IIT"},
		{"A.B.C.", "ABC"},
	}
	for _, tt := range tests {
		if got := DeriveCode(tt.name); got != tt.want {
			t.Errorf("DeriveCode(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDeriveCodeStable(t *testing.T) {
	names := []string{"Government Engineering College", "IIT", "Model Polytechnic Institute"}
	for _, name := range names {
		first := DeriveCode(name)
		second := DeriveCode(name)
		if first != second {
			t.Errorf("DeriveCode(%q) not stable: %q vs %q", name, first, second)
		}
	}
}

func TestMapCutoffsWithHeaders(t *testing.T) {
	rows := [][]string{
		{"College", "Course", "Category", "Cutoff Rank", "Year"},
		{"ABC College", "cse", "General", "1250", "2023"},
		{"DEF College", "mechanical", "OBC", "0", "2023"},      // rank 0: rejected
		{"GHI College", "civil", "General", "250000", "2023"},  // over sanity bound
		{"JKL College", "civil", "General", "4200", "2022"},
	}

	records, rejects := MapCutoffs(rows, 2025)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if len(rejects) != 2 {
		t.Errorf("Expected 2 rejects, got %d", len(rejects))
	}

	first := records[0]
	if first.CourseName != "Computer Science Engineering" {
		t.Errorf("Expected canonical course, got %q", first.CourseName)
	}
	if first.Year != 2023 || first.RankCutoff != 1250 {
		t.Errorf("Unexpected record: %+v", first)
	}
	if first.TotalSeats != 60 || first.Duration != "4 years" {
		t.Errorf("Defaults not applied: %+v", first)
	}
}

func TestCanonicalFieldUnknownHeader(t *testing.T) {
	if _, ok := CanonicalField("completely unrelated", institutionSynonyms); ok {
		t.Error("Expected no match for unrelated header")
	}
	if _, ok := CanonicalField("", institutionSynonyms); ok {
		t.Error("Expected no match for empty header")
	}
}
