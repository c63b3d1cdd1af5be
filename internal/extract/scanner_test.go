package extract

import (
	"testing"
	"time"

	"github.com/admitcast/backend/internal/models"
)

var scanNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestScannerHeaderSequence(t *testing.T) {
	rows := [][]string{
		{"COMPUTER SCIENCE ENGINEERING"},
		{"Year: 2024"},
		{"Category: General"},
		{"Govt College | 1250 | 60 | 60"},
	}

	records := NewScanner(scanNow).Scan(rows)
	if len(records) != 1 {
		t.Fatalf("Expected exactly 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Year != 2024 {
		t.Errorf("Expected year 2024, got %d", rec.Year)
	}
	if rec.CourseName != "Computer Science Engineering" {
		t.Errorf("Expected canonical course, got %q", rec.CourseName)
	}
	if rec.Category != "General" {
		t.Errorf("Expected category General, got %q", rec.Category)
	}
	if rec.InstitutionName != "Govt College" {
		t.Errorf("Expected institution Govt College, got %q", rec.InstitutionName)
	}
	if rec.RankCutoff != 1250 {
		t.Errorf("Expected rank 1250, got %d", rec.RankCutoff)
	}
	if rec.TotalSeats != models.DefaultTotalSeats || rec.Fee != models.DefaultFee || rec.Duration != models.DefaultDuration {
		t.Errorf("Defaults not applied: %+v", rec)
	}
	if rec.InstitutionCode != "GOVCOL" {
		t.Errorf("Expected derived code GOVCOL, got %q", rec.InstitutionCode)
	}
}

func TestScannerContextCarriesForward(t *testing.T) {
	rows := [][]string{
		{"MECHANICAL ENGINEERING"},
		{"Year: 2023"},
		{"First College | 500"},
		{"Second College | 900"},
		{"Category: OBC"},
		{"Third College | 1400"},
	}

	records := NewScanner(scanNow).Scan(rows)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for _, rec := range records {
		if rec.CourseName != "Mechanical Engineering" || rec.Year != 2023 {
			t.Errorf("Context not carried: %+v", rec)
		}
	}
	if records[0].Category != "General" || records[1].Category != "General" {
		t.Errorf("Expected General before category header, got %q and %q",
			records[0].Category, records[1].Category)
	}
	if records[2].Category != "OBC" {
		t.Errorf("Expected OBC after category header, got %q", records[2].Category)
	}
}

func TestScannerSkipsRowsBeforeCourseHeader(t *testing.T) {
	rows := [][]string{
		{"Orphan College | 1200"},
		{"CIVIL ENGINEERING"},
		{"Real College | 800"},
	}

	records := NewScanner(scanNow).Scan(rows)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].InstitutionName != "Real College" {
		t.Errorf("Expected Real College, got %q", records[0].InstitutionName)
	}
}

func TestScannerDefaultYearFromNow(t *testing.T) {
	rows := [][]string{
		{"CIVIL ENGINEERING"},
		{"Some College | 750"},
	}

	records := NewScanner(scanNow).Scan(rows)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Year != 2025 {
		t.Errorf("Expected year from injected now, got %d", records[0].Year)
	}
}

func TestScannerRankBounds(t *testing.T) {
	rows := [][]string{
		{"CIVIL ENGINEERING"},
		{"Zero College | 0 | 250000"},
		{"Huge College | 100000"},
		{"Edge College | 99999"},
		{"Low College | 1"},
	}

	records := NewScanner(scanNow).Scan(rows)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].InstitutionName != "Edge College" || records[0].RankCutoff != 99999 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].InstitutionName != "Low College" || records[1].RankCutoff != 1 {
		t.Errorf("Unexpected second record: %+v", records[1])
	}
}

func TestScannerShortNameNotDataRow(t *testing.T) {
	rows := [][]string{
		{"CIVIL ENGINEERING"},
		{"ABC | 500"},
		{"ABCD | 500"},
	}

	records := NewScanner(scanNow).Scan(rows)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].InstitutionName != "ABCD" {
		t.Errorf("Expected only the 4-char name, got %q", records[0].InstitutionName)
	}
}

func TestScannerTokenizedRows(t *testing.T) {
	// Rows already tokenized by the delimited parser scan the same as
	// single-cell pipe rows.
	rows := [][]string{
		{"COMPUTER SCIENCE ENGINEERING"},
		{"Year: 2022"},
		{"Govt College", "1250", "60"},
	}

	records := NewScanner(scanNow).Scan(rows)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].RankCutoff != 1250 || records[0].Year != 2022 {
		t.Errorf("Unexpected record: %+v", records[0])
	}
}

func TestCanonicalCourse(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"cse", "Computer Science Engineering"},
		{"CSE", "Computer Science Engineering"},
		{"COMPUTER SCIENCE ENGINEERING", "Computer Science Engineering"},
		{"mech", "Mechanical Engineering"},
		{"ece", "Electronics & Communication Engineering"},
		{"naval architecture", "Naval Architecture"},
	}
	for _, tt := range tests {
		if got := CanonicalCourse(tt.raw); got != tt.want {
			t.Errorf("CanonicalCourse(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
