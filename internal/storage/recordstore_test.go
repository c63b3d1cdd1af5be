// recordstore_test.go - Tests for DuckDB-backed record storage
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/admitcast/backend/internal/models"
)

func createTestRecordStore(t *testing.T) (*DuckRecordStore, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "records.duckdb")

	store, err := NewDuckRecordStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create DuckRecordStore: %v", err)
	}
	return store, func() { store.Close() }
}

func testCutoff(name, course, category string, year, rank int) models.CutoffRecord {
	return models.CutoffRecord{
		InstitutionName: name,
		InstitutionCode: "TEST",
		CourseName:      course,
		Category:        category,
		Year:            year,
		RankCutoff:      rank,
		TotalSeats:      models.DefaultTotalSeats,
		Fee:             models.DefaultFee,
		Duration:        models.DefaultDuration,
	}
}

func TestNewDuckRecordStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "records.duckdb")
	store, err := NewDuckRecordStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Expected database file to be created")
	}
}

func TestInsertAndQueryCutoffRecords(t *testing.T) {
	store, cleanup := createTestRecordStore(t)
	defer cleanup()
	ctx := context.Background()

	records := []models.CutoffRecord{
		testCutoff("Govt College", "Computer Science Engineering", "General", 2024, 1250),
		testCutoff("Govt College", "Computer Science Engineering", "OBC", 2024, 1890),
		testCutoff("City College", "Civil Engineering", "General", 2023, 4200),
	}

	stored, err := store.InsertCutoffRecords(ctx, records)
	if err != nil {
		t.Fatalf("InsertCutoffRecords failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("Expected 3 stored records, got %d", len(stored))
	}
	for _, rec := range stored {
		if rec.ID == "" {
			t.Error("Expected generated id on stored record")
		}
	}

	general, err := store.QueryCutoffRecords(ctx, "general")
	if err != nil {
		t.Fatalf("QueryCutoffRecords failed: %v", err)
	}
	if len(general) != 2 {
		t.Fatalf("Expected 2 General records via case-insensitive match, got %d", len(general))
	}
	// Ordered by institution name.
	if general[0].InstitutionName != "City College" {
		t.Errorf("Expected City College first, got %q", general[0].InstitutionName)
	}
	if general[1].RankCutoff != 1250 || general[1].Year != 2024 {
		t.Errorf("Round-trip mismatch: %+v", general[1])
	}
	if general[1].TotalSeats != models.DefaultTotalSeats || general[1].Duration != models.DefaultDuration {
		t.Errorf("Defaults lost in round-trip: %+v", general[1])
	}
}

func TestQueryCutoffRecordsEmptyCategory(t *testing.T) {
	store, cleanup := createTestRecordStore(t)
	defer cleanup()

	records, err := store.QueryCutoffRecords(context.Background(), "ST")
	if err != nil {
		t.Fatalf("QueryCutoffRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestInsertAndListInstitutions(t *testing.T) {
	store, cleanup := createTestRecordStore(t)
	defer cleanup()
	ctx := context.Background()

	records := []models.Institution{
		{
			Name:       "Zeta Engineering College",
			Code:       "ZEC",
			Type:       "Engineering",
			Location:   "Chennai",
			Courses:    []string{"Computer Science", "Mechanical"},
			Facilities: []string{"Library", "Hostel"},
			Rating:     4.1,
			TotalSeats: 300,
		},
		{
			Name: "Alpha Institute",
			Code: "ALP",
			Type: "Engineering",
		},
	}

	stored, err := store.InsertInstitutions(ctx, records)
	if err != nil {
		t.Fatalf("InsertInstitutions failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored records, got %d", len(stored))
	}

	list, err := store.ListInstitutions(ctx, 10)
	if err != nil {
		t.Fatalf("ListInstitutions failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 institutions, got %d", len(list))
	}
	// Ordered by name.
	if list[0].Name != "Alpha Institute" {
		t.Errorf("Expected Alpha Institute first, got %q", list[0].Name)
	}

	zeta := list[1]
	if len(zeta.Courses) != 2 || zeta.Courses[1] != "Mechanical" {
		t.Errorf("Course list not round-tripped: %v", zeta.Courses)
	}
	if len(zeta.Facilities) != 2 {
		t.Errorf("Facility list not round-tripped: %v", zeta.Facilities)
	}
	if zeta.Rating != 4.1 || zeta.TotalSeats != 300 {
		t.Errorf("Round-trip mismatch: %+v", zeta)
	}

	if list[0].Courses != nil {
		t.Errorf("Expected empty course list to come back nil: %v", list[0].Courses)
	}
}

func TestListInstitutionsLimit(t *testing.T) {
	store, cleanup := createTestRecordStore(t)
	defer cleanup()
	ctx := context.Background()

	var records []models.Institution
	for _, name := range []string{"A College", "B College", "C College"} {
		records = append(records, models.Institution{Name: name, Code: "X"})
	}
	if _, err := store.InsertInstitutions(ctx, records); err != nil {
		t.Fatalf("InsertInstitutions failed: %v", err)
	}

	list, err := store.ListInstitutions(ctx, 2)
	if err != nil {
		t.Fatalf("ListInstitutions failed: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected limit applied, got %d", len(list))
	}
}

func TestInsertEmptySlices(t *testing.T) {
	store, cleanup := createTestRecordStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.InsertInstitutions(ctx, nil); err != nil {
		t.Errorf("Expected no-op insert, got %v", err)
	}
	if _, err := store.InsertCutoffRecords(ctx, nil); err != nil {
		t.Errorf("Expected no-op insert, got %v", err)
	}
}
