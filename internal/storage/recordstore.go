package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"

	"github.com/admitcast/backend/internal/models"
)

// RecordStore is the persistent store for extracted records. Extraction
// writes through Insert*, prediction always re-queries; the core never reads
// back its own writes within one call.
type RecordStore interface {
	InsertInstitutions(ctx context.Context, records []models.Institution) ([]models.Institution, error)
	InsertCutoffRecords(ctx context.Context, records []models.CutoffRecord) ([]models.CutoffRecord, error)
	QueryCutoffRecords(ctx context.Context, category string) ([]models.CutoffRecord, error)
	ListInstitutions(ctx context.Context, limit int) ([]models.Institution, error)
	Close() error
}

// DuckRecordStore implements RecordStore on an embedded DuckDB database.
type DuckRecordStore struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS institutions (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	code VARCHAR NOT NULL,
	type VARCHAR,
	location VARCHAR,
	description VARCHAR,
	courses VARCHAR,
	facilities VARCHAR,
	rating DOUBLE,
	total_seats INTEGER,
	fee_range VARCHAR,
	placement INTEGER,
	phone VARCHAR,
	email VARCHAR,
	website VARCHAR,
	established INTEGER,
	affiliation VARCHAR
);
CREATE TABLE IF NOT EXISTS cutoff_records (
	id VARCHAR PRIMARY KEY,
	year INTEGER NOT NULL,
	institution_code VARCHAR,
	institution_name VARCHAR NOT NULL,
	course_name VARCHAR NOT NULL,
	category VARCHAR NOT NULL,
	rank_cutoff INTEGER NOT NULL,
	total_seats INTEGER,
	fee INTEGER,
	duration VARCHAR
);
`

// NewDuckRecordStore opens (or creates) the record database at dbPath.
func NewDuckRecordStore(dbPath string) (*DuckRecordStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=2",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("executing %s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DuckRecordStore{db: db}, nil
}

// InsertInstitutions persists institution records in one transaction and
// returns them with generated ids.
func (s *DuckRecordStore) InsertInstitutions(ctx context.Context, records []models.Institution) ([]models.Institution, error) {
	if len(records) == 0 {
		return records, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO institutions
		(id, name, code, type, location, description, courses, facilities,
		 rating, total_seats, fee_range, placement, phone, email, website,
		 established, affiliation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	out := make([]models.Institution, len(records))
	for i, rec := range records {
		rec.ID = uuid.New().String()
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.Name, rec.Code, rec.Type, rec.Location,
			rec.Description, strings.Join(rec.Courses, ","),
			strings.Join(rec.Facilities, ","), rec.Rating, rec.TotalSeats,
			rec.FeeRange, rec.Placement, rec.Phone, rec.Email, rec.Website,
			rec.Established, rec.Affiliation)
		if err != nil {
			return nil, fmt.Errorf("inserting institution %q: %w", rec.Name, err)
		}
		out[i] = rec
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing institutions: %w", err)
	}
	return out, nil
}

// InsertCutoffRecords persists cutoff records in one transaction and returns
// them with generated ids.
func (s *DuckRecordStore) InsertCutoffRecords(ctx context.Context, records []models.CutoffRecord) ([]models.CutoffRecord, error) {
	if len(records) == 0 {
		return records, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cutoff_records
		(id, year, institution_code, institution_name, course_name, category,
		 rank_cutoff, total_seats, fee, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	out := make([]models.CutoffRecord, len(records))
	for i, rec := range records {
		rec.ID = uuid.New().String()
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.Year, rec.InstitutionCode, rec.InstitutionName,
			rec.CourseName, rec.Category, rec.RankCutoff, rec.TotalSeats,
			rec.Fee, rec.Duration)
		if err != nil {
			return nil, fmt.Errorf("inserting cutoff for %q: %w", rec.InstitutionName, err)
		}
		out[i] = rec
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing cutoff records: %w", err)
	}
	return out, nil
}

// QueryCutoffRecords returns all historical cutoff records for a category,
// matched case-insensitively.
func (s *DuckRecordStore) QueryCutoffRecords(ctx context.Context, category string) ([]models.CutoffRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, year, institution_code, institution_name, course_name, category,
		rank_cutoff, total_seats, fee, duration
		FROM cutoff_records WHERE lower(category) = lower(?)
		ORDER BY institution_name, course_name, year`, category)
	if err != nil {
		return nil, fmt.Errorf("querying cutoff records: %w", err)
	}
	defer rows.Close()

	var records []models.CutoffRecord
	for rows.Next() {
		var rec models.CutoffRecord
		if err := rows.Scan(&rec.ID, &rec.Year, &rec.InstitutionCode,
			&rec.InstitutionName, &rec.CourseName, &rec.Category,
			&rec.RankCutoff, &rec.TotalSeats, &rec.Fee, &rec.Duration); err != nil {
			return nil, fmt.Errorf("scanning cutoff record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListInstitutions returns up to limit institutions ordered by name.
func (s *DuckRecordStore) ListInstitutions(ctx context.Context, limit int) ([]models.Institution, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, name, code, type, location, description, courses, facilities,
		rating, total_seats, fee_range, placement, phone, email, website,
		established, affiliation
		FROM institutions ORDER BY name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying institutions: %w", err)
	}
	defer rows.Close()

	var records []models.Institution
	for rows.Next() {
		var rec models.Institution
		var courses, facilities string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Code, &rec.Type,
			&rec.Location, &rec.Description, &courses, &facilities,
			&rec.Rating, &rec.TotalSeats, &rec.FeeRange, &rec.Placement,
			&rec.Phone, &rec.Email, &rec.Website, &rec.Established,
			&rec.Affiliation); err != nil {
			return nil, fmt.Errorf("scanning institution: %w", err)
		}
		rec.Courses = splitList(courses)
		rec.Facilities = splitList(facilities)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

// Close closes the underlying database.
func (s *DuckRecordStore) Close() error {
	return s.db.Close()
}
