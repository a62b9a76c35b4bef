// Package guideline provides the persistent CPIC guideline corpus behind
// the analysis pipeline: an embedded sqlite store for single-node
// deployments, a postgres store for shared ones, and an in-process
// read-through cache over either.
package guideline

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pharmaguard-server/internal/domain"
)

// SQLiteStore implements domain.GuidelineStore using an embedded SQLite
// database. It is the default store; no external service required.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite guideline store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// createSchema creates the guideline tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS drugs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		gene TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS phenotypes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		drug_id INTEGER NOT NULL REFERENCES drugs(id),
		phenotype_code TEXT NOT NULL,
		phenotype_name TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		mechanism TEXT NOT NULL DEFAULT '',
		recommendation TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		guideline_url TEXT NOT NULL DEFAULT '',
		confidence_score REAL NOT NULL DEFAULT 0,
		UNIQUE(drug_id, phenotype_code)
	);

	CREATE INDEX IF NOT EXISTS idx_phenotypes_drug_id ON phenotypes(drug_id);
	CREATE INDEX IF NOT EXISTS idx_drugs_name ON drugs(name);
	`

	_, err := db.Exec(schema)
	return err
}

// GetGuideline returns the guideline entry for a drug and phenotype code.
func (s *SQLiteStore) GetGuideline(ctx context.Context, drug, phenotypeCode string) (*domain.Guideline, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.name, d.gene, p.phenotype_code, p.phenotype_name,
			p.summary, p.mechanism, p.recommendation,
			p.source, p.guideline_url, p.confidence_score
		FROM phenotypes p
		JOIN drugs d ON d.id = p.drug_id
		WHERE d.name = ? AND p.phenotype_code = ?
		LIMIT 1
	`, domain.NormalizeDrug(drug), NormalizePhenotypeCode(phenotypeCode))

	g, err := scanGuideline(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan guideline: %w", err)
	}
	return g, nil
}

// GetDrug returns the drug record by name.
func (s *SQLiteStore) GetDrug(ctx context.Context, drug string) (*domain.DrugInfo, error) {
	info := &domain.DrugInfo{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, gene FROM drugs WHERE name = ? LIMIT 1",
		domain.NormalizeDrug(drug),
	).Scan(&info.ID, &info.Name, &info.Gene)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan drug: %w", err)
	}
	return info, nil
}

// ListDrugs returns all drugs with guideline coverage.
func (s *SQLiteStore) ListDrugs(ctx context.Context) ([]domain.DrugInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, gene FROM drugs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query drugs: %w", err)
	}
	defer rows.Close()

	var result []domain.DrugInfo
	for rows.Next() {
		var info domain.DrugInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Gene); err != nil {
			return nil, fmt.Errorf("failed to scan drug row: %w", err)
		}
		result = append(result, info)
	}
	return result, rows.Err()
}

// ListPhenotypes returns the phenotype codes a drug has coverage for.
func (s *SQLiteStore) ListPhenotypes(ctx context.Context, drug string) ([]domain.PhenotypeOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.phenotype_code, p.phenotype_name
		FROM phenotypes p
		JOIN drugs d ON d.id = p.drug_id
		WHERE d.name = ?
		ORDER BY p.phenotype_code
	`, domain.NormalizeDrug(drug))
	if err != nil {
		return nil, fmt.Errorf("failed to query phenotypes: %w", err)
	}
	defer rows.Close()

	var result []domain.PhenotypeOption
	for rows.Next() {
		var opt domain.PhenotypeOption
		if err := rows.Scan(&opt.PhenotypeCode, &opt.PhenotypeName); err != nil {
			return nil, fmt.Errorf("failed to scan phenotype row: %w", err)
		}
		result = append(result, opt)
	}
	return result, rows.Err()
}

// Upsert writes one guideline entry, creating the drug record on first use.
func (s *SQLiteStore) Upsert(ctx context.Context, g *domain.Guideline) error {
	name := domain.NormalizeDrug(g.DrugName)

	var drugID int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM drugs WHERE name = ?", name).Scan(&drugID)
	if err == sql.ErrNoRows {
		result, ierr := s.db.ExecContext(ctx, "INSERT INTO drugs (name, gene) VALUES (?, ?)", name, g.Gene)
		if ierr != nil {
			return fmt.Errorf("failed to insert drug: %w", ierr)
		}
		drugID, ierr = result.LastInsertId()
		if ierr != nil {
			return fmt.Errorf("failed to get drug ID: %w", ierr)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up drug: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO phenotypes (
			drug_id, phenotype_code, phenotype_name,
			summary, mechanism, recommendation,
			source, guideline_url, confidence_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(drug_id, phenotype_code) DO UPDATE SET
			phenotype_name = excluded.phenotype_name,
			summary = excluded.summary,
			mechanism = excluded.mechanism,
			recommendation = excluded.recommendation,
			source = excluded.source,
			guideline_url = excluded.guideline_url,
			confidence_score = excluded.confidence_score
	`,
		drugID, NormalizePhenotypeCode(g.PhenotypeCode), g.PhenotypeName,
		g.Summary, g.Mechanism, g.Recommendation,
		g.Source, g.GuidelineURL, g.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert phenotype: %w", err)
	}
	return nil
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
