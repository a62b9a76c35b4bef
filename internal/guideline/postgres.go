package guideline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/pharmaguard-server/internal/domain"
)

// PostgresStore implements domain.GuidelineStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL guideline store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL guideline store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// GetGuideline returns the guideline entry for a drug and phenotype code.
func (s *PostgresStore) GetGuideline(ctx context.Context, drug, phenotypeCode string) (*domain.Guideline, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.name, d.gene, p.phenotype_code, p.phenotype_name,
			p.summary, p.mechanism, p.recommendation,
			p.source, p.guideline_url, p.confidence_score
		FROM phenotypes p
		JOIN drugs d ON d.id = p.drug_id
		WHERE d.name = $1 AND p.phenotype_code = $2
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
func (s *PostgresStore) GetDrug(ctx context.Context, drug string) (*domain.DrugInfo, error) {
	info := &domain.DrugInfo{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, gene FROM drugs WHERE name = $1 LIMIT 1",
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
func (s *PostgresStore) ListDrugs(ctx context.Context) ([]domain.DrugInfo, error) {
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
func (s *PostgresStore) ListPhenotypes(ctx context.Context, drug string) ([]domain.PhenotypeOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.phenotype_code, p.phenotype_name
		FROM phenotypes p
		JOIN drugs d ON d.id = p.drug_id
		WHERE d.name = $1
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
func (s *PostgresStore) Upsert(ctx context.Context, g *domain.Guideline) error {
	name := domain.NormalizeDrug(g.DrugName)

	var drugID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO drugs (name, gene) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET gene = EXCLUDED.gene
		RETURNING id
	`, name, g.Gene).Scan(&drugID)
	if err != nil {
		return fmt.Errorf("failed to upsert drug: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO phenotypes (
			drug_id, phenotype_code, phenotype_name,
			summary, mechanism, recommendation,
			source, guideline_url, confidence_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (drug_id, phenotype_code) DO UPDATE SET
			phenotype_name = EXCLUDED.phenotype_name,
			summary = EXCLUDED.summary,
			mechanism = EXCLUDED.mechanism,
			recommendation = EXCLUDED.recommendation,
			source = EXCLUDED.source,
			guideline_url = EXCLUDED.guideline_url,
			confidence_score = EXCLUDED.confidence_score
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
