package guideline

import (
	"context"
	"errors"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

// ErrNotFound is returned when no guideline entry matches a lookup.
var ErrNotFound = errors.New("guideline not found")

// Seeder is the write side of a guideline store, used by seeding only.
// The analysis path never mutates the corpus.
type Seeder interface {
	Upsert(ctx context.Context, g *domain.Guideline) error
}

// NormalizePhenotypeCode canonicalizes phenotype spellings to the short
// codes the corpus is keyed by. Unrecognized input passes through upper-
// cased so lookups fail loudly rather than aliasing.
func NormalizePhenotypeCode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pm", "poor metabolizer", "poor function":
		return "PM"
	case "im", "intermediate metabolizer", "intermediate function":
		return "IM"
	case "nm", "normal metabolizer", "normal function", "em", "extensive metabolizer":
		return "NM"
	case "rm", "rapid metabolizer":
		return "RM"
	case "um", "urm", "ultrarapid metabolizer", "ultra-rapid metabolizer":
		return "UM"
	default:
		return strings.ToUpper(strings.TrimSpace(raw))
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanGuideline scans one joined drugs+phenotypes row.
func scanGuideline(s scanner) (*domain.Guideline, error) {
	g := &domain.Guideline{}
	err := s.Scan(
		&g.DrugName, &g.Gene, &g.PhenotypeCode, &g.PhenotypeName,
		&g.Summary, &g.Mechanism, &g.Recommendation,
		&g.Source, &g.GuidelineURL, &g.Confidence,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
