package guideline

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pharmaguard-server/internal/domain"
)

const defaultCacheSize = 256

// CachedStore is a read-through LRU layer over a GuidelineStore. The corpus
// is small and effectively immutable at runtime, so entries never expire;
// only capacity evicts.
type CachedStore struct {
	inner      domain.GuidelineStore
	guidelines *lru.Cache[string, *domain.Guideline]
	drugs      *lru.Cache[string, *domain.DrugInfo]
}

// NewCachedStore wraps a store with an LRU cache. size <= 0 uses the
// default capacity.
func NewCachedStore(inner domain.GuidelineStore, size int) (*CachedStore, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	guidelines, err := lru.New[string, *domain.Guideline](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create guideline cache: %w", err)
	}
	drugs, err := lru.New[string, *domain.DrugInfo](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create drug cache: %w", err)
	}
	return &CachedStore{inner: inner, guidelines: guidelines, drugs: drugs}, nil
}

// GetGuideline returns the cached entry or reads through to the inner store.
// Misses are not negatively cached; ErrNotFound always reaches the store.
func (c *CachedStore) GetGuideline(ctx context.Context, drug, phenotypeCode string) (*domain.Guideline, error) {
	key := domain.NormalizeDrug(drug) + "/" + NormalizePhenotypeCode(phenotypeCode)
	if g, ok := c.guidelines.Get(key); ok {
		return g, nil
	}

	g, err := c.inner.GetGuideline(ctx, drug, phenotypeCode)
	if err != nil {
		return nil, err
	}
	c.guidelines.Add(key, g)
	return g, nil
}

// GetDrug returns the cached drug record or reads through.
func (c *CachedStore) GetDrug(ctx context.Context, drug string) (*domain.DrugInfo, error) {
	key := domain.NormalizeDrug(drug)
	if info, ok := c.drugs.Get(key); ok {
		return info, nil
	}

	info, err := c.inner.GetDrug(ctx, drug)
	if err != nil {
		return nil, err
	}
	c.drugs.Add(key, info)
	return info, nil
}

// ListDrugs passes through to the inner store.
func (c *CachedStore) ListDrugs(ctx context.Context) ([]domain.DrugInfo, error) {
	return c.inner.ListDrugs(ctx)
}

// ListPhenotypes passes through to the inner store.
func (c *CachedStore) ListPhenotypes(ctx context.Context, drug string) ([]domain.PhenotypeOption, error) {
	return c.inner.ListPhenotypes(ctx, drug)
}

// Purge drops all cached entries. Used after reseeding.
func (c *CachedStore) Purge() {
	c.guidelines.Purge()
	c.drugs.Purge()
}

// Close closes the inner store.
func (c *CachedStore) Close() error {
	return c.inner.Close()
}
