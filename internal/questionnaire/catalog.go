package questionnaire

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/kmatcher/internal/api"
)

const categoriesKey = "categories"

// Catalog holds the ordered category list. It is populated once and never
// cleared; a failed load leaves it empty so the next Load retries.
type Catalog struct {
	source CategorySource
	logger *zap.Logger
	group  singleflight.Group

	mu         sync.RWMutex
	categories []Category
	ranks      map[int64]int
}

// NewCatalog creates an empty catalog.
func NewCatalog(source CategorySource, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, logger: logger}
}

// Load fetches the categories unless they are already present. Concurrent
// calls share one request.
func (c *Catalog) Load(ctx context.Context) error {
	if c.Loaded() {
		return nil
	}

	_, err, shared := c.group.Do(categoriesKey, func() (any, error) {
		if c.Loaded() {
			return nil, nil
		}

		raw, err := c.source.Categories(ctx)
		if err != nil {
			return nil, err
		}

		categories := make([]Category, len(raw))
		ranks := make(map[int64]int, len(raw))
		for i, rc := range raw {
			if _, dup := ranks[rc.ID]; dup {
				return nil, &api.FetchError{
					Context: api.ContextCategories,
					Err:     &api.InvalidResponseError{Err: fmt.Errorf("duplicate category id %d", rc.ID)},
				}
			}
			categories[i] = Category{ID: rc.ID, Name: rc.Name, Rank: i}
			ranks[rc.ID] = i
		}

		c.mu.Lock()
		c.categories = categories
		c.ranks = ranks
		c.mu.Unlock()

		c.logger.Info("categories loaded", zap.Int("count", len(categories)))
		return nil, nil
	})
	if err != nil {
		c.logger.Warn("load categories", zap.Bool("shared", shared), zap.Error(err))
		return err
	}
	return nil
}

// Loaded reports whether the catalog holds at least one category. An empty
// server response therefore counts as not loaded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.categories) > 0
}

// Categories returns the categories in rank order.
func (c *Catalog) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// RankOf returns the rank of a category id.
func (c *Catalog) RankOf(categoryID int64) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rank, ok := c.ranks[categoryID]
	if !ok {
		return 0, &NotFoundError{Kind: "category", ID: categoryID}
	}
	return rank, nil
}

// Lookup returns the category with the given id.
func (c *Catalog) Lookup(categoryID int64) (Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rank, ok := c.ranks[categoryID]
	if !ok {
		return Category{}, &NotFoundError{Kind: "category", ID: categoryID}
	}
	return c.categories[rank], nil
}

// ByRank returns the category at rank.
func (c *Catalog) ByRank(rank int) (Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if rank < 0 || rank >= len(c.categories) {
		return Category{}, false
	}
	return c.categories[rank], true
}

// First returns the rank-0 category.
func (c *Catalog) First() (Category, bool) {
	return c.ByRank(0)
}
