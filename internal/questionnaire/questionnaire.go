// Package questionnaire holds the client-side questionnaire state: the
// category catalog, the per-category question cache, the answer store and
// the current category selection.
//
// All state is owned by a Questionnaire and changed only through its
// commands (LoadCategories, Select, EnsureLoaded, SetAnswer, ClearAnswer);
// everything else is a read-only selector. Commands are safe to call from
// concurrent goroutines such as Bubble Tea commands.
package questionnaire

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/kmatcher/internal/grade"
	"github.com/abhisek/kmatcher/internal/store"
)

// Questionnaire ties the catalog, cache and answers together.
type Questionnaire struct {
	Catalog *Catalog
	Cache   *Cache
	Answers *Answers

	mu       sync.RWMutex
	current  int64
	selected bool
}

// New creates an empty questionnaire backed by backend and kv.
func New(backend Backend, kv store.KV, logger *zap.Logger) *Questionnaire {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := NewCatalog(backend, logger.Named("catalog"))
	answers := NewAnswers(kv, logger.Named("answers"))
	cache := NewCache(backend, catalog, answers, kv, logger.Named("cache"))
	return &Questionnaire{
		Catalog: catalog,
		Cache:   cache,
		Answers: answers,
	}
}

// LoadCategories loads the catalog and selects the first category if
// nothing is selected yet.
func (q *Questionnaire) LoadCategories(ctx context.Context) error {
	if err := q.Catalog.Load(ctx); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.selected {
		if first, ok := q.Catalog.First(); ok {
			q.current = first.ID
			q.selected = true
		}
	}
	return nil
}

// Select makes categoryID the current category. It performs no I/O; the
// caller loads the category's questions with EnsureLoaded.
func (q *Questionnaire) Select(categoryID int64) (Category, error) {
	cat, err := q.Catalog.Lookup(categoryID)
	if err != nil {
		return Category{}, err
	}

	q.mu.Lock()
	q.current = categoryID
	q.selected = true
	q.mu.Unlock()
	return cat, nil
}

// Current returns the selected category.
func (q *Questionnaire) Current() (Category, bool) {
	q.mu.RLock()
	id, selected := q.current, q.selected
	q.mu.RUnlock()
	if !selected {
		return Category{}, false
	}
	cat, err := q.Catalog.Lookup(id)
	if err != nil {
		return Category{}, false
	}
	return cat, true
}

// IsCurrent reports whether categoryID is the selected category.
func (q *Questionnaire) IsCurrent(categoryID int64) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.selected && q.current == categoryID
}

// Previous returns the category before the current one.
func (q *Questionnaire) Previous() (Category, bool) {
	cur, ok := q.Current()
	if !ok {
		return Category{}, false
	}
	return Previous(q.Catalog.Categories(), cur)
}

// Next returns the category after the current one.
func (q *Questionnaire) Next() (Category, bool) {
	cur, ok := q.Current()
	if !ok {
		return Category{}, false
	}
	return Next(q.Catalog.Categories(), cur)
}

// EnsureLoaded loads the questions of a category.
func (q *Questionnaire) EnsureLoaded(ctx context.Context, categoryID int64) ([]AnsweredQuestion, error) {
	return q.Cache.EnsureLoaded(ctx, categoryID)
}

// SetAnswer records an answer.
func (q *Questionnaire) SetAnswer(ctx context.Context, questionID int64, g grade.Grade, ifForced bool) error {
	return q.Answers.Set(ctx, questionID, g, ifForced)
}

// ClearAnswer removes an answer.
func (q *Questionnaire) ClearAnswer(ctx context.Context, questionID int64) error {
	return q.Answers.Clear(ctx, questionID)
}

// AllAnswered reports submission readiness.
func (q *Questionnaire) AllAnswered() bool {
	return q.Answers.AllAnswered()
}

// Answered returns every recorded answer ordered by question id.
func (q *Questionnaire) Answered() []Entry {
	return q.Answers.Answered()
}

// Progress returns answered and known question counts.
func (q *Questionnaire) Progress() (answered, known int) {
	return q.Answers.Progress()
}
