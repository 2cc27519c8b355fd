package questionnaire

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/kmatcher/internal/grade"
	"github.com/abhisek/kmatcher/internal/store"
)

// Cache lazily loads the questions of each category exactly once per session.
type Cache struct {
	source  QuestionSource
	catalog *Catalog
	answers *Answers
	kv      store.KV
	logger  *zap.Logger
	group   singleflight.Group

	mu         sync.RWMutex
	byCategory map[int64][]Question
	byID       map[int64]Question
}

// NewCache creates an empty question cache.
func NewCache(source QuestionSource, catalog *Catalog, answers *Answers, kv store.KV, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		source:     source,
		catalog:    catalog,
		answers:    answers,
		kv:         kv,
		logger:     logger,
		byCategory: make(map[int64][]Question),
		byID:       make(map[int64]Question),
	}
}

// EnsureLoaded returns the questions of a category, fetching them on first
// use. Concurrent calls for the same uncached category share one request;
// the request runs with the context of the first caller. Failures cache
// nothing, so a later call retries.
func (c *Cache) EnsureLoaded(ctx context.Context, categoryID int64) ([]AnsweredQuestion, error) {
	if qs, ok := c.Cached(categoryID); ok {
		return qs, nil
	}
	if !c.catalog.Loaded() {
		return nil, ErrCatalogNotLoaded
	}
	if _, err := c.catalog.RankOf(categoryID); err != nil {
		return nil, err
	}

	key := strconv.FormatInt(categoryID, 10)
	_, err, _ := c.group.Do(key, func() (any, error) {
		if c.has(categoryID) {
			return nil, nil
		}
		return nil, c.fetch(ctx, categoryID)
	})
	if err != nil {
		return nil, err
	}

	qs, _ := c.Cached(categoryID)
	return qs, nil
}

func (c *Cache) fetch(ctx context.Context, categoryID int64) error {
	raw, err := c.source.Questions(ctx, categoryID)
	if err != nil {
		c.logger.Warn("fetch questions", zap.Int64("category_id", categoryID), zap.Error(err))
		return err
	}

	questions := make([]Question, len(raw))
	for i, rq := range raw {
		questions[i] = Question{ID: rq.ID, Text: rq.Text, CategoryID: categoryID}
	}

	c.answers.register(questions, c.restore(ctx, questions))

	c.mu.Lock()
	c.byCategory[categoryID] = questions
	for _, q := range questions {
		c.byID[q.ID] = q
	}
	c.mu.Unlock()

	c.logger.Debug("questions cached", zap.Int64("category_id", categoryID), zap.Int("count", len(questions)))
	return nil
}

// restore reads persisted grades. Only the grade is stored, so restored
// answers always come back unforced.
func (c *Cache) restore(ctx context.Context, questions []Question) map[int64]Answer {
	restored := make(map[int64]Answer)
	for _, q := range questions {
		label, ok, err := c.kv.Get(ctx, GradeKey(q.ID))
		if err != nil {
			c.logger.Warn("read persisted grade", zap.Int64("question_id", q.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		g, ok := grade.ParseLabel(label)
		if !ok {
			c.logger.Warn("ignoring unknown persisted grade", zap.Int64("question_id", q.ID), zap.String("label", label))
			continue
		}
		restored[q.ID] = Answer{Grade: g}
	}
	return restored
}

func (c *Cache) has(categoryID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byCategory[categoryID]
	return ok
}

// Cached returns a cached category joined with the current answers, without
// any I/O.
func (c *Cache) Cached(categoryID int64) ([]AnsweredQuestion, bool) {
	c.mu.RLock()
	questions, ok := c.byCategory[categoryID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	out := make([]AnsweredQuestion, len(questions))
	for i, q := range questions {
		out[i] = AnsweredQuestion{Question: q}
		if ans, ok := c.answers.Get(q.ID); ok {
			a := ans
			out[i].Answer = &a
		}
	}
	return out, true
}

// Question looks up a cached question by id.
func (c *Cache) Question(questionID int64) (Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.byID[questionID]
	return q, ok
}
