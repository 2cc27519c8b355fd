package questionnaire

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/kmatcher/internal/grade"
	"github.com/abhisek/kmatcher/internal/store"
)

// Answers records the answers of every question known so far and persists
// their grades. The forced flag lives only in memory.
type Answers struct {
	kv     store.KV
	logger *zap.Logger

	// persistMu orders durable writes. It is taken before mu is released
	// so writes land in the order the answers changed.
	persistMu sync.Mutex

	mu          sync.RWMutex
	known       map[int64]struct{}
	answers     map[int64]Answer
	allAnswered bool
}

// NewAnswers creates an empty answer store writing grades to kv.
func NewAnswers(kv store.KV, logger *zap.Logger) *Answers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answers{
		kv:      kv,
		logger:  logger,
		known:   make(map[int64]struct{}),
		answers: make(map[int64]Answer),
	}
}

// register makes questions known, seeding answers restored from the durable
// store for questions that have no in-memory answer yet.
func (a *Answers) register(questions []Question, restored map[int64]Answer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, q := range questions {
		a.known[q.ID] = struct{}{}
		if ans, ok := restored[q.ID]; ok {
			if _, exists := a.answers[q.ID]; !exists {
				a.answers[q.ID] = ans
			}
		}
	}
	a.recompute()
}

// Set records an answer for a known question and persists its grade.
// The in-memory answer is kept even if persisting fails.
func (a *Answers) Set(ctx context.Context, questionID int64, g grade.Grade, ifForced bool) error {
	if !g.Valid() {
		return fmt.Errorf("invalid grade %d", int(g))
	}

	a.mu.Lock()
	if _, ok := a.known[questionID]; !ok {
		a.mu.Unlock()
		return &NotFoundError{Kind: "question", ID: questionID}
	}
	a.answers[questionID] = Answer{Grade: g, IfForced: ifForced}
	a.recompute()
	a.persistMu.Lock()
	a.mu.Unlock()
	defer a.persistMu.Unlock()

	if err := a.kv.Set(ctx, GradeKey(questionID), g.Label()); err != nil {
		a.logger.Warn("persist grade", zap.Int64("question_id", questionID), zap.Error(err))
		return fmt.Errorf("persist grade: %w", err)
	}
	return nil
}

// Clear removes the answer of a known question and its persisted grade.
func (a *Answers) Clear(ctx context.Context, questionID int64) error {
	a.mu.Lock()
	if _, ok := a.known[questionID]; !ok {
		a.mu.Unlock()
		return &NotFoundError{Kind: "question", ID: questionID}
	}
	delete(a.answers, questionID)
	a.recompute()
	a.persistMu.Lock()
	a.mu.Unlock()
	defer a.persistMu.Unlock()

	if err := a.kv.Delete(ctx, GradeKey(questionID)); err != nil {
		a.logger.Warn("delete persisted grade", zap.Int64("question_id", questionID), zap.Error(err))
		return fmt.Errorf("delete persisted grade: %w", err)
	}
	return nil
}

// recompute refreshes the readiness flag. Callers hold a.mu.
func (a *Answers) recompute() {
	if len(a.known) == 0 {
		a.allAnswered = false
		return
	}
	for id := range a.known {
		if _, ok := a.answers[id]; !ok {
			a.allAnswered = false
			return
		}
	}
	a.allAnswered = true
}

// AllAnswered reports whether at least one question is known and every known
// question has an answer.
func (a *Answers) AllAnswered() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.allAnswered
}

// Get returns the answer for a question.
func (a *Answers) Get(questionID int64) (Answer, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ans, ok := a.answers[questionID]
	return ans, ok
}

// Answered returns every answer ordered by question id.
func (a *Answers) Answered() []Entry {
	a.mu.RLock()
	out := make([]Entry, 0, len(a.answers))
	for id, ans := range a.answers {
		out = append(out, Entry{QuestionID: id, Answer: ans})
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// Progress returns how many known questions are answered.
func (a *Answers) Progress() (answered, known int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for id := range a.known {
		if _, ok := a.answers[id]; ok {
			answered++
		}
	}
	return answered, len(a.known)
}
