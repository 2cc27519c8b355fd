package questionnaire_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBackend serves fixed categories and questions. When gate is set,
// Questions blocks until it is closed; catGate does the same for Categories.
type fakeBackend struct {
	mu         sync.Mutex
	categories []api.Category
	questions  map[int64][]api.Question
	failNext   map[string]error

	gate          chan struct{}
	entered       chan struct{}
	catGate       chan struct{}
	catEntered    chan struct{}
	categoryCalls atomic.Int32
	questionCalls atomic.Int32
}

func newFakeBackend(categories []api.Category, questions map[int64][]api.Question) *fakeBackend {
	if questions == nil {
		questions = map[int64][]api.Question{}
	}
	return &fakeBackend{
		categories: categories,
		questions:  questions,
		failNext:   map[string]error{},
	}
}

func (f *fakeBackend) fail(route string, err error) {
	f.mu.Lock()
	f.failNext[route] = err
	f.mu.Unlock()
}

func (f *fakeBackend) takeFailure(route string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.failNext[route]
	delete(f.failNext, route)
	return err
}

func (f *fakeBackend) Categories(ctx context.Context) ([]api.Category, error) {
	f.categoryCalls.Add(1)
	if f.catEntered != nil {
		f.catEntered <- struct{}{}
	}
	if f.catGate != nil {
		select {
		case <-f.catGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.takeFailure("categories"); err != nil {
		return nil, err
	}
	return f.categories, nil
}

func (f *fakeBackend) Questions(ctx context.Context, categoryID int64) ([]api.Question, error) {
	f.questionCalls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.takeFailure("questions"); err != nil {
		return nil, err
	}
	return f.questions[categoryID], nil
}

var errBoom = errors.New("boom")

func twoCategories() *fakeBackend {
	return newFakeBackend(
		[]api.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		map[int64][]api.Question{
			1: {{ID: 10, Text: "q10", CategoryID: 1}, {ID: 11, Text: "q11", CategoryID: 1}},
			2: {{ID: 20, Text: "q20", CategoryID: 2}},
		},
	)
}

// slowKV blocks Set and Delete until release is closed, signalling on
// entered when a write starts.
type slowKV struct {
	*store.MemoryKV
	entered chan struct{}
	release chan struct{}
}

func newSlowKV() *slowKV {
	return &slowKV{
		MemoryKV: store.NewMemoryKV(),
		entered:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
}

func (k *slowKV) Set(ctx context.Context, key, value string) error {
	k.entered <- struct{}{}
	<-k.release
	return k.MemoryKV.Set(ctx, key, value)
}

func (k *slowKV) Delete(ctx context.Context, key string) error {
	k.entered <- struct{}{}
	<-k.release
	return k.MemoryKV.Delete(ctx, key)
}
