package questionnaire_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/grade"
	"github.com/abhisek/kmatcher/internal/questionnaire"
	"github.com/abhisek/kmatcher/internal/store"
)

func loaded(t *testing.T, backend *fakeBackend, kv store.KV) *questionnaire.Questionnaire {
	t.Helper()
	if kv == nil {
		kv = store.NewMemoryKV()
	}
	q := questionnaire.New(backend, kv, nil)
	require.NoError(t, q.LoadCategories(context.Background()))
	return q
}

func TestEnsureLoaded_BeforeCategories(t *testing.T) {
	backend := twoCategories()
	q := questionnaire.New(backend, store.NewMemoryKV(), nil)

	_, err := q.EnsureLoaded(context.Background(), 1)
	assert.ErrorIs(t, err, questionnaire.ErrCatalogNotLoaded)
	assert.Equal(t, int32(0), backend.questionCalls.Load())
}

func TestEnsureLoaded_UnknownCategory(t *testing.T) {
	backend := twoCategories()
	q := loaded(t, backend, nil)

	_, err := q.EnsureLoaded(context.Background(), 99)
	var nf *questionnaire.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "category", nf.Kind)
	assert.Equal(t, int32(0), backend.questionCalls.Load())
}

func TestEnsureLoaded_ConcurrentCallersShareOneFetch(t *testing.T) {
	backend := twoCategories()
	backend.gate = make(chan struct{})
	backend.entered = make(chan struct{}, 1)
	q := loaded(t, backend, nil)

	const callers = 10
	results := make([][]questionnaire.AnsweredQuestion, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qs, err := q.EnsureLoaded(context.Background(), 1)
			assert.NoError(t, err)
			results[i] = qs
		}()
	}

	<-backend.entered
	close(backend.gate)
	wg.Wait()

	assert.Equal(t, int32(1), backend.questionCalls.Load())
	for _, qs := range results {
		require.Len(t, qs, 2)
		assert.Equal(t, int64(10), qs[0].ID)
		assert.Equal(t, int64(11), qs[1].ID)
	}

	_, err := q.EnsureLoaded(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), backend.questionCalls.Load())
}

func TestEnsureLoaded_RetryAfterFailure(t *testing.T) {
	backend := twoCategories()
	backend.fail("questions", errBoom)
	q := loaded(t, backend, nil)

	_, err := q.EnsureLoaded(context.Background(), 1)
	require.ErrorIs(t, err, errBoom)
	_, ok := q.Cache.Cached(1)
	assert.False(t, ok)

	qs, err := q.EnsureLoaded(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Equal(t, int32(2), backend.questionCalls.Load())
}

func TestEnsureLoaded_CancelledContext(t *testing.T) {
	backend := twoCategories()
	backend.gate = make(chan struct{})
	q := loaded(t, backend, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.EnsureLoaded(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)

	close(backend.gate)
	qs, err := q.EnsureLoaded(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, qs, 2)
}

func TestSetAnswer_UnknownQuestion(t *testing.T) {
	q := loaded(t, twoCategories(), nil)

	err := q.SetAnswer(context.Background(), 10, grade.Yes, false)
	var nf *questionnaire.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "question", nf.Kind)
}

func TestSetAnswer_InvalidGrade(t *testing.T) {
	q := loaded(t, twoCategories(), nil)
	_, err := q.EnsureLoaded(context.Background(), 1)
	require.NoError(t, err)

	assert.Error(t, q.SetAnswer(context.Background(), 10, grade.Grade(7), false))
	_, ok := q.Answers.Get(10)
	assert.False(t, ok)
}

func TestAnswers_PersistAcrossSessions(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()

	first := loaded(t, twoCategories(), kv)
	_, err := first.EnsureLoaded(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, first.SetAnswer(ctx, 10, grade.Need, true))
	require.NoError(t, first.SetAnswer(ctx, 11, grade.Never, false))

	label, ok, err := kv.Get(ctx, "10-grade")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Need", label)

	second := loaded(t, twoCategories(), kv)
	qs, err := second.EnsureLoaded(ctx, 1)
	require.NoError(t, err)
	require.Len(t, qs, 2)

	require.NotNil(t, qs[0].Answer)
	assert.Equal(t, questionnaire.Answer{Grade: grade.Need, IfForced: false}, *qs[0].Answer)
	require.NotNil(t, qs[1].Answer)
	assert.Equal(t, grade.Never, qs[1].Answer.Grade)
}

func TestAnswers_IgnoresUnknownPersistedLabel(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "10-grade", "Sometimes"))

	q := loaded(t, twoCategories(), kv)
	qs, err := q.EnsureLoaded(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, qs[0].Answer)
}

func TestAllAnswered_Transitions(t *testing.T) {
	ctx := context.Background()
	q := loaded(t, twoCategories(), nil)

	assert.False(t, q.AllAnswered(), "no known questions")

	_, err := q.EnsureLoaded(ctx, 1)
	require.NoError(t, err)
	assert.False(t, q.AllAnswered())

	require.NoError(t, q.SetAnswer(ctx, 10, grade.Yes, false))
	assert.False(t, q.AllAnswered())
	require.NoError(t, q.SetAnswer(ctx, 11, grade.Maybe, false))
	assert.True(t, q.AllAnswered())

	_, err = q.EnsureLoaded(ctx, 2)
	require.NoError(t, err)
	assert.False(t, q.AllAnswered(), "new unanswered category")

	require.NoError(t, q.SetAnswer(ctx, 20, grade.NoDesire, false))
	assert.True(t, q.AllAnswered())

	answered, known := q.Progress()
	assert.Equal(t, 3, answered)
	assert.Equal(t, 3, known)

	require.NoError(t, q.ClearAnswer(ctx, 20))
	assert.False(t, q.AllAnswered())
}

func TestAllAnswered_RestoredCategoryIsReady(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "20-grade", "Yes"))

	q := loaded(t, twoCategories(), kv)
	_, err := q.EnsureLoaded(ctx, 2)
	require.NoError(t, err)
	assert.True(t, q.AllAnswered())
}

func TestClearAnswer_RemovesPersistedGrade(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	q := loaded(t, twoCategories(), kv)
	_, err := q.EnsureLoaded(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, q.SetAnswer(ctx, 20, grade.Yes, false))
	require.NoError(t, q.ClearAnswer(ctx, 20))

	_, ok, err := kv.Get(ctx, "20-grade")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok = q.Answers.Get(20)
	assert.False(t, ok)
}

func TestAnswered_SortedByQuestionID(t *testing.T) {
	ctx := context.Background()
	q := loaded(t, twoCategories(), nil)
	for _, id := range []int64{1, 2} {
		_, err := q.EnsureLoaded(ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, q.SetAnswer(ctx, 20, grade.Yes, true))
	require.NoError(t, q.SetAnswer(ctx, 10, grade.Maybe, false))

	got := q.Answered()
	require.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].QuestionID)
	assert.Equal(t, int64(20), got[1].QuestionID)
	assert.True(t, got[1].Answer.IfForced)
}

func TestQuestionnaire_Navigation(t *testing.T) {
	q := loaded(t, twoCategories(), nil)

	cur, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "A", cur.Name)

	_, ok = q.Previous()
	assert.False(t, ok)
	next, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "B", next.Name)

	_, err := q.Select(next.ID)
	require.NoError(t, err)
	assert.True(t, q.IsCurrent(2))

	prev, ok := q.Previous()
	require.True(t, ok)
	assert.Equal(t, "A", prev.Name)
	_, ok = q.Next()
	assert.False(t, ok)

	_, err = q.Select(99)
	assert.Error(t, err)
	assert.True(t, q.IsCurrent(2))
}

func TestLoadCategories_KeepsSelection(t *testing.T) {
	q := loaded(t, twoCategories(), nil)
	_, err := q.Select(2)
	require.NoError(t, err)

	require.NoError(t, q.LoadCategories(context.Background()))
	assert.True(t, q.IsCurrent(2))
}

func TestLoadCategories_Empty(t *testing.T) {
	q := questionnaire.New(newFakeBackend([]api.Category{}, nil), store.NewMemoryKV(), nil)
	require.NoError(t, q.LoadCategories(context.Background()))

	_, ok := q.Current()
	assert.False(t, ok)
	_, err := q.EnsureLoaded(context.Background(), 1)
	assert.ErrorIs(t, err, questionnaire.ErrCatalogNotLoaded)
}

func TestSetAnswer_ReadersNotBlockedByPersist(t *testing.T) {
	kv := newSlowKV()
	q := loaded(t, twoCategories(), kv)
	_, err := q.EnsureLoaded(context.Background(), 2)
	require.NoError(t, err)

	setDone := make(chan error, 1)
	go func() {
		setDone <- q.SetAnswer(context.Background(), 20, grade.Yes, false)
	}()
	<-kv.entered

	read := make(chan bool, 1)
	go func() {
		all := q.AllAnswered()
		q.Progress()
		read <- all
	}()
	select {
	case all := <-read:
		assert.True(t, all)
	case <-time.After(time.Second):
		t.Fatal("readers blocked while a grade write was in flight")
	}

	close(kv.release)
	require.NoError(t, <-setDone)
	v, ok, err := kv.Get(context.Background(), questionnaire.GradeKey(20))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Yes", v)
}

func TestClearAnswer_ReadersNotBlockedByPersist(t *testing.T) {
	kv := newSlowKV()
	close(kv.release)
	q := loaded(t, twoCategories(), kv)
	_, err := q.EnsureLoaded(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, q.SetAnswer(context.Background(), 20, grade.Yes, false))
	<-kv.entered

	kv.release = make(chan struct{})
	clearDone := make(chan error, 1)
	go func() {
		clearDone <- q.ClearAnswer(context.Background(), 20)
	}()
	<-kv.entered

	read := make(chan bool, 1)
	go func() { read <- q.AllAnswered() }()
	select {
	case all := <-read:
		assert.False(t, all)
	case <-time.After(time.Second):
		t.Fatal("readers blocked while a grade delete was in flight")
	}

	close(kv.release)
	require.NoError(t, <-clearDone)
}
