// Package apitest provides an in-memory questionnaire backend for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/abhisek/kmatcher/internal/api"
)

// Backend is a fake backend implementing the questionnaire HTTP contract.
// Matching follows the backend's rules: a pair matches unless either side is
// Never; a Need on either side always matches; otherwise both must be above
// NoDesire. Groups are emitted in first-seen order without shuffling.
type Backend struct {
	mu         sync.Mutex
	categories []api.Category
	questions  []api.Question
	results    map[string]*storedResult
	order      int

	// Status forces a status code for a route name ("categories",
	// "questions", "submit", "result"). Zero means normal handling.
	Status map[string]int

	// Gate, when set for a route name, blocks the handler until the
	// channel is closed or receives.
	Gate map[string]chan struct{}

	hits        map[string]int
	submissions [][]byte
}

type storedResult struct {
	answers  []api.SubmitAnswer
	matching []api.MatchGroup
}

// New creates a Backend with the given catalog.
func New(categories []api.Category, questions []api.Question) *Backend {
	if categories == nil {
		categories = []api.Category{}
	}
	if questions == nil {
		questions = []api.Question{}
	}
	return &Backend{
		categories: categories,
		questions:  questions,
		results:    make(map[string]*storedResult),
		Status:     make(map[string]int),
		Gate:       make(map[string]chan struct{}),
		hits:       make(map[string]int),
	}
}

// Start serves the backend on an httptest server closed at test cleanup.
func (b *Backend) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return srv
}

// Router returns the HTTP routes of the backend.
func (b *Backend) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/question_categories", b.handleCategories).Methods(http.MethodGet)
	r.HandleFunc("/questions", b.handleQuestions).Methods(http.MethodGet)
	r.HandleFunc("/results", b.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/results/{id}", b.handleResult).Methods(http.MethodGet)
	return r
}

// Hits returns how many times a route name was requested.
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// Submissions returns the raw bodies of every POST /results.
func (b *Backend) Submissions() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.submissions))
	copy(out, b.submissions)
	return out
}

// SetStatus forces a status code for a route name.
func (b *Backend) SetStatus(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Status[route] = status
}

// Hold installs a gate for a route name and returns the function that
// releases it.
func (b *Backend) Hold(route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.Gate[route] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// PutResult stores a result directly, bypassing submission.
func (b *Backend) PutResult(id string, answers []api.SubmitAnswer, matching []api.MatchGroup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[id] = &storedResult{answers: answers, matching: matching}
}

// enter records a hit, waits on the route gate and reports a forced status.
func (b *Backend) enter(route string) int {
	b.mu.Lock()
	b.hits[route]++
	gate := b.Gate[route]
	status := b.Status[route]
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return status
}

func (b *Backend) handleCategories(w http.ResponseWriter, r *http.Request) {
	if status := b.enter("categories"); status != 0 {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, http.StatusOK, b.categories)
}

func (b *Backend) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if status := b.enter("questions"); status != 0 {
		w.WriteHeader(status)
		return
	}

	raw := r.URL.Query().Get("category_id")
	if raw == "" {
		writeJSON(w, http.StatusOK, b.questions)
		return
	}
	categoryID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	out := []api.Question{}
	for _, q := range b.questions {
		if q.CategoryID == categoryID {
			out = append(out, q)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.submissions = append(b.submissions, body)
	b.mu.Unlock()

	if status := b.enter("submit"); status != 0 {
		w.WriteHeader(status)
		return
	}

	var req api.SubmitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if req.PartnerID != nil {
		partner, ok := b.results[*req.PartnerID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		partner.matching = match(partner.answers, req.Answers)
		writeJSON(w, http.StatusOK, api.SubmitResult{ID: *req.PartnerID, MatchingResult: partner.matching})
		return
	}

	id := uuid.NewString()
	b.results[id] = &storedResult{answers: req.Answers}
	writeJSON(w, http.StatusOK, api.SubmitResult{ID: id})
}

func (b *Backend) handleResult(w http.ResponseWriter, r *http.Request) {
	if status := b.enter("result"); status != 0 {
		w.WriteHeader(status)
		return
	}

	id := mux.Vars(r)["id"]
	b.mu.Lock()
	res, ok := b.results[id]
	b.mu.Unlock()
	if !ok {
		// Unknown ids that are not even UUIDs fail validation upstream.
		if _, err := uuid.Parse(id); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, api.SubmitResult{ID: id, MatchingResult: res.matching})
}

// match pairs answers present on both sides and groups the matching pairs
// by their minimum grade.
func match(a, b []api.SubmitAnswer) []api.MatchGroup {
	byQuestion := make(map[int64]api.SubmitAnswer, len(b))
	for _, ans := range b {
		byQuestion[ans.QuestionID] = ans
	}

	ids := make([]int64, 0, len(a))
	answersA := make(map[int64]api.SubmitAnswer, len(a))
	for _, ans := range a {
		if _, ok := byQuestion[ans.QuestionID]; ok {
			ids = append(ids, ans.QuestionID)
			answersA[ans.QuestionID] = ans
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var groups []api.MatchGroup
	index := make(map[int]int)
	for _, id := range ids {
		x, y := answersA[id], byQuestion[id]
		if !isMatch(x.Answer, y.Answer) {
			continue
		}
		minAnswer := min(x.Answer, y.Answer)
		gi, ok := index[minAnswer]
		if !ok {
			gi = len(groups)
			index[minAnswer] = gi
			groups = append(groups, api.MatchGroup{MinAnswer: minAnswer})
		}
		groups[gi].Matches = append(groups[gi].Matches, api.Match{
			QuestionID: id,
			AnswerA:    api.MatchAnswer{Answer: x.Answer, IfForced: x.IfForced != nil && *x.IfForced},
			AnswerB:    api.MatchAnswer{Answer: y.Answer, IfForced: y.IfForced != nil && *y.IfForced},
		})
	}
	return groups
}

func isMatch(a, b int) bool {
	lo, hi := min(a, b), max(a, b)
	if lo <= 0 {
		return false
	}
	if hi >= 4 {
		return true
	}
	return lo > 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
