// Package questionnaire is the screen where answers are given and submitted.
package questionnaire

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/kmatcher/internal/grade"
	qn "github.com/abhisek/kmatcher/internal/questionnaire"
	"github.com/abhisek/kmatcher/internal/router"
	"github.com/abhisek/kmatcher/internal/screen"
	"github.com/abhisek/kmatcher/internal/submission"
	"github.com/abhisek/kmatcher/internal/ui/components"
	"github.com/abhisek/kmatcher/internal/ui/layout"
)

const (
	msgCategoriesFailed = "Failed to fetch categories"
	msgQuestionsFailed  = "Failed to fetch questions"
	msgNoCategories     = "No categories available"
)

// Screen implements screen.Screen for answering the questionnaire.
type Screen struct {
	q      *qn.Questionnaire
	ctrl   *submission.Controller
	logger *zap.Logger

	spinner spinner.Model

	loadingCategories bool
	categoriesErr     string

	loadingQuestions bool
	questionsErr     string
	questions        []qn.AnsweredQuestion
	cursor           int
	gradeCursor      grade.Grade

	// forced flags chosen before a grade was picked
	pendingForced map[int64]bool
	answerErr     string

	joining bool
	code    components.CodeInput

	outcome *submission.Outcome
	failure string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the questionnaire screen. ctrl decides whether submissions
// start a new result or complete a partner's.
func New(q *qn.Questionnaire, ctrl *submission.Controller, logger *zap.Logger) *Screen {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Screen{
		q:             q,
		ctrl:          ctrl,
		logger:        logger,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		gradeCursor:   grade.Maybe,
		pendingForced: make(map[int64]bool),
	}
}

func (s *Screen) Init() tea.Cmd {
	if cur, ok := s.q.Current(); ok {
		s.loadingQuestions = true
		return tea.Batch(s.spinner.Tick, s.loadQuestions(cur.ID))
	}
	s.loadingCategories = true
	return tea.Batch(s.spinner.Tick, s.loadCategories())
}

func (s *Screen) Title() string {
	if s.ctrl.PartnerID() != "" {
		return "Questionnaire (with partner)"
	}
	return "Questionnaire"
}

// Progress reports answered and known questions for the header.
func (s *Screen) Progress() (answered, known int) {
	return s.q.Progress()
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.joining {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Open"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	if s.categoriesErr != "" || s.questionsErr != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Question"},
		{Key: "1-5", Description: "Grade"},
		{Key: "F", Description: "If forced"},
		{Key: "[ ]", Description: "Category"},
	}
	switch {
	case s.outcome != nil && !s.outcome.Combined:
		hints = append(hints, layout.KeyHint{Key: "Shift+N", Description: "New submission"})
	case s.q.AllAnswered():
		hints = append(hints, layout.KeyHint{Key: "S", Description: "Submit"})
	}
	if s.ctrl.PartnerID() == "" {
		hints = append(hints, layout.KeyHint{Key: "O", Description: "Open code"})
	}
	hints = append(hints, layout.KeyHint{Key: "Shift+H", Description: "History"})
	return hints
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		return s.handleCategoriesLoaded(msg)

	case questionsLoadedMsg:
		return s.handleQuestionsLoaded(msg)

	case answerSavedMsg:
		return s.handleAnswerSaved(msg)

	case submitDoneMsg:
		return s.handleSubmitDone(msg)

	case components.GradeChosenMsg:
		return s.setAnswer(msg.Grade, msg.Forced)

	case components.ForcedToggledMsg:
		return s.toggleForced(msg.Forced)

	case spinner.TickMsg:
		if !s.busy() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.joining {
		var cmd tea.Cmd
		s.code, cmd = s.code.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) busy() bool {
	return s.loadingCategories || s.loadingQuestions || s.ctrl.Status().State == submission.Submitting
}

func (s *Screen) loadCategories() tea.Cmd {
	return func() tea.Msg {
		return categoriesLoadedMsg{Err: s.q.LoadCategories(context.Background())}
	}
}

func (s *Screen) loadQuestions(categoryID int64) tea.Cmd {
	return func() tea.Msg {
		qs, err := s.q.EnsureLoaded(context.Background(), categoryID)
		return questionsLoadedMsg{CategoryID: categoryID, Questions: qs, Err: err}
	}
}

func (s *Screen) handleCategoriesLoaded(msg categoriesLoadedMsg) (screen.Screen, tea.Cmd) {
	s.loadingCategories = false
	if msg.Err != nil {
		s.logger.Warn("categories", zap.Error(msg.Err))
		s.categoriesErr = msgCategoriesFailed
		return s, nil
	}
	s.categoriesErr = ""

	cur, ok := s.q.Current()
	if !ok {
		s.categoriesErr = msgNoCategories
		return s, nil
	}
	return s.selectCategory(cur.ID)
}

// handleQuestionsLoaded applies a load only if its category is still the
// selected one.
func (s *Screen) handleQuestionsLoaded(msg questionsLoadedMsg) (screen.Screen, tea.Cmd) {
	if !s.q.IsCurrent(msg.CategoryID) {
		return s, nil
	}
	s.loadingQuestions = false
	if msg.Err != nil {
		s.logger.Warn("questions", zap.Int64("category_id", msg.CategoryID), zap.Error(msg.Err))
		s.questionsErr = msgQuestionsFailed
		s.questions = nil
		return s, nil
	}
	s.questionsErr = ""
	s.questions = msg.Questions
	s.moveTo(0)
	return s, nil
}

func (s *Screen) selectCategory(categoryID int64) (screen.Screen, tea.Cmd) {
	if _, err := s.q.Select(categoryID); err != nil {
		return s, nil
	}
	s.cursor = 0
	s.questionsErr = ""
	if qs, ok := s.q.Cache.Cached(categoryID); ok {
		s.loadingQuestions = false
		s.questions = qs
		s.moveTo(0)
		return s, nil
	}
	s.loadingQuestions = true
	s.questions = nil
	return s, tea.Batch(s.spinner.Tick, s.loadQuestions(categoryID))
}

func (s *Screen) refresh() {
	cur, ok := s.q.Current()
	if !ok {
		return
	}
	if qs, ok := s.q.Cache.Cached(cur.ID); ok {
		s.questions = qs
	}
}

func (s *Screen) selected() (qn.AnsweredQuestion, bool) {
	if s.cursor < 0 || s.cursor >= len(s.questions) {
		return qn.AnsweredQuestion{}, false
	}
	return s.questions[s.cursor], true
}

func (s *Screen) picker() components.GradePicker {
	aq, ok := s.selected()
	if !ok {
		return components.GradePicker{}
	}
	var p components.GradePicker
	if aq.Answer != nil {
		g := aq.Answer.Grade
		p = components.NewGradePicker(&g, aq.Answer.IfForced)
	} else {
		p = components.NewGradePicker(nil, s.pendingForced[aq.ID])
	}
	p.Cursor = s.gradeCursor
	p.Focused = true
	p.Disabled = s.outcome != nil
	return p
}

// moveTo points the cursor at question i.
func (s *Screen) moveTo(i int) {
	s.cursor = i
	s.gradeCursor = grade.Maybe
	if aq, ok := s.selected(); ok && aq.Answer != nil {
		s.gradeCursor = aq.Answer.Grade
	}
}

func (s *Screen) setAnswer(g grade.Grade, forced bool) (screen.Screen, tea.Cmd) {
	aq, ok := s.selected()
	if !ok {
		return s, nil
	}
	delete(s.pendingForced, aq.ID)
	id := aq.ID
	return s, func() tea.Msg {
		return answerSavedMsg{QuestionID: id, Err: s.q.SetAnswer(context.Background(), id, g, forced)}
	}
}

func (s *Screen) toggleForced(forced bool) (screen.Screen, tea.Cmd) {
	aq, ok := s.selected()
	if !ok {
		return s, nil
	}
	if aq.Answer == nil {
		s.pendingForced[aq.ID] = forced
		return s, nil
	}
	return s.setAnswer(aq.Answer.Grade, forced)
}

func (s *Screen) clearAnswer() (screen.Screen, tea.Cmd) {
	aq, ok := s.selected()
	if !ok || aq.Answer == nil {
		return s, nil
	}
	id := aq.ID
	return s, func() tea.Msg {
		return answerSavedMsg{QuestionID: id, Err: s.q.ClearAnswer(context.Background(), id)}
	}
}

func (s *Screen) handleAnswerSaved(msg answerSavedMsg) (screen.Screen, tea.Cmd) {
	s.answerErr = ""
	if msg.Err != nil {
		s.logger.Warn("save answer", zap.Int64("question_id", msg.QuestionID), zap.Error(msg.Err))
		s.answerErr = "Answer not saved on this device"
	}
	s.refresh()
	return s, nil
}

func (s *Screen) submit() (screen.Screen, tea.Cmd) {
	if !s.q.AllAnswered() {
		return s, nil
	}
	st := s.ctrl.Status().State
	if st == submission.Submitting || st == submission.Success {
		return s, nil
	}
	s.failure = ""
	ctrl := s.ctrl
	return s, tea.Batch(s.spinner.Tick, func() tea.Msg {
		out, err := ctrl.Submit(context.Background())
		return submitDoneMsg{Outcome: out, Err: err}
	})
}

func (s *Screen) handleSubmitDone(msg submitDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, submission.ErrInFlight) || errors.Is(msg.Err, submission.ErrAlreadySubmitted) {
			return s, nil
		}
		s.failure = submission.FailureMessage
		return s, nil
	}
	out := msg.Outcome
	s.outcome = &out
	if out.Combined {
		return s, router.Navigate(router.Route{Kind: router.RouteResult, ResultID: out.Result.ID})
	}
	return s, nil
}

// startOver drops a shared code so the answers can be submitted again as a
// new result.
func (s *Screen) startOver() (screen.Screen, tea.Cmd) {
	if s.outcome == nil || s.outcome.Combined {
		return s, nil
	}
	s.ctrl.Reset()
	s.outcome = nil
	s.failure = ""
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.joining {
		switch key {
		case "esc":
			s.joining = false
			return s, nil
		case "enter":
			if !s.code.Validate() {
				return s, nil
			}
			s.joining = false
			return s, router.Navigate(router.Route{Kind: router.RouteResult, ResultID: s.code.Value()})
		}
		var cmd tea.Cmd
		s.code, cmd = s.code.Update(msg)
		return s, cmd
	}

	switch key {
	case "r", "R":
		if s.categoriesErr != "" {
			s.categoriesErr = ""
			s.loadingCategories = true
			return s, tea.Batch(s.spinner.Tick, s.loadCategories())
		}
		if s.questionsErr != "" {
			if cur, ok := s.q.Current(); ok {
				return s.selectCategory(cur.ID)
			}
		}
		return s, nil
	case "H":
		return s, router.Open(router.Route{Kind: router.RouteHistory})
	case "N":
		return s.startOver()
	case "o", "O":
		if s.ctrl.PartnerID() == "" {
			s.joining = true
			s.code = components.NewCodeInput()
			return s, s.code.Init()
		}
		return s, nil
	}

	if s.loadingCategories || s.categoriesErr != "" {
		return s, nil
	}

	switch key {
	case "[", "p":
		if prev, ok := s.q.Previous(); ok {
			return s.selectCategory(prev.ID)
		}
		return s, nil
	case "]", "n":
		if next, ok := s.q.Next(); ok {
			return s.selectCategory(next.ID)
		}
		return s, nil
	case "up", "k":
		if s.cursor > 0 {
			s.moveTo(s.cursor - 1)
		}
		return s, nil
	case "down", "j":
		if s.cursor < len(s.questions)-1 {
			s.moveTo(s.cursor + 1)
		}
		return s, nil
	case "x", "backspace", "delete":
		if s.outcome != nil {
			return s, nil
		}
		return s.clearAnswer()
	case "s", "S":
		return s.submit()
	}

	if s.outcome != nil {
		return s, nil
	}
	p, cmd := s.picker().Update(msg)
	s.gradeCursor = p.Cursor
	return s, cmd
}
