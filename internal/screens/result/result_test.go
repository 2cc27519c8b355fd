package result

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/results"
	"github.com/abhisek/kmatcher/internal/router"
)

type mockBackend struct {
	result *api.SubmitResult
	err    error
}

func (m *mockBackend) Result(context.Context, string) (*api.SubmitResult, error) {
	return m.result, m.err
}

func (m *mockBackend) AllQuestions(context.Context) ([]api.Question, error) {
	return []api.Question{{ID: 1, Text: "Hold hands"}}, nil
}

func loadScreen(t *testing.T, b *mockBackend) (*Screen, *router.NavigateMsg) {
	t.Helper()
	s := New(results.NewRenderer(b, nil), "abc")
	s.loading = true
	_, cmd := s.Update(s.load()())
	if cmd == nil {
		return s, nil
	}
	nav, ok := cmd().(router.NavigateMsg)
	if !ok {
		t.Fatalf("expected NavigateMsg")
	}
	return s, &nav
}

func TestResultScreen_Matched(t *testing.T) {
	s, nav := loadScreen(t, &mockBackend{result: &api.SubmitResult{
		ID: "abc",
		MatchingResult: []api.MatchGroup{{
			MinAnswer: 4,
			Matches: []api.Match{{
				QuestionID: 1,
				AnswerA:    api.MatchAnswer{Answer: 4},
				AnswerB:    api.MatchAnswer{Answer: 4},
			}},
		}},
	}})
	if nav != nil {
		t.Fatalf("unexpected navigation to %+v", nav.Route)
	}
	if out := s.View(100, 30); !strings.Contains(out, "Hold hands") {
		t.Errorf("expected table in view:\n%s", out)
	}
}

func TestResultScreen_PendingOpensQuestionnaire(t *testing.T) {
	_, nav := loadScreen(t, &mockBackend{result: &api.SubmitResult{ID: "abc"}})
	if nav == nil {
		t.Fatal("expected navigation")
	}
	want := router.Route{Kind: router.RouteQuestionnaire, PartnerID: "abc"}
	if nav.Route != want {
		t.Errorf("route = %+v, want %+v", nav.Route, want)
	}
}

func TestResultScreen_NotFound(t *testing.T) {
	_, nav := loadScreen(t, &mockBackend{err: &api.NotFoundError{ResultID: "abc"}})
	if nav == nil || nav.Route.Kind != router.RouteNotFound {
		t.Fatalf("expected not-found navigation, got %+v", nav)
	}
}

func TestResultScreen_ErrorInline(t *testing.T) {
	s, nav := loadScreen(t, &mockBackend{err: &api.FetchError{Context: api.ContextResult, Err: errors.New("boom")}})
	if nav != nil {
		t.Fatal("errors should not navigate")
	}
	if out := s.View(100, 30); !strings.Contains(out, results.MsgResultFailed) {
		t.Errorf("expected inline error:\n%s", out)
	}
}
