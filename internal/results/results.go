// Package results loads a shared result and turns its match groups into a
// display table.
package results

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/grade"
)

// Messages shown for inline load failures.
const (
	MsgResultFailed    = "Failed to load result"
	MsgQuestionsFailed = "Failed to load questions"
)

// Kind classifies a loaded view.
type Kind int

const (
	// KindNotFound means the result id is unknown or malformed.
	KindNotFound Kind = iota
	// KindError is any other load failure, shown inline.
	KindError
	// KindPending means the partner has not submitted yet.
	KindPending
	// KindMatched carries a table.
	KindMatched
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindError:
		return "error"
	case KindPending:
		return "pending"
	case KindMatched:
		return "matched"
	default:
		return "unknown"
	}
}

// Cell is one respondent's answer.
type Cell struct {
	Label  string
	Forced bool
}

// Row is one matched question.
type Row struct {
	QuestionID int64
	Question   string
	A, B       Cell
}

// Group is every row sharing a minimum grade. Badge holds the grade used
// to color the group; it may lie outside the scale.
type Group struct {
	MinAnswer int
	Label     string
	Badge     grade.Grade
	Rows      []Row
}

// Table is the rendered result, groups ordered from the highest minimum
// grade down.
type Table struct {
	Groups []Group
}

// Rows returns the number of rows across all groups.
func (t Table) Rows() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Rows)
	}
	return n
}

// View is the outcome of loading a result.
type View struct {
	Kind     Kind
	ResultID string
	Err      error
	Message  string
	Table    Table
}

// ResultFetcher reads a result by id.
type ResultFetcher interface {
	Result(ctx context.Context, id string) (*api.SubmitResult, error)
}

// DirectoryFetcher reads every question.
type DirectoryFetcher interface {
	AllQuestions(ctx context.Context) ([]api.Question, error)
}

// Backend is what the renderer reads from.
type Backend interface {
	ResultFetcher
	DirectoryFetcher
}

// Renderer loads results.
type Renderer struct {
	backend Backend
	logger  *zap.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(backend Backend, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{backend: backend, logger: logger}
}

// Load fetches the result and the question directory concurrently and
// classifies the outcome. A missing result wins over any other failure.
func (r *Renderer) Load(ctx context.Context, resultID string) View {
	var (
		res          *api.SubmitResult
		questions    []api.Question
		resErr, qErr error
	)

	// No shared cancellation: a failed directory fetch must not hide a
	// not-found result.
	var g errgroup.Group
	g.Go(func() error {
		res, resErr = r.backend.Result(ctx, resultID)
		return resErr
	})
	g.Go(func() error {
		questions, qErr = r.backend.AllQuestions(ctx)
		return qErr
	})
	if err := g.Wait(); err != nil {
		r.logger.Debug("result fetch failed", zap.String("result_id", resultID), zap.Error(err))
	}

	view := View{ResultID: resultID}
	switch {
	case api.IsNotFound(resErr):
		view.Kind = KindNotFound
		view.Err = resErr
	case resErr != nil:
		view.Kind = KindError
		view.Err = resErr
		view.Message = MsgResultFailed
	case qErr != nil:
		view.Kind = KindError
		view.Err = qErr
		view.Message = MsgQuestionsFailed
	case !res.Matched():
		view.Kind = KindPending
	default:
		view.Kind = KindMatched
		view.Table = BuildTable(res.MatchingResult, questions)
	}

	r.logger.Info("result loaded",
		zap.String("result_id", resultID),
		zap.Stringer("kind", view.Kind),
		zap.Error(view.Err),
	)
	return view
}

// BuildTable groups matches for display. Groups are sorted by minimum grade
// descending; equal groups and the matches inside a group keep the backend
// order.
func BuildTable(groups []api.MatchGroup, questions []api.Question) Table {
	texts := make(map[int64]string, len(questions))
	for _, q := range questions {
		texts[q.ID] = q.Text
	}

	sorted := make([]api.MatchGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinAnswer > sorted[j].MinAnswer
	})

	table := Table{Groups: make([]Group, 0, len(sorted))}
	for _, mg := range sorted {
		group := Group{
			MinAnswer: mg.MinAnswer,
			Label:     grade.LabelOf(mg.MinAnswer),
			Badge:     grade.Grade(mg.MinAnswer),
			Rows:      make([]Row, 0, len(mg.Matches)),
		}
		for _, m := range mg.Matches {
			group.Rows = append(group.Rows, Row{
				QuestionID: m.QuestionID,
				Question:   questionText(texts, m.QuestionID),
				A:          Cell{Label: grade.LabelOf(m.AnswerA.Answer), Forced: m.AnswerA.IfForced},
				B:          Cell{Label: grade.LabelOf(m.AnswerB.Answer), Forced: m.AnswerB.IfForced},
			})
		}
		table.Groups = append(table.Groups, group)
	}
	return table
}

func questionText(texts map[int64]string, id int64) string {
	if text, ok := texts[id]; ok {
		return text
	}
	return fmt.Sprintf("Question %d", id)
}
