package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	qn "github.com/abhisek/kmatcher/internal/questionnaire"
	"github.com/abhisek/kmatcher/internal/results"
	"github.com/abhisek/kmatcher/internal/router"
	"github.com/abhisek/kmatcher/internal/screen"
	"github.com/abhisek/kmatcher/internal/screens/history"
	"github.com/abhisek/kmatcher/internal/screens/notfound"
	"github.com/abhisek/kmatcher/internal/screens/questionnaire"
	"github.com/abhisek/kmatcher/internal/screens/result"
	"github.com/abhisek/kmatcher/internal/store"
	"github.com/abhisek/kmatcher/internal/submission"
	"github.com/abhisek/kmatcher/internal/ui/layout"
)

// Options holds the dependencies shared by every screen.
type Options struct {
	Questionnaire *qn.Questionnaire
	Submitter     submission.Submitter
	Renderer      *results.Renderer
	History       store.HistoryRepo // optional
	Logger        *zap.Logger
	Route         router.Route
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
}

// newAppModel creates an AppModel showing the screen for opts.Route.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := AppModel{opts: opts}
	m.router = router.New(m.screenFor(opts.Route))
	return m
}

// screenFor builds the screen for a route.
func (m AppModel) screenFor(r router.Route) screen.Screen {
	switch r.Kind {
	case router.RouteResult:
		return result.New(m.opts.Renderer, r.ResultID)
	case router.RouteNotFound:
		return notfound.New()
	case router.RouteHistory:
		return history.New(m.opts.History)
	default:
		subOpts := []submission.Option{submission.WithLogger(m.opts.Logger.Named("submission"))}
		if r.PartnerID != "" {
			subOpts = append(subOpts, submission.WithPartner(r.PartnerID))
		}
		if m.opts.History != nil {
			subOpts = append(subOpts, submission.WithHistory(m.opts.History))
		}
		ctrl := submission.New(m.opts.Submitter, m.opts.Questionnaire, subOpts...)
		return questionnaire.New(m.opts.Questionnaire, ctrl, m.opts.Logger.Named("screen"))
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case router.NavigateMsg:
		m.opts.Logger.Debug("navigate", zap.String("path", msg.Route.Path()))
		return m, m.router.Replace(m.screenFor(msg.Route))

	case router.OpenMsg:
		if msg.Route.Kind == router.RouteHistory && m.opts.History == nil {
			return m, nil
		}
		return m, m.router.Push(m.screenFor(msg.Route))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var answered, known int
	if p, ok := active.(screen.ProgressReporter); ok {
		answered, known = p.Progress()
	}
	header := layout.RenderHeader(title, answered, known, m.width)

	footerHints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			footerHints = hints
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
