// Package submission sends the recorded answers to the backend and tracks
// the outcome.
package submission

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/questionnaire"
	"github.com/abhisek/kmatcher/internal/store"
)

// FailureMessage is shown for every failed submission, whatever the cause.
const FailureMessage = "Something went wrong"

var (
	// ErrInFlight is returned by Submit while a previous submission is
	// still waiting for the backend. No request is sent.
	ErrInFlight = errors.New("submission already in flight")

	// ErrAlreadySubmitted is returned by Submit after a successful
	// submission. Reset starts over.
	ErrAlreadySubmitted = errors.New("answers already submitted")
)

// State is the submission lifecycle state.
type State int

const (
	Idle State = iota
	Submitting
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Submitter creates a result on the backend.
type Submitter interface {
	CreateResult(ctx context.Context, req api.SubmitRequest) (*api.SubmitResult, error)
}

// AnswerSource lists the answers to submit.
type AnswerSource interface {
	Answered() []questionnaire.Entry
}

// Outcome is a successful submission. Combined is set when the partner had
// already submitted and the response carries matches.
type Outcome struct {
	Result   *api.SubmitResult
	Combined bool
}

// Status is a snapshot of the controller.
type Status struct {
	State   State
	Result  *api.SubmitResult
	Message string // FailureMessage in the Failure state
}

// Option configures a Controller.
type Option func(*Controller)

// WithPartner binds the controller to a result id shared by the partner,
// so the submission completes that result instead of starting a new one.
func WithPartner(resultID string) Option {
	return func(c *Controller) { c.partnerID = resultID }
}

// WithHistory records successful submissions in repo.
func WithHistory(repo store.HistoryRepo) Option {
	return func(c *Controller) { c.history = repo }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller runs the Idle → Submitting → Success|Failure state machine.
// Failure → Submitting happens on retry.
type Controller struct {
	submitter Submitter
	answers   AnswerSource
	history   store.HistoryRepo
	logger    *zap.Logger
	partnerID string

	mu     sync.Mutex
	state  State
	result *api.SubmitResult
}

// New creates an idle controller.
func New(submitter Submitter, answers AnswerSource, opts ...Option) *Controller {
	c := &Controller{
		submitter: submitter,
		answers:   answers,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PartnerID returns the bound result id, or "" for a fresh submission.
func (c *Controller) PartnerID() string {
	return c.partnerID
}

// BuildRequest converts answers into the POST /results body. The forced
// flag is only sent when set, and partner_id only when partnerID is not
// empty.
func BuildRequest(entries []questionnaire.Entry, partnerID string) api.SubmitRequest {
	req := api.SubmitRequest{Answers: make([]api.SubmitAnswer, 0, len(entries))}
	for _, e := range entries {
		req.Answers = append(req.Answers, api.SubmitAnswer{
			QuestionID: e.QuestionID,
			Answer:     e.Answer.Grade.Ordinal(),
			IfForced:   api.Forced(e.Answer.IfForced),
		})
	}
	if partnerID != "" {
		id := partnerID
		req.PartnerID = &id
	}
	return req
}

// Submit sends every recorded answer in one request. It blocks until the
// backend answers; the context is the only way to abandon it.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	switch c.state {
	case Submitting:
		c.mu.Unlock()
		return Outcome{}, ErrInFlight
	case Success:
		c.mu.Unlock()
		return Outcome{}, ErrAlreadySubmitted
	}
	c.state = Submitting
	c.mu.Unlock()

	req := BuildRequest(c.answers.Answered(), c.partnerID)
	c.logger.Info("submitting answers",
		zap.Int("answers", len(req.Answers)),
		zap.Bool("with_partner", req.PartnerID != nil),
	)

	res, err := c.submitter.CreateResult(ctx, req)

	c.mu.Lock()
	if err != nil {
		c.state = Failure
		c.mu.Unlock()
		c.logger.Warn("submission failed", zap.Error(err))
		return Outcome{}, err
	}
	c.state = Success
	c.result = res
	c.mu.Unlock()

	out := Outcome{Result: res, Combined: res.Matched()}
	c.logger.Info("submission accepted", zap.String("result_id", res.ID), zap.Bool("combined", out.Combined))
	c.record(ctx, req, out)
	return out, nil
}

// record appends a successful submission to the history. Failures are
// logged only.
func (c *Controller) record(ctx context.Context, req api.SubmitRequest, out Outcome) {
	if c.history == nil {
		return
	}
	err := c.history.AppendSubmission(context.WithoutCancel(ctx), store.SubmissionRecord{
		ResultID:    out.Result.ID,
		PartnerID:   c.partnerID,
		Combined:    out.Combined,
		AnswerCount: len(req.Answers),
	})
	if err != nil {
		c.logger.Warn("record submission", zap.String("result_id", out.Result.ID), zap.Error(err))
	}
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{State: c.state, Result: c.result}
	if c.state == Failure {
		st.Message = FailureMessage
	}
	return st
}

// Reset returns a finished controller to Idle. It has no effect while a
// submission is in flight.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return
	}
	c.state = Idle
	c.result = nil
}
