package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/kmatcher/internal/api"
	"github.com/abhisek/kmatcher/internal/api/apitest"
)

func testBackend() *apitest.Backend {
	return apitest.New(
		[]api.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		[]api.Question{
			{ID: 10, Text: "first", CategoryID: 1},
			{ID: 11, Text: "second", CategoryID: 1},
			{ID: 20, Text: "third", CategoryID: 2},
		},
	)
}

func newClient(t *testing.T, b *apitest.Backend) *api.Client {
	t.Helper()
	srv := b.Start(t)
	return api.New(srv.URL+"/", api.WithLogger(zaptest.NewLogger(t)))
}

func TestCategoriesAndQuestions(t *testing.T) {
	b := testBackend()
	c := newClient(t, b)
	ctx := context.Background()

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []api.Category{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, cats)

	qs, err := c.Questions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, int64(10), qs[0].ID)
	assert.Equal(t, int64(11), qs[1].ID)

	all, err := c.AllQuestions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFetchErrorCarriesContext(t *testing.T) {
	b := testBackend()
	b.SetStatus("questions", http.StatusInternalServerError)
	c := newClient(t, b)

	_, err := c.Questions(context.Background(), 1)
	require.Error(t, err)

	var fe *api.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, api.ContextQuestions, fe.Context)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
}

func TestSubmitPayloadOmitsFalseForced(t *testing.T) {
	b := testBackend()
	c := newClient(t, b)

	_, err := c.CreateResult(context.Background(), api.SubmitRequest{
		Answers: []api.SubmitAnswer{{QuestionID: 10, Answer: 3, IfForced: api.Forced(false)}},
	})
	require.NoError(t, err)

	subs := b.Submissions()
	require.Len(t, subs, 1)

	var body map[string]any
	require.NoError(t, json.Unmarshal(subs[0], &body))
	assert.NotContains(t, body, "partner_id")

	answers := body["answers"].([]any)
	require.Len(t, answers, 1)
	answer := answers[0].(map[string]any)
	assert.Equal(t, float64(10), answer["question_id"])
	assert.Equal(t, float64(3), answer["answer"])
	assert.NotContains(t, answer, "if_forced")
}

func TestSubmitPayloadKeepsTrueForced(t *testing.T) {
	b := testBackend()
	c := newClient(t, b)
	partner := "p-1"
	b.PutResult(partner, []api.SubmitAnswer{{QuestionID: 10, Answer: 4}}, nil)

	res, err := c.CreateResult(context.Background(), api.SubmitRequest{
		Answers:   []api.SubmitAnswer{{QuestionID: 10, Answer: 2, IfForced: api.Forced(true)}},
		PartnerID: &partner,
	})
	require.NoError(t, err)
	assert.True(t, res.Matched())

	var body map[string]any
	require.NoError(t, json.Unmarshal(b.Submissions()[0], &body))
	assert.Equal(t, partner, body["partner_id"])
	answer := body["answers"].([]any)[0].(map[string]any)
	assert.Equal(t, true, answer["if_forced"])
}

func TestSubmitRejectedForAnyNon2xx(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			b := testBackend()
			b.SetStatus("submit", status)
			c := newClient(t, b)

			_, err := c.CreateResult(context.Background(), api.SubmitRequest{})
			require.Error(t, err)
			assert.ErrorIs(t, err, api.ErrSubmitRejected)
		})
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := api.New(srv.URL)
	_, err := c.CreateResult(context.Background(), api.SubmitRequest{})
	require.Error(t, err)

	var te *api.TransportError
	assert.ErrorAs(t, err, &te)
	assert.False(t, errors.Is(err, api.ErrSubmitRejected))
}

func TestResultNotFound(t *testing.T) {
	b := testBackend()
	c := newClient(t, b)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
	}{
		{"unknown uuid", "6f1c2d2e-8c7b-4b53-9a53-5c1a0f1f0b11"},
		{"malformed id", "not-a-result"},
		{"empty id", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Result(ctx, tt.id)
			require.Error(t, err)
			assert.True(t, api.IsNotFound(err))
		})
	}
}

func TestResultServerErrorIsNotNotFound(t *testing.T) {
	b := testBackend()
	b.SetStatus("result", http.StatusBadGateway)
	c := newClient(t, b)

	_, err := c.Result(context.Background(), "anything")
	require.Error(t, err)
	assert.False(t, api.IsNotFound(err))

	var fe *api.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, api.ContextResult, fe.Context)
}

func TestResultPendingThenMatched(t *testing.T) {
	b := testBackend()
	c := newClient(t, b)
	ctx := context.Background()

	first, err := c.CreateResult(ctx, api.SubmitRequest{
		Answers: []api.SubmitAnswer{{QuestionID: 10, Answer: 3}, {QuestionID: 11, Answer: 0}},
	})
	require.NoError(t, err)
	assert.False(t, first.Matched())

	pending, err := c.Result(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, pending.Matched())

	partner := first.ID
	_, err = c.CreateResult(ctx, api.SubmitRequest{
		Answers:   []api.SubmitAnswer{{QuestionID: 10, Answer: 4}, {QuestionID: 11, Answer: 4}},
		PartnerID: &partner,
	})
	require.NoError(t, err)

	matched, err := c.Result(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, matched.Matched())
	require.Len(t, matched.MatchingResult, 1)
	assert.Equal(t, 3, matched.MatchingResult[0].MinAnswer)
	assert.Equal(t, int64(10), matched.MatchingResult[0].Matches[0].QuestionID)
}

func TestInvalidResponseShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"matching_result": []}`))
	}))
	t.Cleanup(srv.Close)

	c := api.New(srv.URL)
	_, err := c.Result(context.Background(), "x")
	require.Error(t, err)

	var inv *api.InvalidResponseError
	assert.ErrorAs(t, err, &inv)

	lax := api.New(srv.URL, api.WithValidation(false))
	res, err := lax.Result(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, res.Matched())
}

func TestRateLimitedClientStillServes(t *testing.T) {
	b := testBackend()
	srv := b.Start(t)
	c := api.New(srv.URL, api.WithRateLimit(1000, 2))

	for i := 0; i < 3; i++ {
		_, err := c.Categories(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, b.Hits("categories"))
}
