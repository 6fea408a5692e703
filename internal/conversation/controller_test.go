// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/floodqa-tui/internal/geo"
	"github.com/jeranaias/floodqa-tui/internal/history"
	"github.com/jeranaias/floodqa-tui/internal/model"
	"github.com/jeranaias/floodqa-tui/internal/querysvc"
	"github.com/jeranaias/floodqa-tui/internal/transcript"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// FAKES
// =============================================================================

// queryFunc adapts a function to Querier.
type queryFunc func(ctx context.Context, q string) (*querysvc.Answer, error)

func (f queryFunc) Query(ctx context.Context, q string) (*querysvc.Answer, error) {
	return f(ctx, q)
}

// fakeMap records placements.
type fakeMap struct {
	points []geo.Point
	panics bool
}

func (m *fakeMap) PlaceMarker(p geo.Point, _ string) {
	if m.panics {
		panic("tiles unavailable")
	}
	m.points = append(m.points, p)
}

// fakeInput records the input field.
type fakeInput struct {
	value   string
	cleared int
}

func (i *fakeInput) Clear()       { i.value = ""; i.cleared++ }
func (i *fakeInput) Set(s string) { i.value = s }

// fixture bundles a controller with inspectable collaborators.
type fixture struct {
	ctrl  *Controller
	tr    *transcript.Transcript
	mp    *fakeMap
	input *fakeInput
	refs  *model.ReferenceSet
	hist  *history.Buffer
	state *AppState
	calls int
}

func newFixture(t *testing.T, q queryFunc) *fixture {
	t.Helper()
	f := &fixture{
		tr:    transcript.New(transcript.Options{}),
		mp:    &fakeMap{},
		input: &fakeInput{},
		refs:  &model.ReferenceSet{},
		hist:  history.New(history.DefaultCapacity),
		state: NewAppState(ThemeLight),
	}
	f.ctrl = New(Deps{
		Querier: queryFunc(func(ctx context.Context, question string) (*querysvc.Answer, error) {
			f.calls++
			return q(ctx, question)
		}),
		Transcript: f.tr,
		Map:        f.mp,
		Input:      f.input,
		History:    f.hist,
		References: f.refs,
		State:      f.state,
	})
	return f
}

func answerWith(text string, refs ...model.Reference) queryFunc {
	return func(context.Context, string) (*querysvc.Answer, error) {
		return &querysvc.Answer{Text: text, References: refs}, nil
	}
}

func failWith(err error) queryFunc {
	return func(context.Context, string) (*querysvc.Answer, error) {
		return nil, err
	}
}

func roles(msgs []model.Message) []model.Role {
	out := make([]model.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestSubmit_Success(t *testing.T) {
	refs := []model.Reference{{Text: "预案第三条", Score: 0.873, Index: 3}}
	f := newFixture(t, answerWith("请前往北纬31.96°，东经119.42°的安置点", refs...))

	out, err := f.ctrl.Submit(context.Background(), "最近的安置点在哪？", SourceEnter)
	require.NoError(t, err)

	assert.Equal(t, PhaseSuccess, out.Phase)
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleSystem}, roles(f.tr.Messages()))
	assert.Equal(t, "最近的安置点在哪？", f.tr.Messages()[0].Body)
	assert.False(t, f.tr.HasPending())

	assert.True(t, out.ReferencesReplaced)
	if diff := cmp.Diff(refs, f.refs.Items()); diff != "" {
		t.Errorf("references mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, out.Point)
	assert.Equal(t, []geo.Point{{Lng: 119.42, Lat: 31.96}}, f.mp.points)

	assert.False(t, f.state.Loading)
	assert.Equal(t, PhaseIdle, f.state.Phase)
	assert.False(t, f.state.SuggestionsVisible)
	assert.Equal(t, 1, f.input.cleared)
	assert.Equal(t, []string{"最近的安置点在哪？"}, f.hist.Entries())
}

func TestSubmit_UserTurnRenderedBeforeCall(t *testing.T) {
	var f *fixture
	f = newFixture(t, func(context.Context, string) (*querysvc.Answer, error) {
		msgs := f.tr.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, model.RoleUser, msgs[0].Role)
		assert.True(t, f.tr.HasPending())
		assert.True(t, f.state.Loading)
		return &querysvc.Answer{Text: "ok"}, nil
	})

	_, err := f.ctrl.Submit(context.Background(), "q", SourceButton)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestSubmit_NoCoordinatesNoMapCall(t *testing.T) {
	f := newFixture(t, answerWith("水位正在下降"))

	out, err := f.ctrl.Submit(context.Background(), "q", SourceEnter)
	require.NoError(t, err)
	assert.Nil(t, out.Point)
	assert.Empty(t, f.mp.points)
}

func TestSubmit_EmptyReferencesKeepPrevious(t *testing.T) {
	f := newFixture(t, answerWith("first", model.Reference{Text: "a", Score: 0.5}))
	_, err := f.ctrl.Submit(context.Background(), "q1", SourceEnter)
	require.NoError(t, err)

	f.ctrl.querier = answerWith("second")
	out, err := f.ctrl.Submit(context.Background(), "q2", SourceEnter)
	require.NoError(t, err)

	assert.False(t, out.ReferencesReplaced)
	require.Equal(t, 1, f.refs.Len())
	assert.Equal(t, "a", f.refs.Items()[0].Text)
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantDetail string
	}{
		{
			name: "http 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantDetail: "status 500",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantDetail: "failed to decode response",
		},
		{
			name: "status error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"error","answer":"index offline","contexts":[]}`))
			},
			wantDetail: "index offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := querysvc.NewClientWithConfig(&querysvc.ClientConfig{
				Endpoint: server.URL + "/query",
				Timeout:  2 * time.Second,
			}, nil)
			defer client.CloseIdleConnections()

			f := newFixture(t, client.Query)
			f.refs.Replace([]model.Reference{{Text: "kept", Score: 0.4}})
			gen := f.refs.Generation()

			out, err := f.ctrl.Submit(context.Background(), "q", SourceEnter)
			require.NoError(t, err)

			assert.Equal(t, PhaseFailed, out.Phase)
			require.Error(t, out.Err)

			msgs := f.tr.Messages()
			require.Len(t, msgs, 2)
			body := msgs[1].Body
			assert.True(t, strings.HasPrefix(body, "Error: "), body)
			assert.Contains(t, body, tt.wantDetail)
			assert.True(t, strings.HasSuffix(body, "\nPlease check the server connection or try again later."))

			assert.Equal(t, gen, f.refs.Generation(), "references must be untouched")
			assert.Empty(t, f.mp.points)
			assert.False(t, f.tr.HasPending())
			assert.False(t, f.state.Loading)
			assert.Equal(t, PhaseIdle, f.state.Phase)
		})
	}
}

func TestSubmit_NilAnswerIsFailure(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (*querysvc.Answer, error) { return nil, nil })

	out, err := f.ctrl.Submit(context.Background(), "q", SourceEnter)
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, ErrEmptyAnswer)
}

func TestSubmit_QuerierPanicIsFailure(t *testing.T) {
	f := newFixture(t, func(context.Context, string) (*querysvc.Answer, error) { panic("nil map") })

	out, err := f.ctrl.Submit(context.Background(), "q", SourceEnter)
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, out.Phase)
	assert.False(t, f.state.Loading)
}

func TestSubmit_MapPanicIsIsolated(t *testing.T) {
	f := newFixture(t, answerWith("北纬31.96°东经119.42°"))
	f.mp.panics = true

	var out Outcome
	require.NotPanics(t, func() {
		var err error
		out, err = f.ctrl.Submit(context.Background(), "q", SourceEnter)
		require.NoError(t, err)
	})
	assert.Equal(t, PhaseSuccess, out.Phase)
	assert.NotNil(t, out.Point)
	assert.False(t, f.state.Loading)
}

func TestSubmit_AppliesTimeout(t *testing.T) {
	f := newFixture(t, func(ctx context.Context, _ string) (*querysvc.Answer, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
		return &querysvc.Answer{Text: "ok"}, nil
	})
	f.ctrl.SetTimeout(5 * time.Second)

	_, err := f.ctrl.Submit(context.Background(), "q", SourceEnter)
	require.NoError(t, err)
}

// =============================================================================
// VALIDATION / BUSY TESTS
// =============================================================================

func TestBegin_RejectsBlank(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		f := newFixture(t, answerWith("unused"))

		_, err := f.ctrl.Begin(q, SourceButton)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		assert.Zero(t, f.tr.Len())
		assert.Zero(t, f.hist.Len())
		assert.False(t, f.state.Loading)
		assert.Zero(t, f.calls)
	}
}

func TestBegin_BusyWhileInFlight(t *testing.T) {
	f := newFixture(t, answerWith("ok"))

	ticket, err := f.ctrl.Begin("first", SourceEnter)
	require.NoError(t, err)

	_, err = f.ctrl.Begin("second", SourceSuggestion)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, f.tr.Len(), "rejected submission must not render")
	assert.Equal(t, 1, f.hist.Len())

	answer, qerr := f.ctrl.Run(context.Background(), ticket)
	f.ctrl.Settle(ticket, answer, qerr)

	_, err = f.ctrl.Begin("third", SourceEnter)
	assert.NoError(t, err)
}

func TestSettle_StaleTicketIgnored(t *testing.T) {
	f := newFixture(t, answerWith("ok"))

	ticket, err := f.ctrl.Begin("q", SourceEnter)
	require.NoError(t, err)
	f.ctrl.Settle(ticket, &querysvc.Answer{Text: "ok"}, nil)

	f.ctrl.Settle(ticket, &querysvc.Answer{Text: "again"}, nil)
	assert.Equal(t, 2, f.tr.Len())
}

func TestRunOffGoroutine(t *testing.T) {
	f := newFixture(t, answerWith("ok"))

	ticket, err := f.ctrl.Begin("q", SourceEnter)
	require.NoError(t, err)

	type result struct {
		answer *querysvc.Answer
		err    error
	}
	done := make(chan result, 1)
	go func() {
		a, err := f.ctrl.Run(context.Background(), ticket)
		done <- result{a, err}
	}()
	r := <-done

	out := f.ctrl.Settle(ticket, r.answer, r.err)
	assert.Equal(t, PhaseSuccess, out.Phase)
}

// =============================================================================
// RECALL / DISPATCH TESTS
// =============================================================================

func TestRecall(t *testing.T) {
	f := newFixture(t, answerWith("ok"))
	for _, q := range []string{"a", "b", "c"} {
		_, err := f.ctrl.Submit(context.Background(), q, SourceEnter)
		require.NoError(t, err)
	}

	var got []string
	for i := 0; i < 4; i++ {
		f.ctrl.RecallPrevious()
		got = append(got, f.input.value)
	}
	for i := 0; i < 3; i++ {
		f.ctrl.RecallNext()
		got = append(got, f.input.value)
	}
	assert.Equal(t, []string{"c", "b", "a", "a", "b", "c", ""}, got)
	assert.Equal(t, -1, f.hist.Cursor())
}

func TestRecall_IgnoredWhileLoading(t *testing.T) {
	f := newFixture(t, answerWith("ok"))
	_, err := f.ctrl.Submit(context.Background(), "old", SourceEnter)
	require.NoError(t, err)

	_, err = f.ctrl.Begin("pending", SourceEnter)
	require.NoError(t, err)

	assert.False(t, f.ctrl.RecallPrevious())
	assert.False(t, f.ctrl.RecallNext())
	assert.Equal(t, "", f.input.value)
}

func TestDispatch(t *testing.T) {
	f := newFixture(t, answerWith("ok"))
	jumps := 0
	f.ctrl.jumper = jumperFunc(func() { jumps++ })

	res := f.ctrl.Dispatch(SubmitCommand{Text: "  ", Source: SourceButton})
	var verr *ValidationError
	assert.ErrorAs(t, res.Err, &verr)
	assert.False(t, res.Changed)

	res = f.ctrl.Dispatch(SubmitCommand{Text: "q", Source: SourceSuggestion})
	require.NoError(t, res.Err)
	ticket := res.Ticket
	require.NotNil(t, ticket)
	assert.Equal(t, SourceSuggestion, ticket.Source)

	res = f.ctrl.Dispatch(RecallCommand{Direction: Older})
	assert.False(t, res.Changed, "recall is disabled while loading")

	out := f.ctrl.Settle(ticket, nil, errors.New("connection refused"))
	assert.Equal(t, PhaseFailed, out.Phase)

	res = f.ctrl.Dispatch(RecallCommand{Direction: Older})
	assert.True(t, res.Changed)
	assert.Equal(t, "q", f.input.value)

	res = f.ctrl.Dispatch(JumpCommand{})
	assert.True(t, res.Changed)
	assert.Equal(t, 1, jumps)

	f.ctrl.Dispatch(ToggleThemeCommand{})
	assert.Equal(t, ThemeDark, f.state.Theme)
}

type jumperFunc func()

func (f jumperFunc) JumpToLatest() { f() }

// =============================================================================
// STATE TESTS
// =============================================================================

func TestTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, "☾", ThemeLight.Icon())
	assert.Equal(t, "☀", ThemeDark.Icon())

	_, ok := ParseTheme("sepia")
	assert.False(t, ok)
	assert.Equal(t, ThemeLight, NewAppState("sepia").Theme)
}

func TestFailureText(t *testing.T) {
	got := FailureText(errors.New("HTTP error: status 500"))
	assert.Equal(t, "Error: HTTP error: status 500\nPlease check the server connection or try again later.", got)
}
