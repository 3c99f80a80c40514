package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesson_prep_assistant/generator"
)

// --- fake planner ---

type fakePlanner struct {
	mu        sync.Mutex
	planErr   error
	diagramOK bool
	diagCalls int
}

func (f *fakePlanner) GeneratePlan(_ context.Context, topic string) (generator.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.planErr != nil {
		return generator.Article{}, f.planErr
	}
	return generator.Article{
		Topic: topic,
		Body:  "<h2>教材分析</h2><p>...</p>",
		Citations: []generator.Citation{
			{Title: "a", URI: "https://a.example"},
			{Title: "b", URI: "https://b.example"},
		},
	}, nil
}

func (f *fakePlanner) GenerateDiagram(_ context.Context, _ string) (generator.Diagram, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diagCalls++
	if !f.diagramOK {
		return generator.Diagram{}, false
	}
	return generator.Diagram{Data: "iVBORw0KGgo=", MIMEType: "image/png"}, true
}

func newTestServer(t *testing.T, p generator.Planner) *httptest.Server {
	t.Helper()
	srv, err := New(p, Options{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func createSession(t *testing.T, base string) generator.Snapshot {
	t.Helper()
	resp, data := do(t, http.MethodPost, base+"/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var snap generator.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.NotEmpty(t, snap.SessionID)
	require.Equal(t, generator.StateIdle, snap.State)
	return snap
}

func TestNewRequiresPlanner(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	ts := newTestServer(t, &fakePlanner{})
	resp, data := do(t, http.MethodGet, ts.URL+"/api/presets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string][]string
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"平抛运动", "楞次定律", "动量守恒"}, out["presets"])
}

func TestSearchSuccessAndExport(t *testing.T) {
	p := &fakePlanner{diagramOK: true}
	ts := newTestServer(t, p)
	snap := createSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + snap.SessionID

	resp, data := do(t, http.MethodPost, base+"/search", map[string]string{"topic": " 平抛运动 "})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var got generator.Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, generator.StateSuccess, got.State)
	require.NotNil(t, got.Article)
	assert.Equal(t, "平抛运动", got.Article.Topic)
	assert.Len(t, got.DisplayCitations, 2)
	require.NotNil(t, got.Diagram)

	resp, data = do(t, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/msword", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(data), "data:image/png;base64,iVBORw0KGgo=")

	resp, data = do(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `lesson_prep_cycles_total{state="SUCCESS"} 1`)
	assert.Contains(t, string(data), `lesson_prep_diagrams_total{result="attached"} 1`)
	assert.Contains(t, string(data), "lesson_prep_exports_total 1")
}

func TestSearchTextFailure(t *testing.T) {
	p := &fakePlanner{planErr: &generator.ConfigError{Err: generator.ErrMissingCredential}}
	ts := newTestServer(t, p)
	snap := createSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + snap.SessionID

	resp, data := do(t, http.MethodPost, base+"/search", map[string]string{"topic": "平抛运动"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var got generator.Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, generator.StateError, got.State)
	assert.Contains(t, got.Error, "API Key is missing")
	assert.Nil(t, got.Article)
	assert.Zero(t, p.diagCalls)

	resp, _ = do(t, http.MethodGet, base+"/export", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data = do(t, http.MethodPost, base+"/back", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, generator.StateIdle, got.State)
	assert.Empty(t, got.Error)
}

func TestSearchEmptyTopic(t *testing.T) {
	ts := newTestServer(t, &fakePlanner{})
	snap := createSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + snap.SessionID

	resp, _ := do(t, http.MethodPost, base+"/search", map[string]string{"topic": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data := do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got generator.Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, generator.StateIdle, got.State)
}

func TestSearchBadBody(t *testing.T) {
	ts := newTestServer(t, &fakePlanner{})
	snap := createSession(t, ts.URL)
	resp, err := http.Post(ts.URL+"/api/sessions/"+snap.SessionID+"/search", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, &fakePlanner{})
	resp, _ := do(t, http.MethodGet, ts.URL+"/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/api/sessions/nope/search", map[string]string{"topic": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaticAndHealth(t *testing.T) {
	ts := newTestServer(t, &fakePlanner{})

	resp, data := do(t, http.MethodGet, ts.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "物理教学难点智能备课助手")

	resp, data = do(t, http.MethodGet, ts.URL+"/some/client/route", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "<html")

	resp, _ = do(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsSkipSupersededCycles(t *testing.T) {
	m := newMetrics(newStore(time.Minute))
	m.observeCycle(generator.Snapshot{State: generator.StateIdle}, time.Second)
	m.observeCycle(generator.Snapshot{State: generator.StateError}, time.Second)

	rec := httptest.NewRecorder()
	m.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.NotContains(t, body, `state="IDLE"`)
	assert.Contains(t, body, `lesson_prep_cycles_total{state="ERROR"} 1`)
	assert.Contains(t, body, "lesson_prep_cycle_duration_seconds_count 1")
}

func TestStoreRefreshesAndCounts(t *testing.T) {
	st := newStore(time.Minute)
	assert.Zero(t, st.count())
	sess := generator.NewSession("x", &fakePlanner{})
	st.set("x", sess)
	got, ok := st.get("x")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, st.count())

	_, ok = st.get("y")
	assert.False(t, ok)
}
