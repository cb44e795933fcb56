package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"advanced-prompt/internal/config"
	chatdomain "advanced-prompt/internal/features/chat/domain"
	"advanced-prompt/internal/features/chat/infrastructure"
	configapp "advanced-prompt/internal/features/config/application"
	sessionapp "advanced-prompt/internal/features/session/application"
	"advanced-prompt/internal/features/session/domain"
)

type echoClient struct {
	deltas []string
}

func (c echoClient) StreamCompletion(ctx context.Context, _ infrastructure.CompletionRequest, onDelta func(string)) error {
	for _, d := range c.deltas {
		onDelta(d)
	}
	return ctx.Err()
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	sessions sessionapp.SessionService
}

func newTestServer(t *testing.T, client infrastructure.CompletionClient) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	store := config.NewAppConfigService(filepath.Join(t.TempDir(), "app_config.json"), logger)
	cfg := configapp.NewConfigService(store)
	catalog := chatdomain.Catalog{{Category: "Style", Modifiers: []string{"Oil Painting", "Watercolor"}}}
	sessions := sessionapp.NewSessionService(cfg, client, catalog, logger)
	t.Cleanup(sessions.Shutdown)

	return &testServer{t: t, router: NewRouter(cfg, sessions, logger), sessions: sessions}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) create(text string) domain.Snapshot {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/sessions", gin.H{"text": text})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var snap domain.Snapshot
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func (s *testServer) get(id string) domain.Snapshot {
	s.t.Helper()
	w := s.do(http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var snap domain.Snapshot
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestPing(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestSession_RowEditing(t *testing.T) {
	s := newTestServer(t, nil)
	snap := s.create("a cat, (red hat), [[blur]]")
	require.Len(t, snap.Rows, 3)
	assert.Equal(t, domain.ModeIdle, snap.Mode)
	base := "/api/sessions/" + snap.ID

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/rows/0/focus", nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/rows/0/edit", gin.H{"value": "a <span class=\"x\">dog</span>", "markup": true}).Code)
	assert.Equal(t, "a cat, (red hat), [[blur]]", s.get(snap.ID).Text)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/rows/0/commit", nil).Code)
	assert.Equal(t, "a dog, (red hat), [[blur]]", s.get(snap.ID).Text)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/rows/move", gin.H{"source": 0, "target": 2}).Code)
	assert.Equal(t, "(red hat), [[blur]], a dog", s.get(snap.ID).Text)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, base+"/rows/1", nil).Code)
	assert.Equal(t, "(red hat), a dog", s.get(snap.ID).Text)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/rows/0/wrapper", gin.H{"direction": "up"}).Code)
	assert.Equal(t, "((red hat)), a dog", s.get(snap.ID).Text)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/wrap", gin.H{"selection": "dog", "kind": "option"}).Code)
	assert.Equal(t, "((red hat)), a {dog}", s.get(snap.ID).Text)

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/text", gin.H{"text": "x, y"}).Code)
	assert.Len(t, s.get(snap.ID).Rows, 2)
}

func TestSession_RowErrors(t *testing.T) {
	s := newTestServer(t, nil)
	snap := s.create("a, b")
	base := "/api/sessions/" + snap.ID

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/sessions/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/sessions/missing/rows/0/focus", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, base+"/rows/9/focus", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, base+"/rows/x/focus", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, base+"/rows/move", gin.H{"source": 0, "target": 5}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, base+"/rows/0/weight", gin.H{"direction": "sideways"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, base+"/rows/0/weight", gin.H{"direction": "up"}).Code, "row has no weight span")
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, base+"/wrap", gin.H{"selection": "a", "kind": "bold"}).Code)
}

func TestStyleEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(http.MethodPost, "/api/style", gin.H{"text": "!cat, (dog:1.2)"})
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Phrases    []string `json:"phrases"`
		Markup     []string `json:"markup"`
		TokenCount int      `json:"token_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"!cat", "(dog:1.2)"}, got.Phrases)
	require.Len(t, got.Markup, 2)
	assert.Contains(t, got.Markup[0], `class="bang"`)
	assert.Contains(t, got.Markup[1], `class="weighted-words"`)
	assert.Positive(t, got.TokenCount)
}

func TestSession_CookRunsToCompletion(t *testing.T) {
	s := newTestServer(t, nil)

	cfg := gin.H{
		"roll_modifiers": true,
		"cook": gin.H{
			"sampler":         gin.H{"start": 0, "stop": 0, "step": 1},
			"inference_steps": gin.H{"start": 25, "stop": 30, "step": 5},
			"guidance_scale":  gin.H{"start": 7.5, "stop": 8, "step": 0.5},
			"prompt_strength": gin.H{"start": 0.8, "stop": 0.8, "step": 0.1},
			"loras":           gin.H{"start": 0.5, "stop": 0.5, "step": 0.1},
		},
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/config/app", cfg).Code)

	snap := s.create("castle")
	base := "/api/sessions/" + snap.ID
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/form", gin.H{"active_loras": 1}).Code)

	w := s.do(http.MethodPost, base+"/cook/start", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	snap = s.get(snap.ID)
	assert.Equal(t, domain.ModeCooking, snap.Mode)
	assert.True(t, snap.Form.PendingJob)
	require.NotNil(t, snap.Form.Applied)
	assert.Equal(t, []float64{0.5}, snap.Form.Applied.Loras)
	assert.NotEmpty(t, snap.Form.Tags, "modifiers are rolled before each job")

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/jobs/finished", nil).Code)
		current := s.get(snap.ID)
		assert.Equal(t, domain.ModeCooking, current.Mode)
		assert.Equal(t, i+1, current.Cooked)
	}
	w = s.do(http.MethodPost, base+"/jobs/finished", gin.H{"live": gin.H{"active_loras": 1}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cooked 4 Images.")

	snap = s.get(snap.ID)
	assert.Equal(t, domain.ModeIdle, snap.Mode)
	assert.Equal(t, "Cooked 4 Images.", snap.Notice)
	assert.Equal(t, 0, snap.Cooked)
	assert.Equal(t, 4, snap.Form.JobsIssued)
	assert.False(t, snap.Form.PendingJob)
	assert.Equal(t, 25, snap.Form.Applied.InferenceSteps)
}

func TestSession_CookCancel(t *testing.T) {
	s := newTestServer(t, nil)
	snap := s.create("castle")
	base := "/api/sessions/" + snap.ID

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/cook/start", nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/cook/cancel", nil).Code)
	assert.Equal(t, domain.ModeIdle, s.get(snap.ID).Mode)

	w := s.do(http.MethodPost, base+"/jobs/finished", nil)
	assert.Contains(t, w.Body.String(), "Cooked 1 Images.")
}

func TestSession_Draft(t *testing.T) {
	s := newTestServer(t, echoClient{deltas: []string{"A misty", " castle:", "\n at dawn"}})
	snap := s.create("castle")

	w := s.do(http.MethodPost, "/api/sessions/"+snap.ID+"/chat/draft", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "A misty castle at dawn", s.get(snap.ID).Text)
}

func TestSession_DraftWithoutClient(t *testing.T) {
	s := newTestServer(t, nil)
	snap := s.create("castle")

	w := s.do(http.MethodPost, "/api/sessions/"+snap.ID+"/chat/draft", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "castle", s.get(snap.ID).Text)
}

func TestSession_AutoPilotAndCookExclude(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := newTestServer(t, echoClient{deltas: []string{"a dragon"}})
	snap := s.create("castle")
	base := "/api/sessions/" + snap.ID

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/autopilot/start", nil).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, base+"/chat/draft", nil).Code)
	require.Eventually(t, func() bool { return s.get(snap.ID).Form.PendingJob }, time.Second, time.Millisecond)
	assert.Equal(t, "a dragon", s.get(snap.ID).Text)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/cook/start", nil).Code)
	assert.Equal(t, domain.ModeCooking, s.get(snap.ID).Mode)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/autopilot/start", nil).Code)
	assert.Equal(t, domain.ModeAutoPilot, s.get(snap.ID).Mode)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/autopilot/stop", nil).Code)
	assert.Equal(t, domain.ModeIdle, s.get(snap.ID).Mode)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, base, nil).Code)
	assert.Equal(t, 0, s.sessions.Count())
}

func TestSession_Roll(t *testing.T) {
	s := newTestServer(t, nil)
	snap := s.create("castle")

	w := s.do(http.MethodPost, "/api/sessions/"+snap.ID+"/roll", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var roll chatdomain.Roll
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roll))
	assert.NotEmpty(t, roll.Tags)
	assert.Equal(t, roll.Tags, s.get(snap.ID).Form.Tags)
}
