package application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"advanced-prompt/internal/config"
	"advanced-prompt/internal/features/chat/infrastructure"
	configapp "advanced-prompt/internal/features/config/application"
	cookdomain "advanced-prompt/internal/features/cook/domain"
	"advanced-prompt/internal/features/session/domain"
)

type fixedClient string

func (c fixedClient) StreamCompletion(_ context.Context, _ infrastructure.CompletionRequest, onDelta func(string)) error {
	onDelta(string(c))
	return nil
}

func newTestService(t *testing.T, client infrastructure.CompletionClient) SessionService {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := config.NewAppConfigService(filepath.Join(t.TempDir(), "app_config.json"), logger)
	return NewSessionService(configapp.NewConfigService(store), client, nil, logger)
}

func TestSessionService_Lifecycle(t *testing.T) {
	svc := newTestService(t, nil)

	s := svc.CreateSession("a, b")
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, svc.Count())

	got, err := svc.GetSession(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, "a, b", got.Snapshot().Text)

	require.NoError(t, svc.DeleteSession(s.ID))
	_, err = svc.GetSession(s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(s.ID), domain.ErrSessionNotFound)
}

func TestSession_JobFinishedWakesAutoPilot(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := newTestService(t, fixedClient("a dragon"))
	s := svc.CreateSession("castle")

	require.NoError(t, s.StartAutoPilot())
	require.Eventually(t, func() bool { return s.Snapshot().Form.JobsIssued == 1 }, time.Second, time.Millisecond)

	p := s.JobFinished()
	assert.True(t, p.Done)
	assert.Empty(t, p.Notice)
	require.Eventually(t, func() bool { return s.Snapshot().Form.JobsIssued == 2 }, time.Second, time.Millisecond)

	svc.Shutdown()
	assert.Equal(t, domain.ModeIdle, s.Mode())
	assert.Zero(t, svc.Count())
}

func TestSession_CookUsesLiveForm(t *testing.T) {
	svc := newTestService(t, nil)
	defer svc.Shutdown()
	s := svc.CreateSession("castle")

	s.SetLive(cookdomain.Live{ActiveLoras: 2, PromptStrengthVisible: true})
	first, err := s.StartCook()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, first.Loras)
	assert.Equal(t, 0.8, first.PromptStrength)

	p := s.JobFinished()
	require.NotNil(t, p.Next)
	assert.Equal(t, []float64{0.5, 0.6}, p.Next.Loras)
	assert.Equal(t, domain.ModeCooking, s.Mode())
}
