package onboarding

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	records  map[uuid.UUID]*CompletionRecord
	setCalls int
	lastSet  string
	failSet  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]*CompletionRecord)}
}

func (s *fakeStore) Get(userID uuid.UUID) (*CompletionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

func (s *fakeStore) Set(userID uuid.UUID, badgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	s.lastSet = badgeID
	if s.failSet {
		return errors.New("store unavailable")
	}
	s.records[userID] = &CompletionRecord{UserID: userID, Completed: true, BadgeID: badgeID}
	return nil
}

func (s *fakeStore) writes() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls, s.lastSet
}

func fastTimings() Timings {
	return Timings{
		PoetryLine:      time.Millisecond,
		BlankLine:       time.Millisecond,
		Settle:          time.Millisecond,
		TypewriterChar:  0,
		Transition:      time.Millisecond,
		FinalTransition: time.Millisecond,
		LoadingDwell:    time.Millisecond,
		Handoff:         time.Millisecond,
	}
}

func newTestFlow(t *testing.T, session Session, store CompletionStore) *Flow {
	t.Helper()
	flow := NewFlow(session, store, fastTimings(), slog.Default())
	t.Cleanup(flow.Teardown)
	return flow
}

func authedSession() Session {
	return Session{
		UserID:        uuid.New(),
		Email:         "soul@example.com",
		DisplayName:   "Gentle Soul",
		Authenticated: true,
	}
}

func waitForScene(t *testing.T, flow *Flow, scene Scene) {
	t.Helper()
	require.Eventually(t, func() bool { return flow.Scene() == scene },
		2*time.Second, time.Millisecond, "expected scene %s, got %s", scene, flow.Scene())
}

func waitForInput(t *testing.T, flow *Flow) {
	t.Helper()
	require.Eventually(t, func() bool {
		state := flow.State()
		return state.Scene == SceneDiscovery && !state.InputLocked
	}, 2*time.Second, time.Millisecond, "discovery input never unlocked")
}

func runDiscovery(t *testing.T, flow *Flow, answers [3]string) {
	t.Helper()
	for _, answer := range answers {
		waitForInput(t, flow)
		require.NoError(t, flow.SubmitAnswer(answer))
	}
	waitForScene(t, flow, SceneBadgeReveal)
}

func TestCompletedUserRoutesStraightToHandoff(t *testing.T) {
	store := newFakeStore()
	session := authedSession()
	store.records[session.UserID] = &CompletionRecord{
		UserID: session.UserID, Completed: true, BadgeID: "sage",
	}

	flow := newTestFlow(t, session, store)
	flow.Start()

	// Routing is synchronous for a settled authenticated session:
	// no poetry replay, no discovery, no reveal.
	assert.Equal(t, SceneHandoff, flow.Scene())
	calls, _ := store.writes()
	assert.Equal(t, 0, calls)
}

func TestNewUserEntersDiscoveryAfterPoetry(t *testing.T) {
	store := newFakeStore()
	flow := newTestFlow(t, authedSession(), store)
	flow.Start()

	assert.Equal(t, SceneDiscovery, flow.Scene())
	assert.Equal(t, 0, flow.State().QuestionIndex)
}

func TestUnauthenticatedVisitorReachesLoginGate(t *testing.T) {
	flow := newTestFlow(t, Session{}, newFakeStore())
	flow.Start()

	assert.Equal(t, ScenePoetry, flow.Scene())
	waitForScene(t, flow, SceneLoginGate)
}

func TestLoadingSessionHoldsAtPoetryCheckpoint(t *testing.T) {
	flow := newTestFlow(t, Session{Loading: true}, newFakeStore())
	flow.Start()

	// The poetry script finishes but the flow must not branch on a
	// still-loading session.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, ScenePoetry, flow.Scene())

	flow.UpdateSession(Session{})
	assert.Equal(t, SceneLoginGate, flow.Scene())
}

func TestLoginAtGateRoutesThroughCompletionCheck(t *testing.T) {
	store := newFakeStore()
	session := authedSession()
	store.records[session.UserID] = &CompletionRecord{
		UserID: session.UserID, Completed: true, BadgeID: "muse",
	}

	flow := newTestFlow(t, Session{}, store)
	flow.Start()
	waitForScene(t, flow, SceneLoginGate)

	flow.UpdateSession(session)
	assert.Equal(t, SceneHandoff, flow.Scene())
}

func TestJudgeFlowAlwaysRepeatsDiscovery(t *testing.T) {
	store := newFakeStore()
	session := authedSession()
	store.records[session.UserID] = &CompletionRecord{
		UserID: session.UserID, Completed: true, BadgeID: "sage",
	}

	flow := newTestFlow(t, Session{}, store)
	flow.Start()
	waitForScene(t, flow, SceneLoginGate)

	flow.MarkJudgeFlow()
	flow.UpdateSession(session)

	assert.Equal(t, SceneDiscovery, flow.Scene())
}

func TestFailedJudgeLoginReoffersGate(t *testing.T) {
	flow := newTestFlow(t, Session{}, newFakeStore())
	flow.Start()
	waitForScene(t, flow, SceneLoginGate)

	flow.MarkJudgeFlow()
	flow.AbortJudgeFlow()

	assert.Equal(t, SceneLoginGate, flow.Scene())
	assert.False(t, flow.State().JudgeFlow)
}

func TestEmptyAnswerIsANoOp(t *testing.T) {
	flow := newTestFlow(t, authedSession(), newFakeStore())
	flow.Start()
	waitForInput(t, flow)

	assert.ErrorIs(t, flow.SubmitAnswer(""), ErrEmptyAnswer)
	assert.ErrorIs(t, flow.SubmitAnswer("   \t "), ErrEmptyAnswer)
	assert.Equal(t, 0, flow.State().QuestionIndex)
	assert.Equal(t, SceneDiscovery, flow.Scene())
}

func TestAnswerDuringRevealIsRejected(t *testing.T) {
	timings := fastTimings()
	timings.TypewriterChar = 10 * time.Millisecond
	flow := NewFlow(authedSession(), newFakeStore(), timings, slog.Default())
	t.Cleanup(flow.Teardown)
	flow.Start()

	require.True(t, flow.State().InputLocked)
	assert.ErrorIs(t, flow.SubmitAnswer("too eager"), ErrNotReady)
}

func TestDiscoveryClassifiesAfterThreeAnswers(t *testing.T) {
	flow := newTestFlow(t, authedSession(), newFakeStore())
	flow.Start()

	runDiscovery(t, flow, [3]string{"I feel hopeful and lost", "I want to be brave", "be strong"})

	state := flow.State()
	require.NotNil(t, state.Badge)
	assert.Equal(t, "dreamer", state.Badge.ID)
}

func TestAcknowledgePersistsComputedBadge(t *testing.T) {
	store := newFakeStore()
	session := authedSession()
	flow := newTestFlow(t, session, store)
	flow.Start()

	runDiscovery(t, flow, [3]string{"quiet calm", "peace at last", "healing"})

	badge, err := flow.Acknowledge()
	require.NoError(t, err)
	assert.Equal(t, "healer", badge.ID)
	assert.Equal(t, SceneHandoff, flow.Scene())

	require.Eventually(t, func() bool {
		calls, _ := store.writes()
		return calls == 1
	}, 2*time.Second, time.Millisecond)
	_, badgeID := store.writes()
	assert.Equal(t, "healer", badgeID)
}

func TestAcknowledgeSurvivesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failSet = true
	flow := newTestFlow(t, authedSession(), store)
	flow.Start()

	runDiscovery(t, flow, [3]string{"blue", "seven", "ok"})

	badge, err := flow.Acknowledge()
	require.NoError(t, err)
	assert.Equal(t, "guardian", badge.ID)
	assert.Equal(t, SceneHandoff, flow.Scene())
}

func TestAcknowledgeOutsideRevealFails(t *testing.T) {
	flow := newTestFlow(t, authedSession(), newFakeStore())
	flow.Start()

	_, err := flow.Acknowledge()
	assert.ErrorIs(t, err, ErrWrongScene)
}

func TestLogoutMidDiscoveryAbortsToPoetry(t *testing.T) {
	flow := newTestFlow(t, authedSession(), newFakeStore())
	flow.Start()
	waitForInput(t, flow)
	require.NoError(t, flow.SubmitAnswer("halfway there"))

	flow.UpdateSession(Session{})

	assert.Equal(t, ScenePoetry, flow.Scene())
	assert.Equal(t, 0, flow.State().QuestionIndex)
}

func TestTeardownCancelsPendingTransitions(t *testing.T) {
	timings := fastTimings()
	timings.LoadingDwell = time.Hour
	flow := NewFlow(authedSession(), newFakeStore(), timings, slog.Default())
	flow.Start()

	for range 3 {
		waitForInput(t, flow)
		require.NoError(t, flow.SubmitAnswer("dreaming"))
	}
	waitForScene(t, flow, SceneLoading)

	flow.Teardown()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, SceneLoading, flow.Scene())
	assert.Nil(t, flow.State().Badge)
}

func TestManagerLifecycle(t *testing.T) {
	manager := NewManager(newFakeStore(), fastTimings(), slog.Default())
	t.Cleanup(manager.Stop)

	flow := manager.Create(Session{})
	got, err := manager.Get(flow.ID)
	require.NoError(t, err)
	assert.Same(t, flow, got)
	assert.Equal(t, 1, manager.Count())

	manager.Remove(flow.ID)
	_, err = manager.Get(flow.ID)
	assert.ErrorIs(t, err, ErrFlowNotFound)
	assert.Equal(t, 0, manager.Count())
}
