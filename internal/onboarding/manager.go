package onboarding

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrFlowNotFound = errors.New("flow not found")

const flowIdleTimeout = 30 * time.Minute

// Manager owns the live flows, one per active onboarding client. Flows
// that finish hand-off or go idle are torn down.
type Manager struct {
	mu      sync.Mutex
	flows   map[uuid.UUID]*Flow
	store   CompletionStore
	timings Timings
	log     *slog.Logger
	stop    chan struct{}
	once    sync.Once
}

func NewManager(store CompletionStore, timings Timings, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		flows:   make(map[uuid.UUID]*Flow),
		store:   store,
		timings: timings,
		log:     log,
		stop:    make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Create starts a new flow for the given session snapshot.
func (m *Manager) Create(session Session) *Flow {
	flow := NewFlow(session, m.store, m.timings, m.log)
	flow.OnHandoff(func(userID uuid.UUID) {
		m.log.Info("onboarding hand-off",
			"action", "onboarding.handoff",
			"user_id", userID.String())
	})

	m.mu.Lock()
	m.flows[flow.ID] = flow
	m.mu.Unlock()

	flow.Start()
	return flow
}

func (m *Manager) Get(id uuid.UUID) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flow, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return flow, nil
}

// Remove tears the flow down and forgets it.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	flow, ok := m.flows[id]
	delete(m.flows, id)
	m.mu.Unlock()
	if ok {
		flow.Teardown()
	}
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}

// Stop halts the sweeper and tears down every live flow.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })

	m.mu.Lock()
	flows := make([]*Flow, 0, len(m.flows))
	for _, f := range m.flows {
		flows = append(flows, f)
	}
	m.flows = make(map[uuid.UUID]*Flow)
	m.mu.Unlock()

	for _, f := range flows {
		f.Teardown()
	}
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-flowIdleTimeout)

	m.mu.Lock()
	var stale []*Flow
	for id, f := range m.flows {
		if f.LastTouched().Before(cutoff) {
			stale = append(stale, f)
			delete(m.flows, id)
		}
	}
	m.mu.Unlock()

	for _, f := range stale {
		f.Teardown()
	}
	if len(stale) > 0 {
		m.log.Info("swept idle onboarding flows", "count", len(stale))
	}
}
