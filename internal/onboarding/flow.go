package onboarding

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Scene string

const (
	ScenePoetry      Scene = "poetry"
	SceneLoginGate   Scene = "login_gate"
	SceneDiscovery   Scene = "discovery"
	SceneLoading     Scene = "loading"
	SceneBadgeReveal Scene = "badge_reveal"
	SceneHandoff     Scene = "handoff"
)

var (
	ErrWrongScene  = errors.New("action not available in current scene")
	ErrNotReady    = errors.New("question reveal still in progress")
	ErrEmptyAnswer = errors.New("answer is empty")
	ErrNoBadge     = errors.New("no badge assigned yet")
	ErrNotSignedIn = errors.New("flow session is not authenticated")
)

// PoetryLines open every first visit. Blank lines pause briefly.
var PoetryLines = []string{
	"You are not late.",
	"You are not lost.",
	"You are becoming.",
	"",
	"Welcome to TRULY —",
	"the place where your soul has room to speak.",
}

// Questions are the three fixed discovery prompts, in order.
var Questions = [3]string{
	"What emotion has been quietly living inside you lately?",
	"What dream or vision have you been secretly holding onto — even if it feels impossible?",
	"If your future self whispered one thing to you right now… what do you hope she'd say?",
}

// Session is the flow's view of the authenticated identity. Authenticated
// is true iff UserID is set; while Loading is true the flow must not
// branch on Authenticated.
type Session struct {
	UserID        uuid.UUID
	Email         string
	DisplayName   string
	Authenticated bool
	Loading       bool
}

// Timings are the scene pacing knobs. Tests shrink them.
type Timings struct {
	PoetryLine      time.Duration
	BlankLine       time.Duration
	Settle          time.Duration
	TypewriterChar  time.Duration
	Transition      time.Duration
	FinalTransition time.Duration
	LoadingDwell    time.Duration
	Handoff         time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		PoetryLine:      2500 * time.Millisecond,
		BlankLine:       800 * time.Millisecond,
		Settle:          2 * time.Second,
		TypewriterChar:  50 * time.Millisecond,
		Transition:      2 * time.Second,
		FinalTransition: 3 * time.Second,
		LoadingDwell:    3 * time.Second,
		Handoff:         1500 * time.Millisecond,
	}
}

// Flow drives one user's journey from poetry through discovery to badge
// hand-off. All mutation happens under the flow lock; scene scripts run
// on the scheduler goroutine and take the same lock, so state is only
// ever stepped sequentially.
type Flow struct {
	mu sync.Mutex

	ID      uuid.UUID
	session Session
	pending *Session

	scene         Scene
	questionIndex int
	answers       [3]string
	badge         *Badge
	classified    bool

	judgeFlow       bool
	discoveryIntent bool
	awaitingAuth    bool
	inputLocked     bool

	store     CompletionStore
	sched     *Scheduler
	timings   Timings
	log       *slog.Logger
	onHandoff func(userID uuid.UUID)

	lastTouched time.Time
}

func NewFlow(session Session, store CompletionStore, timings Timings, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.Default()
	}
	return &Flow{
		ID:          uuid.New(),
		session:     session,
		scene:       ScenePoetry,
		store:       store,
		sched:       NewScheduler(),
		timings:     timings,
		log:         log,
		lastTouched: time.Now(),
	}
}

// OnHandoff registers a callback fired once the hand-off settle delay
// elapses. Used to tear the flow down.
func (f *Flow) OnHandoff(fn func(userID uuid.UUID)) {
	f.mu.Lock()
	f.onHandoff = fn
	f.mu.Unlock()
}

// Start begins the flow. A settled, already-authenticated session skips
// poetry entirely and routes straight through the completion check;
// everyone else gets the opening lines.
func (f *Flow) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchLocked()

	if !f.session.Loading && f.session.Authenticated {
		f.routeAuthenticatedLocked()
		return
	}
	f.runPoetryLocked()
}

func (f *Flow) runPoetryLocked() {
	f.scene = ScenePoetry
	steps := make([]Step, 0, len(PoetryLines)+1)
	for _, line := range PoetryLines {
		delay := f.timings.PoetryLine
		if line == "" {
			delay = f.timings.BlankLine
		}
		steps = append(steps, Step{Delay: delay, Action: func() {}})
	}
	steps = append(steps, Step{Delay: f.timings.Settle, Action: f.poetryCheckpoint})
	f.sched.Run(steps)
}

// poetryCheckpoint is where the flow first trusts the session: still
// loading means hold, authenticated means route, otherwise login gate.
func (f *Flow) poetryCheckpoint() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyPendingLocked()

	if f.session.Loading {
		f.awaitingAuth = true
		return
	}
	if f.session.Authenticated {
		f.routeAuthenticatedLocked()
		return
	}
	f.scene = SceneLoginGate
}

// UpdateSession latches a session change. It is applied immediately when
// the flow is at a checkpoint (login gate, auth wait); mid-script it
// waits for the script's own checkpoint.
func (f *Flow) UpdateSession(s Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchLocked()
	f.pending = &s

	switch {
	case f.awaitingAuth && !s.Loading:
		f.applyPendingLocked()
		f.awaitingAuth = false
		if f.session.Authenticated {
			f.routeAuthenticatedLocked()
		} else {
			f.scene = SceneLoginGate
		}
	case f.scene == SceneLoginGate && s.Authenticated && !s.Loading:
		f.applyPendingLocked()
		f.routeAuthenticatedLocked()
	case !s.Loading && !s.Authenticated && f.inProgressLocked():
		// Logged out mid-discovery: abort to the beginning.
		f.applyPendingLocked()
		f.resetLocked()
	}
}

func (f *Flow) inProgressLocked() bool {
	switch f.scene {
	case SceneDiscovery, SceneLoading, SceneBadgeReveal:
		return true
	}
	return false
}

func (f *Flow) resetLocked() {
	f.questionIndex = 0
	f.answers = [3]string{}
	f.badge = nil
	f.classified = false
	f.judgeFlow = false
	f.discoveryIntent = false
	f.awaitingAuth = false
	f.inputLocked = false
	f.runPoetryLocked()
}

func (f *Flow) applyPendingLocked() {
	if f.pending != nil {
		f.session = *f.pending
		f.pending = nil
	}
}

func (f *Flow) routeAuthenticatedLocked() {
	if f.judgeFlow {
		f.enterDiscoveryLocked()
		return
	}
	record, err := f.store.Get(f.session.UserID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		f.log.Error("completion record read failed",
			"action", "onboarding.record_read",
			"user_id", f.session.UserID.String(),
			"error", err.Error())
	}
	if record != nil && record.Completed {
		f.enterHandoffLocked()
		return
	}
	f.enterDiscoveryLocked()
}

// MarkJudgeFlow flags the flow so the completion record is ignored and
// discovery always replays. Called before the demo login attempt.
func (f *Flow) MarkJudgeFlow() {
	f.mu.Lock()
	f.judgeFlow = true
	f.touchLocked()
	f.mu.Unlock()
}

// AbortJudgeFlow reverts a failed demo login: the gate is silently
// re-offered, no error dialog.
func (f *Flow) AbortJudgeFlow() {
	f.mu.Lock()
	f.judgeFlow = false
	if f.scene == ScenePoetry || f.scene == SceneLoginGate {
		f.scene = SceneLoginGate
	}
	f.mu.Unlock()
}

// MarkDiscoveryIntent records that the user chose "begin discovery" at
// the gate. Routing still waits for authentication.
func (f *Flow) MarkDiscoveryIntent() {
	f.mu.Lock()
	f.discoveryIntent = true
	f.touchLocked()
	f.mu.Unlock()
}

func (f *Flow) enterDiscoveryLocked() {
	f.scene = SceneDiscovery
	f.questionIndex = 0
	f.answers = [3]string{}
	f.badge = nil
	f.classified = false
	f.startTypewriterLocked(0)
}

// startTypewriterLocked locks input for the duration of the question
// reveal, one character at a time.
func (f *Flow) startTypewriterLocked(questionIndex int) {
	f.inputLocked = true
	delay := time.Duration(utf8.RuneCountInString(Questions[questionIndex])) * f.timings.TypewriterChar
	f.sched.Run([]Step{
		{Delay: delay, Action: func() {
			f.mu.Lock()
			f.inputLocked = false
			f.mu.Unlock()
		}},
	})
}

// SubmitAnswer records one discovery answer. Empty or whitespace-only
// text is rejected without a state change.
func (f *Flow) SubmitAnswer(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchLocked()

	if f.scene != SceneDiscovery {
		return ErrWrongScene
	}
	if f.inputLocked {
		return ErrNotReady
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyAnswer
	}

	idx := f.questionIndex
	f.answers[idx] = trimmed

	if idx < 2 {
		f.inputLocked = true
		next := idx + 1
		revealDelay := time.Duration(utf8.RuneCountInString(Questions[next])) * f.timings.TypewriterChar
		f.sched.Run([]Step{
			{Delay: f.timings.Transition, Action: func() {
				f.mu.Lock()
				f.questionIndex = next
				f.mu.Unlock()
			}},
			{Delay: revealDelay, Action: func() {
				f.mu.Lock()
				f.inputLocked = false
				f.mu.Unlock()
			}},
		})
		return nil
	}

	// Final answer: longer transition, then the loading dwell, then the
	// classifier runs exactly once on the three recorded answers.
	f.inputLocked = true
	f.sched.Run([]Step{
		{Delay: f.timings.FinalTransition, Action: func() {
			f.mu.Lock()
			f.scene = SceneLoading
			f.mu.Unlock()
		}},
		{Delay: f.timings.LoadingDwell, Action: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.scene != SceneLoading || f.classified {
				return
			}
			badge := Classify(f.answers)
			f.badge = &badge
			f.classified = true
			f.scene = SceneBadgeReveal
			f.inputLocked = false
		}},
	})
	return nil
}

// Acknowledge is BadgeReveal's single action: persist the completion
// record and move on. The write is fire-and-forget; a failed write is
// logged but never strands the user.
func (f *Flow) Acknowledge() (Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchLocked()

	if f.scene != SceneBadgeReveal {
		return Badge{}, ErrWrongScene
	}
	if f.badge == nil {
		return Badge{}, ErrNoBadge
	}
	if !f.session.Authenticated {
		return Badge{}, ErrNotSignedIn
	}

	badge := *f.badge
	userID := f.session.UserID
	store := f.store
	log := f.log
	go func() {
		if err := store.Set(userID, badge.ID); err != nil {
			log.Error("completion record write failed",
				"action", "onboarding.record_write",
				"user_id", userID.String(),
				"error", err.Error())
		}
	}()

	f.enterHandoffLocked()
	return badge, nil
}

func (f *Flow) enterHandoffLocked() {
	f.scene = SceneHandoff
	userID := f.session.UserID
	f.sched.Run([]Step{
		{Delay: f.timings.Handoff, Action: func() {
			f.mu.Lock()
			fn := f.onHandoff
			f.mu.Unlock()
			if fn != nil {
				fn(userID)
			}
		}},
	})
}

// Teardown cancels every pending scene timer. Nothing fires afterwards.
func (f *Flow) Teardown() {
	f.sched.Cancel()
}

// State is a point-in-time snapshot for the HTTP surface.
type State struct {
	FlowID        uuid.UUID `json:"flow_id"`
	Scene         Scene     `json:"scene"`
	QuestionIndex int       `json:"question_index"`
	Question      string    `json:"question,omitempty"`
	InputLocked   bool      `json:"input_locked"`
	JudgeFlow     bool      `json:"judge_flow"`
	Authenticated bool      `json:"authenticated"`
	Badge         *Badge    `json:"badge,omitempty"`
	PoetryLines   []string  `json:"poetry_lines,omitempty"`
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := State{
		FlowID:        f.ID,
		Scene:         f.scene,
		QuestionIndex: f.questionIndex,
		InputLocked:   f.inputLocked,
		JudgeFlow:     f.judgeFlow,
		Authenticated: f.session.Authenticated,
	}
	switch f.scene {
	case ScenePoetry:
		s.PoetryLines = PoetryLines
	case SceneDiscovery:
		s.Question = Questions[f.questionIndex]
	case SceneBadgeReveal, SceneHandoff:
		s.Badge = f.badge
	}
	return s
}

// Scene returns the current scene. Test and manager helper.
func (f *Flow) Scene() Scene {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scene
}

// LastTouched reports the last user interaction, for idle sweeping.
func (f *Flow) LastTouched() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTouched
}

func (f *Flow) touchLocked() {
	f.lastTouched = time.Now()
}
