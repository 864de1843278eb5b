package onboarding

import (
	"sync"
	"time"
)

// Step is one unit of a scene script: wait Delay, then run Action.
type Step struct {
	Delay  time.Duration
	Action func()
}

// Scheduler runs one scene script at a time. Starting a new script
// supersedes the previous one, and Cancel stops everything, so teardown
// is a single call rather than a hunt for stray timers.
type Scheduler struct {
	mu     sync.Mutex
	cancel chan struct{}
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Run cancels any in-flight script and executes steps sequentially on a
// new goroutine. Each step's delay is honored before its action fires.
func (s *Scheduler) Run(steps []Step) {
	s.mu.Lock()
	if s.cancel != nil {
		close(s.cancel)
	}
	cancel := make(chan struct{})
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for _, step := range steps {
			timer := time.NewTimer(step.Delay)
			select {
			case <-timer.C:
			case <-cancel:
				timer.Stop()
				return
			}
			select {
			case <-cancel:
				return
			default:
			}
			step.Action()
		}
	}()
}

// Cancel stops the current script. Pending steps never fire after Cancel
// returns and the script goroutine has drained.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
	s.mu.Unlock()
}

// Wait blocks until the current script goroutine exits. Test helper and
// shutdown aid.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
