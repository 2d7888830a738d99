// Package jobmgr tracks named background jobs and guarantees at most one
// job per name. Jobs run in their own goroutine, honor a deadline, and are
// removed automatically when they finish.
package jobmgr

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by Start when a job with the same name has
// not finished yet.
var ErrAlreadyRunning = errors.New("job is already running")

// StatusReporter receives lifecycle events for jobs: "running:<name>",
// "done:<name>" or "error:<name>:<message>".
type StatusReporter func(string)

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager orchestrates starting, stopping and tracking jobs. Safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*job
	Reporter StatusReporter
}

// NewManager creates a Manager. The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*job),
		Reporter: reporter,
	}
}

// Start launches runner under the given name in a new goroutine. The runner's
// context is cancelled after timeout (when timeout > 0) or by Stop. A second
// Start with the same name while the first still runs returns
// ErrAlreadyRunning.
func (m *Manager) Start(name string, timeout time.Duration, runner func(ctx context.Context) error) error {
	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	j := &job{cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return ErrAlreadyRunning
	}
	m.jobs[name] = j
	m.mu.Unlock()

	go func() {
		defer cancel()
		m.report("running:" + name)

		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
		close(j.done)
	}()

	return nil
}

// Wait runs runner like Start but blocks until it finishes, returning the
// runner's error.
func (m *Manager) Wait(name string, timeout time.Duration, runner func(ctx context.Context) error) error {
	var runErr error
	var wg sync.WaitGroup
	wg.Add(1)
	err := m.Start(name, timeout, func(ctx context.Context) error {
		defer wg.Done()
		runErr = runner(ctx)
		return runErr
	})
	if err != nil {
		return err
	}
	wg.Wait()
	return runErr
}

// Stop cancels a running job by name and waits for it to exit. Stopping an
// unknown job is a no-op.
func (m *Manager) Stop(name string) {
	m.mu.Lock()
	j, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return
	}
	j.cancel()
	<-j.done
}

// Running reports whether a job with the given name is active.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// List returns the names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		out = append(out, name)
	}
	return out
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
