package playground

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/AhamSammich/dexbee-docs/internal/dexbee"
	"github.com/AhamSammich/dexbee-docs/internal/logging"
	"github.com/AhamSammich/dexbee-docs/internal/sandbox"
	"github.com/AhamSammich/dexbee-docs/internal/shared/id"
)

// State is the session gate flag.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateRunning       State = "running"
	StateResetting     State = "resetting"
)

// ErrInvalidState rejects an operation that would violate the
// single-active-operation invariant. Callers treat it as a no-op, not a
// failure to surface.
var ErrInvalidState = errors.New("operation not valid in current session state")

// Session owns one ephemeral database handle and serializes every operation
// that touches it through the state gate.
type Session struct {
	id      id.SessionID
	arena   string
	runtime *sandbox.Runtime
	log     *logging.Logger

	mu         sync.Mutex
	state      State
	handle     *dexbee.Handle
	lastOutput string
}

// NewSession creates an uninitialized session. The arena name is fixed for
// the session's lifetime so repeated initializes land on the same storage.
func NewSession(sid id.SessionID, arena string, runtime *sandbox.Runtime, log *logging.Logger) *Session {
	if log == nil {
		log = logging.NewNop()
	}
	return &Session{
		id:      sid,
		arena:   arena,
		runtime: runtime,
		log:     log,
		state:   StateUninitialized,
	}
}

// ID returns the session identifier.
func (s *Session) ID() id.SessionID {
	return s.id
}

// State returns the current gate state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastOutput returns the text produced by the most recent operation.
func (s *Session) LastOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutput
}

// Initialize provisions the session's arena and seeds the sample dataset.
// Valid only from Uninitialized. On failure the session returns to
// Uninitialized with the failure recorded as lastOutput; retry is simply
// calling Initialize again.
func (s *Session) Initialize(ctx context.Context) error {
	if !s.begin(StateUninitialized, StateInitializing) {
		return ErrInvalidState
	}

	handle, err := dexbee.Connect(s.arena, Schema())
	if err != nil {
		s.failInitialize(fmt.Errorf("provision arena: %w", err))
		return err
	}
	// Clearing first makes initialize idempotent across repeated page loads
	// that reattach to the same arena name.
	if err := clearTables(ctx, handle); err != nil {
		handle.Close()
		s.failInitialize(err)
		return err
	}
	if err := seedTables(ctx, handle); err != nil {
		handle.Close()
		s.failInitialize(err)
		return err
	}

	s.mu.Lock()
	s.handle = handle
	s.state = StateReady
	s.lastOutput = ""
	s.mu.Unlock()

	s.log.Info("playground session initialized",
		zap.String("session", string(s.id)),
		zap.String("arena", s.arena),
		zap.String("dataset", DatasetVersion))
	return nil
}

// Reset restores the sample dataset, discarding any mutations runs have
// made. Valid only from Ready; settles back to Ready either way.
func (s *Session) Reset(ctx context.Context) error {
	if !s.begin(StateReady, StateResetting) {
		return ErrInvalidState
	}

	err := clearTables(ctx, s.handle)
	if err == nil {
		err = seedTables(ctx, s.handle)
	}

	s.mu.Lock()
	s.state = StateReady
	if err != nil {
		s.lastOutput = "[error] " + err.Error()
	} else {
		s.lastOutput = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("playground reset failed",
			zap.String("session", string(s.id)), zap.Error(err))
		return err
	}
	return nil
}

// Run executes source against the session's handle. Valid only from Ready;
// execution failures are captured in the outcome and the session settles back
// to Ready. The returned error is non-nil only for gate violations.
func (s *Session) Run(ctx context.Context, source string) (*sandbox.Outcome, error) {
	if !s.begin(StateReady, StateRunning) {
		return nil, ErrInvalidState
	}

	rid := id.NewRunID()
	outcome := s.runtime.Execute(ctx, source, s.bindings(ctx))

	s.mu.Lock()
	s.state = StateReady
	s.lastOutput = outcome.Text()
	s.mu.Unlock()

	s.log.Debug("playground run finished",
		zap.String("session", string(s.id)),
		zap.String("run", string(rid)),
		zap.Bool("failed", outcome.Failed),
		zap.Duration("duration", outcome.Duration))
	return outcome, nil
}

// Close releases the arena handle. The session is unusable afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	handle := s.handle
	s.handle = nil
	s.state = StateUninitialized
	s.mu.Unlock()

	if handle != nil {
		return handle.Close()
	}
	return nil
}

// begin is the gate: atomically move from -> to, or reject.
func (s *Session) begin(from, to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

func (s *Session) failInitialize(err error) {
	s.mu.Lock()
	s.state = StateUninitialized
	s.handle = nil
	s.lastOutput = "[error] " + err.Error()
	s.mu.Unlock()

	s.log.Warn("playground initialize failed",
		zap.String("session", string(s.id)), zap.Error(err))
}

// bindings assembles the sandbox scope: the capturing console is injected by
// the runtime itself; everything else the executed source can address is
// listed here.
func (s *Session) bindings(ctx context.Context) sandbox.Bindings {
	handle := s.handle
	table := func(name string) (map[string]any, error) {
		t, err := handle.Table(name)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"insert": func(rec dexbee.Record) error {
				return t.Insert(ctx, rec)
			},
			"insertMany": func(recs []dexbee.Record) error {
				return t.InsertMany(ctx, recs)
			},
			"all": func() ([]dexbee.Record, error) {
				return t.All(ctx)
			},
			"where": func(conds ...dexbee.Condition) ([]dexbee.Record, error) {
				return t.Where(ctx, conds...)
			},
			"delete": func() (int64, error) {
				return t.Delete(ctx)
			},
			"count": func() (int64, error) {
				return t.Count(ctx)
			},
		}, nil
	}

	return sandbox.Bindings{
		"db": map[string]any{
			"name":  handle.Name(),
			"table": table,
		},
		"eq":  dexbee.Eq,
		"gt":  dexbee.Gt,
		"and": dexbee.And,
		"or":  dexbee.Or,
	}
}

func clearTables(ctx context.Context, handle *dexbee.Handle) error {
	for _, t := range handle.Tables() {
		if _, err := t.Delete(ctx); err != nil {
			return fmt.Errorf("clear %s: %w", t.Name(), err)
		}
	}
	return nil
}

func seedTables(ctx context.Context, handle *dexbee.Handle) error {
	for name, recs := range seedRecords() {
		t, err := handle.Table(name)
		if err != nil {
			return err
		}
		if err := t.InsertMany(ctx, recs); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return nil
}
