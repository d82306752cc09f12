package playground

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhamSammich/dexbee-docs/internal/sandbox"
	"github.com/AhamSammich/dexbee-docs/internal/shared/id"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	sid := id.NewSessionID()
	arena := fmt.Sprintf("test-%s-%s", t.Name(), sid)
	s := NewSession(sid, arena, sandbox.New(sandbox.DefaultConfig(), nil), nil)
	t.Cleanup(func() { s.Close() })
	return s
}

func initTestSession(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	require.NoError(t, s.Initialize(context.Background()))
	require.Equal(t, StateReady, s.State())
	return s
}

func tableCount(t *testing.T, s *Session, table string) int {
	t.Helper()
	tbl, err := s.handle.Table(table)
	require.NoError(t, err)
	recs, err := tbl.All(context.Background())
	require.NoError(t, err)
	return len(recs)
}

func TestInitializeSeedsDataset(t *testing.T) {
	s := initTestSession(t)

	assert.Equal(t, 3, tableCount(t, s, "customers"))
	assert.Equal(t, 4, tableCount(t, s, "products"))
	assert.Equal(t, 6, tableCount(t, s, "orders"))

	orders, err := s.handle.Table("orders")
	require.NoError(t, err)
	recs, err := orders.All(context.Background())
	require.NoError(t, err)

	statuses := map[string]int{}
	for _, rec := range recs {
		statuses[rec["status"].(string)]++
	}
	assert.Equal(t, map[string]int{"completed": 4, "pending": 1, "cancelled": 1}, statuses)
}

func TestInitializeOnlyFromUninitialized(t *testing.T) {
	s := initTestSession(t)

	err := s.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateReady, s.State())
}

func TestInitializeIdempotentUnderSameArena(t *testing.T) {
	first := newTestSession(t)
	require.NoError(t, first.Initialize(context.Background()))

	// Mutate, then re-provision the same arena through a fresh session, as a
	// reloaded page would.
	_, err := first.Run(context.Background(), "await db.table('orders').delete()")
	require.NoError(t, err)

	second := NewSession(id.NewSessionID(), first.arena, sandbox.New(sandbox.DefaultConfig(), nil), nil)
	t.Cleanup(func() { second.Close() })
	require.NoError(t, second.Initialize(context.Background()))

	assert.Equal(t, 6, tableCount(t, second, "orders"))
}

func TestRunCountsCompletedOrders(t *testing.T) {
	s := initTestSession(t)

	outcome, err := s.Run(context.Background(), `
		const completed = await db.table('orders').where(eq('status', 'completed'));
		console.log(completed.length);
	`)
	require.NoError(t, err)
	require.False(t, outcome.Failed, "run failed: %s", outcome.Err)
	require.Len(t, outcome.Lines, 1)
	assert.Equal(t, "4", outcome.Lines[0])
	assert.Equal(t, "4", s.LastOutput())
	assert.Equal(t, StateReady, s.State())
}

func TestRunWithCompositeConditions(t *testing.T) {
	s := initTestSession(t)

	outcome, err := s.Run(context.Background(), `
		const rows = await db.table('orders').where(
			and(eq('status', 'completed'), gt('total', 100))
		);
		console.log(rows.length);
	`)
	require.NoError(t, err)
	require.False(t, outcome.Failed, "run failed: %s", outcome.Err)
	assert.Equal(t, "2", outcome.Lines[0])
}

func TestRunFailureReturnsToReady(t *testing.T) {
	s := initTestSession(t)

	outcome, err := s.Run(context.Background(), "throw new Error('boom')")
	require.NoError(t, err)
	require.True(t, outcome.Failed)
	require.Len(t, outcome.Lines, 1)
	assert.Contains(t, outcome.Lines[0], "boom")
	assert.Contains(t, outcome.Lines[0], "[error]")
	assert.Equal(t, StateReady, s.State())
	assert.Contains(t, s.LastOutput(), "boom")
}

func TestRunRejectedWhileRunning(t *testing.T) {
	s := initTestSession(t)

	_, err := s.Run(context.Background(), "console.log('first')")
	require.NoError(t, err)
	before := s.LastOutput()

	// Simulate an outstanding run holding the gate.
	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()

	_, err = s.Run(context.Background(), "console.log('second')")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, before, s.LastOutput(), "rejected run must not touch lastOutput")

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
}

func TestResetRestoresDataset(t *testing.T) {
	s := initTestSession(t)
	ctx := context.Background()

	outcome, err := s.Run(ctx, `
		await db.table('orders').delete();
		await db.table('orders').insert({id: 99, customerId: 1, productId: 1, status: 'weird', total: 1});
	`)
	require.NoError(t, err)
	require.False(t, outcome.Failed, "run failed: %s", outcome.Err)
	require.Equal(t, 1, tableCount(t, s, "orders"))

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 6, tableCount(t, s, "orders"))
	assert.Equal(t, 3, tableCount(t, s, "customers"))
	assert.Equal(t, 4, tableCount(t, s, "products"))
}

func TestResetOnlyFromReady(t *testing.T) {
	s := newTestSession(t)

	err := s.Reset(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateUninitialized, s.State())
}

func TestRunOnlyFromReady(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Run(context.Background(), "console.log(1)")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSandboxCannotReachAmbientScope(t *testing.T) {
	s := initTestSession(t)

	outcome, err := s.Run(context.Background(), "console.log(window.location)")
	require.NoError(t, err)
	assert.True(t, outcome.Failed)
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(Config{
		ArenaPrefix: fmt.Sprintf("test-%s", t.Name()),
		MaxSessions: 2,
		Sandbox:     sandbox.DefaultConfig(),
	}, nil)
	defer m.Close()

	s1, err := m.Create()
	require.NoError(t, err)
	_, err = m.Create()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())

	_, err = m.Create()
	assert.ErrorIs(t, err, ErrTooManySessions)

	got, ok := m.Get(s1.ID())
	require.True(t, ok)
	assert.Same(t, s1, got)

	assert.True(t, m.Release(s1.ID()))
	assert.False(t, m.Release(s1.ID()))
	assert.Equal(t, 1, m.Count())
}
