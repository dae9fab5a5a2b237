// Package servicetest provides an in-memory implementation of the repositories
// and transaction manager consumed by the planning services.
//
// The store mirrors the PostgreSQL schema closely enough for service tests:
// foreign keys are checked, unique constraints are enforced and RunInTx
// restores a snapshot of all tables when the callback fails, so rollback
// behavior can be asserted without a database.
package servicetest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

type failure struct {
	err    error
	onCall int // 0 = every call
	calls  int
}

// Store holds all tables. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.Mutex

	activities  map[uuid.UUID]domain.Activity
	plannings   map[uuid.UUID]domain.Planning
	slots       map[uuid.UUID]domain.Slot
	assignments map[uuid.UUID]domain.Assignment
	members     map[uuid.UUID]domain.Member
	memberRoles map[uuid.UUID]map[string]bool
	roles       map[string]bool
	users       map[uuid.UUID]domain.User
	audit       []domain.AuditRecord

	failures map[string]*failure
	clock    time.Time
	txDepth  int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		activities:  map[uuid.UUID]domain.Activity{},
		plannings:   map[uuid.UUID]domain.Planning{},
		slots:       map[uuid.UUID]domain.Slot{},
		assignments: map[uuid.UUID]domain.Assignment{},
		members:     map[uuid.UUID]domain.Member{},
		memberRoles: map[uuid.UUID]map[string]bool{},
		roles:       map[string]bool{},
		users:       map[uuid.UUID]domain.User{},
		failures:    map[string]*failure{},
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// FailOn makes every call of op (e.g. "slot.Create") return err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{err: err}
}

// FailOnCall makes only the n-th call (1-based) of op return err.
func (s *Store) FailOnCall(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{err: err, onCall: n}
}

// fail must be called with s.mu held.
func (s *Store) fail(op string) error {
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	f.calls++
	if f.onCall == 0 || f.onCall == f.calls {
		return f.err
	}
	return nil
}

// tick returns a strictly increasing timestamp so creation order is stable.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type snapshot struct {
	activities  map[uuid.UUID]domain.Activity
	plannings   map[uuid.UUID]domain.Planning
	slots       map[uuid.UUID]domain.Slot
	assignments map[uuid.UUID]domain.Assignment
	users       map[uuid.UUID]domain.User
	audit       []domain.AuditRecord
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		activities:  maps.Clone(s.activities),
		plannings:   maps.Clone(s.plannings),
		slots:       maps.Clone(s.slots),
		assignments: maps.Clone(s.assignments),
		users:       maps.Clone(s.users),
		audit:       slices.Clone(s.audit),
	}
}

func (s *Store) restore(snap snapshot) {
	s.activities = snap.activities
	s.plannings = snap.plannings
	s.slots = snap.slots
	s.assignments = snap.assignments
	s.users = snap.users
	s.audit = snap.audit
}

// TxManager runs callbacks against the store and rolls back on error.
// Nested calls behave like savepoints.
type TxManager struct{ s *Store }

// Tx returns the store's transaction manager.
func (s *Store) Tx() *TxManager { return &TxManager{s: s} }

// RunInTx snapshots the store, runs fn and restores the snapshot if fn
// returns an error or panics.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	m.s.mu.Lock()
	if ferr := m.s.fail("tx.Begin"); ferr != nil {
		m.s.mu.Unlock()
		return ferr
	}
	snap := m.s.snapshot()
	m.s.txDepth++
	m.s.mu.Unlock()

	defer func() {
		m.s.mu.Lock()
		defer m.s.mu.Unlock()
		m.s.txDepth--
		if p := recover(); p != nil {
			m.s.restore(snap)
			panic(p)
		}
		if err != nil {
			m.s.restore(snap)
		}
	}()

	return fn(ctx)
}

// InTx reports whether a RunInTx callback is currently executing.
func (s *Store) InTx() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txDepth > 0
}

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
}
