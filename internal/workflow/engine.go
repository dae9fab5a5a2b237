// Package workflow validates status changes against fixed transition tables.
package workflow

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/mla/planning-backend/internal/domain"
)

// Engine is a finite-state-machine validator over one status domain.
// It holds no state besides its table and is safe for concurrent use.
type Engine[S ~string] struct {
	name        string
	transitions map[S][]S
	log         *slog.Logger
}

// New creates an Engine for the given table. name labels log records.
func New[S ~string](log *slog.Logger, name string, transitions map[S][]S) *Engine[S] {
	return &Engine[S]{
		name:        name,
		transitions: transitions,
		log:         log.With("workflow", name),
	}
}

// ValidateTransition returns a KindInvalidTransition error unless target is
// an allowed successor of current. Both values are normalized first, so raw
// lowercase or padded input is accepted.
func (e *Engine[S]) ValidateTransition(current, target S) error {
	current, target = normalize(current), normalize(target)

	if !slices.Contains(e.transitions[current], target) {
		return domain.NewInvalidTransition(string(current), string(target))
	}
	return nil
}

// ExecuteTransition validates current -> target and, only when that succeeds,
// runs hook. A nil hook is allowed. The hook error is returned unwrapped.
func (e *Engine[S]) ExecuteTransition(ctx context.Context, current, target S, hook func() error) error {
	if err := e.ValidateTransition(current, target); err != nil {
		return err
	}
	if hook == nil {
		return nil
	}

	e.log.InfoContext(ctx, "workflow hook executed",
		slog.String("current", string(normalize(current))),
		slog.String("target", string(normalize(target))),
	)
	return hook()
}

// AllowedTransitions returns the successors of current. An unknown status
// yields an empty slice and a warning.
func (e *Engine[S]) AllowedTransitions(ctx context.Context, current S) []S {
	next, ok := e.transitions[normalize(current)]
	if !ok {
		e.log.WarnContext(ctx, "unknown workflow status", slog.String("status", string(current)))
		return []S{}
	}
	return slices.Clone(next)
}

func normalize[S ~string](s S) S {
	return S(strings.ToUpper(strings.TrimSpace(string(s))))
}
