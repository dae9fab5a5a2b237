package planning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mla/planning-backend/internal/domain"
)

type memberCounter interface {
	CountDistinctMembers(ctx context.Context, planningID uuid.UUID) (int, error)
}

type counter interface {
	Inc()
}

// NotifyHook is the default publish hook. It counts the members assigned
// under the planning and logs the dispatch inside the transaction, then bumps
// the published counter once the publish has committed.
type NotifyHook struct {
	members   memberCounter
	published counter
	log       *slog.Logger
}

// NewNotifyHook creates the default publish hook. published may be nil.
func NewNotifyHook(log *slog.Logger, members memberCounter, published counter) *NotifyHook {
	return &NotifyHook{
		members:   members,
		published: published,
		log:       log.With("hook", "publish"),
	}
}

// OnPublish implements PublishHook.
func (h *NotifyHook) OnPublish(ctx context.Context, p domain.Planning) error {
	n, err := h.members.CountDistinctMembers(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("count assigned members: %w", err)
	}

	h.log.InfoContext(ctx, "planning published, notifying members",
		slog.String("planning_id", p.ID.String()),
		slog.Int("members", n),
	)
	return nil
}

// AfterPublish implements PublishCommitHook.
func (h *NotifyHook) AfterPublish(context.Context, domain.Planning) {
	if h.published != nil {
		h.published.Inc()
	}
}
