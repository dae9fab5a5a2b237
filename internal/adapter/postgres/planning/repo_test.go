package planning_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/mla/planning-backend/internal/adapter/postgres"
	"github.com/mla/planning-backend/internal/adapter/postgres/planning"
	"github.com/mla/planning-backend/internal/adapter/postgres/testhelper"
	"github.com/mla/planning-backend/internal/domain"
)

func newRepo(t *testing.T) (*planning.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return planning.New(pool), pool
}

func seedDraft(t *testing.T, pool *pgxpool.Pool) domain.Planning {
	t.Helper()
	return testhelper.SeedPlanning(t, pool, domain.PlanningStatusDraft,
		testhelper.BaseTime(), testhelper.BaseTime().Add(4*time.Hour))
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

func TestRepo_GetWithActivity(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	p := seedDraft(t, pool)

	got, err := repo.GetWithActivity(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetWithActivity: unexpected error: %v", err)
	}
	if got.Status != domain.PlanningStatusDraft {
		t.Errorf("Status = %s, want DRAFT", got.Status)
	}
	if got.Activity == nil {
		t.Fatal("Activity should be populated")
	}
	if got.Activity.ID != p.ActivityID {
		t.Errorf("Activity.ID = %s, want %s", got.Activity.ID, p.ActivityID)
	}
	if !got.Activity.Start.Equal(p.Activity.Start) || !got.Activity.End.Equal(p.Activity.End) {
		t.Errorf("window = [%s, %s], want [%s, %s]",
			got.Activity.Start, got.Activity.End, p.Activity.Start, p.Activity.End)
	}
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRepo_LockByID_InsideTx(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	p := seedDraft(t, pool)
	tm := postgres.NewTxManager(pool)

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		got, err := repo.LockByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if got.ID != p.ID {
			t.Errorf("ID = %s, want %s", got.ID, p.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx: unexpected error: %v", err)
	}
}

func TestRepo_ListWithActivity_FilterAndPaging(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	// A far-future window keeps these rows ahead of plannings seeded by
	// parallel tests when ordering by activity start DESC.
	base := time.Date(2099, 1, 1, 9, 0, 0, 0, time.UTC)
	first := testhelper.SeedPlanning(t, pool, domain.PlanningStatusCancelled, base.Add(48*time.Hour), base.Add(50*time.Hour))
	second := testhelper.SeedPlanning(t, pool, domain.PlanningStatusCancelled, base.Add(24*time.Hour), base.Add(26*time.Hour))

	status := domain.PlanningStatusCancelled
	got, err := repo.ListWithActivity(ctx, domain.PlanningFilter{Status: &status, Limit: 2})
	if err != nil {
		t.Fatalf("ListWithActivity: unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Errorf("order = [%s, %s], want [%s, %s]", got[0].ID, got[1].ID, first.ID, second.ID)
	}
	for _, p := range got {
		if p.Status != domain.PlanningStatusCancelled {
			t.Errorf("planning %s has status %s", p.ID, p.Status)
		}
		if p.Activity == nil {
			t.Errorf("planning %s has nil Activity", p.ID)
		}
	}

	page, err := repo.ListWithActivity(ctx, domain.PlanningFilter{Status: &status, Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListWithActivity page 2: %v", err)
	}
	if len(page) != 1 || page[0].ID != second.ID {
		t.Errorf("page 2 = %v, want [%s]", page, second.ID)
	}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

func TestRepo_Create_UniqueActivity(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	p := seedDraft(t, pool)

	_, err := repo.Create(context.Background(), &domain.Planning{
		ActivityID: p.ActivityID,
		Status:     domain.PlanningStatusDraft,
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}
}

func TestRepo_UpdateStatus(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	p := seedDraft(t, pool)

	got, err := repo.UpdateStatus(context.Background(), p.ID, domain.PlanningStatusPublished)
	if err != nil {
		t.Fatalf("UpdateStatus: unexpected error: %v", err)
	}
	if got.Status != domain.PlanningStatusPublished {
		t.Errorf("Status = %s, want PUBLISHED", got.Status)
	}
	if got.ActivityID != p.ActivityID {
		t.Errorf("ActivityID = %s, want %s", got.ActivityID, p.ActivityID)
	}
}

func TestRepo_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	p := seedDraft(t, pool)

	_, err := repo.UpdateStatus(context.Background(), p.ID, "ARCHIVED")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()
	p := seedDraft(t, pool)

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID after delete: got %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete: got %v, want ErrNotFound", err)
	}
}
