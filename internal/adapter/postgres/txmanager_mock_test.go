package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"
)

func newMockTxManager(t *testing.T) (*TxManager, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return &TxManager{db: mock}, mock
}

func TestRunInTx_Mock_CommitOnSuccess(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	called := false
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		called = true
		if !InTx(ctx) {
			t.Error("callback context should carry the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx: unexpected error: %v", err)
	}
	if !called {
		t.Error("callback was not called")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_Mock_RollbackOnError(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("slot collision")
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("got %v, want sentinel", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunInTx_Mock_BeginError(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if called {
		t.Error("callback should not run when begin fails")
	}
}

func TestRunInTx_Mock_CommitError(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	commitErr := errors.New("serialization failure")
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(commitErr)

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("got %v, want commit error", err)
	}
}

func TestRunInTx_Mock_RollbackOnPanic(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("recover() = %v, want boom", r)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		panic("boom")
	})
}
