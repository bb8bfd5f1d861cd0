package dbx

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// ErrUnitOfWorkClosed is returned when a unit of work is used after it was
// committed or discarded.
var ErrUnitOfWorkClosed = errors.New("unit of work closed")

// Change is one staged write. It runs inside the commit transaction and
// reports how many records it affected.
type Change func(ctx context.Context, tx DBTX) (int64, error)

// UnitOfWork collects staged changes for one logical request and applies
// them atomically on Commit. Reads issued through Reader observe committed
// state only.
//
// A UnitOfWork is single-use: after Commit or Discard every further call
// fails with ErrUnitOfWorkClosed.
type UnitOfWork struct {
	db      *sql.DB
	mu      sync.Mutex
	changes []Change
	closed  bool
}

// NewUnitOfWork returns an empty unit of work bound to db.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Reader returns the handle repositories use for queries.
func (u *UnitOfWork) Reader() DBTX {
	return u.db
}

// Stage queues a change for the next Commit.
func (u *UnitOfWork) Stage(c Change) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrUnitOfWorkClosed
	}
	u.changes = append(u.changes, c)
	return nil
}

// Pending reports how many changes are staged.
func (u *UnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.changes)
}

// Commit applies every staged change in one transaction and returns the
// total number of affected records. With nothing staged it returns 0
// without touching the database.
//
// Cancellation of ctx is honoured only until the transaction begins; the
// transaction itself runs on a context detached from the caller's.
func (u *UnitOfWork) Commit(ctx context.Context) (int, error) {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return 0, ErrUnitOfWorkClosed
	}
	changes := u.changes
	u.changes = nil
	u.closed = true
	u.mu.Unlock()

	if len(changes) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var affected int64
	err := WithTx(context.WithoutCancel(ctx), u.db, nil, func(ctx context.Context, tx DBTX) error {
		for _, c := range changes {
			n, err := c(ctx, tx)
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Discard drops staged changes. It is safe to call after Commit, which makes
// `defer uow.Discard()` the usual pattern.
func (u *UnitOfWork) Discard() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.changes = nil
	u.closed = true
}
