// Package txn implements the scoped-acquisition transaction pattern spec §9
// calls for in place of the original's goto-label cleanup: a transaction is
// always entered through Run, which registers rollback as the on-error
// action and commit as the on-success action, so discard_transaction is
// guaranteed to run on every path between begin and end (spec §5, §7).
package txn

import (
	"context"

	"github.com/Seagate/cortx-posix-sub001/kvs"
)

// Run begins a transaction on store, invokes fn with it, and commits if fn
// returns nil or rolls back (discards) otherwise. The first error is always
// what's returned to the caller: if Commit itself fails, that error is
// returned, but a Rollback failure after fn already failed never overwrites
// fn's original error (spec §9 open question: "some error propagations in
// the source overwrite the original error with the error from a rollback
// call; the spec requires preserving the first error").
func Run(ctx context.Context, store kvs.Store, fn func(tx kvs.Tx) error) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}

	fnErr := fn(tx)
	if fnErr != nil {
		_ = tx.Rollback(ctx)
		return fnErr
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	return nil
}

// WithCompensation runs fn under a transaction; if fn succeeds but the
// caller-supplied postCommit step fails after commit, compensate is invoked
// to undo the already-committed effect (used by namespace.CreateEx to unlink
// a just-created inode when creating its ExtStore object after commit
// fails).
func WithCompensation(ctx context.Context, store kvs.Store, fn func(tx kvs.Tx) error, postCommit func() error, compensate func()) error {
	if err := Run(ctx, store, fn); err != nil {
		return err
	}
	if err := postCommit(); err != nil {
		compensate()
		return err
	}
	return nil
}
