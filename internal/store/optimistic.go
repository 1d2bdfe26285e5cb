package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Optimistic mutation protocol: the local change is applied and published
// before the network confirms it, then reconciled against the server's
// answer. On failure the pre-mutation snapshot is restored verbatim.
//
// Overlapping mutations on one collection are not merged. Every committed
// change bumps the collection version; a mutation remembers the version
// produced by its own local apply and only rolls back while that version
// is still current. A rollback whose snapshot predates a newer edit is
// abandoned and reported as ErrRollbackSuperseded instead of silently
// discarding the newer edit.

type MutationStatus string

const (
	MutationApplying   MutationStatus = "APPLYING"
	MutationConfirmed  MutationStatus = "CONFIRMED"
	MutationRolledBack MutationStatus = "ROLLED_BACK"
)

func (s MutationStatus) IsTerminal() bool {
	return s == MutationConfirmed || s == MutationRolledBack
}

// Mutation is one optimistic mutation instance. Confirmed and RolledBack
// are terminal; the collection itself stays live for further mutations.
type Mutation struct {
	ID     string
	Op     string
	Status MutationStatus
}

var (
	// ErrRecordMissing is a local validation failure: the record to
	// mutate is not in the collection, so there is nothing to apply.
	ErrRecordMissing = errors.New("record not present in collection")

	// ErrUpdateReverted and ErrDeleteReverted carry distinct text so the
	// UI can tell the two rollback causes apart.
	ErrUpdateReverted = errors.New("could not save the change, it has been reverted")
	ErrDeleteReverted = errors.New("could not delete the record, it has been restored")

	// ErrRollbackSuperseded marks an abandoned rollback: a newer edit
	// landed on the collection between the optimistic apply and the
	// failure, so restoring the snapshot would discard that edit.
	ErrRollbackSuperseded = errors.New("rollback abandoned, a newer edit superseded the snapshot")
)

// UpdateOptimistic publishes the updated entity immediately, then issues
// the remote update. On success the server's representation replaces the
// optimistic one; on failure the pre-image is restored and the error
// channel carries an update-specific message. The loading flag is not
// touched: optimistic edits render without a spinner.
func (s *Store[T]) UpdateOptimistic(ctx context.Context, entity T) (*Mutation, error) {
	m := &Mutation{ID: uuid.NewString(), Op: "update", Status: MutationApplying}
	id := entity.EntityID()

	s.mu.Lock()
	items := cloneSlice(s.data.Get())
	idx := indexByID(items, id)
	if idx < 0 {
		s.mu.Unlock()
		m.Status = MutationRolledBack
		s.err.Set(ErrRecordMissing)
		return m, ErrRecordMissing
	}
	pre := cloneSlice(items)
	items[idx] = entity
	s.version++
	stamp := s.version
	s.data.Set(items)
	s.mu.Unlock()

	s.log.Debug("optimistic update applied", zap.String("mutation", m.ID), zap.Int64("id", id))

	updated, err := s.res.Update(ctx, id, entity)
	if err != nil {
		return m, s.rollback(m, pre, stamp, fmt.Errorf("%w: %w", ErrUpdateReverted, err))
	}

	// Adopt the server's representation unless a later edit owns the
	// record now.
	s.mu.Lock()
	if s.version == stamp {
		cur := cloneSlice(s.data.Get())
		if i := indexByID(cur, id); i >= 0 {
			cur[i] = updated
			s.version++
			s.data.Set(cur)
		}
	}
	s.mu.Unlock()

	m.Status = MutationConfirmed
	return m, nil
}

// DeleteOptimistic removes the record locally at once, then issues the
// remote delete. On failure the record reappears at its original
// position and the error channel carries a delete-specific message.
func (s *Store[T]) DeleteOptimistic(ctx context.Context, id int64) (*Mutation, error) {
	m := &Mutation{ID: uuid.NewString(), Op: "delete", Status: MutationApplying}

	s.mu.Lock()
	items := cloneSlice(s.data.Get())
	idx := indexByID(items, id)
	if idx < 0 {
		s.mu.Unlock()
		m.Status = MutationRolledBack
		s.err.Set(ErrRecordMissing)
		return m, ErrRecordMissing
	}
	pre := cloneSlice(items)
	items = append(items[:idx], items[idx+1:]...)
	s.version++
	stamp := s.version
	s.data.Set(items)
	s.mu.Unlock()

	s.log.Debug("optimistic delete applied", zap.String("mutation", m.ID), zap.Int64("id", id))

	if err := s.res.Delete(ctx, id); err != nil {
		return m, s.rollback(m, pre, stamp, fmt.Errorf("%w: %w", ErrDeleteReverted, err))
	}

	m.Status = MutationConfirmed
	return m, nil
}

// rollback restores the pre-image if no later edit has landed, otherwise
// abandons it. Either way the mutation terminates rolled back and the
// cause reaches the error channel.
func (s *Store[T]) rollback(m *Mutation, pre []T, stamp uint64, cause error) error {
	s.mu.Lock()
	superseded := s.version != stamp
	if !superseded {
		s.version++
		s.data.Set(pre)
	}
	s.mu.Unlock()

	m.Status = MutationRolledBack
	if superseded {
		cause = fmt.Errorf("%w: %w", ErrRollbackSuperseded, cause)
		s.log.Warn("optimistic rollback superseded",
			zap.String("mutation", m.ID), zap.String("op", m.Op))
	} else {
		s.log.Warn("optimistic mutation rolled back",
			zap.String("mutation", m.ID), zap.String("op", m.Op), zap.Error(cause))
	}
	s.err.Set(cause)
	return cause
}
