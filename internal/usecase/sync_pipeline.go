package usecase

import (
	"context"

	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/accounting-sync/internal/domain/errors"
	"github.com/wekeepgrowing/accounting-sync/internal/domain/provider"
)

// entityOps adapts one entity type to the sync pipeline. pushA and pushB
// write the row to Xero and QuickBooks and record the returned ids on it;
// they must assign new values to pointer fields rather than mutate them, so a
// shallow copy of the row is a complete snapshot.
type entityOps[T any] struct {
	kind   string
	insert func(ctx context.Context, row *T) error
	save   func(ctx context.Context, row *T) error

	pushA func(ctx context.Context, row *T, update bool) error
	// linkedB reports whether the row should be written to QuickBooks.
	linkedB func(row *T) bool
	// pushB creates or updates depending on whether the row has a QuickBooks id.
	pushB func(ctx context.Context, row *T) error

	setSyncedA func(row *T, synced bool)
	setSyncedB func(row *T, synced bool)
}

// syncPipeline sequences local write, Xero write and QuickBooks write for one
// entity type, rolling local state back when an update is rejected remotely.
type syncPipeline[T any] struct {
	ops    entityOps[T]
	logger *zap.Logger
}

func newSyncPipeline[T any](ops entityOps[T], logger *zap.Logger) *syncPipeline[T] {
	return &syncPipeline[T]{ops: ops, logger: logger.With(zap.String("entity", ops.kind))}
}

// create inserts row and pushes it to both providers. A remote failure keeps
// the inserted row with the corresponding flag false.
func (p *syncPipeline[T]) create(ctx context.Context, row *T) error {
	p.ops.setSyncedA(row, false)
	p.ops.setSyncedB(row, false)
	if err := p.ops.insert(ctx, row); err != nil {
		return err
	}

	if err := p.ops.pushA(ctx, row, false); err != nil {
		p.logger.Warn("Xero create failed, local row kept unsynced", zap.Error(err))
		return &domainErrors.RemoteError{Provider: string(provider.ProviderTypeXero), Op: "create " + p.ops.kind, Err: err}
	}
	p.ops.setSyncedA(row, true)
	if err := p.ops.save(ctx, row); err != nil {
		return err
	}

	if !p.ops.linkedB(row) {
		return nil
	}

	if err := p.ops.pushB(ctx, row); err != nil {
		p.logger.Warn("QuickBooks write failed after Xero create", zap.Error(err))
		p.ops.setSyncedB(row, false)
		if saveErr := p.ops.save(ctx, row); saveErr != nil {
			p.logger.Error("Failed to persist QuickBooks sync state", zap.Error(saveErr))
		}
		return &domainErrors.RemoteError{Provider: string(provider.ProviderTypeQuickBooks), Op: "create " + p.ops.kind, Err: err}
	}
	p.ops.setSyncedB(row, true)
	return p.ops.save(ctx, row)
}

// update applies the change locally, then pushes it to Xero and QuickBooks.
// If either rejects it the row is restored exactly, flags included. A
// QuickBooks rejection leaves Xero holding the new values; the returned
// error names QuickBooks so the caller can retry the update.
func (p *syncPipeline[T]) update(ctx context.Context, row *T, apply func(row *T)) error {
	before := *row

	apply(row)
	p.ops.setSyncedA(row, false)
	p.ops.setSyncedB(row, false)
	if err := p.ops.save(ctx, row); err != nil {
		*row = before
		return err
	}

	if err := p.ops.pushA(ctx, row, true); err != nil {
		p.logger.Warn("Xero update failed, rolling back", zap.Error(err))
		*row = before
		p.restore(ctx, row)
		return &domainErrors.RemoteError{Provider: string(provider.ProviderTypeXero), Op: "update " + p.ops.kind, Update: true, Err: err}
	}
	p.ops.setSyncedA(row, true)

	if p.ops.linkedB(row) {
		if err := p.ops.pushB(ctx, row); err != nil {
			p.logger.Warn("QuickBooks update failed, rolling back local change", zap.Error(err))
			*row = before
			p.restore(ctx, row)
			return &domainErrors.RemoteError{Provider: string(provider.ProviderTypeQuickBooks), Op: "update " + p.ops.kind, Update: true, Err: err}
		}
		p.ops.setSyncedB(row, true)
	}

	return p.ops.save(ctx, row)
}

func (p *syncPipeline[T]) restore(ctx context.Context, row *T) {
	if err := p.ops.save(ctx, row); err != nil {
		p.logger.Error("Failed to persist rollback", zap.Error(err))
	}
}
