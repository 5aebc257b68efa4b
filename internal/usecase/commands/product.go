package commands

import (
	"context"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductCommands interface {
	Create(ctx context.Context, principal user.Principal, attrs product.Attributes) (*product.Product, error)
	Update(ctx context.Context, principal user.Principal, id uuid.UUID, patch product.Overrides) (*product.Product, error)
}

type productUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewProductUseCase(uow shared.UnitOfWork, clk clock.Clock) ProductCommands {
	return &productUseCaseImpl{uow: uow, clock: clk}
}

func (uc *productUseCaseImpl) Create(ctx context.Context, principal user.Principal, attrs product.Attributes) (*product.Product, error) {
	p, err := product.NewProduct(principal.ID, attrs, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Create(ctx, tx.DB(), p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes the canonical product. Session overrides keep applying on top.
// A lower capacity must still hold the active bookings of every session offering
// the product.
func (uc *productUseCaseImpl) Update(ctx context.Context, principal user.Principal, id uuid.UUID, patch product.Overrides) (*product.Product, error) {
	var updated *product.Product
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Products().FindByID(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		if !principal.CanManage(p.OwnerID()) {
			return product.ErrProductNotOwned
		}

		var linked []*session.Session
		if patch.MaxCapacity != nil {
			if linked, err = tx.Sessions().LockByProduct(ctx, tx.DB(), id); err != nil {
				return err
			}
		}

		if err := p.Update(patch, uc.clock.Now()); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, tx.DB(), p); err != nil {
			return err
		}

		for _, s := range linked {
			slot, err := loadSlot(ctx, tx, s)
			if err != nil {
				return err
			}
			if err := allocation.Validate(slot); err != nil {
				return errs.Wrapf(err, "session %s", s.ID())
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
