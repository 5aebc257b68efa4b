package readstore

import (
	"context"

	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/infra/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type ProductReadStore struct {
	db db.DBTX
}

func NewProductReadStore(pool db.DBTX) *ProductReadStore {
	return &ProductReadStore{db: pool}
}

func (r *ProductReadStore) List(ctx context.Context, ownerID *uuid.UUID) ([]*product.Product, error) {
	q := repository.SelectProducts().OrderBy("name", "id")
	if ownerID != nil {
		q = q.Where(sq.Eq{"owner_id": *ownerID})
	}
	ps, err := repository.ScanProducts(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		ps = []*product.Product{}
	}
	return ps, nil
}
