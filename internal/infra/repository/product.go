package repository

import (
	"context"

	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/infra"
	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/pkg/pgconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var productColumns = []string{
	"id", "owner_id", "name", "price_individual_cents", "price_group_cents", "duration_minutes",
	"max_capacity", "activity_type", "auto_close_hours_before", "color", "region", "image_url",
	"created_at", "updated_at",
}

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) Create(ctx context.Context, tx db.DBTX, p *product.Product) error {
	a := p.Attributes()
	q := db.SQ.Insert("products").
		Columns(productColumns...).
		Values(
			p.ID(), p.OwnerID(), a.Name, a.PriceIndividual.Cents(), moneyPtrToPgtype(a.PriceGroup), a.DurationMinutes,
			a.MaxCapacity, a.ActivityType, pgconv.Int32PtrToPgtype(a.AutoCloseHoursBefore), a.Color, a.Region, a.ImageURL,
			p.CreatedAt(), p.UpdatedAt(),
		)
	if _, err := db.Exec(ctx, tx, q); err != nil {
		return infra.WrapRepoErr("failed to create product", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, tx db.DBTX, p *product.Product) error {
	a := p.Attributes()
	q := db.SQ.Update("products").
		SetMap(map[string]any{
			"name":                    a.Name,
			"price_individual_cents":  a.PriceIndividual.Cents(),
			"price_group_cents":       moneyPtrToPgtype(a.PriceGroup),
			"duration_minutes":        a.DurationMinutes,
			"max_capacity":            a.MaxCapacity,
			"activity_type":           a.ActivityType,
			"auto_close_hours_before": pgconv.Int32PtrToPgtype(a.AutoCloseHoursBefore),
			"color":                   a.Color,
			"region":                  a.Region,
			"image_url":               a.ImageURL,
			"updated_at":              p.UpdatedAt(),
		}).
		Where(sq.Eq{"id": p.ID()})
	n, err := db.Exec(ctx, tx, q)
	if err != nil {
		return infra.WrapRepoErr("failed to update product", err)
	}
	if n == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*product.Product, error) {
	row, err := db.QueryRow(ctx, tx, SelectProducts().Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build product query", err)
	}
	p, err := scanProduct(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, product.ErrProductNotFound
		}
		return nil, infra.WrapRepoErr("failed to find product", err)
	}
	return p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, tx db.DBTX, ids []uuid.UUID) ([]*product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return ScanProducts(ctx, tx, SelectProducts().Where(sq.Eq{"id": ids}))
}

func SelectProducts() sq.SelectBuilder {
	return db.SQ.Select(productColumns...).From("products")
}

// ScanProducts runs a query built on SelectProducts.
func ScanProducts(ctx context.Context, tx db.DBTX, q sq.Sqlizer) ([]*product.Product, error) {
	rows, err := db.Query(ctx, tx, q)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query products", err)
	}
	defer rows.Close()

	var out []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate products", err)
	}
	return out, nil
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var (
		id, ownerID          uuid.UUID
		a                    product.Attributes
		priceCents           int64
		priceGroup           pgtype.Int8
		autoClose            pgtype.Int4
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &ownerID, &a.Name, &priceCents, &priceGroup, &a.DurationMinutes,
		&a.MaxCapacity, &a.ActivityType, &autoClose, &a.Color, &a.Region, &a.ImageURL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.PriceIndividual = money.MustFromCents(priceCents)
	if priceGroup.Valid {
		pg := money.MustFromCents(priceGroup.Int64)
		a.PriceGroup = &pg
	}
	a.AutoCloseHoursBefore = pgconv.IntPtrFromPgtype(autoClose)
	return product.Reconstruct(id, ownerID, a, pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt)), nil
}

func moneyPtrToPgtype(m *money.Money) pgtype.Int8 {
	if m == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: m.Cents(), Valid: true}
}
