package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func (r *repos) CreateVendor(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if strings.TrimSpace(vendor.Name) == "" {
		return domain.Vendor{}, domain.ErrNameRequired
	}
	id, err := r.insertReturningID(ctx, `INSERT INTO vendors (name) VALUES ($1)`, vendor.Name)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("insert vendor: %w", err)
	}
	vendor.ID = id
	return vendor, nil
}

func (r *repos) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	vendorID := sql.NullInt64{Int64: product.VendorID, Valid: product.VendorID != 0}
	id, err := r.insertReturningID(ctx, `
		INSERT INTO products (name, description, price, vendor_id)
		VALUES ($1, $2, $3, $4)`,
		product.Name, product.Description, product.Price, vendorID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Product{}, domain.ErrVendorNotFound
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	product.ID = id
	return product, nil
}

func (r *repos) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		product  domain.Product
		price    decimal.Decimal
		vendorID sql.NullInt64
	)
	err := r.queryRow(ctx, `
		SELECT id, name, description, price, vendor_id
		FROM products
		WHERE id = $1`, id,
	).Scan(&product.ID, &product.Name, &product.Description, &price, &vendorID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	product.Price = price
	product.VendorID = vendorID.Int64
	return product, nil
}
