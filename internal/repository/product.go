package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/filter"
	"github.com/storelink/products-api/internal/model"
	"github.com/storelink/products-api/internal/storage/db"
	"github.com/storelink/products-api/pkg/zerror"
)

// ProductRepository is the sole gateway to durable product storage.
type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	GetByID(ctx context.Context, id string, includeDeleted bool) (*model.Product, error)
	GetByLocationID(ctx context.Context, locationID string) ([]*model.Product, error)
	List(ctx context.Context, criteria *filter.Criteria) ([]*model.Product, error)
	Save(ctx context.Context, product *model.Product) (*model.Product, error)
	Delete(ctx context.Context, product *model.Product, hard bool) error
	IDExists(ctx context.Context, id string) (bool, error)
}

const productColumns = `id, name, location_id, price, discount_price, discount_from, discount_to,
	status, attributes, description, unique_identifier, created_at, updated_at, deleted_at`

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ProductNotFound.WrapParent(fmt.Errorf("no product with id %q", id))
		}
		return nil, fmt.Errorf("query product by id: %w", err)
	}

	return product, nil
}

func (r productRepository) GetByLocationID(ctx context.Context, locationID string) ([]*model.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE location_id = $1 AND deleted_at IS NULL`,
		locationID)
	if err != nil {
		return nil, fmt.Errorf("query products by location id: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperr.ProductNotFound.WrapParent(fmt.Errorf("no products for location %q", locationID))
	}

	return products, nil
}

// List applies the criteria verbatim. Criteria that cannot be rendered
// against the schema match nothing; the empty result is never an error.
func (r productRepository) List(ctx context.Context, criteria *filter.Criteria) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any

	if criteria != nil {
		where, whereArgs, err := criteria.ToSQL()
		if err != nil {
			return []*model.Product{}, nil
		}
		args = whereArgs
		if where != "" {
			query += ` WHERE ` + where
		}
		if criteria.Limit > 0 {
			args = append(args, criteria.Limit)
			query += fmt.Sprintf(` LIMIT $%d`, len(args))
		}
		if criteria.Offset > 0 {
			args = append(args, criteria.Offset)
			query += fmt.Sprintf(` OFFSET $%d`, len(args))
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query product list: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Save persists the product, stamping UpdatedAt when the id is already
// known to the store. Timestamps are only ever stamped here.
func (r productRepository) Save(ctx context.Context, product *model.Product) (*model.Product, error) {
	exists, err := r.IDExists(ctx, product.ID)
	if err != nil {
		return nil, apperr.SaveFailed.WrapParent(err)
	}
	if exists {
		now := time.Now()
		product.UpdatedAt = &now
	}

	if err := r.upsert(ctx, product); err != nil {
		return nil, apperr.SaveFailed.WrapParent(err)
	}

	return product, nil
}

func (r productRepository) Delete(ctx context.Context, product *model.Product, hard bool) error {
	if hard {
		if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, product.ID); err != nil {
			return apperr.DeleteFailed.WrapParent(err)
		}
		return nil
	}

	// soft delete stamps DeletedAt without touching UpdatedAt
	now := time.Now()
	product.DeletedAt = &now
	if err := r.upsert(ctx, product); err != nil {
		return apperr.DeleteFailed.WrapParent(err)
	}

	return nil
}

func (r productRepository) IDExists(ctx context.Context, id string) (bool, error) {
	if _, err := r.GetByID(ctx, id, false); err != nil {
		if zerror.Is(err, apperr.ProductNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r productRepository) upsert(ctx context.Context, product *model.Product) error {
	attributes, err := json.Marshal(product.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (@id, @name, @location_id, @price, @discount_price, @discount_from, @discount_to,
			@status, @attributes, @description, @unique_identifier, @created_at, @updated_at, @deleted_at)
		ON CONFLICT (id) DO UPDATE SET
			name              = EXCLUDED.name,
			location_id       = EXCLUDED.location_id,
			price             = EXCLUDED.price,
			discount_price    = EXCLUDED.discount_price,
			discount_from     = EXCLUDED.discount_from,
			discount_to       = EXCLUDED.discount_to,
			status            = EXCLUDED.status,
			attributes        = EXCLUDED.attributes,
			description       = EXCLUDED.description,
			unique_identifier = EXCLUDED.unique_identifier,
			updated_at        = EXCLUDED.updated_at,
			deleted_at        = EXCLUDED.deleted_at
	`, pgx.NamedArgs{
		"id":                product.ID,
		"name":              product.Name,
		"location_id":       product.LocationID,
		"price":             product.Price,
		"discount_price":    product.DiscountPrice,
		"discount_from":     product.DiscountFrom,
		"discount_to":       product.DiscountTo,
		"status":            product.Status,
		"attributes":        attributes,
		"description":       product.Description,
		"unique_identifier": product.UniqueIdentifier,
		"created_at":        product.CreatedAt,
		"updated_at":        product.UpdatedAt,
		"deleted_at":        product.DeletedAt,
	})
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p             model.Product
		price         *string
		discountPrice *string
		discountFrom  *time.Time
		discountTo    *time.Time
		attributes    []byte
		description   *string
		updatedAt     *time.Time
		deletedAt     *time.Time
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.LocationID,
		&price,
		&discountPrice,
		&discountFrom,
		&discountTo,
		&p.Status,
		&attributes,
		&description,
		&p.UniqueIdentifier,
		&p.CreatedAt,
		&updatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	if price != nil {
		p.Price = *price
	}
	p.DiscountPrice = discountPrice
	p.DiscountFrom = discountFrom
	p.DiscountTo = discountTo
	if description != nil {
		p.Description = *description
	}
	p.UpdatedAt = updatedAt
	p.DeletedAt = deletedAt

	p.Attributes = map[string]any{}
	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}

	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*model.Product, error) {
	products := []*model.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}
