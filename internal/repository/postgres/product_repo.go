package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository implements domain.ProductRepository using PostgreSQL
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts the product or fully overwrites the existing record with the
// same slug. Every mapped field is replaced; there is no partial merge.
func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	const query = `
		INSERT INTO products (slug, name, brand, price, subscription_price, frequency,
		                      material, water_content, stock, in_stock, images,
		                      specifications, rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			price = EXCLUDED.price,
			subscription_price = EXCLUDED.subscription_price,
			frequency = EXCLUDED.frequency,
			material = EXCLUDED.material,
			water_content = EXCLUDED.water_content,
			stock = EXCLUDED.stock,
			in_stock = EXCLUDED.in_stock,
			images = EXCLUDED.images,
			specifications = EXCLUDED.specifications,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return nil, fmt.Errorf("marshal product images: %w", err)
	}
	specsJSON, err := json.Marshal(p.Specifications)
	if err != nil {
		return nil, fmt.Errorf("marshal product specifications: %w", err)
	}

	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, query,
		p.Slug, p.Name, p.Brand,
		p.Price.StringFixed(2), p.SubscriptionPrice.StringFixed(2),
		string(p.Frequency), p.Material, p.WaterContent,
		p.Stock, p.InStock, imagesJSON, specsJSON,
		p.Rating, p.ReviewCount, now)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert product %q: %w", p.Slug, err)
	}
	p.UpdatedAt = now
	return p, nil
}

// GetBySlug retrieves a product by its slug
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	const query = `
		SELECT id, slug, name, brand, price, subscription_price, frequency,
		       material, water_content, stock, in_stock, images, specifications,
		       rating, review_count, created_at, updated_at
		FROM products WHERE slug = $1`

	var (
		p          domain.Product
		priceStr   string
		subStr     string
		freq       string
		imagesJSON []byte
		specsJSON  []byte
	)
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&p.ID, &p.Slug, &p.Name, &p.Brand, &priceStr, &subStr, &freq,
		&p.Material, &p.WaterContent, &p.Stock, &p.InStock, &imagesJSON, &specsJSON,
		&p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	if p.Price, err = decimal.NewFromString(priceStr); err != nil {
		return nil, fmt.Errorf("parse product price: %w", err)
	}
	if p.SubscriptionPrice, err = decimal.NewFromString(subStr); err != nil {
		return nil, fmt.Errorf("parse subscription price: %w", err)
	}
	p.Frequency = domain.Frequency(freq)
	if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
		return nil, fmt.Errorf("unmarshal product images: %w", err)
	}
	if err := json.Unmarshal(specsJSON, &p.Specifications); err != nil {
		return nil, fmt.Errorf("unmarshal product specifications: %w", err)
	}
	return &p, nil
}

// Count returns the number of catalog products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
