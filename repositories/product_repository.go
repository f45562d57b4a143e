package repositories

import (
	"context"

	"farmconnect/models"

	"github.com/jackc/pgx/v5"
)

type ProductRepository struct {
	db DB
}

func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, seller_id, name, description, price, quantity, unit, category, location, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&p.Unit,
		&p.Category,
		&p.Location,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "product")
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// List returns every product, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id`)
}

func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE seller_id = $1 ORDER BY created_at DESC, id`, sellerID)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (seller_id, name, description, price, quantity, unit, category, location, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.SellerID, p.Name, p.Description, p.Price, p.Quantity, p.Unit, p.Category, p.Location, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err, "product")
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, quantity = $4, unit = $5,
		    category = $6, location = $7, image_url = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Description, p.Price, p.Quantity, p.Unit, p.Category, p.Location, p.ImageURL, p.ID,
	).Scan(&p.UpdatedAt)
	return translate(err, "product")
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return translate(err, "product")
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("product %s not found", id)
	}
	return nil
}
