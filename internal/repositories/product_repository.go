package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"game_store_backend/internal/models"
)

// ProductRepository stores the product catalog and its stock levels.
type ProductRepository interface {
	CreateProduct(ctx context.Context, executor SQLExecutor, p *models.Product) (int64, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	LockProduct(ctx context.Context, executor SQLExecutor, id int64) (*models.Product, error)
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error)
	GetLowStock(ctx context.Context) ([]models.Product, error)
	GetCategories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, executor SQLExecutor, p *models.Product) error
	AdjustStock(ctx context.Context, executor SQLExecutor, id int64, delta int) (stockAfter int, applied int, err error)
	DeleteProduct(ctx context.Context, executor SQLExecutor, id int64) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, name_fr, name_ar, description, description_fr, description_ar, category, subcategory,
	product_type, price, sale_price, cost_price, stock_quantity, low_stock_threshold, points_earned, points_price,
	image_url, is_active, is_quick_sale, digital_content, is_digital_delivery, created_at, updated_at`

func scanProduct(row scanner, extra ...interface{}) (*models.Product, error) {
	p := &models.Product{}
	dest := []interface{}{&p.ID, &p.Name, &p.NameFr, &p.NameAr, &p.Description, &p.DescriptionFr, &p.DescriptionAr,
		&p.Category, &p.Subcategory, &p.ProductType, &p.Price, &p.SalePrice, &p.CostPrice, &p.StockQuantity,
		&p.LowStockThreshold, &p.PointsEarned, &p.PointsPrice, &p.ImageURL, &p.IsActive, &p.IsQuickSale,
		&p.DigitalContent, &p.IsDigitalDelivery, &p.CreatedAt, &p.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, executor SQLExecutor, p *models.Product) (int64, error) {
	query := `INSERT INTO products (name, name_fr, name_ar, description, description_fr, description_ar, category,
	                                subcategory, product_type, price, sale_price, cost_price, stock_quantity,
	                                low_stock_threshold, points_earned, points_price, image_url, is_active,
	                                is_quick_sale, digital_content, is_digital_delivery)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		p.Name, p.NameFr, p.NameAr, p.Description, p.DescriptionFr, p.DescriptionAr, p.Category,
		p.Subcategory, p.ProductType, p.Price, p.SalePrice, p.CostPrice, p.StockQuantity,
		p.LowStockThreshold, p.PointsEarned, p.PointsPrice, p.ImageURL, p.IsActive,
		p.IsQuickSale, p.DigitalContent, p.IsDigitalDelivery,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "creating product")
	}
	return p.ID, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("getting product ID %d", id))
	}
	return p, nil
}

func (r *productRepository) LockProduct(ctx context.Context, executor SQLExecutor, id int64) (*models.Product, error) {
	p, err := scanProduct(executor.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("locking product ID %d", id))
	}
	return p, nil
}

func (r *productRepository) GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error) {
	var qb strings.Builder
	qb.WriteString(`SELECT ` + productColumns + `, COUNT(*) OVER() AS total_count FROM products`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if filters.QuickSale != nil {
		conditions = append(conditions, fmt.Sprintf("is_quick_sale = $%d", argCount))
		args = append(args, *filters.QuickSale)
		argCount++
	}
	if filters.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if filters.ProductType != nil {
		conditions = append(conditions, fmt.Sprintf("product_type = $%d", argCount))
		args = append(args, *filters.ProductType)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR name_fr ILIKE $%d OR name_ar ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}
	if len(conditions) > 0 {
		qb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	qb.WriteString(" ORDER BY category ASC, name ASC")
	if filters.PageSize > 0 {
		qb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, offsetFor(filters.Page, filters.PageSize))
	}

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	products := []models.Product{}
	total := 0
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating products: %v", ErrDatabaseError, err)
	}
	return products, total, nil
}

// GetLowStock lists active stocked products at or below their threshold.
func (r *productRepository) GetLowStock(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products
		WHERE is_active AND product_type <> 'digital' AND stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying low stock: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) GetCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM products WHERE is_active ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateProduct rewrites catalog fields. Stock only moves through AdjustStock.
func (r *productRepository) UpdateProduct(ctx context.Context, executor SQLExecutor, p *models.Product) error {
	query := `UPDATE products
	          SET name = $1, name_fr = $2, name_ar = $3, description = $4, description_fr = $5, description_ar = $6,
	              category = $7, subcategory = $8, product_type = $9, price = $10, sale_price = $11, cost_price = $12,
	              low_stock_threshold = $13, points_earned = $14, points_price = $15, image_url = $16, is_active = $17,
	              is_quick_sale = $18, digital_content = $19, is_digital_delivery = $20, updated_at = NOW()
	          WHERE id = $21`
	result, err := executor.ExecContext(ctx, query,
		p.Name, p.NameFr, p.NameAr, p.Description, p.DescriptionFr, p.DescriptionAr,
		p.Category, p.Subcategory, p.ProductType, p.Price, p.SalePrice, p.CostPrice,
		p.LowStockThreshold, p.PointsEarned, p.PointsPrice, p.ImageURL, p.IsActive,
		p.IsQuickSale, p.DigitalContent, p.IsDigitalDelivery, p.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating product ID %d", p.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating product ID %d", p.ID))
}

// AdjustStock applies delta and floors the result at zero. applied is the
// change actually made, which differs from delta when the floor was hit.
func (r *productRepository) AdjustStock(ctx context.Context, executor SQLExecutor, id int64, delta int) (int, int, error) {
	query := `WITH prev AS (SELECT stock_quantity FROM products WHERE id = $2 FOR UPDATE)
	          UPDATE products p
	          SET stock_quantity = GREATEST(prev.stock_quantity + $1, 0), updated_at = NOW()
	          FROM prev
	          WHERE p.id = $2
	          RETURNING p.stock_quantity, p.stock_quantity - prev.stock_quantity`
	var stockAfter, applied int
	err := executor.QueryRowContext(ctx, query, delta, id).Scan(&stockAfter, &applied)
	if err != nil {
		return 0, 0, mapReadError(err, fmt.Sprintf("adjusting stock of product ID %d", id))
	}
	return stockAfter, applied, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("deleting product ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting product ID %d", id))
}
