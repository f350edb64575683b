package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fishmarket/backend/internal/database"
	"github.com/fishmarket/backend/internal/domain"
)

// Store reads and writes the catalog: categories, products and their sizes.
// Soft-deleted rows are invisible to every query unless stated otherwise.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SizeInfo is what the order engine needs to know about a product size at
// submission time.
type SizeInfo struct {
	ProductID int64
	Price     decimal.Decimal
}

// ResolveSizes looks up all requested sizes in one batch, skipping sizes of
// deleted products. Unresolved ids are simply absent from the result; the
// caller detects the gaps.
func (s *Store) ResolveSizes(ctx context.Context, q database.Querier, ids []int64) (map[int64]SizeInfo, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ps.id, ps.product_id, ps.price
		FROM product_sizes ps
		JOIN products p ON p.id = ps.product_id
		WHERE ps.id = ANY($1) AND p.status = 'active'
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("resolve sizes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sizes := make(map[int64]SizeInfo, len(ids))
	for rows.Next() {
		var id int64
		var info SizeInfo
		if err := rows.Scan(&id, &info.ProductID, &info.Price); err != nil {
			return nil, fmt.Errorf("scan size: %w", err)
		}
		sizes[id] = info
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sizes, nil
}

// ReduceStock decrements a size's stock, failing when not enough is left.
// The conditional update makes concurrent submissions safe: two callers can
// never both take the last unit.
func (s *Store) ReduceStock(ctx context.Context, q database.Querier, sizeID int64, quantity int) error {
	result, err := q.ExecContext(ctx, `
		UPDATE product_sizes
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2
	`, sizeID, quantity)
	if err != nil {
		return fmt.Errorf("reduce stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.Validationf("insufficient stock for product size %d", sizeID)
	}

	return nil
}

// RestoreStock returns previously taken stock, used when an order is
// cancelled or rejected.
func (s *Store) RestoreStock(ctx context.Context, q database.Querier, sizeID int64, quantity int) error {
	_, err := q.ExecContext(ctx, `
		UPDATE product_sizes
		SET stock_quantity = stock_quantity + $2
		WHERE id = $1
	`, sizeID, quantity)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{Name: name, Status: domain.StatusActive}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, status, created_at)
		VALUES ($1, 'active', NOW())
		RETURNING id, created_at
	`, name).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, name string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $2
		WHERE id = $1 AND status = 'active'
	`, id, name)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("category %d not found", id)
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET status = 'deleted', deleted_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("category %d not found", id)
	}

	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM categories
		WHERE status = 'active'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		category := domain.Category{Status: domain.StatusActive}
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

type CreateProductRequest struct {
	CategoryID  int64
	Name        string
	Description string
	Sizes       []SizeRequest
}

type SizeRequest struct {
	Label         string
	Price         decimal.Decimal
	StockQuantity int
}

func validateProduct(name string, sizes []SizeRequest) error {
	if name == "" {
		return domain.Validationf("product name is required")
	}
	if len(sizes) == 0 {
		return domain.Validationf("product must have at least one size")
	}
	for _, size := range sizes {
		if !size.Price.IsPositive() {
			return domain.Validationf("size %q must have a positive price", size.Label)
		}
		if size.StockQuantity < 0 {
			return domain.Validationf("size %q must not have negative stock", size.Label)
		}
	}
	return nil
}

func (s *Store) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	if err := validateProduct(req.Name, req.Sizes); err != nil {
		return nil, err
	}

	product := &domain.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.StatusActive,
	}

	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND status = 'active')`,
			req.CategoryID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return domain.NotFoundf("category %d not found", req.CategoryID)
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO products (category_id, name, description, status, created_at)
			VALUES ($1, $2, $3, 'active', NOW())
			RETURNING id, created_at
		`, req.CategoryID, req.Name, req.Description).Scan(&product.ID, &product.CreatedAt)
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		for _, size := range req.Sizes {
			ps := domain.ProductSize{
				ProductID:     product.ID,
				Label:         size.Label,
				Price:         size.Price,
				StockQuantity: size.StockQuantity,
			}
			err := tx.QueryRowContext(ctx, `
				INSERT INTO product_sizes (product_id, label, price, stock_quantity)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, product.ID, size.Label, size.Price, size.StockQuantity).Scan(&ps.ID)
			if err != nil {
				return fmt.Errorf("create product size: %w", err)
			}
			product.Sizes = append(product.Sizes, ps)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

type UpdateProductRequest struct {
	Name        string
	Description string
	Sizes       []SizeRequest
}

// UpdateProduct replaces the product's fields and its size list. Sizes are
// replaced wholesale; existing order lines keep their snapshotted prices and
// are unaffected.
func (s *Store) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) error {
	if err := validateProduct(req.Name, req.Sizes); err != nil {
		return err
	}

	return database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE products SET name = $2, description = $3
			WHERE id = $1 AND status = 'active'
		`, id, req.Name, req.Description)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.NotFoundf("product %d not found", id)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_sizes WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("clear product sizes: %w", err)
		}

		for _, size := range req.Sizes {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO product_sizes (product_id, label, price, stock_quantity)
				VALUES ($1, $2, $3, $4)
			`, id, size.Label, size.Price, size.StockQuantity)
			if err != nil {
				return fmt.Errorf("create product size: %w", err)
			}
		}

		return nil
	})
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET status = 'deleted', deleted_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFoundf("product %d not found", id)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product := &domain.Product{Status: domain.StatusActive}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, description, created_at
		FROM products
		WHERE id = $1 AND status = 'active'
	`, id).Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("product %d not found", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, label, price, stock_quantity
		FROM product_sizes
		WHERE product_id = $1
		ORDER BY price
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get product sizes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var size domain.ProductSize
		if err := rows.Scan(&size.ID, &size.ProductID, &size.Label, &size.Price, &size.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product size: %w", err)
		}
		product.Sizes = append(product.Sizes, size)
	}

	return product, rows.Err()
}

// ListProducts returns a page of active products, optionally restricted to a
// category. Sizes are loaded in a second batch query.
func (s *Store) ListProducts(ctx context.Context, categoryID int64, page, pageSize int) (*database.OffsetPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products
		WHERE status = 'active' AND ($1 = 0 OR category_id = $1)
	`, categoryID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, name, description, created_at
		FROM products
		WHERE status = 'active' AND ($1 = 0 OR category_id = $1)
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`, categoryID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	productMap := make(map[int64]*domain.Product)
	var productIDs []int64
	products := []*domain.Product{}

	for rows.Next() {
		product := &domain.Product{Status: domain.StatusActive}
		if err := rows.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		productMap[product.ID] = product
		productIDs = append(productIDs, product.ID)
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(productIDs) > 0 {
		sizeRows, err := s.db.QueryContext(ctx, `
			SELECT id, product_id, label, price, stock_quantity
			FROM product_sizes
			WHERE product_id = ANY($1)
			ORDER BY price
		`, pq.Array(productIDs))
		if err != nil {
			return nil, fmt.Errorf("list product sizes: %w", err)
		}
		defer func() { _ = sizeRows.Close() }()

		for sizeRows.Next() {
			var size domain.ProductSize
			if err := sizeRows.Scan(&size.ID, &size.ProductID, &size.Label, &size.Price, &size.StockQuantity); err != nil {
				return nil, fmt.Errorf("scan product size: %w", err)
			}
			productMap[size.ProductID].Sizes = append(productMap[size.ProductID].Sizes, size)
		}
		if err := sizeRows.Err(); err != nil {
			return nil, err
		}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &database.OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
