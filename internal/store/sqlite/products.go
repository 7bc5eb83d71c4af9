package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	"github.com/nutritrackapp/nutritrack-server/internal/store"
)

// productColumns is the ordered list of columns selected in product queries.
// Must match the scan order in scanProduct.
const productColumns = `code, name, brand, image_url,
	energy_kcal, proteins, carbohydrates, fat, fiber, sugars, sodium, salt,
	serving_size, serving_quantity, categories, labels, nutriscore_grade, nova_group,
	fetched_at`

// scanProduct scans a sql.Row (or sql.Rows via its Scan method) into a domain.Product.
func scanProduct(scanner interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var p domain.Product
	var fetchedAt string

	err := scanner.Scan(
		&p.Code,
		&p.Name,
		&p.Brand,
		&p.ImageURL,
		&p.Nutriments.EnergyKcal,
		&p.Nutriments.Proteins,
		&p.Nutriments.Carbohydrates,
		&p.Nutriments.Fat,
		&p.Nutriments.Fiber,
		&p.Nutriments.Sugars,
		&p.Nutriments.Sodium,
		&p.Nutriments.Salt,
		&p.ServingSize,
		&p.ServingQuantity,
		&p.Categories,
		&p.Labels,
		&p.NutriscoreGrade,
		&p.NovaGroup,
		&fetchedAt,
	)
	if err != nil {
		return nil, err
	}

	p.FetchedAt, err = parseTime(fetchedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetCachedProduct retrieves a cached product by barcode.
// Returns store.ErrNotFound if the barcode has never been cached.
func (s *Store) GetCachedProduct(ctx context.Context, code string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products_cache WHERE code = ?`, code)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertProducts writes the given products into the cache, replacing any
// existing rows for the same barcode. Products without a code are skipped.
// All writes happen in a single transaction.
func (s *Store) UpsertProducts(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products_cache (
			code, name, brand, image_url,
			energy_kcal, proteins, carbohydrates, fat, fiber, sugars, sodium, salt,
			serving_size, serving_quantity, categories, labels, nutriscore_grade, nova_group,
			fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			image_url = excluded.image_url,
			energy_kcal = excluded.energy_kcal,
			proteins = excluded.proteins,
			carbohydrates = excluded.carbohydrates,
			fat = excluded.fat,
			fiber = excluded.fiber,
			sugars = excluded.sugars,
			sodium = excluded.sodium,
			salt = excluded.salt,
			serving_size = excluded.serving_size,
			serving_quantity = excluded.serving_quantity,
			categories = excluded.categories,
			labels = excluded.labels,
			nutriscore_grade = excluded.nutriscore_grade,
			nova_group = excluded.nova_group,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if p == nil || p.Code == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			p.Code,
			p.Name,
			p.Brand,
			p.ImageURL,
			p.Nutriments.EnergyKcal,
			p.Nutriments.Proteins,
			p.Nutriments.Carbohydrates,
			p.Nutriments.Fat,
			p.Nutriments.Fiber,
			p.Nutriments.Sugars,
			p.Nutriments.Sodium,
			p.Nutriments.Salt,
			p.ServingSize,
			p.ServingQuantity,
			p.Categories,
			p.Labels,
			p.NutriscoreGrade,
			p.NovaGroup,
			formatTime(p.FetchedAt),
		)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Code, err)
		}
	}

	return tx.Commit()
}

// SearchCachedProducts finds cached products whose name or brand contains the
// query, case-insensitively, ordered by name. A limit <= 0 defaults to 50.
func (s *Store) SearchCachedProducts(ctx context.Context, query string, limit int) ([]*domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, store.ErrInvalidInput.WithMessage("search query cannot be empty")
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products_cache
		WHERE name LIKE ? ESCAPE '\' COLLATE NOCASE
		   OR brand LIKE ? ESCAPE '\' COLLATE NOCASE
		ORDER BY name COLLATE NOCASE
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountCachedProducts returns the number of products in the cache.
func (s *Store) CountCachedProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products_cache`).Scan(&count)
	return count, err
}

// DeleteCachedProductsBefore removes cache rows fetched before the cutoff
// and returns how many were deleted.
func (s *Store) DeleteCachedProductsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM products_cache WHERE fetched_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// escapeLike escapes LIKE wildcard characters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
