package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
	"github.com/nutritrackapp/nutritrack-server/internal/store"
)

// entryItemColumns is the ordered list of columns selected in item queries.
// Must match the scan order in scanEntryItem.
const entryItemColumns = `id, entry_id, product_code, label, brand, image_url,
	serving_grams, quantity, kcal, protein_g, carb_g, fat_g, fiber_g, sugar_g, sodium_mg,
	meal_type, created_at`

// scanEntryItem scans a sql.Row (or sql.Rows via its Scan method) into a domain.EntryItem.
func scanEntryItem(scanner interface{ Scan(dest ...any) error }) (*domain.EntryItem, error) {
	var i domain.EntryItem
	var createdAt string

	err := scanner.Scan(
		&i.ID,
		&i.EntryID,
		&i.ProductCode,
		&i.Label,
		&i.Brand,
		&i.ImageURL,
		&i.ServingGrams,
		&i.Quantity,
		&i.Kcal,
		&i.ProteinG,
		&i.CarbG,
		&i.FatG,
		&i.FiberG,
		&i.SugarG,
		&i.SodiumMg,
		&i.MealType,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	i.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &i, nil
}

// GetEntry retrieves a log entry by ID.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, created_at FROM entries WHERE id = ?`, id)

	var e domain.Entry
	var createdAt string
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEntryByDate retrieves a user's log entry for a calendar date.
// Returns store.ErrNotFound when no entry exists for that date yet.
func (s *Store) GetEntryByDate(ctx context.Context, userID, date string) (*domain.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, created_at FROM entries
		WHERE user_id = ? AND date = ?`, userID, date)

	var e domain.Entry
	var createdAt string
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEntry inserts a new log entry.
// Returns store.ErrAlreadyExists if the user already has an entry for the date.
func (s *Store) CreateEntry(ctx context.Context, entry *domain.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, user_id, date, created_at)
		VALUES (?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.Date,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ListEntryItems returns all items of an entry, newest first.
func (s *Store) ListEntryItems(ctx context.Context, entryID string) ([]*domain.EntryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryItemColumns+` FROM entry_items
		WHERE entry_id = ?
		ORDER BY created_at DESC, id DESC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.EntryItem
	for rows.Next() {
		item, err := scanEntryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetEntryItem retrieves a single logged item by ID.
// Returns store.ErrNotFound if the item does not exist.
func (s *Store) GetEntryItem(ctx context.Context, id string) (*domain.EntryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryItemColumns+` FROM entry_items WHERE id = ?`, id)

	item, err := scanEntryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateEntryItem inserts a new logged item.
func (s *Store) CreateEntryItem(ctx context.Context, item *domain.EntryItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entry_items (
			id, entry_id, product_code, label, brand, image_url,
			serving_grams, quantity, kcal, protein_g, carb_g, fat_g, fiber_g, sugar_g, sodium_mg,
			meal_type, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.EntryID,
		item.ProductCode,
		item.Label,
		item.Brand,
		item.ImageURL,
		item.ServingGrams,
		item.Quantity,
		item.Kcal,
		item.ProteinG,
		item.CarbG,
		item.FatG,
		item.FiberG,
		item.SugarG,
		item.SodiumMg,
		item.MealType,
		formatTime(item.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateEntryItem rewrites the mutable fields of a logged item.
// Returns store.ErrNotFound if the item does not exist.
func (s *Store) UpdateEntryItem(ctx context.Context, item *domain.EntryItem) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE entry_items SET
			serving_grams = ?, quantity = ?,
			kcal = ?, protein_g = ?, carb_g = ?, fat_g = ?, fiber_g = ?, sugar_g = ?, sodium_mg = ?,
			meal_type = ?
		WHERE id = ?`,
		item.ServingGrams,
		item.Quantity,
		item.Kcal,
		item.ProteinG,
		item.CarbG,
		item.FatG,
		item.FiberG,
		item.SugarG,
		item.SodiumMg,
		item.MealType,
		item.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteEntryItem removes a logged item.
// Returns store.ErrNotFound if the item does not exist.
func (s *Store) DeleteEntryItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entry_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
