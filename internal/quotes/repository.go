package quotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	timestampLayout = "2006-01-02 15:04:05"
)

// ErrNotFound is returned when no quote or item matches.
var ErrNotFound = errors.New("quote not found")

const itemColumns = `
	id, quote_number,
	COALESCE(customer_name, ''), COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''),
	COALESCE(location, ''), product, valance, valance_color, bottom_rail, control, fabric,
	fabric_price, motor_price, width_inch, height_inch, width_m, height_m,
	COALESCE(installation_type, ''), COALESCE(rolling, ''),
	quantity, unit_price, total_price,
	strftime('%Y-%m-%dT%H:%M:%SZ', created_at)`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores all items under one freshly allocated quote number and returns it along with the item ids.
// The first insert computes the number inside the statement, so numbering and writes share one write lock.
func (r *Repository) Insert(ctx context.Context, items []Item, createdAt time.Time) (int64, []int64, error) {
	if len(items) == 0 {
		return 0, nil, fmt.Errorf("insert quote: no items")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("begin quote transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quote_items (
			quote_number, customer_name, phone, email, address, location,
			product, valance, valance_color, bottom_rail, control, fabric,
			fabric_price, motor_price, width_inch, height_inch, width_m, height_m,
			installation_type, rolling, quantity, unit_price, total_price, created_at
		) VALUES (
			COALESCE(?, MAX(COALESCE((SELECT MAX(quote_number) FROM quote_items), 0) + 1, ?)),
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
		RETURNING id, quote_number
	`)
	if err != nil {
		_ = tx.Rollback()
		return 0, nil, fmt.Errorf("prepare quote insert: %w", err)
	}
	defer stmt.Close()

	stamp := createdAt.UTC().Format(timestampLayout)
	var number sql.NullInt64
	ids := make([]int64, 0, len(items))
	for i, it := range items {
		var id int64
		err := stmt.QueryRowContext(ctx,
			number, FirstQuoteNumber,
			nullString(it.Name), nullString(it.Phone), nullString(it.Email), nullString(it.Address), nullString(it.Location),
			it.Product, it.Valance, it.ValanceColor, it.BottomRail, it.Control, it.Fabric,
			it.FabricPrice, it.MotorPrice, it.WidthInch, it.HeightInch, it.WidthM, it.HeightM,
			nullString(it.InstallationType), nullString(it.Rolling),
			it.Quantity, it.UnitPrice, it.TotalPrice, stamp,
		).Scan(&id, &number)
		if err != nil {
			_ = tx.Rollback()
			return 0, nil, fmt.Errorf("insert quote item %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit quote: %w", err)
	}
	return number.Int64, ids, nil
}

// ListPage returns quote summaries, newest quote number first.
func (r *Repository) ListPage(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	limit = normalizeLimit(limit)
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT quote_number) FROM quote_items`).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count quotes: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			quote_number,
			COALESCE(MAX(customer_name), ''),
			COALESCE(MAX(phone), ''),
			COALESCE(MAX(email), ''),
			COALESCE(MAX(address), ''),
			COUNT(*),
			SUM(total_price),
			GROUP_CONCAT(product || ' (' || quantity || ')', ', '),
			strftime('%Y-%m-%dT%H:%M:%SZ', MIN(created_at))
		FROM quote_items
		GROUP BY quote_number
		ORDER BY quote_number DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(
			&s.QuoteNumber, &s.CustomerName, &s.Phone, &s.Email, &s.Address,
			&s.ItemCount, &s.TotalAmount, &s.ProductsSummary, &s.CreatedAt,
		); err != nil {
			return Page{}, fmt.Errorf("scan quote summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate quotes: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return Page{
		Quotes:      summaries,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasMore:     page < totalPages,
	}, nil
}

// Items returns every item of a quote in insertion order. ErrNotFound when the quote has none.
func (r *Repository) Items(ctx context.Context, quoteNumber int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM quote_items WHERE quote_number = ? ORDER BY id`, quoteNumber)
	if err != nil {
		return nil, fmt.Errorf("query quote items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

// Item returns one line item by id.
func (r *Repository) Item(ctx context.Context, id int64) (Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM quote_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	return item, err
}

// Delete removes every item of a quote and reports whether anything was deleted.
func (r *Repository) Delete(ctx context.Context, quoteNumber int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quote_items WHERE quote_number = ?`, quoteNumber)
	if err != nil {
		return false, fmt.Errorf("delete quote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete quote: %w", err)
	}
	return affected > 0, nil
}

// Ping runs a trivial query against the quotes table to keep the connection warm.
func (r *Repository) Ping(ctx context.Context) error {
	var id sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM quote_items LIMIT 1`).Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ping quotes: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (Item, error) {
	var it Item
	var fabricPrice, motorPrice, widthInch, heightInch, widthM, heightM sql.NullFloat64
	err := s.Scan(
		&it.ID, &it.QuoteNumber,
		&it.Name, &it.Phone, &it.Email, &it.Address,
		&it.Location, &it.Product, &it.Valance, &it.ValanceColor, &it.BottomRail, &it.Control, &it.Fabric,
		&fabricPrice, &motorPrice, &widthInch, &heightInch, &widthM, &heightM,
		&it.InstallationType, &it.Rolling,
		&it.Quantity, &it.UnitPrice, &it.TotalPrice,
		&it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("scan quote item: %w", err)
	}
	it.FabricPrice = floatPtr(fabricPrice)
	it.MotorPrice = floatPtr(motorPrice)
	it.WidthInch = floatPtr(widthInch)
	it.HeightInch = floatPtr(heightInch)
	it.WidthM = floatPtr(widthM)
	it.HeightM = floatPtr(heightM)
	return it, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// positiveOrNil stores "not given" numeric fields as NULL.
func positiveOrNil(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
