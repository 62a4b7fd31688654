package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

type EntryRepository struct {
	pgStore
}

func NewEntryRepository(db *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pgStore{db: db}}
}

// Decimals cross the wire as text so no precision is lost to float conversion.
const selectEntries = `
SELECT e.id, e.user_id, e.customer_name, e.booking_date, e.total::text,
       e.created_at, e.updated_at, i.name, i.price::text, i.quantity
FROM entries e
LEFT JOIN entry_items i ON i.entry_id = e.id`

// ListByOwner returns the owner's entries in creation order.
func (r *EntryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	rows, err := r.getExecutor(ctx).Query(ctx,
		selectEntries+` WHERE e.user_id = $1 ORDER BY e.created_at, e.id, i.position`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

func (r *EntryRepository) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Entry, error) {
	rows, err := r.getExecutor(ctx).Query(ctx,
		selectEntries+` WHERE e.id = $1 AND e.user_id = $2 ORDER BY i.position`, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, model.ErrNotFound
	}
	return &entries[0], nil
}

// Create inserts the entry and its items. ID and Total must already be set;
// CreatedAt and UpdatedAt are filled in from the database.
func (r *EntryRepository) Create(ctx context.Context, entry *model.Entry) error {
	return r.RunAtomic(ctx, func(ctx context.Context) error {
		err := r.getExecutor(ctx).QueryRow(ctx, `
			INSERT INTO entries (id, user_id, customer_name, booking_date, total)
			VALUES ($1, $2, $3, $4, $5::text::numeric)
			RETURNING created_at, updated_at`,
			entry.ID, entry.Owner, entry.CustomerName, entry.BookingDate, entry.Total.String(),
		).Scan(&entry.CreatedAt, &entry.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}
		return r.insertItems(ctx, entry.ID, entry.Items)
	})
}

// UpdateByIDAndOwner replaces customer, booking date, items and total of an
// entry the owner holds. Owner and CreatedAt never change.
func (r *EntryRepository) UpdateByIDAndOwner(ctx context.Context, entry *model.Entry) error {
	return r.RunAtomic(ctx, func(ctx context.Context) error {
		exec := r.getExecutor(ctx)
		err := exec.QueryRow(ctx, `
			UPDATE entries
			SET customer_name = $3, booking_date = $4, total = $5::text::numeric, updated_at = now()
			WHERE id = $1 AND user_id = $2
			RETURNING created_at, updated_at`,
			entry.ID, entry.Owner, entry.CustomerName, entry.BookingDate, entry.Total.String(),
		).Scan(&entry.CreatedAt, &entry.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrNotFound
			}
			return fmt.Errorf("failed to update entry: %w", err)
		}

		if _, err := exec.Exec(ctx, "DELETE FROM entry_items WHERE entry_id = $1", entry.ID); err != nil {
			return fmt.Errorf("failed to clear entry items: %w", err)
		}
		return r.insertItems(ctx, entry.ID, entry.Items)
	})
}

func (r *EntryRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.getExecutor(ctx).Exec(ctx, "DELETE FROM entries WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *EntryRepository) insertItems(ctx context.Context, entryID uuid.UUID, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for pos, item := range items {
		batch.Queue(`
			INSERT INTO entry_items (entry_id, position, name, price, quantity)
			VALUES ($1, $2, $3, $4::text::numeric, $5)`,
			entryID, pos, item.Name, item.Price.String(), item.Quantity)
	}

	if err := r.getExecutor(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert entry items: %w", err)
	}
	return nil
}

// collectEntries folds joined entry/item rows into entries. Rows of one
// entry must be adjacent and ordered by item position.
func collectEntries(rows pgx.Rows) ([]model.Entry, error) {
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var (
			e                   model.Entry
			bookingDate         time.Time
			total               string
			itemName, itemPrice *string
			itemQuantity        *int
		)
		if err := rows.Scan(&e.ID, &e.Owner, &e.CustomerName, &bookingDate, &total,
			&e.CreatedAt, &e.UpdatedAt, &itemName, &itemPrice, &itemQuantity); err != nil {
			return nil, err
		}

		if n := len(entries); n == 0 || entries[n-1].ID != e.ID {
			var err error
			if e.Total, err = decimal.NewFromString(total); err != nil {
				return nil, fmt.Errorf("entry %s total: %w", e.ID, err)
			}
			e.BookingDate = time.Date(bookingDate.Year(), bookingDate.Month(), bookingDate.Day(), 0, 0, 0, 0, time.UTC)
			e.Items = []model.Item{}
			entries = append(entries, e)
		}

		if itemName == nil {
			continue
		}
		price, err := decimal.NewFromString(*itemPrice)
		if err != nil {
			return nil, fmt.Errorf("entry %s item price: %w", e.ID, err)
		}
		last := &entries[len(entries)-1]
		last.Items = append(last.Items, model.Item{Name: *itemName, Price: price, Quantity: *itemQuantity})
	}
	return entries, rows.Err()
}
