package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

type EntryRepository struct {
	store *Store
}

const selectEntries = `
SELECT e.id, e.user_id, e.customer_name, e.booking_date, e.total,
       e.created_at, e.updated_at, i.name, i.price, i.quantity
FROM entries e
LEFT JOIN entry_items i ON i.entry_id = e.id`

// ListByOwner returns the owner's entries in creation order.
func (r *EntryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	rows, err := r.store.getExecutor(ctx).QueryContext(ctx,
		selectEntries+` WHERE e.user_id = ? ORDER BY e.created_at, e.rowid, i.position`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

func (r *EntryRepository) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Entry, error) {
	rows, err := r.store.getExecutor(ctx).QueryContext(ctx,
		selectEntries+` WHERE e.id = ? AND e.user_id = ? ORDER BY i.position`, id.String(), ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("querying entry: %w", err)
	}
	if len(entries) == 0 {
		return nil, model.ErrNotFound
	}
	return &entries[0], nil
}

// Create inserts the entry and its items. ID and Total must already be set.
func (r *EntryRepository) Create(ctx context.Context, entry *model.Entry) error {
	now := time.Now().UTC()
	return r.store.RunAtomic(ctx, func(ctx context.Context) error {
		_, err := r.store.getExecutor(ctx).ExecContext(ctx, `
			INSERT INTO entries (id, user_id, customer_name, booking_date, total, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.ID.String(), entry.Owner.String(), entry.CustomerName,
			entry.BookingDate.Format(dateLayout), entry.Total.String(),
			formatTime(now), formatTime(now),
		)
		if err != nil {
			return fmt.Errorf("inserting entry: %w", err)
		}
		if err := r.insertItems(ctx, entry.ID, entry.Items); err != nil {
			return err
		}
		entry.CreatedAt, entry.UpdatedAt = now, now
		return nil
	})
}

// UpdateByIDAndOwner replaces customer, booking date, items and total of an
// entry the owner holds. Owner and CreatedAt never change.
func (r *EntryRepository) UpdateByIDAndOwner(ctx context.Context, entry *model.Entry) error {
	now := time.Now().UTC()
	return r.store.RunAtomic(ctx, func(ctx context.Context) error {
		exec := r.store.getExecutor(ctx)
		var createdAt string
		err := exec.QueryRowContext(ctx, `
			UPDATE entries
			SET customer_name = ?, booking_date = ?, total = ?, updated_at = ?
			WHERE id = ? AND user_id = ?
			RETURNING created_at`,
			entry.CustomerName, entry.BookingDate.Format(dateLayout), entry.Total.String(), formatTime(now),
			entry.ID.String(), entry.Owner.String(),
		).Scan(&createdAt)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("updating entry: %w", err)
		}

		if _, err := exec.ExecContext(ctx, "DELETE FROM entry_items WHERE entry_id = ?", entry.ID.String()); err != nil {
			return fmt.Errorf("clearing entry items: %w", err)
		}
		if err := r.insertItems(ctx, entry.ID, entry.Items); err != nil {
			return err
		}

		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("parsing created_at: %w", err)
		}
		entry.UpdatedAt = now
		return nil
	})
}

func (r *EntryRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.store.getExecutor(ctx).ExecContext(ctx,
		"DELETE FROM entries WHERE id = ? AND user_id = ?", id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *EntryRepository) insertItems(ctx context.Context, entryID uuid.UUID, items []model.Item) error {
	exec := r.store.getExecutor(ctx)
	for pos, item := range items {
		_, err := exec.ExecContext(ctx,
			"INSERT INTO entry_items (entry_id, position, name, price, quantity) VALUES (?, ?, ?, ?, ?)",
			entryID.String(), pos, item.Name, item.Price.String(), item.Quantity)
		if err != nil {
			return fmt.Errorf("inserting entry item: %w", err)
		}
	}
	return nil
}

// collectEntries folds joined entry/item rows into entries. Rows of one
// entry must be adjacent and ordered by item position.
func collectEntries(rows *sql.Rows) ([]model.Entry, error) {
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var (
			id, owner, customer, bookingDate string
			total, createdAt, updatedAt      string
			itemName, itemPrice              sql.NullString
			itemQuantity                     sql.NullInt64
		)
		if err := rows.Scan(&id, &owner, &customer, &bookingDate, &total,
			&createdAt, &updatedAt, &itemName, &itemPrice, &itemQuantity); err != nil {
			return nil, err
		}

		if n := len(entries); n == 0 || entries[n-1].ID.String() != id {
			e, err := decodeEntry(id, owner, customer, bookingDate, total, createdAt, updatedAt)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}

		if !itemName.Valid {
			continue
		}
		price, err := decimal.NewFromString(itemPrice.String)
		if err != nil {
			return nil, fmt.Errorf("entry %s item price: %w", id, err)
		}
		last := &entries[len(entries)-1]
		last.Items = append(last.Items, model.Item{Name: itemName.String, Price: price, Quantity: int(itemQuantity.Int64)})
	}
	return entries, rows.Err()
}

func decodeEntry(id, owner, customer, bookingDate, total, createdAt, updatedAt string) (model.Entry, error) {
	e := model.Entry{CustomerName: customer, Items: []model.Item{}}
	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return e, fmt.Errorf("parsing entry id: %w", err)
	}
	if e.Owner, err = uuid.Parse(owner); err != nil {
		return e, fmt.Errorf("entry %s owner: %w", id, err)
	}
	if e.BookingDate, err = time.Parse(dateLayout, bookingDate); err != nil {
		return e, fmt.Errorf("entry %s booking_date: %w", id, err)
	}
	if e.Total, err = decimal.NewFromString(total); err != nil {
		return e, fmt.Errorf("entry %s total: %w", id, err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return e, fmt.Errorf("entry %s created_at: %w", id, err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return e, fmt.Errorf("entry %s updated_at: %w", id, err)
	}
	return e, nil
}
