package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

type EntryRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Entry, error)
	Create(ctx context.Context, entry *model.Entry) error
	UpdateByIDAndOwner(ctx context.Context, entry *model.Entry) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error
}

// EntryInput is the client-editable part of an entry.
type EntryInput struct {
	CustomerName string
	BookingDate  time.Time
	Items        []model.Item
}

type EntryService struct {
	repo   EntryRepository
	logger *slog.Logger
}

func NewEntryService(repo EntryRepository, logger *slog.Logger) *EntryService {
	return &EntryService{repo: repo, logger: logger.With("component", "entries")}
}

func (s *EntryService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *EntryService) Get(ctx context.Context, id, ownerID uuid.UUID) (*model.Entry, error) {
	return s.repo.GetByIDAndOwner(ctx, id, ownerID)
}

// Create stores a new entry for ownerID. The total is always derived from
// the items.
func (s *EntryService) Create(ctx context.Context, ownerID uuid.UUID, in EntryInput) (*model.Entry, error) {
	entry := &model.Entry{
		ID:    uuid.New(),
		Owner: ownerID,
	}
	apply(entry, in)

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "entry created", "entry_id", entry.ID, "user_id", ownerID, "items", len(entry.Items))
	return entry, nil
}

// Update replaces the entry's customer, booking date and items and
// recomputes its total. Entries of other owners are reported as
// model.ErrNotFound.
func (s *EntryService) Update(ctx context.Context, id, ownerID uuid.UUID, in EntryInput) (*model.Entry, error) {
	entry := &model.Entry{
		ID:    id,
		Owner: ownerID,
	}
	apply(entry, in)

	if err := s.repo.UpdateByIDAndOwner(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := s.repo.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "entry deleted", "entry_id", id, "user_id", ownerID)
	return nil
}

func apply(entry *model.Entry, in EntryInput) {
	items := make([]model.Item, len(in.Items))
	copy(items, in.Items)

	entry.CustomerName = in.CustomerName
	entry.BookingDate = in.BookingDate
	entry.Items = items
	entry.Total = model.ComputeTotal(items)
}
