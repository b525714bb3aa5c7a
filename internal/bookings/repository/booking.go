package repository

import (
	"context"
	"fmt"
	"sync"

	bookingserrors "bookminton/internal/bookings/errors"
	"bookminton/pkg/model"
)

// Tx is the view of the ledger inside ExecuteTransaction. Inserts become visible to
// other callers only when the transaction function returns nil.
type Tx interface {
	FindBySlot(venueID, courtID string, date model.Date) []model.Booking
	Insert(booking model.Booking, transaction model.Transaction) error
}

type TransactionFunc func(ctx context.Context, tx Tx) error

type BookingRepository interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]model.Booking, error)
	FindBySlot(ctx context.Context, venueID, courtID string, date model.Date) ([]model.Booking, error)
	Snapshot(ctx context.Context) ([]model.Booking, error)
	Count(ctx context.Context) (int64, error)

	FindTransactions(ctx context.Context, limit int, offset int64) ([]model.Transaction, error)
	CountTransactions(ctx context.Context) (int64, error)

	Clear(ctx context.Context) error
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type slotKey struct {
	venueID string
	courtID string
	date    model.Date
}

type memoryBookingRepository struct {
	mu           sync.RWMutex
	bookings     []model.Booking
	byID         map[string]int
	bySlot       map[slotKey][]int
	transactions []model.Transaction
}

// NewMemoryBookingRepository returns an empty ledger living for the life of the process.
func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		byID:   make(map[string]int),
		bySlot: make(map[slotKey][]int),
	}
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrBookingNotFound
	}
	booking := r.bookings[i]
	return &booking, nil
}

func (r *memoryBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return page(r.bookings, limit, offset), nil
}

func (r *memoryBookingRepository) FindBySlot(ctx context.Context, venueID, courtID string, date model.Date) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findBySlot(slotKey{venueID: venueID, courtID: courtID, date: date}), nil
}

func (r *memoryBookingRepository) findBySlot(key slotKey) []model.Booking {
	indexes := r.bySlot[key]
	out := make([]model.Booking, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, r.bookings[i])
	}
	return out
}

func (r *memoryBookingRepository) Snapshot(ctx context.Context) ([]model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Booking(nil), r.bookings...), nil
}

func (r *memoryBookingRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.bookings)), nil
}

func (r *memoryBookingRepository) FindTransactions(ctx context.Context, limit int, offset int64) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return page(r.transactions, limit, offset), nil
}

func (r *memoryBookingRepository) CountTransactions(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.transactions)), nil
}

// Clear empties bookings and transactions together.
func (r *memoryBookingRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings = nil
	r.transactions = nil
	r.byID = make(map[string]int)
	r.bySlot = make(map[slotKey][]int)
	return nil
}

// ExecuteTransaction runs fn holding the write lock, so checks made through tx cannot
// be invalidated before its inserts commit.
func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &memoryTx{repo: r}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	for _, p := range tx.pending {
		r.insert(p.booking, p.transaction)
	}
	return nil
}

func (r *memoryBookingRepository) insert(booking model.Booking, transaction model.Transaction) {
	i := len(r.bookings)
	r.bookings = append(r.bookings, booking)
	r.byID[booking.ID] = i

	key := slotKey{venueID: booking.VenueID, courtID: booking.CourtID, date: booking.Date}
	r.bySlot[key] = append(r.bySlot[key], i)

	r.transactions = append(r.transactions, transaction)
}

type pendingInsert struct {
	booking     model.Booking
	transaction model.Transaction
}

type memoryTx struct {
	repo    *memoryBookingRepository
	pending []pendingInsert
}

func (tx *memoryTx) FindBySlot(venueID, courtID string, date model.Date) []model.Booking {
	key := slotKey{venueID: venueID, courtID: courtID, date: date}
	out := tx.repo.findBySlot(key)
	for _, p := range tx.pending {
		if p.booking.VenueID == venueID && p.booking.CourtID == courtID && p.booking.Date == date {
			out = append(out, p.booking)
		}
	}
	return out
}

func (tx *memoryTx) Insert(booking model.Booking, transaction model.Transaction) error {
	if booking.ID == "" {
		return fmt.Errorf("booking ID cannot be empty")
	}
	if transaction.BookingID != booking.ID {
		return fmt.Errorf("transaction %s does not reference booking %s", transaction.ID, booking.ID)
	}
	if _, exists := tx.repo.byID[booking.ID]; exists {
		return fmt.Errorf("booking %s already exists", booking.ID)
	}
	for _, p := range tx.pending {
		if p.booking.ID == booking.ID {
			return fmt.Errorf("booking %s already exists", booking.ID)
		}
	}

	tx.pending = append(tx.pending, pendingInsert{booking: booking, transaction: transaction})
	return nil
}

func page[T any](items []T, limit int, offset int64) []T {
	offset = max(0, offset)
	if offset >= int64(len(items)) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && int(offset)+limit < end {
		end = int(offset) + limit
	}
	return append([]T(nil), items[offset:end]...)
}
