package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// TicketStore encapsulates ticket persistence.
type TicketStore interface {
	Allocate(ctx context.Context, requester string, ticketType domain.TicketType) (int64, error)
	MarkClosed(ctx context.Context, id int64, actor string, closedAt time.Time) (bool, error)
	Load(ctx context.Context) (domain.StoreSnapshot, error)
	Get(ctx context.Context, id int64) (*domain.Ticket, error)
}

// DocumentStore keeps the counter and every ticket in one document that is
// rewritten in full on each change. mu serializes the read-modify-write of
// every operation; nothing is cached between calls, so the backend is the
// only source of truth.
type DocumentStore struct {
	mu      sync.Mutex
	backend persistence.DocumentBackend
	now     func() time.Time
}

// NewDocumentStore wraps a backend.
func NewDocumentStore(backend persistence.DocumentBackend) *DocumentStore {
	return &DocumentStore{backend: backend, now: time.Now}
}

// Open prepares the backing document. A missing or unparsable document is
// replaced with an empty one; backend I/O errors are returned.
func (s *DocumentStore) Open(ctx context.Context, logger *zap.Logger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.backend.Read(ctx)
	switch {
	case errors.Is(err, persistence.ErrDocumentNotFound):
		logger.Info("ticket store is empty; initializing")
	case err != nil:
		return apperrors.NewPersistenceError("open ticket store", err)
	default:
		_, decodeErr := decodeSnapshot(raw)
		if decodeErr == nil {
			return nil
		}
		logger.Warn("ticket store document unreadable; reinitializing", zap.Error(decodeErr))
	}
	if err := s.write(ctx, domain.EmptySnapshot()); err != nil {
		return apperrors.NewPersistenceError("initialize ticket store", err)
	}
	return nil
}

// Allocate issues the next ticket ID and records an open ticket for it. The
// ID is returned only after the document carrying it has been written.
func (s *DocumentStore) Allocate(ctx context.Context, requester string, ticketType domain.TicketType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read(ctx)
	if err != nil {
		return 0, apperrors.NewPersistenceError("allocate ticket", err)
	}

	id := snap.Counter + 1
	snap.Counter = id
	snap.Tickets = append(snap.Tickets, domain.Ticket{
		ID:        id,
		User:      requester,
		Type:      ticketType,
		CreatedAt: s.now().UTC(),
	})

	if err := s.write(ctx, snap); err != nil {
		return 0, apperrors.NewPersistenceError("allocate ticket", err)
	}
	return id, nil
}

// MarkClosed records the closing actor and time. Unknown and already closed
// tickets are left untouched and reported with false.
func (s *DocumentStore) MarkClosed(ctx context.Context, id int64, actor string, closedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read(ctx)
	if err != nil {
		return false, apperrors.NewPersistenceError("close ticket", err)
	}

	idx := -1
	for i := range snap.Tickets {
		if snap.Tickets[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || snap.Tickets[idx].ClosedAt != nil {
		return false, nil
	}

	at := closedAt.UTC()
	by := actor
	snap.Tickets[idx].ClosedAt = &at
	snap.Tickets[idx].ClosedBy = &by

	if err := s.write(ctx, snap); err != nil {
		return false, apperrors.NewPersistenceError("close ticket", err)
	}
	return true, nil
}

// Load returns the full current state.
func (s *DocumentStore) Load(ctx context.Context) (domain.StoreSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read(ctx)
	if err != nil {
		return domain.StoreSnapshot{}, apperrors.NewPersistenceError("load ticket store", err)
	}
	return snap, nil
}

// Get returns a single ticket by ID.
func (s *DocumentStore) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	ticket, ok := snap.Find(id)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return &ticket, nil
}

// Ping checks the backend.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *DocumentStore) read(ctx context.Context) (domain.StoreSnapshot, error) {
	raw, err := s.backend.Read(ctx)
	if errors.Is(err, persistence.ErrDocumentNotFound) {
		return domain.EmptySnapshot(), nil
	}
	if err != nil {
		return domain.StoreSnapshot{}, err
	}
	return decodeSnapshot(raw)
}

func (s *DocumentStore) write(ctx context.Context, snap domain.StoreSnapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ticket store: %w", err)
	}
	return s.backend.Write(ctx, raw)
}

func decodeSnapshot(raw []byte) (domain.StoreSnapshot, error) {
	var snap domain.StoreSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.StoreSnapshot{}, fmt.Errorf("decode ticket store: %w", err)
	}
	if snap.Tickets == nil {
		snap.Tickets = []domain.Ticket{}
	}
	return snap, nil
}
