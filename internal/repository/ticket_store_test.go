package repository

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

func newFileStore(t *testing.T) (*DocumentStore, *persistence.FileDocument) {
	t.Helper()
	doc := persistence.NewFileDocument(filepath.Join(t.TempDir(), "tickets.json"))
	return NewDocumentStore(doc), doc
}

func TestLoadMissingDocumentIsEmpty(t *testing.T) {
	store, _ := newFileStore(t)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), snap)
}

func TestAllocateAndCloseScenario(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	id, err := store.Allocate(ctx, "alice", domain.TicketTypeGeneral)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = store.Allocate(ctx, "bob", domain.TicketTypeAssistance)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	closedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	changed, err := store.MarkClosed(ctx, 1, "staff1", closedAt)
	require.NoError(t, err)
	assert.True(t, changed)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Counter)
	require.Len(t, snap.Tickets, 2)

	first, second := snap.Tickets[0], snap.Tickets[1]
	assert.Equal(t, domain.TicketStatusClosed, first.Status())
	require.NotNil(t, first.ClosedAt)
	assert.True(t, first.ClosedAt.Equal(closedAt))
	assert.Equal(t, "staff1", *first.ClosedBy)
	assert.Equal(t, "alice", first.User)

	assert.Equal(t, domain.TicketStatusOpen, second.Status())
	assert.Nil(t, second.ClosedAt)
	assert.Nil(t, second.ClosedBy)
	assert.Equal(t, domain.TicketTypeAssistance, second.Type)
}

func TestMarkClosedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	_, err := store.Allocate(ctx, "alice", domain.TicketTypeGeneral)
	require.NoError(t, err)

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	changed, err := store.MarkClosed(ctx, 1, "staff1", first)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.MarkClosed(ctx, 1, "staff2", first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	ticket, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ticket.ClosedAt.Equal(first))
	assert.Equal(t, "staff1", *ticket.ClosedBy)
}

func TestMarkClosedUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	doc := persistence.NewMemoryDocument()
	store := NewDocumentStore(doc)

	changed, err := store.MarkClosed(ctx, 41, "staff1", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, doc.Writes())
}

func TestConcurrentAllocateIssuesContiguousIDs(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	_, err := store.Allocate(ctx, "seed", domain.TicketTypeGeneral)
	require.NoError(t, err)

	const workers = 32
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = store.Allocate(ctx, "user", domain.TicketTypeItemShop)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		assert.Equal(t, int64(i+2), id)
	}

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(workers+1), snap.Counter)
	assert.Len(t, snap.Tickets, workers+1)
}

func TestAllocateWriteFailureDoesNotIssueID(t *testing.T) {
	ctx := context.Background()
	doc := persistence.NewMemoryDocument()
	store := NewDocumentStore(doc)

	_, err := store.Allocate(ctx, "alice", domain.TicketTypeGeneral)
	require.NoError(t, err)

	doc.SetFailures(nil, assert.AnError)
	id, err := store.Allocate(ctx, "bob", domain.TicketTypeGeneral)
	assert.Zero(t, id)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePersistence))

	doc.SetFailures(nil, nil)
	id, err = store.Allocate(ctx, "carol", domain.TicketTypeGeneral)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id, "a failed allocation must not consume an ID")

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Tickets, 2)
	assert.Equal(t, "carol", snap.Tickets[1].User)
}

func TestReadFailureSurfacesPersistenceError(t *testing.T) {
	ctx := context.Background()
	doc := persistence.NewMemoryDocument()
	store := NewDocumentStore(doc)
	doc.SetFailures(assert.AnError, nil)

	_, err := store.Load(ctx)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePersistence))
	_, err = store.MarkClosed(ctx, 1, "staff", time.Now())
	assert.True(t, apperrors.HasCode(err, apperrors.CodePersistence))
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	doc := persistence.NewMemoryDocument()
	store := NewDocumentStore(doc)

	created := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	closed := created.Add(2 * time.Hour)
	staff := "staff1"
	want := domain.StoreSnapshot{
		Counter: 7,
		Tickets: []domain.Ticket{
			{ID: 6, User: "alice", Type: domain.TicketTypeGeneral, CreatedAt: created, ClosedAt: &closed, ClosedBy: &staff},
			{ID: 7, User: "bob", Type: domain.TicketTypeItemShop, CreatedAt: created},
		},
	}
	require.NoError(t, store.write(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpenInitializesMissingAndCorruptDocuments(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	doc := persistence.NewMemoryDocument()
	store := NewDocumentStore(doc)
	require.NoError(t, store.Open(ctx, logger))
	assert.Equal(t, 1, doc.Writes())

	doc.Put([]byte("{not json"))
	require.NoError(t, store.Open(ctx, logger))
	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.EmptySnapshot(), snap)

	doc.SetFailures(assert.AnError, nil)
	assert.Error(t, store.Open(ctx, logger))
}

func TestOpenKeepsValidDocument(t *testing.T) {
	ctx := context.Background()
	doc := persistence.NewMemoryDocument()
	doc.Put([]byte(`{"counter": 12}`))
	store := NewDocumentStore(doc)

	require.NoError(t, store.Open(ctx, zap.NewNop()))
	assert.Zero(t, doc.Writes())

	id, err := store.Allocate(ctx, "alice", domain.TicketTypeGeneral)
	require.NoError(t, err)
	assert.Equal(t, int64(13), id)
}

func TestCorruptDocumentAfterOpenIsAnError(t *testing.T) {
	ctx := context.Background()
	doc := persistence.NewMemoryDocument()
	store := NewDocumentStore(doc)
	doc.Put([]byte("garbage"))

	_, err := store.Allocate(ctx, "alice", domain.TicketTypeGeneral)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePersistence))
}

func TestGetUnknownTicket(t *testing.T) {
	store := NewDocumentStore(persistence.NewMemoryDocument())

	_, err := store.Get(context.Background(), 3)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
