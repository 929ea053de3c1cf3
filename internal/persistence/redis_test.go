package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	srv := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: srv.Addr()}, zap.NewNop())
	t.Cleanup(r.Close)
	return srv, r
}

func TestRedisDocumentMissingKey(t *testing.T) {
	_, r := newTestRedis(t)
	doc := NewRedisDocument(r, "ticketbot:store")

	_, err := doc.Read(context.Background())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestRedisDocumentWriteReplaces(t *testing.T) {
	ctx := context.Background()
	srv, r := newTestRedis(t)
	doc := NewRedisDocument(r, "ticketbot:store")

	require.NoError(t, doc.Write(ctx, []byte(`{"counter":1}`)))
	require.NoError(t, doc.Write(ctx, []byte(`{"counter":2}`)))

	data, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"counter":2}`, string(data))

	raw, err := srv.Get("ticketbot:store")
	require.NoError(t, err)
	assert.Equal(t, `{"counter":2}`, raw)
	assert.Zero(t, srv.TTL("ticketbot:store"), "the document never expires")
	assert.NoError(t, doc.Ping(ctx))
}

func TestRedisDocumentUnreachable(t *testing.T) {
	ctx := context.Background()
	srv, r := newTestRedis(t)
	doc := NewRedisDocument(r, "ticketbot:store")
	srv.Close()

	_, err := doc.Read(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDocumentNotFound)
	assert.Error(t, doc.Write(ctx, []byte(`{}`)))
	assert.Error(t, doc.Ping(ctx))
}
