package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/pkg/config"
)

func setupStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRevocationStore(client), mr
}

func TestRevocationStore_RevokeYConsulta(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "un token no revocado no debe figurar")

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists(keyPrefix+"jti-1"))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL(keyPrefix+"jti-1").Seconds(), 5)
}

func TestRevocationStore_LaEntradaCaducaConElToken(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(10*time.Minute)))
	mr.FastForward(11 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "tras expirar el token la revocación ya no ocupa espacio")
}

func TestRevocationStore_TokenYaExpiradoNoSeGuarda(t *testing.T) {
	store, mr := setupStore(t)

	require.NoError(t, store.Revoke(context.Background(), "jti-3", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(keyPrefix+"jti-3"))
}

func TestRevocationStore_RedisCaidoDevuelveError(t *testing.T) {
	store, mr := setupStore(t)
	mr.Close()

	_, err := store.IsRevoked(context.Background(), "jti-4")
	assert.Error(t, err, "sin Redis no se puede afirmar que el token sea válido")
}

func TestNewClient_DireccionInalcanzable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
