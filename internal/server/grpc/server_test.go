package grpc

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/client"
	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/fieldmap"
	"github.com/dmitrijs2005/lifesync/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_BadAddress(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:99999", nopLogger{}, newMemSync(), "secret")

	err := s.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:0", nopLogger{}, newMemSync(), "secret")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func startBufServer(t *testing.T, ss SyncService) *bufconn.Listener {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	s := NewGRPCServer("", nopLogger{}, ss, "secret")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return lis
}

func dialBuf(t *testing.T, lis *bufconn.Listener, token string) *client.GRPCClient {
	t.Helper()

	c, err := client.NewGRPCClient("passthrough:///bufnet", token,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestEndToEnd_RoundTrip(t *testing.T) {
	ms := newMemSync()
	lis := startBufServer(t, ms)

	token, err := auth.GenerateToken("u1", []byte("secret"), time.Hour)
	require.NoError(t, err)
	c := dialBuf(t, lis, token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Ping(ctx))

	row := fieldmap.Row{
		"id":         "w1",
		"user_id":    "u1",
		"weight":     80.5,
		"date":       "2024-03-01",
		"created_at": "2024-03-01T08:00:00.000Z",
		"updated_at": "2024-03-01T08:00:00.000Z",
	}
	require.NoError(t, c.Upsert(ctx, "weight_entries", row))

	rows, err := c.Select(ctx, "weight_entries", "u1", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "w1", rows[0]["id"])
	assert.Equal(t, "2024-03-01", rows[0]["date"])

	deleted, err := c.Delete(ctx, "weight_entries", fieldmap.Row{
		"id":         "w1",
		"user_id":    "u1",
		"deleted_at": "2024-03-01T09:00:00.000Z",
		"updated_at": "2024-03-01T09:00:00.000Z",
	})
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(ctx, "weight_entries", fieldmap.Row{"id": "w9", "user_id": "u1"})
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "2024-03-01T09:00:00.000Z", ms.rows["weight_entries"]["w1"]["deleted_at"])
}

func TestEndToEnd_ErrorsReachClient(t *testing.T) {
	lis := startBufServer(t, newMemSync())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	anon := dialBuf(t, lis, "")
	_, err := anon.Select(ctx, "weight_entries", "u1", nil)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	token, err := auth.GenerateToken("u1", []byte("secret"), time.Hour)
	require.NoError(t, err)
	c := dialBuf(t, lis, token)

	_, err = c.Select(ctx, "weight_entries", "someone-else", nil)
	assert.ErrorIs(t, err, client.ErrRejected)
}

func TestEndToEnd_StorageOutageIsUnavailable(t *testing.T) {
	store := newMemSync()
	store.err = fmt.Errorf("%w: upsert foods: driver: bad connection", common.ErrorUnavailable)
	lis := startBufServer(t, store)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := auth.GenerateToken("u1", []byte("secret"), time.Hour)
	require.NoError(t, err)
	c := dialBuf(t, lis, token)

	err = c.Upsert(ctx, "foods", fieldmap.Row{"id": "f1", "user_id": "u1"})
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.NotErrorIs(t, err, client.ErrRejected)
}
