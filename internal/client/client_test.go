package client_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stocktr-api/internal/client"
	"github.com/stocktr-api/internal/models"
	"github.com/stocktr-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, upstream http.Handler) *httptest.Server {
	t.Helper()
	app := testutil.NewApp(t, upstream, nil)
	srv := httptest.NewServer(app.Engine)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_AuthFlow(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()
	c := client.New(srv.URL, nil)

	status, err := c.IsAuth(ctx)
	require.NoError(t, err)
	assert.False(t, status.AUTH)

	result, err := c.Signup(ctx, "alice", "Alice", "alice@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, result.AUTH)
	assert.Equal(t, "alice", result.User.Username)

	status, err = c.IsAuth(ctx)
	require.NoError(t, err)
	assert.True(t, status.AUTH)
	require.NotNil(t, status.UserData)
	assert.Equal(t, "alice@example.com", status.UserData.Email)

	require.NoError(t, c.UpdatePassword(ctx, "changed"))
	err = c.UpdatePassword(ctx, "changed")
	assert.True(t, client.IsStatus(err, http.StatusBadRequest))

	_, err = c.Login(ctx, "alice@example.com", "secret")
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	_, err = c.Login(ctx, "alice@example.com", "changed")
	require.NoError(t, err)
}

func TestClient_SignupConflictCarriesField(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()

	_, err := client.New(srv.URL, nil).Signup(ctx, "alice", "Alice", "alice@example.com", "secret")
	require.NoError(t, err)

	_, err = client.New(srv.URL, nil).Signup(ctx, "bob", "Bob", "alice@example.com", "secret")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "email", apiErr.Field)
}

func TestClient_RequiresToken(t *testing.T) {
	srv := newServer(t, nil)
	c := client.New(srv.URL, nil)

	_, err := c.Watchlist(context.Background())
	assert.ErrorIs(t, err, client.ErrNoToken)
}

func TestClient_WatchlistAndIcon(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()
	c := client.New(srv.URL, nil)
	_, err := c.Signup(ctx, "alice", "Alice", "alice@example.com", "secret")
	require.NoError(t, err)

	entries, err := c.UpdateWatchlist(ctx, []models.WatchlistItem{
		{Symbol: "AAPL", CompanyName: "Apple", Price: 1, Website: "https://apple.com"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, c.RemoveFromWatchlist(ctx, "AAPL"))
	err = c.RemoveFromWatchlist(ctx, "AAPL")
	assert.True(t, client.IsStatus(err, http.StatusNotFound))

	_, err = c.ProfileIcon(ctx)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	info, err := c.UpdateProfileIcon(ctx, "me.png", bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MimeType)

	icon, err := c.ProfileIcon(ctx)
	require.NoError(t, err)
	assert.Contains(t, icon, "data:image/png;base64,")
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store := client.NewFileTokenStore(path)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	token, err = client.NewFileTokenStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

type countingTransport struct {
	calls atomic.Int32
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return http.DefaultTransport.RoundTrip(req)
}

func TestClient_WithHTTPClient(t *testing.T) {
	srv := newServer(t, nil)
	transport := &countingTransport{}
	hc := &http.Client{Transport: transport, Timeout: time.Minute}

	c := client.New(srv.URL, nil, client.WithHTTPClient(hc), client.WithTimeout(5*time.Second))
	quotes, err := c.Stocks(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 3)

	assert.EqualValues(t, 1, transport.calls.Load())
	assert.Equal(t, time.Minute, hc.Timeout)
}

func TestClient_WithTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := client.New(srv.URL, nil, client.WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := c.Stocks(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
