package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zipcaster/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *UploadClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewUploadClient(&config.Config{UploadURL: srv.URL + "/", UploadAPIKey: "secret"})
}

func TestUploadClient_RecentBattleIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, recentBattlesPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("X-Ratelimit-Limit", "30")
		w.Header().Set("X-Ratelimit-Remaining", "29")
		w.Header().Set("X-Ratelimit-Reset", "12")
		io.WriteString(w, `{"battle_ids":["a","b"]}`)
	})

	ids, err := client.RecentBattleIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	info := client.GetRateLimitInfo()
	assert.Equal(t, 30, info.Limit)
	assert.Equal(t, 29, info.Remaining)
	assert.Equal(t, 12, info.Reset)
}

func TestUploadClient_UploadBattle(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantCreated bool
		wantErr     bool
	}{
		{name: "created", status: http.StatusOK, wantCreated: true},
		{name: "already present", status: http.StatusConflict},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, uploadBattlePath, r.URL.Path)
				assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"battle":{}}`, string(body))
				w.WriteHeader(tt.status)
			})

			created, err := client.UploadBattle(context.Background(), "key-1", []byte(`{"battle":{}}`))
			if tt.wantErr {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.status, statusErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
		})
	}
}

func TestUploadClient_WaitsForRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent while rate limited")
	})
	client.rateLimit.Remaining = 0
	client.rateLimit.Reset = 60
	client.rateLimit.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.RecentBattleIDs(ctx)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
