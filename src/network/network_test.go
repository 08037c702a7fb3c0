package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(retries int) *AsyncNetworkManager {
	cfg := &models.MConfig{}
	cfg.Network.RequestTimeout = 5
	cfg.Network.MaxRetries = retries
	cfg.Network.UserAgent = "finnie-test"
	return NewAsyncNetworkManager(cfg, logger.NewLoggerFromZap(zap.NewNop(), "Network"))
}

func TestGetSendsParamsAndUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "finnie-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	nm := newTestManager(0)
	body, err := nm.Get(context.Background(), srv.URL+"/v8/finance/chart/AAPL", map[string]string{"interval": "1d"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("fine"))
	}))
	defer srv.Close()

	body, err := newTestManager(2).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestManager(3).Get(context.Background(), srv.URL+"/missing", nil)
	assert.True(t, errors.Is(err, helpers.ErrNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"q":1}`, string(b))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer x", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	_, err := newTestManager(2).Post(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer x"}, []byte(`{"q":1}`))
	var status *helpers.HTTPStatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusUnauthorized, status.StatusCode)
}

func TestGetHonoursCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestManager(0).Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
