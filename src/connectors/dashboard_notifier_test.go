package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardNotifier_Posts(t *testing.T) {
	var got DashboardEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDashboardNotifier(Config{DashboardWebhookURL: srv.URL, DashboardTimeout: time.Second})
	require.True(t, n.Enabled())
	require.NoError(t, n.Notify(context.Background(), "execution", map[string]string{"symbol": "BTCUSDT"}))

	assert.Equal(t, "execution", got.Type)
	assert.Equal(t, map[string]interface{}{"symbol": "BTCUSDT"}, got.Data)
}

func TestDashboardNotifier_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewDashboardNotifier(Config{DashboardWebhookURL: srv.URL})
	assert.Error(t, n.Notify(context.Background(), "execution", nil))
}

func TestDashboardNotifier_DisabledIsNoop(t *testing.T) {
	n := NewDashboardNotifier(Config{})
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), "execution", nil))

	var nilNotifier *DashboardNotifier
	assert.NoError(t, nilNotifier.Notify(context.Background(), "execution", nil))
}
