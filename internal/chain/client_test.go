package chain

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

// rpcServer answers every JSON-RPC request with result, echoing the id.
func rpcServer(t *testing.T, result string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPingSuccess(t *testing.T) {
	srv := rpcServer(t, `"0x10"`)

	latency, block, err := Ping(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), block)
	assert.Greater(t, latency, time.Duration(0))
}

func TestPingServerDown(t *testing.T) {
	srv := rpcServer(t, `"0x1"`)
	url := srv.URL
	srv.Close()

	_, _, err := Ping(context.Background(), url)
	assert.Error(t, err)
}

func TestSupportsSubscriptions(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"wss://sepolia.example", true},
		{"WS://localhost:8546", true},
		{"/tmp/geth.ipc", true},
		{"https://rpc.example", false},
		{"http://localhost:8545", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, SupportsSubscriptions(tt.url))
		})
	}
}
