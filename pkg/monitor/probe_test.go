package monitor

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, string) {
	server := httptest.NewUnstartedServer(handler)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server.Listener = listener
	server.Start()
	t.Cleanup(server.Close)
	return server, listener.Addr().String()
}

func TestProbe_SucceedsOn2xxWithJSONBody(t *testing.T) {
	_, addr := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"1"}`))
	})

	p := NewProber(time.Second)
	ok := p.Probe(context.Background(), addr)
	assert.True(t, ok)
}

func TestProbe_FailsOnNon2xx(t *testing.T) {
	_, addr := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	p := NewProber(time.Second)
	ok := p.Probe(context.Background(), addr)
	assert.False(t, ok)
}

func TestProbe_FailsOnMalformedBody(t *testing.T) {
	_, addr := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	})

	p := NewProber(time.Second)
	ok := p.Probe(context.Background(), addr)
	assert.False(t, ok)
}

func TestProbe_FailsOnUnreachableAddress(t *testing.T) {
	p := NewProber(50 * time.Millisecond)
	ok := p.Probe(context.Background(), "127.0.0.1:1")
	assert.False(t, ok)
}

func TestProbe_FailsOnTimeout(t *testing.T) {
	_, addr := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	p := NewProber(20 * time.Millisecond)
	ok := p.Probe(context.Background(), addr)
	assert.False(t, ok)
}

func TestProbe_IgnoresJSONRPCErrorEnvelope(t *testing.T) {
	// The success predicate is "2xx + parseable JSON", not a JSON-RPC
	// error inspection: an envelope carrying an "error" field still
	// counts as ok as long as the transport-level response is 2xx.
	_, addr := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"not found"}}`))
	})

	p := NewProber(time.Second)
	ok := p.Probe(context.Background(), addr)
	assert.True(t, ok)
}
