package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// jsonRPCProbeBody is the fixed liveness probe body: a net_version call,
// chosen because every JSON-RPC node implements it and it has no
// side effects.
var jsonRPCProbeBody = []byte(`{"jsonrpc":"2.0","method":"net_version","params":[],"id":1}`)

// Prober issues JSON-RPC liveness probes against node addresses. It is a
// standalone component (not inlined into the scheduler) so the control
// server's on-demand /status/{address}?live=1 route can share the exact
// same success predicate as the scheduled probes.
type Prober struct {
	client *http.Client
}

// NewProber builds a Prober whose requests are bounded by timeout, which
// callers set to the heartbeat interval so a probe never outlives its
// own tick.
func NewProber(timeout time.Duration) *Prober {
	return &Prober{
		client: &http.Client{Timeout: timeout},
	}
}

// Probe sends one JSON-RPC POST to address and reports ok. Success is
// exactly "HTTP 2xx with a syntactically valid JSON body" — the
// JSON-RPC envelope's own result/error field is never inspected. Any
// transport error, non-2xx status, malformed body, or context
// cancellation counts as a failure.
func (p *Prober) Probe(ctx context.Context, address string) bool {
	url := fmt.Sprintf("http://%s/", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonRPCProbeBody))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}

	return true
}
