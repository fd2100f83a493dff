package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nodewatch/nodewatch/pkg/errors"
)

// PortRange is an inclusive-exclusive span of TCP ports, [Start, End).
type PortRange struct {
	Start int
	End   int
}

// DefaultMonitorRange is the well-known control-port range a monitor
// instance binds into, and the range scanned to find one.
var DefaultMonitorRange = PortRange{Start: 9545, End: 9644}

func rangeOrDefault(r []PortRange) PortRange {
	if len(r) > 0 {
		return r[0]
	}
	return DefaultMonitorRange
}

var scanClient = &http.Client{Timeout: 500 * time.Millisecond}

// ScanForMonitor probes every port in the range (defaulting to
// DefaultMonitorRange) with GET /status and returns the first port whose
// response is a 2xx with a body decodeable as a JSON array. It is used by
// client tooling to locate an already-running monitor on this host.
func ScanForMonitor(portRange ...PortRange) (int, error) {
	r := rangeOrDefault(portRange)

	for port := r.Start; port < r.End; port++ {
		url := fmt.Sprintf("http://127.0.0.1:%d/status", port)
		resp, err := scanClient.Get(url)
		if err != nil {
			continue
		}

		ok := resp.StatusCode >= 200 && resp.StatusCode < 300
		var body []json.RawMessage
		decErr := json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		if ok && decErr == nil {
			return port, nil
		}
	}

	return 0, errors.NewDiscoveryError(
		fmt.Sprintf("no monitor found in port range %d-%d", r.Start, r.End),
		nil,
		map[string]interface{}{"range_start": r.Start, "range_end": r.End},
	)
}

// GetFirstAvailablePortForMonitor returns the first port in the range
// (defaulting to DefaultMonitorRange) on which no TCP listener is
// currently bound, tested by binding and immediately releasing.
func GetFirstAvailablePortForMonitor(portRange ...PortRange) (int, error) {
	r := rangeOrDefault(portRange)

	for port := r.Start; port < r.End; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			continue
		}
		listener.Close()
		return port, nil
	}

	return 0, errors.NewDiscoveryError(
		fmt.Sprintf("no available port in range %d-%d", r.Start, r.End),
		nil,
		map[string]interface{}{"range_start": r.Start, "range_end": r.End},
	)
}

// IsPortAvailable reports whether a TCP listener can currently bind the
// given port on localhost.
func IsPortAvailable(port int) bool {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	listener.Close()
	return true
}
