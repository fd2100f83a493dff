package monitor

import (
	"os/exec"
	"sync"
	"time"

	"github.com/nodewatch/nodewatch/pkg/logger"
)

// revivalTrailSize bounds the in-memory revival audit trail to the most
// recent N attempts.
const revivalTrailSize = 50

// RevivalAttempt is one entry of the revival audit trail: diagnostic
// only, never consulted by the failure state machine.
type RevivalAttempt struct {
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
	Succeeded bool      `json:"succeeded"`
	CommandLine string  `json:"commandLine"`
}

// Reviver dispatches revival commands fire-and-forget and keeps a
// bounded ring of recent attempts for operational visibility.
type Reviver struct {
	log *logger.Logger

	mu     sync.Mutex
	trail  []RevivalAttempt
	cursor int
}

// NewReviver builds a Reviver that logs through log.
func NewReviver(log *logger.Logger) *Reviver {
	return &Reviver{
		log:   log,
		trail: make([]RevivalAttempt, 0, revivalTrailSize),
	}
}

// Dispatch invokes node's ReviveCmd with ReviveArgs passed as exactly one
// argv element, executing ReviveCmd directly rather than through a
// shell. Dispatch never blocks the caller
// (typically the scheduler's apply phase) on the subprocess's
// completion; a failure to spawn is logged and recorded in the audit
// trail but never propagated, so the heartbeat scheduler is never
// blocked by a broken revival command.
func (r *Reviver) Dispatch(node *MonitoredNode) {
	cmd := exec.Command(node.ReviveCmd, node.ReviveArgs)
	commandLine := node.ReviveCmd + " " + node.ReviveArgs

	err := cmd.Start()
	succeeded := err == nil

	if err != nil {
		r.log.Error("revival command failed to spawn",
			"address", node.Address,
			"command", commandLine,
			"error", err,
		)
	} else {
		r.log.Info("revival command dispatched",
			"address", node.Address,
			"command", commandLine,
		)
		// Fire-and-forget: reap the child without blocking the scheduler.
		go func() { _ = cmd.Wait() }()
	}

	r.record(RevivalAttempt{
		Address:     node.Address,
		Timestamp:   time.Now(),
		Succeeded:   succeeded,
		CommandLine: commandLine,
	})
}

func (r *Reviver) record(attempt RevivalAttempt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.trail) < revivalTrailSize {
		r.trail = append(r.trail, attempt)
		return
	}
	r.trail[r.cursor] = attempt
	r.cursor = (r.cursor + 1) % revivalTrailSize
}

// Trail returns a snapshot of the revival audit trail, oldest first.
func (r *Reviver) Trail() []RevivalAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.trail) < revivalTrailSize {
		out := make([]RevivalAttempt, len(r.trail))
		copy(out, r.trail)
		return out
	}

	out := make([]RevivalAttempt, revivalTrailSize)
	for i := 0; i < revivalTrailSize; i++ {
		out[i] = r.trail[(r.cursor+i)%revivalTrailSize]
	}
	return out
}
