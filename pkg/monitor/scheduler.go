package monitor

import (
	"context"
	"sync"
	"time"
)

// time.Ticker buffers at most one pending tick and drops ticks that fire
// while the channel is unread, which is exactly the non-overlapping,
// skip-don't-queue semantics the heartbeat scheduler needs: tick()
// below runs synchronously within the select loop, so the next tick is
// never read until the previous one has fully settled.

// probeOutcome is one node's result from a single tick, collected by the
// fanout barrier before the apply phase runs.
type probeOutcome struct {
	node    *MonitoredNode
	success bool
}

// runScheduler drives the heartbeat: one ticker goroutine that fires
// every d.heartbeatInterval, fans out a concurrent probe per node, waits
// for the fanout to settle, and applies outcomes under d.mu. Ticks never
// overlap — if the previous tick's apply phase is still running when the
// next would fire, that tick is skipped rather than queued.
func (d *Daemon) runScheduler(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick fans out one concurrent probe per currently-known node, collects
// outcomes behind a barrier, and applies them atomically.
func (d *Daemon) tick(ctx context.Context) {
	d.mu.RLock()
	nodes := make([]*MonitoredNode, len(d.nodes))
	copy(nodes, d.nodes)
	d.mu.RUnlock()

	if len(nodes) == 0 {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, d.heartbeatInterval)
	defer cancel()

	outcomes := make([]probeOutcome, len(nodes))
	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node *MonitoredNode) {
			defer wg.Done()
			ok := d.prober.Probe(probeCtx, node.Address)
			outcomes[i] = probeOutcome{node: node, success: ok}
		}(i, node)
	}
	wg.Wait()

	d.applyOutcomes(outcomes)
}

// applyOutcomes mutates every node's state under d.mu and dispatches
// revival for any node that just crossed the failure-tolerance
// threshold. Probe IO has already completed by the time this runs; the
// lock is held only for the bookkeeping.
func (d *Daemon) applyOutcomes(outcomes []probeOutcome) {
	now := time.Now()

	var toRevive []*MonitoredNode

	d.mu.Lock()
	for _, o := range outcomes {
		if o.success {
			o.node.applySuccess(now)
			continue
		}
		if o.node.applyFailure(now, d.failureTolerance) {
			o.node.Revived = true
			toRevive = append(toRevive, o.node)
		}
	}
	d.mu.Unlock()

	for _, node := range toRevive {
		d.reviver.Dispatch(node)
	}
}
