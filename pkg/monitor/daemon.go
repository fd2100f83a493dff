package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nodewatch/nodewatch/pkg/errors"
	"github.com/nodewatch/nodewatch/pkg/logger"
)

// Daemon owns the record set, the heartbeat scheduler, and the revival
// dispatcher. It exclusively owns its record set between Start and Stop.
// The control server that fronts it lives one layer up, in
// pkg/monitor/server, so that package can depend on both this package
// and pkg/monitor/http without creating an import cycle.
type Daemon struct {
	heartbeatInterval time.Duration
	failureTolerance  int

	config  *ConfigStore
	prober  *Prober
	reviver *Reviver
	log     *logger.Logger

	mu    sync.RWMutex
	nodes []*MonitoredNode

	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce sync.Once
}

// Option customizes a Daemon at construction time.
type Option func(*Daemon)

// WithLogger overrides the default logger.
func WithLogger(log *logger.Logger) Option {
	return func(d *Daemon) { d.log = log }
}

// NewDaemon validates its parameters and builds a Daemon bound to the
// given config store. Construction performs no IO; invalid parameters
// fail immediately with a ValidationError.
func NewDaemon(configPath string, heartbeatInterval time.Duration, failureTolerance int, opts ...Option) (*Daemon, error) {
	if err := validateParams(heartbeatInterval, failureTolerance); err != nil {
		return nil, err
	}

	d := &Daemon{
		heartbeatInterval: heartbeatInterval,
		failureTolerance:  failureTolerance,
		config:            NewConfigStore(configPath),
		prober:            NewProber(heartbeatInterval),
		log:               logger.NewDefault(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reviver = NewReviver(d.log)

	return d, nil
}

// Start loads the config file and starts the heartbeat scheduler. It
// returns once the scheduler goroutine is running. If the config fails
// to load, nothing is started and the failure is returned.
func (d *Daemon) Start(ctx context.Context) error {
	nodes, err := d.config.Load()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.nodes = nodes
	d.mu.Unlock()

	schedCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.runScheduler(schedCtx)

	d.log.Info("heartbeat scheduler started", "nodes", len(nodes), "interval", d.heartbeatInterval)
	return nil
}

// Stop is idempotent: the first call cancels the scheduler and waits for
// it to exit. Subsequent calls are no-ops that return nil immediately.
func (d *Daemon) Stop() error {
	d.stopOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		d.wg.Wait()
		d.log.Info("heartbeat scheduler stopped")
	})
	return nil
}

// Status returns an instantaneous, insertion-ordered snapshot of every
// node's public view.
func (d *Daemon) Status() []StatusView {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]StatusView, len(d.nodes))
	for i, n := range d.nodes {
		out[i] = n.view()
	}
	return out
}

// StatusOne returns the enriched detail view for a single address,
// optionally performing an on-demand live probe first. The live probe
// never mutates Failures/Alive — those remain owned by the scheduler.
func (d *Daemon) StatusOne(ctx context.Context, address string, live bool) (DetailView, error) {
	d.mu.RLock()
	var found *MonitoredNode
	for _, n := range d.nodes {
		if n.Address == address {
			found = n
			break
		}
	}
	var view DetailView
	if found != nil {
		view = found.detail()
	}
	d.mu.RUnlock()

	if found == nil {
		return DetailView{}, errors.NewNotFoundError(
			fmt.Sprintf("no monitored node with address %s", address),
			map[string]interface{}{"address": address},
		)
	}

	if live {
		ok := d.prober.Probe(ctx, address)
		view.LiveProbeOK = &ok
	}

	return view, nil
}

// Revivals returns a snapshot of the revival audit trail.
func (d *Daemon) Revivals() []RevivalAttempt {
	return d.reviver.Trail()
}

// AddNodes validates and appends a batch of node specs. Validation is
// all-or-nothing: if any entry is invalid, nothing is appended and
// nothing is added to the in-memory set. If a later append fails mid
// batch, everything appended so far remains durable and the error names
// the first-failed entry; already-added in-memory nodes stay in memory.
func (d *Daemon) AddNodes(specs []NodeSpec) ([]StatusView, error) {
	for _, spec := range specs {
		if err := validateNodeSpec(spec); err != nil {
			return nil, err
		}
	}

	added := make([]*MonitoredNode, 0, len(specs))
	for _, spec := range specs {
		node := &MonitoredNode{
			Address:    spec.Address,
			ReviveCmd:  spec.ReviveCmd,
			ReviveArgs: spec.ReviveArgs,
		}

		if err := d.config.Append(node); err != nil {
			d.mu.Lock()
			d.nodes = append(d.nodes, added...)
			d.mu.Unlock()

			return nil, errors.NewConfigWriteError(
				fmt.Sprintf("failed to durably add node %s", spec.Address),
				err,
				map[string]interface{}{"address": spec.Address},
			)
		}

		added = append(added, node)
	}

	d.mu.Lock()
	d.nodes = append(d.nodes, added...)
	d.mu.Unlock()

	views := make([]StatusView, len(added))
	for i, n := range added {
		views[i] = n.view()
	}
	return views, nil
}
