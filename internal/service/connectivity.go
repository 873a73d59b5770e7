package service

import (
	"context"
	"sync"
	"time"

	"github.com/easysholi/listsync/internal/adapter"
	"github.com/easysholi/listsync/internal/logger"
)

// Monitor is the process-wide connectivity signal. State changes are pushed
// via Set (by the prober or manually, e.g. a CLI --offline flag) and fanned
// out to subscribers. Transitions are coalesced: setting the current state
// again notifies nobody.
type Monitor struct {
	logger *logger.Logger

	mu          sync.Mutex
	online      bool
	subscribers map[int]func(online bool)
	nextID      int
}

func NewMonitor(online bool, log *logger.Logger) *Monitor {
	return &Monitor{
		logger:      log,
		online:      online,
		subscribers: make(map[int]func(online bool)),
	}
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.online
}

// Set records a new connectivity state and notifies subscribers on an
// actual transition. Callbacks run synchronously, in subscription order.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online

	notify := make([]func(bool), 0, len(m.subscribers))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.subscribers[id]; ok {
			notify = append(notify, fn)
		}
	}
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "Monitor.Set").
		Bool("online", online).
		Msg("connectivity changed")

	for _, fn := range notify {
		fn(online)
	}
}

// Subscribe registers a callback for connectivity transitions and returns a
// cancel func removing it.
func (m *Monitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Prober feeds the Monitor by periodically pinging the remote store.
type Prober struct {
	monitor  *Monitor
	remote   adapter.RemoteStore
	interval time.Duration
	logger   *logger.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewProber(monitor *Monitor, remote adapter.RemoteStore, interval time.Duration, log *logger.Logger) *Prober {
	return &Prober{
		monitor:  monitor,
		remote:   remote,
		interval: interval,
		logger:   log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start probes once immediately, then on every tick until Stop is called.
func (p *Prober) Start(ctx context.Context) {
	go func() {
		defer close(p.done)

		p.probe(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.probe(ctx)
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *Prober) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Prober) probe(ctx context.Context) {
	err := p.remote.Ping(ctx)
	if err != nil {
		p.logger.Debug().
			Str("func", "Prober.probe").
			Err(err).
			Msg("remote unreachable")
	}
	p.monitor.Set(err == nil)
}
