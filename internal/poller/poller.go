package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"launchScope/internal/metrics"
	"launchScope/internal/model"
)

const (
	defaultPollInterval  = 3 * time.Second
	defaultEnrichTimeout = 2 * time.Minute
)

// Handler receives classified events. Handlers run on their own goroutine, in event order.
type Handler func(model.ClassifiedEvent)

// CreationHook enriches a token creation after it has been delivered to subscribers.
type CreationHook func(ctx context.Context, ev model.ClassifiedEvent)

// Config holds poll loop timing.
type Config struct {
	PollInterval  time.Duration
	BlockDelay    time.Duration
	EnrichTimeout time.Duration
}

// Status is a snapshot of the poller state.
type Status struct {
	Running         bool   `json:"running"`
	Cursor          uint64 `json:"cursor"`
	SubscriberCount int    `json:"subscriberCount"`
}

// subscription queues events for one handler. The queue is unbounded so a slow handler
// delays only itself and never loses events.
type subscription struct {
	id      uint64
	handler Handler
	wake    chan struct{}

	mu     sync.Mutex
	queue  []model.ClassifiedEvent
	closed bool
}

func newSubscription(id uint64, h Handler) *subscription {
	return &subscription{id: id, handler: h, wake: make(chan struct{}, 1)}
}

func (s *subscription) push(ev model.ClassifiedEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()
	s.notify()
}

// close lets the queued events drain, then ends the subscriber goroutine.
func (s *subscription) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.notify()
}

func (s *subscription) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// next blocks until events are queued. It returns false once closed and drained.
func (s *subscription) next() ([]model.ClassifiedEvent, bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			batch := s.queue
			s.queue = nil
			s.mu.Unlock()
			return batch, true
		}
		if s.closed {
			s.mu.Unlock()
			return nil, false
		}
		s.mu.Unlock()
		<-s.wake
	}
}

// Poller follows the chain head and fans classified events out to subscribers.
// Multiple pollers are independent; each owns its cursor and subscriber list.
type Poller struct {
	cfg        Config
	scanner    *Scanner
	onCreation CreationHook
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu          sync.Mutex
	running     bool
	cursor      uint64
	subscribers []*subscription
	nextID      uint64
	cancel      context.CancelFunc
	done        chan struct{}

	inflight sync.WaitGroup
}

func New(cfg Config, scanner *Scanner, onCreation CreationHook, logger *zap.Logger, m *metrics.Metrics) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BlockDelay < 0 {
		cfg.BlockDelay = 0
	}
	if cfg.EnrichTimeout <= 0 {
		cfg.EnrichTimeout = defaultEnrichTimeout
	}
	return &Poller{
		cfg:        cfg,
		scanner:    scanner,
		onCreation: onCreation,
		logger:     logger,
		metrics:    m,
	}
}

// Start begins polling. It is a no-op when already running.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startLocked()
}

// Stop halts polling and resets the cursor. In-flight requests finish but their results are dropped.
func (p *Poller) Stop() {
	p.mu.Lock()
	done := p.stopLocked()
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Subscribe registers a handler and starts the poller if needed. The returned func unsubscribes;
// removing the last subscriber stops the poller.
func (p *Poller) Subscribe(h Handler) func() {
	p.mu.Lock()
	p.nextID++
	sub := newSubscription(p.nextID, h)
	p.subscribers = append(p.subscribers, sub)
	p.startLocked()
	p.mu.Unlock()

	go p.drain(sub)

	var once sync.Once
	return func() {
		once.Do(func() { p.unsubscribe(sub) })
	}
}

// Status returns a snapshot of running state, cursor and subscriber count.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Running:         p.running,
		Cursor:          p.cursor,
		SubscriberCount: len(p.subscribers),
	}
}

// Wait blocks until all scheduled enrichment work has finished.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) unsubscribe(sub *subscription) {
	p.mu.Lock()
	for i, s := range p.subscribers {
		if s.id == sub.id {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			sub.close()
			break
		}
	}
	var done chan struct{}
	if len(p.subscribers) == 0 {
		done = p.stopLocked()
	}
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Poller) startLocked() {
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	p.logger.Info("poller start", zap.Duration("poll_interval", p.cfg.PollInterval))
	go p.loop(ctx, p.done)
}

func (p *Poller) stopLocked() chan struct{} {
	if !p.running {
		return nil
	}
	p.cancel()
	p.running = false
	p.cancel = nil
	p.cursor = 0
	done := p.done
	p.done = nil
	p.logger.Info("poller stop")
	return done
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		p.tick(ctx)
		timer.Reset(p.cfg.PollInterval)
	}
}

func (p *Poller) tick(ctx context.Context) {
	head, err := p.scanner.Head(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("read chain head failed", zap.Error(err))
		}
		return
	}

	p.mu.Lock()
	cursor := p.cursor
	p.mu.Unlock()

	if cursor == 0 {
		if head > 0 {
			p.setCursor(ctx, head-1)
		}
		p.logger.Info("cursor initialized", zap.Uint64("head", head))
		return
	}
	if head <= cursor {
		return
	}

	for n := cursor + 1; n <= head; n++ {
		if n > cursor+1 && p.cfg.BlockDelay > 0 {
			if !sleep(ctx, p.cfg.BlockDelay) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		events, err := p.scanner.ScanBlock(ctx, n)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.metrics.BlockError()
			p.logger.Warn("block processing failed", zap.Uint64("block", n), zap.Error(err))
			continue
		}
		for _, ev := range events {
			p.deliver(ctx, ev)
		}
	}

	p.setCursor(ctx, head)
	p.logger.Debug("batch complete", zap.Uint64("from", cursor+1), zap.Uint64("to", head))
}

func (p *Poller) setCursor(ctx context.Context, block uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	p.cursor = block
	p.metrics.Cursor(block)
}

// deliver queues the event for every subscriber without blocking and schedules enrichment.
func (p *Poller) deliver(ctx context.Context, ev model.ClassifiedEvent) {
	p.mu.Lock()
	if ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	for _, sub := range p.subscribers {
		sub.push(ev)
	}
	p.mu.Unlock()

	if ev.IsCreation() && p.onCreation != nil {
		p.inflight.Add(1)
		go func() {
			defer p.inflight.Done()
			enrichCtx, cancel := context.WithTimeout(context.Background(), p.cfg.EnrichTimeout)
			defer cancel()
			p.onCreation(enrichCtx, ev)
		}()
	}
}

func (p *Poller) drain(sub *subscription) {
	for {
		batch, ok := sub.next()
		if !ok {
			return
		}
		for _, ev := range batch {
			p.call(sub, ev)
		}
	}
}

func (p *Poller) call(sub *subscription, ev model.ClassifiedEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("subscriber panicked",
				zap.Uint64("subscriber", sub.id),
				zap.String("tx_hash", ev.Tx.Hash),
				zap.Any("panic", r),
			)
		}
	}()
	sub.handler(ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
