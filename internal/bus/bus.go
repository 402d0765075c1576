package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/owulveryck/taskfabric/internal/entity"
	"github.com/owulveryck/taskfabric/internal/observability"
)

// Handler processes one delivered Message. Handlers must be re-entrant:
// they may be invoked concurrently with other handlers, and must not
// assume delivery order across different receivers.
type Handler func(ctx context.Context, msg entity.Message)

// Sink is the durable log the Bus mirrors every published message to.
// Its single operation mirrors spec section 6's external collaborator
// contract: send(topic, key, message) -> async ack, failures logged
// and never propagated to publishers.
type Sink interface {
	Send(ctx context.Context, topic, key string, msg entity.Message) error
}

// Config tunes the worker pool and queue the Bus dispatches through.
type Config struct {
	Workers       int
	QueueSize     int
	DefaultTopic  string
	ShutdownGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 5
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.DefaultTopic == "" {
		c.DefaultTopic = "mcp-messages"
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 5 * time.Second
	}
	return c
}

type subscription struct {
	agentID string
	handler Handler
}

type dispatchJob struct {
	ctx     context.Context
	msg     entity.Message
	agentID string
	handler Handler
}

// Bus is the Message Bus: subscription tables plus a bounded worker
// pool plus a durable external Sink.
type Bus struct {
	cfg Config

	mu      sync.RWMutex
	direct  map[string][]subscription // agentId -> handlers registered under that id
	topics  map[string][]string       // topic -> agentIds subscribed to it
	running bool

	recipientLocks sync.Map // agentId -> *sync.Mutex, serializes handler invocation per recipient

	queue chan dispatchJob
	quit  chan struct{}
	wg    sync.WaitGroup

	sink    Sink
	logger  *slog.Logger
	tracer  *observability.TraceManager
	metrics *observability.MetricsManager

	queueDepth int64 // updated under depthMu alongside the queue-depth metric, approximate
	depthMu    sync.Mutex
}

// New constructs a Bus. It must be started with Start before Publish
// accepts submissions.
func New(cfg Config, sink Sink, logger *slog.Logger, tracer *observability.TraceManager, metrics *observability.MetricsManager) *Bus {
	cfg = cfg.withDefaults()
	return &Bus{
		cfg:     cfg,
		direct:  make(map[string][]subscription),
		topics:  make(map[string][]string),
		queue:   make(chan dispatchJob, cfg.QueueSize),
		quit:    make(chan struct{}),
		sink:    sink,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

// Start flips the Bus into the running state and launches the worker pool.
func (b *Bus) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	for i := 0; i < b.cfg.Workers; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}
}

func (b *Bus) worker(id int) {
	defer b.wg.Done()
	for {
		select {
		case job, ok := <-b.queue:
			if !ok {
				return
			}
			b.depthMu.Lock()
			b.queueDepth--
			b.depthMu.Unlock()
			b.metrics.SetBusQueueDepth(job.ctx, -1)
			b.runJob(job)
		case <-b.quit:
			return
		}
	}
}

func (b *Bus) runJob(job dispatchJob) {
	lockAny, _ := b.recipientLocks.LoadOrStore(job.agentID, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	ctx, span := b.tracer.StartDispatchSpan(job.ctx, job.agentID, string(job.msg.Kind))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "recovered from panic in message handler",
				"agent_id", job.agentID, "message_id", job.msg.MessageID, "panic", r)
			b.tracer.RecordError(span, fmt.Errorf("handler panic: %v", r))
			return
		}
		b.tracer.SetSpanSuccess(span)
	}()

	job.handler(ctx, job.msg)
	b.metrics.RecordBusDispatchDuration(ctx, job.agentID, time.Since(start))
}

// Publish hands msg to the external Sink (fire-and-log-on-error) and
// fans it out to every matching in-process subscriber via the worker
// pool. It returns false if the Bus is not running, or if the dispatch
// queue is full for any of the resolved handler invocations — a zero
// subscriber match still returns true once the message has been handed
// to the sink, whether or not the sink reported an error.
func (b *Bus) Publish(ctx context.Context, msg entity.Message) bool {
	b.mu.RLock()
	running := b.running
	b.mu.RUnlock()
	if !running {
		return false
	}

	start := time.Now()
	if b.sink != nil {
		topic, _ := msg.Topic()
		if topic == "" {
			topic = b.cfg.DefaultTopic
		}
		if err := b.sink.Send(ctx, topic, msg.MessageID, msg); err != nil {
			b.logger.ErrorContext(ctx, "durable sink publish failed", "message_id", msg.MessageID, "error", err)
		}
	}
	b.metrics.RecordBusPublishDuration(ctx, b.cfg.DefaultTopic, time.Since(start))

	jobs := b.resolveJobs(ctx, msg)
	if len(jobs) == 0 {
		b.logger.WarnContext(ctx, "publish with no matching subscribers", "message_id", msg.MessageID, "receiver_id", msg.ReceiverID)
		return true
	}

	for _, job := range jobs {
		select {
		case b.queue <- job:
			b.depthMu.Lock()
			b.queueDepth++
			b.depthMu.Unlock()
			b.metrics.SetBusQueueDepth(ctx, 1)
		default:
			b.logger.WarnContext(ctx, "dispatch queue full, rejecting publish", "message_id", msg.MessageID)
			topic, _ := msg.Topic()
			b.metrics.IncrementBusDropped(ctx, topic)
			return false
		}
	}
	return true
}

func (b *Bus) resolveJobs(ctx context.Context, msg entity.Message) []dispatchJob {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var jobs []dispatchJob

	switch {
	case msg.IsBroadcast():
		for agentID, subs := range b.direct {
			for _, s := range subs {
				jobs = append(jobs, dispatchJob{ctx: ctx, msg: msg, agentID: agentID, handler: s.handler})
			}
		}
	case msg.ReceiverID != "":
		for _, s := range b.direct[msg.ReceiverID] {
			jobs = append(jobs, dispatchJob{ctx: ctx, msg: msg, agentID: msg.ReceiverID, handler: s.handler})
		}
	}

	if topic, ok := msg.Topic(); ok {
		for _, agentID := range b.topics[topic] {
			for _, s := range b.direct[agentID] {
				jobs = append(jobs, dispatchJob{ctx: ctx, msg: msg, agentID: agentID, handler: s.handler})
			}
		}
	}

	return jobs
}

// Subscribe registers handler to receive every message directly
// addressed to agentID, plus every broadcast message.
func (b *Bus) Subscribe(agentID string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.direct[agentID] = append(b.direct[agentID], subscription{agentID: agentID, handler: handler})
}

// Unsubscribe removes handler from agentID's direct subscription list.
// When handler is nil, every handler for agentID is dropped and
// agentID is removed from every topic it was subscribed to.
func (b *Bus) Unsubscribe(agentID string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handler == nil {
		delete(b.direct, agentID)
		for topic, agents := range b.topics {
			b.topics[topic] = removeString(agents, agentID)
		}
		return
	}

	subs := b.direct[agentID]
	kept := subs[:0]
	for _, s := range subs {
		if fmt.Sprintf("%p", s.handler) != fmt.Sprintf("%p", handler) {
			kept = append(kept, s)
		}
	}
	b.direct[agentID] = kept
}

// SubscribeToTopic registers agentID so any message tagged with topic
// fans out to every one of agentID's direct-subscription handlers.
func (b *Bus) SubscribeToTopic(agentID, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = append(b.topics[topic], agentID)
}

// UnsubscribeFromTopic removes every occurrence of agentID from topic.
func (b *Bus) UnsubscribeFromTopic(agentID, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = removeString(b.topics[topic], agentID)
}

func removeString(list []string, s string) []string {
	kept := list[:0]
	for _, v := range list {
		if v != s {
			kept = append(kept, v)
		}
	}
	return kept
}

// QueueStatus summarizes the Bus's live subscription and run state.
type QueueStatus struct {
	Subscribers int
	Topics      int
	Running     bool
}

func (b *Bus) QueueStatus() QueueStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return QueueStatus{
		Subscribers: len(b.direct),
		Topics:      len(b.topics),
		Running:     b.running,
	}
}

// Shutdown stops accepting new submissions, drains the worker pool
// with a bounded grace period, then force-terminates remaining
// workers.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.mu.Unlock()

	close(b.queue)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(b.cfg.ShutdownGrace):
		close(b.quit)
		return fmt.Errorf("message bus shutdown: grace period exceeded, force-terminated remaining workers")
	case <-ctx.Done():
		close(b.quit)
		return ctx.Err()
	}
}
