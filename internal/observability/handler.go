package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityHandler is a slog.Handler that buffers log records,
// annotates them with active trace context, counts them as OpenTelemetry
// metrics, and optionally forwards each one onto the fabric's Message Bus
// as a system_notification so operators watching the bus see log traffic
// alongside task and agent events.
type ObservabilityHandler struct {
	opts        HandlerOptions
	tracer      trace.Tracer
	meter       metric.Meter
	serviceName string

	// Metrics
	logCounter      metric.Int64Counter
	logDuration     metric.Float64Histogram
	logErrorCounter metric.Int64Counter

	// notify, when set, forwards each log entry onto the bus as a
	// system_notification.
	notify func(notification NotificationData) error

	// Buffering
	buffer   chan logEntry
	mu       sync.RWMutex
	shutdown chan struct{}
	wg       sync.WaitGroup
}

type HandlerOptions struct {
	Level       slog.Level
	Writer      io.Writer
	ReplaceAttr func(groups []string, a slog.Attr) slog.Attr
	BufferSize  int
}

type logEntry struct {
	time  time.Time
	level slog.Level
	msg   string
	attrs []slog.Attr
	ctx   context.Context
}

// NotificationData is the payload handed to the Message Bus when the
// observability handler forwards a log entry as a system_notification.
type NotificationData struct {
	ID      string            `json:"id"`
	Service string            `json:"service"`
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Time    time.Time         `json:"time"`
	Fields  map[string]any    `json:"fields"`
	Headers map[string]string `json:"headers"`
	TraceID string            `json:"trace_id"`
	SpanID  string            `json:"span_id"`
}

func NewObservabilityHandler(tracer trace.Tracer, meter metric.Meter, serviceName string) (*ObservabilityHandler, error) {
	return NewObservabilityHandlerWithOptions(tracer, meter, serviceName, HandlerOptions{
		Level:      slog.LevelInfo,
		BufferSize: 1000,
	})
}

func NewObservabilityHandlerWithOptions(tracer trace.Tracer, meter metric.Meter, serviceName string, opts HandlerOptions) (*ObservabilityHandler, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}

	logCounter, err := meter.Int64Counter(
		"logs_total",
		metric.WithDescription("Total number of log entries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	logDuration, err := meter.Float64Histogram(
		"log_handler_processing_duration_seconds",
		metric.WithDescription("Time spent processing a buffered log entry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	logErrorCounter, err := meter.Int64Counter(
		"log_handler_errors_total",
		metric.WithDescription("Total number of log handler internal errors"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	h := &ObservabilityHandler{
		opts:            opts,
		tracer:          tracer,
		meter:           meter,
		serviceName:     serviceName,
		logCounter:      logCounter,
		logDuration:     logDuration,
		logErrorCounter: logErrorCounter,
		buffer:          make(chan logEntry, opts.BufferSize),
		shutdown:        make(chan struct{}),
	}

	h.wg.Add(1)
	go h.processLogs()

	return h, nil
}

func (h *ObservabilityHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

func (h *ObservabilityHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Enabled(ctx, r.Level) {
		return nil
	}

	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)
		return true
	})

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		attrs = append(attrs,
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	attrs = append(attrs,
		slog.String("service", h.serviceName),
		slog.String("source", getSource()),
	)

	entry := logEntry{
		time:  r.Time,
		level: r.Level,
		msg:   r.Message,
		attrs: attrs,
		ctx:   ctx,
	}

	select {
	case h.buffer <- entry:
	default:
		// Buffer full, drop the log entry to prevent blocking the caller.
		h.logErrorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", "buffer_full"),
			attribute.String("service", h.serviceName),
		))
	}

	return nil
}

func (h *ObservabilityHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandler, _ := NewObservabilityHandlerWithOptions(h.tracer, h.meter, h.serviceName, h.opts)
	return newHandler
}

func (h *ObservabilityHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *ObservabilityHandler) processLogs() {
	defer h.wg.Done()

	for {
		select {
		case entry := <-h.buffer:
			h.processLogEntry(entry)
		case <-h.shutdown:
			for {
				select {
				case entry := <-h.buffer:
					h.processLogEntry(entry)
				default:
					return
				}
			}
		}
	}
}

func (h *ObservabilityHandler) processLogEntry(entry logEntry) {
	start := time.Now()

	h.logCounter.Add(entry.ctx, 1, metric.WithAttributes(
		attribute.String("level", entry.level.String()),
		attribute.String("service", h.serviceName),
	))

	fields := make(map[string]any, len(entry.attrs))
	for _, attr := range entry.attrs {
		fields[attr.Key] = attr.Value.Any()
	}

	if h.opts.Writer != nil {
		fmt.Fprintf(h.opts.Writer, "%s [%s] %s %v\n", entry.time.Format(time.RFC3339), entry.level, entry.msg, fields)
	}

	h.mu.RLock()
	notify := h.notify
	h.mu.RUnlock()

	if notify != nil {
		notification := NotificationData{
			ID:      fmt.Sprintf("log-%d", time.Now().UnixNano()),
			Service: h.serviceName,
			Level:   entry.level.String(),
			Message: entry.msg,
			Time:    entry.time,
			Fields:  fields,
			Headers: make(map[string]string),
		}

		for _, attr := range entry.attrs {
			if attr.Key == "trace_id" || attr.Key == "span_id" {
				notification.Headers[attr.Key] = attr.Value.String()
			}
		}

		go func() {
			if err := notify(notification); err != nil {
				h.logErrorCounter.Add(context.Background(), 1, metric.WithAttributes(
					attribute.String("reason", "notify_failed"),
					attribute.String("service", h.serviceName),
				))
			}
		}()
	}

	h.logDuration.Record(entry.ctx, time.Since(start).Seconds())
}

// SetNotifier wires a function that forwards log entries onto the
// fabric's Message Bus as system_notification messages. Typically set
// once at startup with a closure over the process's Bus instance.
func (h *ObservabilityHandler) SetNotifier(notify func(notification NotificationData) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notify = notify
}

func (h *ObservabilityHandler) Shutdown(ctx context.Context) error {
	close(h.shutdown)

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func getSource() string {
	_, file, line, ok := runtime.Caller(4)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}
