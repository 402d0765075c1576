package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceManager wraps a single OpenTelemetry tracer with helpers for the
// spans the fabric creates repeatedly: bus publish/dispatch, task
// lifecycle, and workflow node execution.
type TraceManager struct {
	tracer trace.Tracer
}

func NewTraceManager(serviceName string) *TraceManager {
	return &TraceManager{
		tracer: otel.Tracer(serviceName),
	}
}

func (tm *TraceManager) StartSpan(ctx context.Context, operationName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, operationName, trace.WithAttributes(attrs...))
}

func (tm *TraceManager) InjectTraceContext(ctx context.Context, headers map[string]string) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))
}

func (tm *TraceManager) ExtractTraceContext(ctx context.Context, headers map[string]string) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(headers))
}

// StartPublishSpan wraps a Bus.Publish call.
func (tm *TraceManager) StartPublishSpan(ctx context.Context, topic, messageKind string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "bus.publish", trace.WithAttributes(
		attribute.String("messaging.system", "taskfabric"),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.operation", "publish"),
		attribute.String("message.kind", messageKind),
	))
}

// StartDispatchSpan wraps a worker delivering a message to its subscribers.
func (tm *TraceManager) StartDispatchSpan(ctx context.Context, topic, messageKind string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "bus.dispatch", trace.WithAttributes(
		attribute.String("messaging.system", "taskfabric"),
		attribute.String("messaging.source", topic),
		attribute.String("messaging.operation", "deliver"),
		attribute.String("message.kind", messageKind),
	))
}

func (tm *TraceManager) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(1, err.Error()) // Error status
	}
}

func (tm *TraceManager) SetSpanSuccess(span trace.Span) {
	span.SetStatus(2, "") // OK status
}

// AddTaskAttributes adds task identification and metadata to a span.
func (tm *TraceManager) AddTaskAttributes(span trace.Span, taskID, creatorID string, metadata map[string]interface{}) {
	span.SetAttributes(
		attribute.String("task.id", taskID),
		attribute.String("task.creator_id", creatorID),
	)

	for key, value := range metadata {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String("task.metadata."+key, v))
		case float64:
			span.SetAttributes(attribute.Float64("task.metadata."+key, v))
		case int:
			span.SetAttributes(attribute.Int("task.metadata."+key, v))
		case bool:
			span.SetAttributes(attribute.Bool("task.metadata."+key, v))
		default:
			span.SetAttributes(attribute.String("task.metadata."+key, fmt.Sprintf("%v", v)))
		}
	}
}

// AddTaskResult records a task's terminal status and result payload on a span.
func (tm *TraceManager) AddTaskResult(span trace.Span, status string, result map[string]interface{}, errorMessage string) {
	span.SetAttributes(attribute.String("task.status", status))

	if errorMessage != "" {
		span.SetAttributes(attribute.String("task.error", errorMessage))
	}

	for key, value := range result {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String("task.result."+key, v))
		case float64:
			span.SetAttributes(attribute.Float64("task.result."+key, v))
		case int:
			span.SetAttributes(attribute.Int("task.result."+key, v))
		case bool:
			span.SetAttributes(attribute.Bool("task.result."+key, v))
		default:
			span.SetAttributes(attribute.String("task.result."+key, fmt.Sprintf("%v", v)))
		}
	}
}

// AddWorkflowNodeAttributes tags a span with the workflow node it executed.
func (tm *TraceManager) AddWorkflowNodeAttributes(span trace.Span, node string, step int) {
	span.SetAttributes(
		attribute.String("workflow.node", node),
		attribute.Int("workflow.step", step),
	)
}

// AddSpanEvent adds a timestamped event to a span for tracking processing steps.
func (tm *TraceManager) AddSpanEvent(span trace.Span, eventName string, attributes ...attribute.KeyValue) {
	span.AddEvent(eventName, trace.WithAttributes(attributes...))
}

// AddComponentAttribute tags a span with the fabric component that created it.
func (tm *TraceManager) AddComponentAttribute(span trace.Span, component string) {
	span.SetAttributes(attribute.String("taskfabric.component", component))
}
