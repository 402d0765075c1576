package observability

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsManager holds every OpenTelemetry instrument the fabric records
// against: task lifecycle counters, bus dispatch/queue measurements,
// workflow node-execution timers, and basic process/runtime gauges.
type MetricsManager struct {
	meter metric.Meter

	// Task lifecycle metrics
	tasksCreatedTotal    metric.Int64Counter
	tasksCompletedTotal  metric.Int64Counter
	taskLifecycleErrors  metric.Int64Counter
	taskExecutionSeconds metric.Float64Histogram

	// System metrics
	processCPUSecondsTotal     metric.Float64Counter
	processResidentMemoryBytes metric.Int64UpDownCounter
	goGoroutines               metric.Int64UpDownCounter
	goMemstatsAllocBytes       metric.Int64UpDownCounter

	// Message Bus metrics
	busPublishDuration  metric.Float64Histogram
	busDispatchDuration metric.Float64Histogram
	busQueueDepth       metric.Int64UpDownCounter
	busDroppedTotal     metric.Int64Counter

	// Workflow Graph metrics
	workflowNodeDuration metric.Float64Histogram
	workflowRunsTotal    metric.Int64Counter
}

func NewMetricsManager(meter metric.Meter) (*MetricsManager, error) {
	mm := &MetricsManager{meter: meter}

	var err error

	mm.tasksCreatedTotal, err = meter.Int64Counter(
		"fabric_tasks_created_total",
		metric.WithDescription("Total number of tasks created by the Controller"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	mm.tasksCompletedTotal, err = meter.Int64Counter(
		"fabric_tasks_completed_total",
		metric.WithDescription("Total number of tasks that reached a terminal state"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	mm.taskLifecycleErrors, err = meter.Int64Counter(
		"fabric_task_lifecycle_errors_total",
		metric.WithDescription("Total number of task lifecycle transition errors"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	mm.taskExecutionSeconds, err = meter.Float64Histogram(
		"fabric_task_execution_duration_seconds",
		metric.WithDescription("Time an agent spends executing an assigned task"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mm.processCPUSecondsTotal, err = meter.Float64Counter(
		"process_cpu_seconds_total",
		metric.WithDescription("Total user and system CPU time spent in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mm.processResidentMemoryBytes, err = meter.Int64UpDownCounter(
		"process_resident_memory_bytes",
		metric.WithDescription("Resident memory size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	mm.goGoroutines, err = meter.Int64UpDownCounter(
		"go_goroutines",
		metric.WithDescription("Number of goroutines that currently exist"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	mm.goMemstatsAllocBytes, err = meter.Int64UpDownCounter(
		"go_memstats_alloc_bytes",
		metric.WithDescription("Number of bytes allocated and still in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	mm.busPublishDuration, err = meter.Float64Histogram(
		"fabric_bus_publish_duration_seconds",
		metric.WithDescription("Time Bus.Publish spends handing a message to the durable sink"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mm.busDispatchDuration, err = meter.Float64Histogram(
		"fabric_bus_dispatch_duration_seconds",
		metric.WithDescription("Time a worker spends delivering a message to subscribers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mm.busQueueDepth, err = meter.Int64UpDownCounter(
		"fabric_bus_queue_depth",
		metric.WithDescription("Current number of messages waiting in the dispatch queue"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	mm.busDroppedTotal, err = meter.Int64Counter(
		"fabric_bus_dropped_total",
		metric.WithDescription("Total number of messages rejected because the queue was full"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	mm.workflowNodeDuration, err = meter.Float64Histogram(
		"fabric_workflow_node_duration_seconds",
		metric.WithDescription("Time spent executing a single workflow graph node"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mm.workflowRunsTotal, err = meter.Int64Counter(
		"fabric_workflow_runs_total",
		metric.WithDescription("Total number of workflow graph executions, labeled by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return mm, nil
}

// Task lifecycle methods

func (mm *MetricsManager) IncrementTasksCreated(ctx context.Context, creatorID string) {
	mm.tasksCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("creator_id", creatorID),
	))
}

func (mm *MetricsManager) IncrementTasksCompleted(ctx context.Context, status string) {
	mm.tasksCompletedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (mm *MetricsManager) IncrementTaskLifecycleErrors(ctx context.Context, reason string) {
	mm.taskLifecycleErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (mm *MetricsManager) RecordTaskExecutionDuration(ctx context.Context, capability string, duration time.Duration) {
	mm.taskExecutionSeconds.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("capability", capability),
	))
}

// System metrics methods

func (mm *MetricsManager) UpdateSystemMetrics(ctx context.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.goGoroutines.Add(ctx, int64(runtime.NumGoroutine()))
	mm.goMemstatsAllocBytes.Add(ctx, int64(m.Alloc))
	mm.processResidentMemoryBytes.Add(ctx, int64(m.Sys))
}

// Message Bus methods

func (mm *MetricsManager) RecordBusPublishDuration(ctx context.Context, topic string, duration time.Duration) {
	mm.busPublishDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("topic", topic),
	))
}

func (mm *MetricsManager) RecordBusDispatchDuration(ctx context.Context, topic string, duration time.Duration) {
	mm.busDispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("topic", topic),
	))
}

func (mm *MetricsManager) SetBusQueueDepth(ctx context.Context, delta int64) {
	mm.busQueueDepth.Add(ctx, delta)
}

func (mm *MetricsManager) IncrementBusDropped(ctx context.Context, topic string) {
	mm.busDroppedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
	))
}

// Workflow Graph methods

func (mm *MetricsManager) RecordWorkflowNodeDuration(ctx context.Context, node string, duration time.Duration) {
	mm.workflowNodeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("node", node),
	))
}

func (mm *MetricsManager) IncrementWorkflowRuns(ctx context.Context, outcome string) {
	mm.workflowRunsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// StartTimer returns a stop function that records task execution duration
// against the capability label when called.
func (mm *MetricsManager) StartTimer() func(ctx context.Context, capability string) {
	start := time.Now()
	return func(ctx context.Context, capability string) {
		mm.RecordTaskExecutionDuration(ctx, capability, time.Since(start))
	}
}
