// Package agentrt implements the Agent runtime contract: the shared
// lifecycle every capability-tagged participant runs, built around one
// abstract operation the caller supplies — ExecuteTask.
//
// # Quick Start
//
//	rt, err := agentrt.New(&agentrt.Config{
//	    AgentID:      "a1",
//	    Name:         "Summarizer",
//	    Capabilities: entity.NewCapabilitySet(entity.CapabilityTextProcessing),
//	}, controllerAdapter, bus, logger, tracer, metrics)
//	rt.MustAddHandler("summarize", summarizeHandler)
//	if err := rt.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
// On Run, the Runtime registers itself with the injected Controller,
// transitions to active, and subscribes default handlers for
// task_assignment and system_notification on the Bus. A task_assignment
// drives in_progress -> {completed, failed} around the caller's
// ExecuteTask; a system_notification of type shutdown/pause/resume
// drives the Runtime's own local state transition. A message addressed
// to neither this Runtime's id nor broadcast is dropped with a warning.
package agentrt
