// Package workflow implements the Workflow Graph engine: a typed
// state-carrying directed graph of named node functions with
// conditional edges, a single entry node, one or more terminal nodes,
// and deterministic first-matching-predicate successor selection.
//
// # Quick Start
//
//	g := workflow.NewGraph()
//	g.AddNode("start", startFn)
//	g.AddNode("analyse", analyseFn)
//	g.AddNode("check", checkFn)
//	g.AddNode("refine", refineFn)
//	g.AddNode("end", endFn)
//	g.SetEntry("start")
//	g.AddTerminal("end")
//	g.AddEdge("start", "analyse")
//	g.AddEdge("analyse", "check")
//	g.AddConditional("check", "refine", needsRefinement)
//	g.AddEdge("check", "end")
//	g.AddEdge("refine", "analyse")
//	if err := g.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	state := workflow.NewState()
//	result := g.Execute(ctx, state)
//
// # Representation
//
// Nodes are stored in a flat slice indexed by insertion order; edges
// are (source-index, target-index, predicate) triples grouped per
// source, per the flat-array representation design note — this gives
// O(1) successor-list lookup and avoids hash lookups during hot
// execution.
//
// # Refinement loops
//
// A loop is just an edge back to an earlier node under a predicate.
// The engine enforces no iteration cap; callers that need one store a
// counter in State and make their predicate check it.
package workflow
