package workflow

import (
	"context"
	"fmt"
)

// NodeFunc is a named graph step: it reads and writes through state
// and returns a value recorded in the execution result's NodeOutputs.
type NodeFunc func(ctx context.Context, state *State) (any, error)

// Predicate is evaluated against the current state to decide whether
// an edge is taken. The first predicate that holds among a source
// node's outgoing edges (in insertion order) selects the successor.
type Predicate func(state *State) bool

// Always is the predicate an unconditional edge uses.
func Always(state *State) bool { return true }

type edge struct {
	target    int
	predicate Predicate
}

// Graph holds named node functions and source->ordered-edge-list
// transitions. Nodes are stored in a flat slice indexed by insertion
// order; edges are (source-index, target-index, predicate) triples,
// grouped per source for O(1) successor-list lookup.
type Graph struct {
	names    []string
	index    map[string]int
	funcs    []NodeFunc
	edges    [][]edge
	terminal map[int]bool
	entry    int
	hasEntry bool
}

// NewGraph constructs an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		index:    make(map[string]int),
		terminal: make(map[int]bool),
	}
}

// AddNode adds a named node function. Returns an error if name is
// already in use.
func (g *Graph) AddNode(name string, fn NodeFunc) error {
	if _, exists := g.index[name]; exists {
		return fmt.Errorf("workflow: duplicate node %q", name)
	}
	idx := len(g.names)
	g.index[name] = idx
	g.names = append(g.names, name)
	g.funcs = append(g.funcs, fn)
	g.edges = append(g.edges, nil)
	return nil
}

// SetEntry designates name as the graph's single entry node. Returns
// an error if name has not been added.
func (g *Graph) SetEntry(name string) error {
	idx, ok := g.index[name]
	if !ok {
		return fmt.Errorf("workflow: entry node %q not declared", name)
	}
	g.entry = idx
	g.hasEntry = true
	return nil
}

// AddTerminal designates name as a terminal node. Returns an error if
// name has not been added.
func (g *Graph) AddTerminal(name string) error {
	idx, ok := g.index[name]
	if !ok {
		return fmt.Errorf("workflow: terminal node %q not declared", name)
	}
	g.terminal[idx] = true
	return nil
}

// AddEdge adds an unconditional source->target transition.
func (g *Graph) AddEdge(source, target string) error {
	return g.AddConditional(source, target, Always)
}

// AddConditional adds a source->target transition guarded by
// predicate. Returns an error if either node has not been added.
func (g *Graph) AddConditional(source, target string, predicate Predicate) error {
	srcIdx, ok := g.index[source]
	if !ok {
		return fmt.Errorf("workflow: edge source %q not declared", source)
	}
	tgtIdx, ok := g.index[target]
	if !ok {
		return fmt.Errorf("workflow: edge target %q not declared", target)
	}
	g.edges[srcIdx] = append(g.edges[srcIdx], edge{target: tgtIdx, predicate: predicate})
	return nil
}

// Validate checks that an entry node and at least one terminal node
// have been designated. AddEdge/AddConditional already reject
// references to undeclared nodes at call time.
func (g *Graph) Validate() error {
	if !g.hasEntry {
		return fmt.Errorf("workflow: no entry node designated")
	}
	if len(g.terminal) == 0 {
		return fmt.Errorf("workflow: no terminal node designated")
	}
	return nil
}

// Result is the outcome of one Execute call.
type Result struct {
	Success      bool
	ExecutionPath []string
	NodeOutputs  map[string]any
	ErrorMessage string
}

// Execute runs the graph from its entry node against state. It clears
// and re-creates the engine's per-execution scratchpad before running
// any node.
//
// While the current node is non-terminal: append it to the path, run
// its function, evaluate its outgoing edges in insertion order and
// follow the first whose predicate holds. If none hold, execution
// terminates early with success=true and a non-terminal-ending path.
// If a terminal node is reached, it is executed and appended to the
// path before returning. A panic from a node function or a predicate
// stops execution and is reported as a failure carrying the partial
// path and outputs gathered so far.
func (g *Graph) Execute(ctx context.Context, state *State) Result {
	ctx = withScratchpad(ctx, newScratchpad())

	if err := g.Validate(); err != nil {
		return Result{Success: false, NodeOutputs: map[string]any{}, ErrorMessage: err.Error()}
	}

	path := make([]string, 0, len(g.names))
	outputs := make(map[string]any, len(g.names))
	current := g.entry

	for !g.terminal[current] {
		path = append(path, g.names[current])

		out, err := g.runNode(ctx, current, state)
		if err != nil {
			return Result{Success: false, ExecutionPath: path, NodeOutputs: outputs, ErrorMessage: err.Error()}
		}
		outputs[g.names[current]] = out

		next, matched, err := g.selectSuccessor(current, state)
		if err != nil {
			return Result{Success: false, ExecutionPath: path, NodeOutputs: outputs, ErrorMessage: err.Error()}
		}
		if !matched {
			return Result{Success: true, ExecutionPath: path, NodeOutputs: outputs}
		}
		current = next
	}

	path = append(path, g.names[current])
	out, err := g.runNode(ctx, current, state)
	if err != nil {
		return Result{Success: false, ExecutionPath: path, NodeOutputs: outputs, ErrorMessage: err.Error()}
	}
	outputs[g.names[current]] = out

	return Result{Success: true, ExecutionPath: path, NodeOutputs: outputs}
}

func (g *Graph) runNode(ctx context.Context, idx int, state *State) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node %q panicked: %v", g.names[idx], r)
		}
	}()
	return g.funcs[idx](ctx, state)
}

func (g *Graph) selectSuccessor(idx int, state *State) (target int, matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predicate on edge from %q panicked: %v", g.names[idx], r)
		}
	}()
	for _, e := range g.edges[idx] {
		if e.predicate(state) {
			return e.target, true, nil
		}
	}
	return 0, false, nil
}
