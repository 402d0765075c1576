package demo

import (
	"context"
	"fmt"

	"github.com/owulveryck/taskfabric/internal/agentrt"
	"github.com/owulveryck/taskfabric/internal/config"
	"github.com/owulveryck/taskfabric/internal/retrieval"
)

// NewRetrievalHandler returns a TaskHandler that answers a task's "query"
// metadata field against store, using profile's topK (5 when unset) and
// hybrid-search setting. Task metadata may name a "namespace"; it does
// not override topK or the search mode.
func NewRetrievalHandler(store retrieval.VectorStore, profile config.AgentTypeProfile) agentrt.TaskHandler {
	return func(ctx context.Context, task agentrt.TaskInfo) (map[string]any, error) {
		query, ok := task.Metadata["query"].(string)
		if !ok || query == "" {
			return nil, fmt.Errorf("demo: task %s missing string metadata %q", task.TaskID, "query")
		}

		namespace, _ := task.Metadata["namespace"].(string)

		topK := profile.RAGTopK
		if topK <= 0 {
			topK = 5
		}
		useHybrid := profile.UseHybridSearch

		var (
			results []retrieval.Result
			err     error
		)
		if useHybrid {
			results, err = store.HybridSearch(ctx, query, topK, nil, namespace, 0.5)
		} else {
			results, err = store.SimilaritySearch(ctx, query, topK, nil, namespace)
		}
		if err != nil {
			return nil, fmt.Errorf("demo: retrieval search for task %s: %w", task.TaskID, err)
		}

		hits := make([]map[string]any, len(results))
		for i, r := range results {
			hits[i] = map[string]any{
				"document_id": r.DocumentID,
				"content":     r.Content,
				"score":       r.Score,
			}
		}
		return map[string]any{"results": hits}, nil
	}
}
