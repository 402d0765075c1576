package demo

import (
	"context"
	"testing"

	"github.com/owulveryck/taskfabric/internal/agentrt"
	"github.com/owulveryck/taskfabric/internal/config"
	"github.com/owulveryck/taskfabric/internal/llm"
	"github.com/owulveryck/taskfabric/internal/retrieval"
)

func TestEchoHandlerReflectsDescription(t *testing.T) {
	handler := NewEchoHandler()
	result, err := handler(context.Background(), agentrt.TaskInfo{TaskID: "t1", Description: "hello"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result["echo"] != "hello" {
		t.Fatalf("echo = %v, want hello", result["echo"])
	}
}

func TestSummarizerHandlerUsesLLMClient(t *testing.T) {
	handler := NewSummarizerHandler(llm.EchoClient{})
	result, err := handler(context.Background(), agentrt.TaskInfo{TaskID: "t1", Description: "a long document"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	summary, ok := result["summary"].(string)
	if !ok || summary == "" {
		t.Fatalf("summary = %v, want non-empty string", result["summary"])
	}
}

func TestRetrievalHandlerRequiresQuery(t *testing.T) {
	store := retrieval.NewMemoryStore(32)
	handler := NewRetrievalHandler(store, config.AgentTypeProfile{})

	_, err := handler(context.Background(), agentrt.TaskInfo{TaskID: "t1", Metadata: map[string]any{}})
	if err == nil {
		t.Fatal("expected error for missing query metadata")
	}
}

func TestRetrievalHandlerReturnsResults(t *testing.T) {
	store := retrieval.NewMemoryStore(32)
	_, _ = store.AddDocuments(context.Background(), []string{"cats are great pets"}, nil, "")

	handler := NewRetrievalHandler(store, config.AgentTypeProfile{RAGTopK: 3})
	result, err := handler(context.Background(), agentrt.TaskInfo{
		TaskID:   "t1",
		Metadata: map[string]any{"query": "cats"},
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	hits, ok := result["results"].([]map[string]any)
	if !ok || len(hits) != 1 {
		t.Fatalf("results = %v, want one hit", result["results"])
	}
}
