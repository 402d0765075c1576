package retrieval

import (
	"context"
	"testing"
)

func TestAddDocumentsAndSimilaritySearch(t *testing.T) {
	store := NewMemoryStore(64)
	ctx := context.Background()

	ids, err := store.AddDocuments(ctx, []string{
		"the quick brown fox jumps over the lazy dog",
		"deep learning models require large training datasets",
	}, []map[string]any{
		{"topic": "animals"},
		{"topic": "ml"},
	}, "default")
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}

	results, err := store.SimilaritySearch(ctx, "fox and dog", 1, nil, "default")
	if err != nil {
		t.Fatalf("SimilaritySearch: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].DocumentID != ids[0] {
		t.Fatalf("top result = %s, want %s", results[0].DocumentID, ids[0])
	}
}

func TestSimilaritySearchRespectsFilter(t *testing.T) {
	store := NewMemoryStore(64)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []string{"alpha document", "beta document"},
		[]map[string]any{{"lang": "en"}, {"lang": "fr"}}, "default")
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := store.SimilaritySearch(ctx, "document", 10, map[string]any{"lang": "fr"}, "default")
	if err != nil {
		t.Fatalf("SimilaritySearch: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Metadata["lang"] != "fr" {
		t.Fatalf("result metadata lang = %v, want fr", results[0].Metadata["lang"])
	}
}

func TestHybridSearchKeywordAlphaFavorsExactTerms(t *testing.T) {
	store := NewMemoryStore(64)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []string{
		"kubernetes orchestrates containerized workloads",
		"gardening tips for growing tomatoes",
	}, nil, "default")
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := store.HybridSearch(ctx, "kubernetes workloads", 2, nil, "default", 0.8)
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Score <= results[1].Score {
		t.Fatalf("expected keyword-weighted top result to score higher: %+v", results)
	}
}

func TestDeleteDocumentsRemovesFromNamespace(t *testing.T) {
	store := NewMemoryStore(64)
	ctx := context.Background()

	ids, _ := store.AddDocuments(ctx, []string{"a", "b"}, nil, "default")
	if err := store.DeleteDocuments(ctx, ids[:1], "default"); err != nil {
		t.Fatalf("DeleteDocuments: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["total_documents"] != 1 {
		t.Fatalf("total_documents = %v, want 1", stats["total_documents"])
	}
}

func TestDeleteDocumentsByFilter(t *testing.T) {
	store := NewMemoryStore(64)
	ctx := context.Background()

	_, _ = store.AddDocuments(ctx, []string{"a", "b", "c"}, []map[string]any{
		{"status": "stale"}, {"status": "fresh"}, {"status": "stale"},
	}, "default")

	if err := store.DeleteDocumentsByFilter(ctx, map[string]any{"status": "stale"}, "default"); err != nil {
		t.Fatalf("DeleteDocumentsByFilter: %v", err)
	}

	stats, _ := store.Stats(ctx)
	if stats["total_documents"] != 1 {
		t.Fatalf("total_documents = %v, want 1", stats["total_documents"])
	}
}

func TestStatsReportsPerNamespaceCounts(t *testing.T) {
	store := NewMemoryStore(64)
	ctx := context.Background()

	_, _ = store.AddDocuments(ctx, []string{"a"}, nil, "ns1")
	_, _ = store.AddDocuments(ctx, []string{"b", "c"}, nil, "ns2")

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	namespaces, ok := stats["namespaces"].(map[string]any)
	if !ok {
		t.Fatalf("namespaces has unexpected type: %T", stats["namespaces"])
	}
	if namespaces["ns1"] != 1 || namespaces["ns2"] != 2 {
		t.Fatalf("namespace counts = %+v, want ns1:1 ns2:2", namespaces)
	}
}
