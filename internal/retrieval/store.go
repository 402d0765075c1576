package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Result is one match returned by SimilaritySearch or HybridSearch.
type Result struct {
	DocumentID string
	Content    string
	Score      float64
	Metadata   map[string]any
}

// VectorStore is the vector-store external collaborator contract.
type VectorStore interface {
	AddDocuments(ctx context.Context, chunks []string, metadatas []map[string]any, namespace string) ([]string, error)
	SimilaritySearch(ctx context.Context, query string, topK int, filter map[string]any, namespace string) ([]Result, error)
	HybridSearch(ctx context.Context, query string, topK int, filter map[string]any, namespace string, alpha float64) ([]Result, error)
	DeleteDocuments(ctx context.Context, ids []string, namespace string) error
	DeleteDocumentsByFilter(ctx context.Context, filter map[string]any, namespace string) error
	Stats(ctx context.Context) (map[string]any, error)
}

type document struct {
	id       string
	content  string
	metadata map[string]any
	vector   Vector
}

// MemoryStore is an in-process VectorStore: documents are embedded by
// feature hashing and compared by cosine similarity; keyword score for
// HybridSearch is a term-overlap ratio against the query.
type MemoryStore struct {
	mu         sync.RWMutex
	embedder   *embedder
	namespaces map[string]map[string]document
}

// NewMemoryStore constructs an empty MemoryStore. dimensions controls
// the embedding width (0 selects a sane default).
func NewMemoryStore(dimensions int) *MemoryStore {
	return &MemoryStore{
		embedder:   newEmbedder(dimensions),
		namespaces: make(map[string]map[string]document),
	}
}

// AddDocuments embeds and stores each chunk under namespace, returning
// the generated document ids in the same order as chunks.
func (s *MemoryStore) AddDocuments(ctx context.Context, chunks []string, metadatas []map[string]any, namespace string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespaces[namespace]
	if ns == nil {
		ns = make(map[string]document)
		s.namespaces[namespace] = ns
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		id := uuid.NewString()
		var md map[string]any
		if i < len(metadatas) {
			md = metadatas[i]
		}
		ns[id] = document{
			id:       id,
			content:  chunk,
			metadata: md,
			vector:   s.embedder.encode(chunk),
		}
		ids[i] = id
	}
	return ids, nil
}

// SimilaritySearch returns the topK documents in namespace ranked by
// cosine similarity to query, restricted to documents matching filter.
func (s *MemoryStore) SimilaritySearch(ctx context.Context, query string, topK int, filter map[string]any, namespace string) ([]Result, error) {
	return s.search(query, topK, filter, namespace, 0)
}

// HybridSearch blends vector similarity and keyword overlap: alpha=0
// is pure vector, alpha=1 is pure keyword.
func (s *MemoryStore) HybridSearch(ctx context.Context, query string, topK int, filter map[string]any, namespace string, alpha float64) ([]Result, error) {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return s.search(query, topK, filter, namespace, alpha)
}

func (s *MemoryStore) search(query string, topK int, filter map[string]any, namespace string, alpha float64) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := s.namespaces[namespace]
	if len(ns) == 0 {
		return nil, nil
	}

	queryVector := s.embedder.encode(query)
	queryTerms := termSet(query)

	results := make([]Result, 0, len(ns))
	for _, doc := range ns {
		if !matchesFilter(doc.metadata, filter) {
			continue
		}
		vectorScore := cosineSimilarity(queryVector, doc.vector)
		score := vectorScore
		if alpha > 0 {
			keywordScore := keywordOverlap(queryTerms, termSet(doc.content))
			score = (1-alpha)*vectorScore + alpha*keywordScore
		}
		results = append(results, Result{DocumentID: doc.id, Content: doc.content, Score: score, Metadata: doc.metadata})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteDocuments removes ids from namespace.
func (s *MemoryStore) DeleteDocuments(ctx context.Context, ids []string, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.namespaces[namespace]
	for _, id := range ids {
		delete(ns, id)
	}
	return nil
}

// DeleteDocumentsByFilter removes every document in namespace whose
// metadata matches filter.
func (s *MemoryStore) DeleteDocumentsByFilter(ctx context.Context, filter map[string]any, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns := s.namespaces[namespace]
	for id, doc := range ns {
		if matchesFilter(doc.metadata, filter) {
			delete(ns, id)
		}
	}
	return nil
}

// Stats reports document counts per namespace.
func (s *MemoryStore) Stats(ctx context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perNamespace := make(map[string]any, len(s.namespaces))
	total := 0
	for ns, docs := range s.namespaces {
		perNamespace[ns] = len(docs)
		total += len(docs)
	}
	return map[string]any{
		"total_documents": total,
		"namespaces":      perNamespace,
	}, nil
}

func matchesFilter(metadata map[string]any, filter map[string]any) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func termSet(text string) map[string]struct{} {
	terms := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

func keywordOverlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	var matched int
	for t := range query {
		if _, ok := doc[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}
