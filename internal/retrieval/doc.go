// Package retrieval implements the vector-store and document-chunker
// external collaborators: addDocuments/similaritySearch/hybridSearch/
// deleteDocuments/stats, and split. Both are backed by stdlib-only
// implementations — no vector-database client or chunking library
// appears anywhere across the retrieved example corpus, so MemoryStore
// hashes text into feature vectors the way a from-scratch semantic
// index in this corpus does, rather than reaching for an external
// service with no grounded client library to model it on.
package retrieval
