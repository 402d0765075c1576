// Package demo provides reference task handlers for the sample agents
// shipped with taskfabric: a no-op echo agent, an LLM-backed summarizer,
// and a retrieval agent answering queries against a VectorStore. Each
// constructor returns an agentrt.TaskHandler ready to register on a
// Runtime; the retrieval constructor also consumes a
// config.AgentTypeProfile for its search defaults.
package demo
