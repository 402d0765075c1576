// Package llm implements the LLM service collaborator: a single
// synchronous generateText(prompt) -> string operation, per the
// external interfaces contract, with adapters for the Anthropic and
// OpenAI APIs plus an in-memory EchoClient for tests.
package llm
