package llm

import "context"

// Client is the LLM service collaborator contract: generateText,
// synchronous from the caller's perspective.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// EchoClient is a Client test double that returns the prompt
// unmodified, prefixed for visibility. It never fails.
type EchoClient struct{}

// GenerateText returns prompt prefixed with "echo: ".
func (EchoClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "echo: " + prompt, nil
}
