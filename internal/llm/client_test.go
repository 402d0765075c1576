package llm

import (
	"context"
	"testing"
)

func TestEchoClientGenerateText(t *testing.T) {
	c := EchoClient{}
	out, err := c.GenerateText(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "echo: hello" {
		t.Fatalf("GenerateText = %q, want %q", out, "echo: hello")
	}
}
