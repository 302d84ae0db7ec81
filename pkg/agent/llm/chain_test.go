package llm

import (
	"context"
	"testing"
)

type stubClient struct {
	content string
	calls   int
}

func (s *stubClient) Complete(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
	s.calls++
	return CompletionResponse{Content: s.content}, nil
}

func (s *stubClient) GetModelName() string { return "stub-model" }

// TestWrapClient tests the WrapClient helper function.
func TestWrapClient(t *testing.T) {
	completeCalled := false

	client := WrapClient(
		func(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
			completeCalled = true
			return CompletionResponse{Content: "wrapped"}, nil
		},
		func() string { return "wrapped-model" },
	)

	resp, err := client.Complete(context.Background(), NewCompletionRequest([]CompletionMessage{NewUserMessage("test")}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completeCalled {
		t.Error("Complete function was not called")
	}
	if resp.Content != "wrapped" {
		t.Errorf("expected 'wrapped', got %q", resp.Content)
	}
	if client.GetModelName() != "wrapped-model" {
		t.Errorf("expected 'wrapped-model', got %q", client.GetModelName())
	}
}

// TestChainOrder verifies that earlier middlewares run outermost.
func TestChainOrder(t *testing.T) {
	base := &stubClient{content: "base"}
	var order []string

	tag := func(name string) Middleware {
		return func(next LLMClient) LLMClient {
			return WrapClient(
				func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
					order = append(order, name)
					resp, err := next.Complete(ctx, req)
					resp.Content = name + "(" + resp.Content + ")"
					return resp, err
				},
				next.GetModelName,
			)
		}
	}

	client := Chain(base, tag("outer"), tag("inner"))
	resp, err := client.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("unexpected middleware order: %v", order)
	}
	if resp.Content != "outer(inner(base))" {
		t.Errorf("unexpected content: %q", resp.Content)
	}
	if client.GetModelName() != "stub-model" {
		t.Errorf("model name should pass through, got %q", client.GetModelName())
	}
	if base.calls != 1 {
		t.Errorf("expected exactly one backend call, got %d", base.calls)
	}
}

func TestChainNoMiddleware(t *testing.T) {
	base := &stubClient{content: "plain"}
	if Chain(base) != LLMClient(base) {
		t.Error("Chain without middleware should return the base client")
	}
}

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]CompletionMessage{
		NewSystemMessage("persona"),
		NewUserMessage("hello"),
		NewAssistantMessage("hi"),
	})
	if system != "persona" {
		t.Errorf("expected system 'persona', got %q", system)
	}
	if len(rest) != 2 || rest[0].Role != RoleUser || rest[1].Role != RoleAssistant {
		t.Errorf("unexpected remainder: %+v", rest)
	}
}

func TestMergeConsecutive(t *testing.T) {
	merged := MergeConsecutive([]CompletionMessage{
		NewUserMessage("request"),
		NewUserMessage("[BusinessAnalyst] notes"),
		NewAssistantMessage("code"),
		NewUserMessage("[ProductOwner] fix it"),
	})
	if len(merged) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(merged))
	}
	if merged[0].Content != "request\n\n[BusinessAnalyst] notes" {
		t.Errorf("unexpected merged content: %q", merged[0].Content)
	}
	if merged[2].Role != RoleUser {
		t.Errorf("expected trailing user message, got %s", merged[2].Role)
	}
}
