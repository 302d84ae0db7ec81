// Package openaiofficial provides the OpenAI and Azure OpenAI chat clients built on the official OpenAI Go package.
package openaiofficial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"triad/pkg/agent/llm"
	"triad/pkg/agent/llmerrors"
)

// ChatClient wraps the official OpenAI client's Chat Completions API to implement llm.LLMClient.
// The same type serves Azure, where model is the deployment name.
type ChatClient struct {
	client   openai.Client
	model    string
	provider string
}

// NewChatClient creates an OpenAI client (raw client, middleware applied at higher level).
func NewChatClient(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) llm.LLMClient {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		base = append(base, option.WithRequestTimeout(timeout))
	}
	return &ChatClient{
		client:   openai.NewClient(append(base, opts...)...),
		model:    model,
		provider: "openai",
	}
}

// NewAzureClient creates an Azure OpenAI client for one chat deployment.
func NewAzureClient(endpoint, apiKey, apiVersion, deployment string, timeout time.Duration, opts ...option.RequestOption) llm.LLMClient {
	base := []option.RequestOption{
		azure.WithEndpoint(strings.TrimRight(endpoint, "/"), apiVersion),
		azure.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		base = append(base, option.WithRequestTimeout(timeout))
	}
	return &ChatClient{
		client:   openai.NewClient(append(base, opts...)...),
		model:    deployment,
		provider: "azure",
	}
}

func toChatMessages(in []llm.CompletionMessage) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(in))
	for i := range in {
		msg := &in[i]
		switch msg.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case llm.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}

// Complete implements the llm.LLMClient interface.
//
//nolint:gocritic // CompletionRequest is passed by value to match the interface
func (c *ChatClient) Complete(ctx context.Context, in llm.CompletionRequest) (llm.CompletionResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    toChatMessages(in.Messages),
		Temperature: openai.Float(float64(in.Temperature)),
	}
	if in.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(in.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.CompletionResponse{}, c.classifyError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return llm.CompletionResponse{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse,
			fmt.Sprintf("no choices in %s chat completion", c.provider))
	}

	choice := resp.Choices[0]
	return llm.CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: choice.FinishReason,
	}, nil
}

// GetModelName returns the model (or Azure deployment) name for this client.
func (c *ChatClient) GetModelName() string {
	return c.model
}

func (c *ChatClient) classifyError(err error) *llmerrors.Error {
	statusCode := 0
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		statusCode = apiErr.StatusCode
	}
	return llmerrors.Classify(err, statusCode, c.provider)
}
