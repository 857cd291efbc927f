package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements LLMAdapter for OpenAI API
type OpenAIAdapter struct {
	client *openai.Client
	config AdapterConfig
}

// NewOpenAIAdapter creates a new OpenAI adapter
func NewOpenAIAdapter(config AdapterConfig) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	// Set custom base URL if provided
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (o *OpenAIAdapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.config.Timeout)
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return out
}

// Send implements LLMAdapter.Send
func (o *OpenAIAdapter) Send(ctx context.Context, messages []Message) (*Message, error) {
	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.config.Model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return &Message{
		Role:      resp.Choices[0].Message.Role,
		Content:   resp.Choices[0].Message.Content,
		Timestamp: time.Now(),
	}, nil
}

// Stream implements LLMAdapter.Stream
func (o *OpenAIAdapter) Stream(ctx context.Context, messages []Message, chunks chan<- StreamChunk) error {
	defer close(chunks)

	ctx, cancel := o.withTimeout(ctx)
	defer cancel()

	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    o.config.Model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	})
	if err != nil {
		err = fmt.Errorf("OpenAI stream error: %w", err)
		chunks <- StreamChunk{Error: err}
		return err
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			chunks <- StreamChunk{Done: true}
			return nil
		}

		if err != nil {
			err = fmt.Errorf("OpenAI stream recv error: %w", err)
			chunks <- StreamChunk{Error: err}
			return err
		}

		if len(response.Choices) > 0 {
			content := response.Choices[0].Delta.Content
			if content != "" {
				chunks <- StreamChunk{Content: content}
			}
		}
	}
}

// GetModelName implements LLMAdapter.GetModelName
func (o *OpenAIAdapter) GetModelName() string {
	return o.config.Model
}

// IsAvailable implements LLMAdapter.IsAvailable
func (o *OpenAIAdapter) IsAvailable() bool {
	return o.config.APIKey != "" && o.config.Model != ""
}
