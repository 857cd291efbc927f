package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaURL is where a local Ollama server listens.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaAdapter implements LLMAdapter for Ollama API
type OllamaAdapter struct {
	client  *http.Client
	config  AdapterConfig
	baseURL string
}

// OllamaMessage represents a message in Ollama API format
type OllamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaChatRequest represents a chat request to Ollama
type OllamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

// OllamaChatResponse is one object of a chat response. A buffered reply is a
// single object with Done set; a streamed reply is a sequence of them.
type OllamaChatResponse struct {
	Model     string        `json:"model"`
	CreatedAt time.Time     `json:"created_at"`
	Message   OllamaMessage `json:"message"`
	Done      bool          `json:"done"`
	Error     string        `json:"error,omitempty"`
}

// NewOllamaAdapter creates a new Ollama adapter
func NewOllamaAdapter(config AdapterConfig) *OllamaAdapter {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	return &OllamaAdapter{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config:  config,
		baseURL: baseURL,
	}
}

// Send implements LLMAdapter.Send
func (o *OllamaAdapter) Send(ctx context.Context, messages []Message) (*Message, error) {
	var content strings.Builder
	err := o.chat(ctx, messages, false, func(chunk string) error {
		content.WriteString(chunk)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		Role:      RoleAssistant,
		Content:   content.String(),
		Timestamp: time.Now(),
	}, nil
}

// Stream implements LLMAdapter.Stream
func (o *OllamaAdapter) Stream(ctx context.Context, messages []Message, chunks chan<- StreamChunk) error {
	defer close(chunks)

	send := func(chunk StreamChunk) error {
		select {
		case chunks <- chunk:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	err := o.chat(ctx, messages, true, func(content string) error {
		return send(StreamChunk{Content: content})
	})
	if err != nil {
		_ = send(StreamChunk{Error: err})
		return err
	}

	return send(StreamChunk{Done: true})
}

// chat posts the conversation and hands every content fragment to emit in
// arrival order. The body is read as a sequence of JSON objects, which covers
// both the buffered and the newline-delimited streaming shape.
func (o *OllamaAdapter) chat(ctx context.Context, messages []Message, stream bool, emit func(string) error) error {
	// Convert our messages to Ollama format
	ollamaMessages := make([]OllamaMessage, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = OllamaMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	request := OllamaChatRequest{
		Model:    o.config.Model,
		Messages: ollamaMessages,
		Stream:   stream,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Provider: "Ollama", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	decoder := json.NewDecoder(resp.Body)
	for {
		var response OllamaChatResponse
		if err := decoder.Decode(&response); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode response: %w", err)
		}

		if response.Error != "" {
			return fmt.Errorf("Ollama error: %s", response.Error)
		}

		if response.Message.Content != "" {
			if err := emit(response.Message.Content); err != nil {
				return err
			}
		}

		if response.Done {
			return nil
		}
	}
}

// GetModelName implements LLMAdapter.GetModelName
func (o *OllamaAdapter) GetModelName() string {
	return o.config.Model
}

// IsAvailable implements LLMAdapter.IsAvailable
func (o *OllamaAdapter) IsAvailable() bool {
	if o.config.Model == "" {
		return false
	}

	// Test connection to Ollama
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
