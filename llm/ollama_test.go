package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOllamaServer(t *testing.T, handler func(w http.ResponseWriter, req OllamaChatRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req OllamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handler(w, req)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOllamaSend_Buffered(t *testing.T) {
	server := newOllamaServer(t, func(w http.ResponseWriter, req OllamaChatRequest) {
		if req.Stream {
			t.Error("Expected stream=false for Send")
		}
		if req.Model != "llama3.1" {
			t.Errorf("Expected model 'llama3.1', got '%s'", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "hi" {
			t.Errorf("Unexpected messages: %+v", req.Messages)
		}
		fmt.Fprint(w, `{"model":"llama3.1","message":{"role":"assistant","content":"hello there"},"done":true}`)
	})

	adapter := NewOllamaAdapter(AdapterConfig{Model: "llama3.1", BaseURL: server.URL})
	msg, err := adapter.Send(context.Background(), []Message{
		NewMessage(RoleSystem, "be brief"),
		NewMessage(RoleUser, "hi"),
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Content != "hello there" {
		t.Errorf("Expected content 'hello there', got '%s'", msg.Content)
	}
	if msg.Role != RoleAssistant {
		t.Errorf("Expected role assistant, got '%s'", msg.Role)
	}
}

func TestOllamaStream_NDJSON(t *testing.T) {
	server := newOllamaServer(t, func(w http.ResponseWriter, req OllamaChatRequest) {
		if !req.Stream {
			t.Error("Expected stream=true for Stream")
		}
		flusher := w.(http.Flusher)
		for _, part := range []string{"FILE: a.ts\n", "```ts\n", "const a = 1\n", "```"} {
			line, _ := json.Marshal(OllamaChatResponse{Message: OllamaMessage{Role: "assistant", Content: part}})
			fmt.Fprintf(w, "%s\n", line)
			flusher.Flush()
		}
		fmt.Fprint(w, `{"message":{"role":"assistant","content":""},"done":true}`+"\n")
	})

	adapter := NewOllamaAdapter(AdapterConfig{Model: "llama3.1", BaseURL: server.URL})
	content, err := Collect(context.Background(), adapter, []Message{NewMessage(RoleUser, "go")}, true, nil)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	expected := "FILE: a.ts\n```ts\nconst a = 1\n```"
	if content != expected {
		t.Errorf("Expected %q, got %q", expected, content)
	}
}

func TestOllamaStream_StopsAtDone(t *testing.T) {
	server := newOllamaServer(t, func(w http.ResponseWriter, req OllamaChatRequest) {
		fmt.Fprint(w, `{"message":{"content":"one"},"done":false}`+"\n")
		fmt.Fprint(w, `{"message":{"content":""},"done":true}`+"\n")
		fmt.Fprint(w, `{"message":{"content":"ignored"},"done":false}`+"\n")
	})

	adapter := NewOllamaAdapter(AdapterConfig{Model: "m", BaseURL: server.URL})
	msg, err := adapter.Send(context.Background(), nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Content != "one" {
		t.Errorf("Expected 'one', got %q", msg.Content)
	}
}

func TestOllama_StatusError(t *testing.T) {
	server := newOllamaServer(t, func(w http.ResponseWriter, req OllamaChatRequest) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'nope' not found"}`)
	})

	adapter := NewOllamaAdapter(AdapterConfig{Model: "nope", BaseURL: server.URL})
	_, err := adapter.Send(context.Background(), nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", apiErr.StatusCode)
	}
}

func TestOllama_ErrorObject(t *testing.T) {
	server := newOllamaServer(t, func(w http.ResponseWriter, req OllamaChatRequest) {
		fmt.Fprint(w, `{"error":"out of memory"}`+"\n")
	})

	adapter := NewOllamaAdapter(AdapterConfig{Model: "m", BaseURL: server.URL})
	_, err := Collect(context.Background(), adapter, nil, true, nil)
	if err == nil {
		t.Fatal("Expected an error from an error object")
	}
}

func TestOllama_MalformedBody(t *testing.T) {
	server := newOllamaServer(t, func(w http.ResponseWriter, req OllamaChatRequest) {
		fmt.Fprint(w, "not json")
	})

	adapter := NewOllamaAdapter(AdapterConfig{Model: "m", BaseURL: server.URL})
	if _, err := adapter.Send(context.Background(), nil); err == nil {
		t.Fatal("Expected a decode error")
	}
}

func TestNewOllamaAdapter_Defaults(t *testing.T) {
	adapter := NewOllamaAdapter(AdapterConfig{Model: "llama3.1"})
	if adapter.baseURL != DefaultOllamaURL {
		t.Errorf("Expected default base URL, got %s", adapter.baseURL)
	}
	if adapter.client.Timeout != 0 {
		t.Errorf("Expected no client timeout, got %v", adapter.client.Timeout)
	}
	if adapter.GetModelName() != "llama3.1" {
		t.Errorf("Expected model name llama3.1, got %s", adapter.GetModelName())
	}
}
