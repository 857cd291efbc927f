package llm

import (
	"strings"
	"testing"
)

func TestCreateAdapter(t *testing.T) {
	adapter, err := CreateAdapter("ollama:llama3.1", "", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := adapter.(*OllamaAdapter); !ok {
		t.Errorf("Expected *OllamaAdapter, got %T", adapter)
	}

	adapter, err = CreateAdapter("openai:gpt-4o", "sk-test", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if adapter.GetModelName() != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %s", adapter.GetModelName())
	}
	if !adapter.IsAvailable() {
		t.Error("Expected OpenAI adapter with key to be available")
	}
}

func TestCreateAdapter_Errors(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		model   string
		message string
	}{
		{"llama3.1", "invalid model format"},
		{"ollama:", "invalid model format"},
		{"mystery:model", "unsupported LLM provider"},
		{"openai:gpt-4o", "API key not provided"},
	}

	for _, test := range tests {
		_, err := CreateAdapter(test.model, "", "")
		if err == nil {
			t.Errorf("Expected error for %s", test.model)
			continue
		}
		if !strings.Contains(err.Error(), test.message) {
			t.Errorf("For %s expected error containing %q, got %q", test.model, test.message, err.Error())
		}
	}
}

func TestModelStringHelpers(t *testing.T) {
	if p := GetProviderFromModel("ollama:codellama"); p != "ollama" {
		t.Errorf("Expected provider ollama, got %s", p)
	}
	if p := GetProviderFromModel("codellama"); p != "unknown" {
		t.Errorf("Expected provider unknown, got %s", p)
	}
	if m := GetModelFromModel("ollama:codellama:7b"); m != "codellama:7b" {
		t.Errorf("Expected model codellama:7b, got %s", m)
	}
}

func TestStepPrompt(t *testing.T) {
	tests := []struct {
		kind     string
		contains string
	}{
		{"api", "src/pages/api/"},
		{"component", "src/components/TodoList/TodoList.tsx"},
		{"page", "do not create new components"},
		{"other", "Create TodoList."},
	}

	for _, test := range tests {
		prompt := StepPrompt(test.kind, "TodoList", "shows todos")
		if !strings.Contains(prompt, test.contains) {
			t.Errorf("StepPrompt(%s) should contain %q", test.kind, test.contains)
		}
		if !strings.Contains(prompt, "FILE: <relative path>") {
			t.Errorf("StepPrompt(%s) should carry the format rules", test.kind)
		}
		if !strings.Contains(prompt, "Purpose: shows todos") {
			t.Errorf("StepPrompt(%s) should carry the description", test.kind)
		}
	}
}

func TestPlanPrompt(t *testing.T) {
	prompt := PlanPrompt("  create a todo app ")
	if !strings.Contains(prompt, "this request: create a todo app\n") {
		t.Errorf("Plan prompt should embed the task, got %q", prompt)
	}
	if !strings.Contains(prompt, "```json") {
		t.Error("Plan prompt should ask for a json block")
	}
}
