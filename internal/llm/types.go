// Package llm provides chat completion access to LLM APIs (Gemini, Groq,
// and Cerebras) behind a single ChatModel interface.
//
// Architecture:
//   - Gemini: Uses google.golang.org/genai (official SDK)
//   - Groq/Cerebras/custom: Uses github.com/openai/openai-go/v3
//     (OpenAI-compatible API)
package llm

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible).
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible).
	ProviderCerebras Provider = "cerebras"
	// ProviderOpenAI represents any OpenAI-compatible endpoint supplied
	// through configuration.
	ProviderOpenAI Provider = "openai"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK. ProviderOpenAI
// requires an explicit endpoint from configuration.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	if p == ProviderOpenAI {
		return true
	}
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	// ID is the provider-assigned call identifier, echoed back on the
	// matching tool result message.
	ID string

	// Name is the function name.
	Name string

	// Arguments is the raw JSON argument object.
	Arguments string
}

// Message is one turn in a conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall

	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string

	// ToolName is the function name a tool-role message answers.
	ToolName string
}

// ToolParam describes one parameter of a tool definition.
type ToolParam struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// ToolDef describes one function the model may call.
type ToolDef struct {
	Name        string
	Description string
	Params      []ToolParam
}

// ChatRequest is one chat completion request.
type ChatRequest struct {
	Messages []Message

	// Tools the model may call. Empty means plain text completion.
	Tools []ToolDef

	// Temperature for sampling. Zero means the provider default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means the provider default.
	MaxTokens int
}

// ChatResult is the model's reply to a ChatRequest.
type ChatResult struct {
	// Content is the assistant's text, empty when the model chose to
	// call tools instead.
	Content string

	// ToolCalls requested by the model, in order.
	ToolCalls []ToolCall

	InputTokens  int64
	OutputTokens int64
}

// ChatModel is a conversational model that can request tool execution.
type ChatModel interface {
	// Chat sends the conversation and returns the model's next turn.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Close releases any resources held by the model.
	Close() error
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses full-jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// Retry configuration defaults.
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// Default model per provider, used when configuration leaves the model
// name empty.
var DefaultModels = map[Provider]string{
	ProviderGemini:   "gemini-2.5-flash",
	ProviderGroq:     "llama-3.3-70b-versatile",
	ProviderCerebras: "llama-3.3-70b",
}
